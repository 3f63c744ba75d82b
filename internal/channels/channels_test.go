package channels

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

func testTable() *Table {
	return NewTable(map[Channel]Config{
		Sales:      {EndpointID: "111", Credential: "tok-sales", HandoffLink: "https://wa.me/1"},
		Support:    {EndpointID: "222", Credential: "tok-support"},
		Accounting: {EndpointID: "333", Credential: "tok-acct"},
	}, map[Channel]string{
		Sales:      "111",
		Support:    "222",
		Accounting: "333",
	})
}

func TestResolve(t *testing.T) {
	r := NewResolver(testTable(), logging.Default())

	tests := []struct {
		id   string
		want Channel
	}{
		{"111", Sales},
		{"222", Support},
		{"333", Accounting},
		{" 222 ", Support},
		{"999", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Resolve(tt.id), "routing id %q", tt.id)
	}
}

func TestResolveIgnoresEmptyRoutingIDs(t *testing.T) {
	table := NewTable(map[Channel]Config{}, map[Channel]string{Sales: "", Support: "222"})
	r := NewResolver(table, logging.Default())
	assert.Equal(t, Unknown, r.Resolve(""))
	assert.Equal(t, Support, r.Resolve("222"))
}

func TestConfigForUnknownFallsBackToSales(t *testing.T) {
	r := NewResolver(testTable(), logging.Default())
	cfg := r.ConfigFor(Unknown)
	assert.Equal(t, "111", cfg.EndpointID)
	assert.Equal(t, "tok-sales", cfg.Credential)

	cfg = r.ConfigFor(Channel("bogus"))
	assert.Equal(t, "111", cfg.EndpointID)
}

func TestConfigForMissingValuesLogsAndReturns(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(map[Channel]Config{
		Support: {EndpointID: "222"},
	}, nil)
	r := NewResolver(table, logging.NewWithWriter(&buf, "info"))

	cfg := r.ConfigFor(Support)
	assert.Equal(t, "222", cfg.EndpointID)
	assert.Empty(t, cfg.Credential)
	assert.False(t, cfg.Complete())
	assert.Contains(t, buf.String(), "incomplete sender configuration")
}

func TestValidate(t *testing.T) {
	require.NoError(t, testTable().Validate())

	table := NewTable(map[Channel]Config{
		Sales:   {EndpointID: "1", Credential: "x"},
		Support: {EndpointID: "2"},
	}, nil)
	err := table.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.True(t, strings.Contains(msg, "support.credential"))
	assert.True(t, strings.Contains(msg, "accounting.endpoint_id"))
	assert.False(t, strings.Contains(msg, "sales."))
}

func TestNewResolverPanicsOnNilTable(t *testing.T) {
	assert.Panics(t, func() { NewResolver(nil, nil) })
}

func TestHandoffLinkDoesNotFallBack(t *testing.T) {
	r := NewResolver(testTable(), logging.Default())
	assert.Equal(t, "https://wa.me/1", r.HandoffLink(Sales))
	assert.Empty(t, r.HandoffLink(Support))
	assert.Empty(t, r.HandoffLink(Unknown))
}
