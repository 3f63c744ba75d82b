package flows

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/ares-whatsapp-router/internal/channels"
	"github.com/wolfman30/ares-whatsapp-router/internal/inbound"
	"github.com/wolfman30/ares-whatsapp-router/internal/whatsapp"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

const supportLink = "https://wa.me/595981000222"

type sentMessage struct {
	kind    string
	cfg     channels.Config
	to      string
	text    string
	buttons []whatsapp.Button
	list    whatsapp.ListMessage
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

func (f *fakeSender) SendText(_ context.Context, cfg channels.Config, to, body string) error {
	f.sent = append(f.sent, sentMessage{kind: "text", cfg: cfg, to: to, text: body})
	return f.err
}

func (f *fakeSender) SendButtons(_ context.Context, cfg channels.Config, to, bodyText string, buttons []whatsapp.Button) error {
	f.sent = append(f.sent, sentMessage{kind: "buttons", cfg: cfg, to: to, text: bodyText, buttons: buttons})
	return f.err
}

func (f *fakeSender) SendList(_ context.Context, cfg channels.Config, to string, list whatsapp.ListMessage) error {
	f.sent = append(f.sent, sentMessage{kind: "list", cfg: cfg, to: to, list: list})
	return f.err
}

type fakeCatalog struct {
	text  string
	err   error
	calls int
}

func (f *fakeCatalog) Text(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeCompleter struct {
	answer    string
	err       error
	grounding string
	query     string
	calls     int
}

func (f *fakeCompleter) Complete(_ context.Context, _, grounding, query string) (string, error) {
	f.calls++
	f.grounding = grounding
	f.query = query
	return f.answer, f.err
}

type fixture struct {
	router    *Router
	sender    *fakeSender
	catalog   *fakeCatalog
	completer *fakeCompleter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	table := channels.NewTable(map[channels.Channel]channels.Config{
		channels.Sales:      {EndpointID: "111", Credential: "tok-sales"},
		channels.Support:    {EndpointID: "222", Credential: "tok-support", HandoffLink: supportLink},
		channels.Accounting: {EndpointID: "333", Credential: "tok-acct", HandoffLink: "https://wa.me/595981000333"},
	}, map[channels.Channel]string{
		channels.Sales:      "111",
		channels.Support:    "222",
		channels.Accounting: "333",
	})
	logger := logging.NewWithWriter(&bytes.Buffer{}, "debug")

	f := &fixture{
		sender:    &fakeSender{},
		catalog:   &fakeCatalog{text: "Láser IPL Elite: depilación definitiva."},
		completer: &fakeCompleter{answer: "El láser IPL Elite es ideal. Un asesor puede enviarte la cotización."},
	}
	f.router = NewRouter(Options{
		Sender:    f.sender,
		Channels:  channels.NewResolver(table, logger),
		Catalog:   f.catalog,
		Completer: f.completer,
		Timezone:  "UTC",
		Logger:    logger,
		Now:       func() time.Time { return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC) },
	})
	return f
}

func textEvent(text string) *inbound.Event {
	return &inbound.Event{
		Phone:        "595981123456",
		CustomerName: "Ana",
		Text:         text,
		Type:         inbound.TypeText,
		Channel:      channels.Sales,
	}
}

func TestRoute_GreetingSendsMainMenu(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Route(context.Background(), textEvent("Hola"))
	require.NoError(t, err)

	assert.Equal(t, MenuSent, resp.Message)
	assert.Equal(t, IntentGreetingMenu, resp.Intent)
	assert.Equal(t, FlowGreetingMenu, resp.Flow)
	assert.True(t, resp.Delivered)
	assert.False(t, resp.ShouldSaveLead)

	require.Len(t, f.sender.sent, 1)
	sent := f.sender.sent[0]
	assert.Equal(t, "buttons", sent.kind)
	assert.Equal(t, "595981123456", sent.to)
	assert.True(t, strings.HasPrefix(sent.text, "Buenas tardes Ana! 👋"))
	require.Len(t, sent.buttons, 3)
	assert.Equal(t, []string{ButtonSales, ButtonSupport, ButtonAccounting},
		[]string{sent.buttons[0].ID, sent.buttons[1].ID, sent.buttons[2].ID})
	assert.Equal(t, 0, f.completer.calls)
}

func TestRoute_GreetingWithoutCustomName(t *testing.T) {
	f := newFixture(t)
	ev := textEvent("buenas")
	ev.CustomerName = inbound.DefaultCustomerName

	_, err := f.router.Route(context.Background(), ev)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.sender.sent[0].text, "Buenas tardes! 👋"))
}

func TestRoute_SalesInquiryWithCatalogCreatesLead(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Route(context.Background(), textEvent("me interesa el precio del láser IPL"))
	require.NoError(t, err)

	assert.Equal(t, "sales", resp.Intent)
	assert.Equal(t, FlowSalesAI, resp.Flow)
	assert.Equal(t, f.completer.answer, resp.Message)
	assert.Equal(t, 1, f.completer.calls)
	assert.Equal(t, f.catalog.text, f.completer.grounding)
	assert.Equal(t, "me interesa el precio del láser IPL", f.completer.query)

	require.True(t, resp.ShouldSaveLead)
	require.NotNil(t, resp.Lead)
	assert.Equal(t, "láser", resp.Lead.EquipmentOfInterest)
	assert.Equal(t, "Ana", resp.Lead.Name)
	assert.Equal(t, "595981123456", resp.Lead.Phone)
	assert.Equal(t, "sales", resp.Lead.Channel)
}

func TestRoute_SalesInquiryCatalogUnavailable(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errors.New("no such key")

	resp, err := f.router.Route(context.Background(), textEvent("me interesa el precio del láser IPL"))
	require.NoError(t, err)

	assert.Equal(t, textCatalogLoading, resp.Message)
	assert.False(t, resp.ShouldSaveLead)
	assert.Nil(t, resp.Lead)
	assert.Equal(t, 0, f.completer.calls)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, textCatalogLoading, f.sender.sent[0].text)
}

func TestRoute_SalesInquiryCompletionFails(t *testing.T) {
	f := newFixture(t)
	f.completer.err = errors.New("timeout")

	resp, err := f.router.Route(context.Background(), textEvent("precio del hydrafacial"))
	require.NoError(t, err)
	assert.Equal(t, textAIFallback, resp.Message)
	assert.False(t, resp.ShouldSaveLead)
}

func TestRoute_SalesInquiryEmptyGeneration(t *testing.T) {
	f := newFixture(t)
	f.completer.answer = "  "

	resp, err := f.router.Route(context.Background(), textEvent("quiero un equipo nuevo"))
	require.NoError(t, err)
	assert.Equal(t, textNoGeneration, resp.Message)
	assert.False(t, resp.ShouldSaveLead)
}

func TestRoute_SalesWithoutEquipmentAsksToClarify(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Route(context.Background(), textEvent("quiero saber precios y ventas"))
	require.NoError(t, err)
	assert.Equal(t, FlowSalesClarify, resp.Flow)
	assert.Contains(t, resp.Message, "¿Te gustaría ver información sobre equipos o insumos?")
	assert.Equal(t, 0, f.catalog.calls)
}

func TestRoute_SupportButtonNeverFallsThrough(t *testing.T) {
	f := newFixture(t)
	ev := &inbound.Event{
		Phone:         "595981123456",
		CustomerName:  "Ana",
		Text:          "me interesa el precio del láser IPL",
		Type:          inbound.TypeButtonReply,
		ButtonReplyID: ButtonSupport,
		Channel:       channels.Support,
	}

	resp, err := f.router.Route(context.Background(), ev)
	require.NoError(t, err)

	assert.Contains(t, resp.Message, supportLink)
	assert.Equal(t, FlowSupportMenu, resp.Flow)
	assert.Equal(t, "support", resp.Intent)
	assert.Equal(t, 0, f.completer.calls)
	assert.Equal(t, 0, f.catalog.calls)

	require.Len(t, f.sender.sent, 1)
	sent := f.sender.sent[0]
	assert.Equal(t, "list", sent.kind)
	assert.Equal(t, "222", sent.cfg.EndpointID)
	assert.Contains(t, sent.list.Body, supportLink)
}

func TestRoute_SalesButtonSendsProductList(t *testing.T) {
	f := newFixture(t)
	ev := &inbound.Event{Phone: "595981", Type: inbound.TypeButtonReply, ButtonReplyID: ButtonSales, Channel: channels.Sales}

	resp, err := f.router.Route(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, FlowSalesMenu, resp.Flow)

	list := f.sender.sent[0].list
	require.Len(t, list.Sections, 2)
	assert.Equal(t, RowSalesSupplies, list.Sections[0].Rows[0].ID)
	assert.Equal(t, RowSalesEquipment, list.Sections[0].Rows[1].ID)
	assert.Equal(t, RowMainMenu, list.Sections[1].Rows[0].ID)
}

func TestRoute_AccountingButtonHandsOff(t *testing.T) {
	f := newFixture(t)
	ev := &inbound.Event{Phone: "595981", CustomerName: "Luis", Type: inbound.TypeButtonReply, ButtonReplyID: ButtonAccounting, Channel: channels.Accounting}

	resp, err := f.router.Route(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, FlowAccountingHandoff, resp.Flow)
	assert.Contains(t, resp.Message, "Hola Luis")
	assert.Contains(t, resp.Message, "https://wa.me/595981000333")
	assert.Equal(t, "333", f.sender.sent[0].cfg.EndpointID)
}

func TestRoute_ListRows(t *testing.T) {
	tests := []struct {
		rowID    string
		wantFlow string
		contains string
	}{
		{RowSalesSupplies, FlowSalesSupplies, "¿qué insumo te interesa?"},
		{RowSupportFailure, FlowSupportHandoff, "fallas técnicas"},
		{RowSupportMaintenance, FlowSupportHandoff, "mantenimiento"},
		{RowSupportWarranty, FlowSupportHandoff, "garantías"},
		{RowMainMenu, FlowMainMenu, MenuSent},
		{"something_else", FlowMainMenu, MenuSent},
	}
	for _, tt := range tests {
		t.Run(tt.rowID, func(t *testing.T) {
			f := newFixture(t)
			ev := &inbound.Event{Phone: "595981", CustomerName: "Ana", Type: inbound.TypeListReply, ListReplyID: tt.rowID, Channel: channels.Support}

			resp, err := f.router.Route(context.Background(), ev)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlow, resp.Flow)
			assert.Contains(t, resp.Message, tt.contains)
			assert.Len(t, f.sender.sent, 1)
		})
	}
}

func TestRoute_EquipmentRowUsesRowAsQuery(t *testing.T) {
	f := newFixture(t)
	f.completer.answer = "Tenemos HydraFacial y Ultraformer disponibles."
	ev := &inbound.Event{
		Phone:            "595981",
		CustomerName:     "Ana",
		Type:             inbound.TypeListReply,
		ListReplyID:      RowSalesEquipment,
		ReplyTitle:       "Equipos",
		ReplyDescription: "HydraFacial, Ultraformer, CM Slim...",
		Channel:          channels.Sales,
	}

	resp, err := f.router.Route(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, FlowSalesAI, resp.Flow)
	assert.Equal(t, "Equipos: HydraFacial, Ultraformer, CM Slim...", f.completer.query)
	require.True(t, resp.ShouldSaveLead)
	assert.Equal(t, "hydrafacial", resp.Lead.EquipmentOfInterest)
}

func TestRoute_UnknownButtonReturnsMainMenu(t *testing.T) {
	f := newFixture(t)
	ev := &inbound.Event{Phone: "595981", Type: inbound.TypeButtonReply, ButtonReplyID: "ventas_old", Channel: channels.Sales}

	resp, err := f.router.Route(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, MenuSent, resp.Message)
	assert.Equal(t, "buttons", f.sender.sent[0].kind)
}

func TestRoute_Courtesy(t *testing.T) {
	f := newFixture(t)
	for _, text := range []string{"ok", "jaja", "gracias", "si", "gracias por todo", "ok perfecto gracias"} {
		resp, err := f.router.Route(context.Background(), textEvent(text))
		require.NoError(t, err)
		assert.Equal(t, FlowCourtesy, resp.Flow, text)
		assert.Equal(t, IntentCourtesy, resp.Intent, text)
	}
}

func TestRoute_AccountingFreeText(t *testing.T) {
	f := newFixture(t)

	resp, err := f.router.Route(context.Background(), textEvent("necesito la factura de marzo"))
	require.NoError(t, err)
	assert.Equal(t, "accounting", resp.Intent)
	assert.Contains(t, resp.Message, "sobre facturación")
}

func TestRoute_SupportFreeTextQuotesMessage(t *testing.T) {
	f := newFixture(t)
	text := "tengo un problema con la pantalla " + strings.Repeat("x", 120)

	resp, err := f.router.Route(context.Background(), textEvent(text))
	require.NoError(t, err)
	assert.Equal(t, "support", resp.Intent)
	assert.Contains(t, resp.Message, text[:100]+"...")
	assert.NotContains(t, resp.Message, text[:101]+"...")
	assert.Contains(t, resp.Message, supportLink)
}

func TestRoute_UnknownChannelRepliesFromSales(t *testing.T) {
	f := newFixture(t)
	ev := textEvent("Hola")
	ev.Channel = channels.Unknown

	_, err := f.router.Route(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, "111", f.sender.sent[0].cfg.EndpointID)
	assert.Equal(t, "tok-sales", f.sender.sent[0].cfg.Credential)
}

func TestRoute_SendFailureStillReturnsResponse(t *testing.T) {
	f := newFixture(t)
	f.sender.err = errors.New("graph 500")

	resp, err := f.router.Route(context.Background(), textEvent("me interesa el precio del láser IPL"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSendFailed))
	assert.False(t, resp.Delivered)
	assert.True(t, resp.ShouldSaveLead)
	assert.Equal(t, FlowSalesAI, resp.Flow)
}

func TestNewRouterPanicsWithoutSender(t *testing.T) {
	assert.Panics(t, func() { NewRouter(Options{}) })
}
