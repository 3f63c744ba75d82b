package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerInvalidate(t *testing.T) {
	src := &countingSource{docs: map[string][]byte{"a.txt": []byte("alpha"), "b.txt": []byte("beta")}}
	store := NewStore(src, 0, nil, nil)
	h := NewHandler(store)
	ctx := context.Background()

	for _, name := range []string{"a.txt", "b.txt"} {
		_, err := store.Text(ctx, name)
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	h.Invalidate(rec, httptest.NewRequest(http.MethodPost, "/admin/catalog/invalidate?name=a.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "a.txt", body["scope"])
	assert.False(t, store.Cached("a.txt"))
	assert.True(t, store.Cached("b.txt"))

	rec = httptest.NewRecorder()
	h.Invalidate(rec, httptest.NewRequest(http.MethodPost, "/admin/catalog/invalidate", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "all", body["scope"])
	assert.False(t, store.Cached("b.txt"))
}
