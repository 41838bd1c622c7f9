package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetWebhookClient(t *testing.T) {
	var received []sheetRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sheet-key", r.Header.Get("X-API-Key"))
		var req sheetRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		received = append(received, req)

		switch req.Action {
		case "append":
			w.Write([]byte(`{"row_ref": "Events!A7"}`))
		case "update":
			if req.RowRef == "missing" {
				w.Write([]byte(`{"error": "row not found"}`))
				return
			}
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := NewSheetWebhookClient(server.URL, "sheet-key")
	require.True(t, client.IsConfigured())
	ctx := context.Background()

	ref, err := client.AppendRow(ctx, "sheet-1", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "Events!A7", ref)

	require.NoError(t, client.UpdateRow(ctx, "sheet-1", ref, []string{"a", "c"}))
	assert.EqualError(t, client.UpdateRow(ctx, "sheet-1", "missing", nil), "sheet webhook error: row not found")

	require.Len(t, received, 3)
	assert.Equal(t, "sheet-1", received[0].SheetID)
	assert.Equal(t, []string{"a", "c"}, received[1].Values)

	unconfigured := NewSheetWebhookClient("", "")
	assert.False(t, unconfigured.IsConfigured())
	_, err = unconfigured.AppendRow(ctx, "sheet-1", nil)
	assert.Error(t, err)
}
