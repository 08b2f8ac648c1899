package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSendMessage(t *testing.T) {
	var gotPath, gotChatID, gotText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseForm())
		gotChatID = r.Form.Get("chat_id")
		gotText = r.Form.Get("text")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	c := NewTelegramClientWithBase("123:abc", server.URL)
	err := c.SendMessage(context.Background(), 42, "nowa oferta")
	require.NoError(t, err)

	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", gotChatID)
	assert.Equal(t, "nowa oferta", gotText)
}

func TestTelegramSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer server.Close()

	c := NewTelegramClientWithBase("123:abc", server.URL)
	err := c.SendMessage(context.Background(), 42, "nowa oferta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked by the user")
}

func TestTelegramGetUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "/bot123:abc/getUpdates", r.URL.Path)
		assert.Equal(t, "7", r.Form.Get("offset"))

		resp := map[string]interface{}{
			"ok": true,
			"result": []map[string]interface{}{
				{
					"update_id": 8,
					"message": map[string]interface{}{
						"chat": map[string]interface{}{"id": 42},
						"text": "/start",
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewTelegramClientWithBase("123:abc", server.URL)
	updates, err := c.GetUpdates(context.Background(), 7, 0)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, int64(8), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, int64(42), updates[0].Message.Chat.ID)
	assert.Equal(t, "/start", updates[0].Message.Text)
}

func TestTelegramGetMe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"username":"olxwatch_bot"}}`))
	}))
	defer server.Close()

	c := NewTelegramClientWithBase("123:abc", server.URL)
	username, err := c.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "olxwatch_bot", username)
}
