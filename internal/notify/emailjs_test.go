package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AndreyBarsh/Barshshop/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailJS_Send(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1.0/email/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("OK"))
	}))
	defer srv.Close()

	client := notify.NewEmailJS(notify.EmailJSConfig{
		BaseURL:    srv.URL,
		ServiceID:  "service_abc",
		TemplateID: "template_xyz",
		PublicKey:  "public-key",
	})

	err := client.Send(context.Background(), map[string]string{
		"firstName": "Андрей",
		"total":     "800 ₽",
	})
	require.NoError(t, err)

	assert.Equal(t, "service_abc", captured["service_id"])
	assert.Equal(t, "template_xyz", captured["template_id"])
	assert.Equal(t, "public-key", captured["user_id"])

	params, ok := captured["template_params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Андрей", params["firstName"])
	assert.Equal(t, "800 ₽", params["total"])
}

func TestEmailJS_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("The public key is invalid"))
	}))
	defer srv.Close()

	client := notify.NewEmailJS(notify.EmailJSConfig{BaseURL: srv.URL})

	err := client.Send(context.Background(), map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "public key is invalid")
}

func TestMock_RecordsSends(t *testing.T) {
	m := notify.NewMock()

	require.NoError(t, m.Send(context.Background(), map[string]string{"total": "800 ₽"}))

	sends := m.Sends()
	require.Len(t, sends, 1)
	assert.Equal(t, "800 ₽", sends[0]["total"])
}
