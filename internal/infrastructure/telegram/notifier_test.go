package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrisisMonitor/internal/config"
	"CrisisMonitor/internal/domain"
)

type botServer struct {
	mu    sync.Mutex
	sent  []map[string]string
	fails bool
}

func (b *botServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Crisis","username":"crisis_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			require.NoError(t, r.ParseForm())
			b.mu.Lock()
			b.sent = append(b.sent, map[string]string{
				"chat_id": r.PostForm.Get("chat_id"),
				"text":    r.PostForm.Get("text"),
			})
			b.mu.Unlock()
			if b.fails {
				_, _ = w.Write([]byte(`{"ok":false,"error_code":403,"description":"Forbidden: bot is not a member of the channel chat"}`))
				return
			}
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":-1001,"type":"channel"}}}`))
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestNotifier(t *testing.T, srv *botServer, channel string) *Notifier {
	t.Helper()

	server := httptest.NewServer(srv.handler(t))
	t.Cleanup(server.Close)

	n, err := NewNotifier(config.NotificationConfig{
		AlertTitle: "ALERT",
		Telegram: config.TelegramConfig{
			BotToken: "123:abc",
			Channel:  channel,
			Endpoint: server.URL + "/bot%s/%s",
		},
	}, server.Client())
	require.NoError(t, err)
	return n
}

func TestNotifyAlertToChannel(t *testing.T) {
	t.Parallel()

	srv := &botServer{}
	n := newTestNotifier(t, srv, "@global_alerts")

	err := n.NotifyAlert(context.Background(), domain.Alert{
		Headline: "İzmir'de deprem",
		Location: "Izmir, Turkey",
		RecordID: "abc123",
	})
	require.NoError(t, err)

	require.Len(t, srv.sent, 1)
	assert.Equal(t, "@global_alerts", srv.sent[0]["chat_id"])
	assert.Equal(t, "ALERT\nIzmir, Turkey: İzmir'de deprem\nID: abc123", srv.sent[0]["text"])
}

func TestNotifyAlertNumericChat(t *testing.T) {
	t.Parallel()

	srv := &botServer{}
	n := newTestNotifier(t, srv, "-1001")

	require.NoError(t, n.NotifyAlert(context.Background(), domain.Alert{Headline: "x", RecordID: "k"}))
	require.Len(t, srv.sent, 1)
	assert.Equal(t, "-1001", srv.sent[0]["chat_id"])
}

func TestNotifyAlertAPIError(t *testing.T) {
	t.Parallel()

	srv := &botServer{fails: true}
	n := newTestNotifier(t, srv, "@global_alerts")

	err := n.NotifyAlert(context.Background(), domain.Alert{Headline: "x", RecordID: "k"})
	require.Error(t, err)
}

func TestNewNotifierRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewNotifier(config.NotificationConfig{}, nil)
	require.Error(t, err)
}

func TestFormatAlertWithoutLocation(t *testing.T) {
	t.Parallel()

	got := FormatAlert("", domain.Alert{Headline: "Headline", RecordID: "id"})
	assert.Equal(t, "Headline\nID: id", got)
}
