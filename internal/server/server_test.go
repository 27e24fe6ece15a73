package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamNotification/internal/app"
	"github.com/teamNotification/internal/models"
)

type recordingHandler struct {
	calls int
	code  int
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls++
	w.WriteHeader(h.code)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	nudge := &recordingHandler{code: http.StatusOK}
	webhook := &recordingHandler{code: http.StatusOK}
	var events []models.MemberEvent

	srv := NewServer(Deps{
		Nudge:   nudge,
		Webhook: webhook,
		Jobs: map[string]app.Job{
			"ok": func(ctx context.Context) (interface{}, error) {
				return map[string]int{"updated": 2}, nil
			},
			"broken": func(ctx context.Context) (interface{}, error) {
				return nil, errors.New("listing teams: unavailable")
			},
		},
		MemberEvents: func(ctx context.Context, event models.MemberEvent) error {
			events = append(events, event)
			if event.Value.Name == "fail" {
				return errors.New("telegram down")
			}
			return nil
		},
	}, ":0").Handler()

	t.Run("health", func(t *testing.T) {
		rec := do(t, srv, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("callable and webhook are delegated", func(t *testing.T) {
		do(t, srv, http.MethodPost, "/sendNudgeToUnpaid", `{"data":{}}`)
		do(t, srv, http.MethodPost, "/telegramWebhook", `{}`)
		do(t, srv, http.MethodGet, "/telegramWebhook", "")

		assert.Equal(t, 1, nudge.calls)
		assert.Equal(t, 2, webhook.calls)
	})

	t.Run("jobs", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/jobs/ok", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"updated":2}`, rec.Body.String())

		rec = do(t, srv, http.MethodPost, "/jobs/broken", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		rec = do(t, srv, http.MethodPost, "/jobs/missing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("member events", func(t *testing.T) {
		rec := do(t, srv, http.MethodPost, "/events/memberWritten",
			`{"value":{"name":"projects/p/databases/(default)/documents/teams/t1/members/u1","fields":{"status":{"stringValue":"pending"}}}}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.Len(t, events, 1)
		assert.Equal(t, "pending", events[0].Value.Fields.Status.Value)

		rec = do(t, srv, http.MethodPost, "/events/memberWritten", `{"value":{"name":"fail"}}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		rec = do(t, srv, http.MethodPost, "/events/memberWritten", `{"value":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
