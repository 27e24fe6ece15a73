package telegramWebhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/models"
	"github.com/teamNotification/internal/telegram"
	"github.com/teamNotification/joinRequest"
)

const (
	FunctionName = "telegramWebhook"

	SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

	msgUpdateFailed = "처리 중 오류가 발생했습니다."
)

var decisions = map[joinRequest.Action]struct{ answer, label string }{
	joinRequest.ActionApprove: {answer: "승인되었습니다.", label: "✅ 승인됨"},
	joinRequest.ActionReject:  {answer: "거절되었습니다.", label: "❌ 거절됨"},
}

type MemberUpdater interface {
	UpdateMemberStatus(ctx context.Context, teamID, userID string, status models.MemberStatus) error
}

type Bot interface {
	AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
}

// Handler applies admin decisions from inline buttons. It answers 200 to everything
// except non-POST requests so Telegram never retries an update.
type Handler struct {
	members MemberUpdater
	bot     Bot
	secret  string
}

// NewHandler returns a Handler. A nil bot skips acknowledgements; an empty secret
// disables the header check.
func NewHandler(members MemberUpdater, bot Bot, secret string) *Handler {
	return &Handler{members: members, bot: bot, secret: secret}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	h.handle(r)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) handle(r *http.Request) {
	ctx := r.Context()

	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretHeader)), []byte(h.secret)) != 1 {
		log.Warn("telegram webhook secret mismatch")
		return
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Warnf("decoding telegram update: %s", err)
		return
	}

	query := update.CallbackQuery
	if query == nil {
		log.WithField("updateId", update.UpdateID).Debug("update without callback query")
		return
	}

	cb, err := joinRequest.ParseCallback(query.Data)
	if err != nil {
		log.WithField("updateId", update.UpdateID).Warnf("ignoring callback: %s", err)
		return
	}

	logger := log.WithFields(log.Fields{
		"teamId": cb.TeamID,
		"userId": cb.UserID,
		"action": cb.Action,
		"admin":  query.From.ID,
	})

	status, _ := cb.Action.MemberStatus()
	if err := h.members.UpdateMemberStatus(ctx, cb.TeamID, cb.UserID, status); err != nil {
		logger.Errorf("updating member status: %s", err)
		h.answer(ctx, logger, query.ID, msgUpdateFailed)
		return
	}
	logger.Info("join request decided")

	decision := decisions[cb.Action]
	h.answer(ctx, logger, query.ID, decision.answer)
	h.markDecided(ctx, logger, query, decision.label)
}

func (h *Handler) answer(ctx context.Context, logger *log.Entry, callbackQueryID, text string) {
	if h.bot == nil {
		return
	}
	if err := h.bot.AnswerCallbackQuery(ctx, callbackQueryID, text); err != nil {
		logger.Warnf("answering callback query: %s", err)
	}
}

// markDecided appends the decision to the original message, which also removes its buttons.
func (h *Handler) markDecided(ctx context.Context, logger *log.Entry, query *telegram.CallbackQuery, label string) {
	if h.bot == nil || query.Message == nil {
		return
	}

	decidedBy := query.From.FirstName
	if query.From.Username != "" {
		decidedBy = "@" + query.From.Username
	}

	text := fmt.Sprintf("%s\n\n<b>%s</b>", html.EscapeString(query.Message.Text), label)
	if decidedBy != "" {
		text += " (" + html.EscapeString(decidedBy) + ")"
	}

	if err := h.bot.EditMessageText(ctx, query.Message.Chat.ID, query.Message.MessageID, text); err != nil {
		logger.Warnf("editing join request message: %s", err)
	}
}
