package joinRequest

import (
	"context"
	"fmt"
	"html"

	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/models"
	"github.com/teamNotification/internal/telegram"
)

const (
	approveLabel = "✅ 승인"
	rejectLabel  = "❌ 거절"
)

type Store interface {
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error
}

type Notifier struct {
	store       Store
	messenger   Messenger
	adminChatID int64
}

// NewNotifier returns a Notifier. A nil messenger disables delivery.
func NewNotifier(store Store, messenger Messenger, adminChatID int64) *Notifier {
	return &Notifier{store: store, messenger: messenger, adminChatID: adminChatID}
}

// Handle tells the admin chat about a member document that just became pending.
func (n *Notifier) Handle(ctx context.Context, event models.MemberEvent) error {
	newStatus := models.MemberStatus(event.Value.Fields.Status.Value)
	oldStatus := models.MemberStatus(event.OldValue.Fields.Status.Value)
	if newStatus != models.MemberPending || oldStatus == models.MemberPending {
		return nil
	}

	teamID, userID, ok := event.Value.MemberPath()
	if !ok {
		log.WithField("name", event.Value.Name).Warn("join request without member path")
		return nil
	}
	logger := log.WithFields(log.Fields{"teamId": teamID, "userId": userID})

	if n.messenger == nil {
		logger.Warn("telegram not configured, join request not forwarded")
		return nil
	}

	markup, err := decisionKeyboard(teamID, userID)
	if err != nil {
		logger.Warnf("join request not forwarded: %s", err)
		return nil
	}

	text := fmt.Sprintf(
		"<b>가입 요청</b>\n팀: %s\n신청자: %s",
		html.EscapeString(n.teamName(ctx, teamID)),
		html.EscapeString(n.userName(ctx, userID)),
	)

	if err := n.messenger.SendMessage(ctx, n.adminChatID, text, markup); err != nil {
		return fmt.Errorf("sending join request %s/%s: %w", teamID, userID, err)
	}

	logger.Info("join request forwarded")
	return nil
}

func decisionKeyboard(teamID, userID string) (*telegram.InlineKeyboardMarkup, error) {
	approve := Callback{Action: ActionApprove, TeamID: teamID, UserID: userID}.Encode()
	reject := Callback{Action: ActionReject, TeamID: teamID, UserID: userID}.Encode()

	for _, data := range []string{approve, reject} {
		if len(data) > telegram.MaxCallbackDataBytes {
			return nil, fmt.Errorf("callback data %d bytes exceeds %d", len(data), telegram.MaxCallbackDataBytes)
		}
	}

	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: approveLabel, CallbackData: approve},
			{Text: rejectLabel, CallbackData: reject},
		}},
	}, nil
}

func (n *Notifier) teamName(ctx context.Context, teamID string) string {
	team, err := n.store.GetTeam(ctx, teamID)
	if err != nil {
		log.WithField("teamId", teamID).Warnf("team lookup failed: %s", err)
		return teamID
	}
	if team.Name == "" {
		return teamID
	}
	return team.Name
}

func (n *Notifier) userName(ctx context.Context, userID string) string {
	user, err := n.store.GetUser(ctx, userID)
	if err != nil {
		log.WithField("userId", userID).Warnf("user lookup failed: %s", err)
		return userID
	}

	for _, name := range []string{user.DisplayName, user.Email, user.PhoneNumber} {
		if name != "" {
			return name
		}
	}
	return userID
}
