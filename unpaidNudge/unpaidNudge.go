package unpaidNudge

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/callable"
	"github.com/teamNotification/internal/fanout"
	"github.com/teamNotification/internal/models"
	"github.com/teamNotification/internal/push"
)

const (
	FunctionName = "sendNudgeToUnpaid"

	nudgeTitle = "회비 납부 안내"
	nudgeBody  = "이번 달 회비 납부를 확인해 주세요."

	msgLoginRequired = "로그인이 필요합니다."
	msgMissingIDs    = "teamId와 feeId가 필요합니다."
	msgNoUnpaid      = "미납자가 없습니다."
	msgNoTokens      = "발송 가능한 FCM 토큰이 없습니다."
)

type Request struct {
	TeamID string `json:"teamId"`
	FeeID  string `json:"feeId"`
}

type Response struct {
	Sent    int    `json:"sent"`
	Failed  *int   `json:"failed,omitempty"`
	Total   *int   `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

type Store interface {
	fanout.MemberGetter
	ListUnpaidRegistrations(ctx context.Context, teamID, eventID string) ([]models.Registration, error)
}

type Notifier interface {
	Notify(ctx context.Context, tokens []string, notification fanout.Notification) (push.Result, error)
}

type Invoker struct {
	store    Store
	notifier Notifier
}

func NewInvoker(store Store, notifier Notifier) *Invoker {
	return &Invoker{store: store, notifier: notifier}
}

// Call adapts Send to the callable protocol. Identity is checked before the payload is read.
func (i *Invoker) Call(ctx context.Context, caller *callable.Caller, data json.RawMessage) (interface{}, error) {
	if caller == nil {
		return nil, callable.NewError(callable.StatusUnauthenticated, msgLoginRequired)
	}

	var req Request
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, callable.NewError(callable.StatusInvalidArgument, msgMissingIDs)
		}
	}

	return i.Send(ctx, caller, req)
}

// Send pushes a payment reminder to every unpaid registrant of req.FeeID in req.TeamID.
func (i *Invoker) Send(ctx context.Context, caller *callable.Caller, req Request) (*Response, error) {
	if caller == nil {
		return nil, callable.NewError(callable.StatusUnauthenticated, msgLoginRequired)
	}
	if req.TeamID == "" || req.FeeID == "" {
		return nil, callable.NewError(callable.StatusInvalidArgument, msgMissingIDs)
	}

	logger := log.WithFields(log.Fields{"teamId": req.TeamID, "feeId": req.FeeID, "caller": caller.UID})

	registrations, err := i.store.ListUnpaidRegistrations(ctx, req.TeamID, req.FeeID)
	if err != nil {
		return nil, fmt.Errorf("finding unpaid registrations: %w", err)
	}

	userIDs := unpaidUserIDs(registrations)
	if len(userIDs) == 0 {
		logger.Info("no unpaid registrations")
		return &Response{Sent: 0, Message: msgNoUnpaid}, nil
	}

	tokens := fanout.ResolveTokens(ctx, i.store, req.TeamID, userIDs)
	if len(tokens) == 0 {
		logger.WithField("unpaid", len(userIDs)).Info("no push tokens for unpaid members")
		return &Response{Sent: 0, Message: msgNoTokens}, nil
	}

	result, err := i.notifier.Notify(ctx, tokens, fanout.Notification{
		Title: nudgeTitle,
		Body:  nudgeBody,
		Data: map[string]string{
			"type":     "nudge",
			"teamId":   req.TeamID,
			"seasonId": req.FeeID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sending nudge: %w", err)
	}

	logger.WithFields(log.Fields{"sent": result.SuccessCount, "failed": result.FailureCount}).Info("nudge sent")

	total := len(tokens)
	return &Response{
		Sent:   result.SuccessCount,
		Failed: &result.FailureCount,
		Total:  &total,
	}, nil
}

func unpaidUserIDs(registrations []models.Registration) []string {
	seen := map[string]struct{}{}
	userIDs := []string{}
	for _, registration := range registrations {
		if registration.UserID == "" {
			continue
		}
		if _, ok := seen[registration.UserID]; ok {
			continue
		}
		seen[registration.UserID] = struct{}{}
		userIDs = append(userIDs, registration.UserID)
	}
	return userIDs
}
