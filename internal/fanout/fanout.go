package fanout

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/teamNotification/internal/models"
	"github.com/teamNotification/internal/push"
)

// lookupConcurrency bounds parallel member reads during token resolution.
const lookupConcurrency = 8

var ErrNoTokens = errors.New("no push tokens to send notification")

type MemberGetter interface {
	GetMember(ctx context.Context, teamID, userID string) (*models.Member, error)
}

type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

type Notifier struct {
	sender push.Sender
}

func NewNotifier(sender push.Sender) *Notifier {
	return &Notifier{sender: sender}
}

// Notify sends n to every token in one multicast. Callers are expected to
// short-circuit on an empty token list; Notify refuses it with ErrNoTokens.
func (n *Notifier) Notify(ctx context.Context, tokens []string, notification Notification) (push.Result, error) {
	if len(tokens) == 0 {
		return push.Result{}, ErrNoTokens
	}

	return n.sender.SendMulticast(ctx, push.Message{
		Tokens: tokens,
		Title:  notification.Title,
		Body:   notification.Body,
		Data:   notification.Data,
	})
}

// ResolveTokens looks up each member of teamID by user id and returns their
// distinct push tokens in userIDs order. Members without a token, or whose
// lookup fails, are dropped.
func ResolveTokens(ctx context.Context, members MemberGetter, teamID string, userIDs []string) []string {
	found := make([]string, len(userIDs))

	var g errgroup.Group
	g.SetLimit(lookupConcurrency)

	for i, userID := range userIDs {
		i, userID := i, userID
		g.Go(func() error {
			member, err := members.GetMember(ctx, teamID, userID)
			if err != nil {
				log.WithFields(log.Fields{"teamId": teamID, "userId": userID}).Warnf("unable to fetch member: %s", err)
				return nil
			}

			found[i] = member.FCMToken
			return nil
		})
	}
	_ = g.Wait()

	return distinct(found)
}

// TokensOf collects the distinct non-empty push tokens of already loaded members.
func TokensOf(members []models.Member) []string {
	tokens := make([]string, 0, len(members))
	for _, member := range members {
		tokens = append(tokens, member.FCMToken)
	}
	return distinct(tokens)
}

func distinct(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := []string{}
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
