package joinRequest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/teamNotification/internal/models"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var ErrMalformedCallback = errors.New("malformed callback data")

// MemberStatus is the membership status an admin decision moves the member to.
func (a Action) MemberStatus() (models.MemberStatus, bool) {
	switch a {
	case ActionApprove:
		return models.MemberActive, true
	case ActionReject:
		return models.MemberRejected, true
	}
	return "", false
}

// Callback is the decision carried by an inline button, encoded as action:teamId:userId.
type Callback struct {
	Action Action
	TeamID string
	UserID string
}

func (c Callback) Encode() string {
	return string(c.Action) + ":" + c.TeamID + ":" + c.UserID
}

func ParseCallback(data string) (Callback, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return Callback{}, fmt.Errorf("%q: %w", data, ErrMalformedCallback)
	}

	cb := Callback{Action: Action(parts[0]), TeamID: parts[1], UserID: parts[2]}
	if _, ok := cb.Action.MemberStatus(); !ok || cb.TeamID == "" || cb.UserID == "" {
		return Callback{}, fmt.Errorf("%q: %w", data, ErrMalformedCallback)
	}
	return cb, nil
}
