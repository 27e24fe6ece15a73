package models

import (
	"strings"
	"time"
)

type UpdateMask struct {
	FieldPaths []string `json:"fieldPaths"`
}

// MemberEvent is the payload of a Firestore write trigger on
// teams/{teamId}/members/{userId}. OldValue is empty on create.
type MemberEvent struct {
	OldValue   MemberValue `json:"oldValue"`
	Value      MemberValue `json:"value"`
	UpdateMask UpdateMask  `json:"updateMask"`
}

type MemberValue struct {
	CreateTime time.Time    `json:"createTime"`
	Fields     MemberFields `json:"fields"`
	Name       string       `json:"name"`
	UpdateTime time.Time    `json:"updateTime"`
}

type StringValue struct {
	Value string `json:"stringValue"`
}

type MemberFields struct {
	Status      StringValue `json:"status"`
	FCMToken    StringValue `json:"fcmToken"`
	DisplayName StringValue `json:"displayName"`
}

// MemberPath extracts the team and user ids from a document resource name such as
// projects/p/databases/(default)/documents/teams/t1/members/u1.
func (v MemberValue) MemberPath() (teamID, userID string, ok bool) {
	parts := strings.Split(strings.Trim(v.Name, "/"), "/")
	for i := len(parts) - 4; i >= 0; i-- {
		if parts[i] == "teams" && parts[i+2] == "members" {
			teamID, userID = parts[i+1], parts[i+3]
			return teamID, userID, teamID != "" && userID != ""
		}
	}
	return "", "", false
}
