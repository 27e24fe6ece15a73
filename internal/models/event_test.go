package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberValue_MemberPath(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		team   string
		user   string
		wantOK bool
	}{
		{
			name:   "full resource name",
			path:   "projects/club-dev/databases/(default)/documents/teams/t1/members/u1",
			team:   "t1",
			user:   "u1",
			wantOK: true,
		},
		{
			name:   "relative path",
			path:   "teams/t1/members/u1",
			team:   "t1",
			user:   "u1",
			wantOK: true,
		},
		{
			name: "other collection",
			path: "projects/p/databases/(default)/documents/teams/t1/polls/p1",
		},
		{
			name: "empty",
			path: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team, user, ok := MemberValue{Name: tt.path}.MemberPath()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.team, team)
			assert.Equal(t, tt.user, user)
		})
	}
}

func TestMemberEvent_Decode(t *testing.T) {
	payload := `{
		"oldValue": {},
		"value": {
			"name": "projects/p/databases/(default)/documents/teams/t1/members/u1",
			"fields": {"status": {"stringValue": "pending"}, "fcmToken": {"stringValue": "tok"}}
		},
		"updateMask": {"fieldPaths": ["status"]}
	}`

	var e MemberEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &e))

	assert.Equal(t, "", e.OldValue.Fields.Status.Value)
	assert.Equal(t, "pending", e.Value.Fields.Status.Value)
	assert.Equal(t, "tok", e.Value.Fields.FCMToken.Value)
	assert.Equal(t, []string{"status"}, e.UpdateMask.FieldPaths)
}
