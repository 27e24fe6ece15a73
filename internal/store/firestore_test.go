package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamNotification/internal/models"
)

// newEmulatorStore connects to the Firestore emulator. Tests are skipped when it is not running.
func newEmulatorStore(t *testing.T) (*Firestore, *firestore.Client) {
	t.Helper()

	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}

	client, err := firestore.NewClient(context.Background(), "team-notification-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewFirestore(client), client
}

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestFirestore_Matches(t *testing.T) {
	s, client := newEmulatorStore(t)
	ctx := context.Background()

	matchID := uniqueID("match")
	_, err := client.Collection(matchCollection).Doc(matchID).Set(ctx, map[string]interface{}{
		"date":       time.Now(),
		"startTime":  "18:00",
		"endTime":    "20:00",
		"gameStatus": "notStarted",
	})
	require.NoError(t, err)

	matches, err := s.ListMatches(ctx)
	require.NoError(t, err)

	var found *models.Match
	for i := range matches {
		if matches[i].ID == matchID {
			found = &matches[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "18:00", found.StartTime)
	assert.Equal(t, models.GameNotStarted, found.GameStatus)

	require.NoError(t, s.UpdateMatchStatuses(ctx, map[string]models.GameStatus{matchID: models.GameInProgress}))

	doc, err := client.Collection(matchCollection).Doc(matchID).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "inProgress", doc.Data()["gameStatus"])
}

func TestFirestore_UpdateMatchStatuses_Limit(t *testing.T) {
	s := &Firestore{}

	updates := make(map[string]models.GameStatus, MaxBatchWrites+1)
	for i := 0; i <= MaxBatchWrites; i++ {
		updates[fmt.Sprintf("m%d", i)] = models.GameFinished
	}

	err := s.UpdateMatchStatuses(context.Background(), updates)
	assert.True(t, errors.Is(err, ErrBatchLimit))
	assert.NoError(t, s.UpdateMatchStatuses(context.Background(), nil))
}

func TestFirestore_Members(t *testing.T) {
	s, client := newEmulatorStore(t)
	ctx := context.Background()
	teamID := uniqueID("team")

	_, err := client.Collection(teamCollection).Doc(teamID).Set(ctx, map[string]interface{}{"name": "Thursday FC"})
	require.NoError(t, err)
	members := client.Collection(teamCollection).Doc(teamID).Collection(memberCollection)
	_, err = members.Doc("u1").Set(ctx, map[string]interface{}{"status": "active", "fcmToken": "tok-1"})
	require.NoError(t, err)
	_, err = members.Doc("u2").Set(ctx, map[string]interface{}{"status": "pending"})
	require.NoError(t, err)

	team, err := s.GetTeam(ctx, teamID)
	require.NoError(t, err)
	assert.Equal(t, "Thursday FC", team.Name)

	active, err := s.ListMembersByStatus(ctx, teamID, models.MemberActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "u1", active[0].UserID)
	assert.Equal(t, "tok-1", active[0].FCMToken)

	require.NoError(t, s.UpdateMemberStatus(ctx, teamID, "u2", models.MemberActive))
	member, err := s.GetMember(ctx, teamID, "u2")
	require.NoError(t, err)
	assert.Equal(t, models.MemberActive, member.Status)

	err = s.UpdateMemberStatus(ctx, teamID, "missing", models.MemberActive)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.GetMember(ctx, teamID, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFirestore_UnpaidRegistrations(t *testing.T) {
	s, client := newEmulatorStore(t)
	ctx := context.Background()
	teamID := uniqueID("team")

	regs := client.Collection(teamCollection).Doc(teamID).Collection(registrationCollection)
	for id, data := range map[string]map[string]interface{}{
		"r1": {"eventId": "2026-10", "userId": "u1", "status": "paid"},
		"r2": {"eventId": "2026-10", "userId": "u2", "status": "unpaid"},
		"r3": {"eventId": "2026-10", "userId": "u3", "status": "pending"},
		"r4": {"eventId": "2026-09", "userId": "u4", "status": "unpaid"},
	} {
		_, err := regs.Doc(id).Set(ctx, data)
		require.NoError(t, err)
	}

	unpaid, err := s.ListUnpaidRegistrations(ctx, teamID, "2026-10")
	require.NoError(t, err)

	var users []string
	for _, r := range unpaid {
		users = append(users, r.UserID)
	}
	assert.ElementsMatch(t, []string{"u2", "u3"}, users)
}

func TestFirestore_ReservationNotices(t *testing.T) {
	s, client := newEmulatorStore(t)
	ctx := context.Background()
	teamID := uniqueID("team")

	start := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	has, err := s.HasReservationNotice(ctx, teamID, start, end)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = client.Collection(teamCollection).Doc(teamID).Collection(reservationNoticeCollection).
		Doc("n1").Set(ctx, map[string]interface{}{"targetDate": start.Add(19 * time.Hour)})
	require.NoError(t, err)

	has, err = s.HasReservationNotice(ctx, teamID, start, end)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasReservationNotice(ctx, teamID, end, end.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFirestore_Polls(t *testing.T) {
	s, _ := newEmulatorStore(t)
	ctx := context.Background()
	teamID := uniqueID("team")

	poll := models.Poll{
		ID:          "membership-2026-11",
		Category:    models.PollCategoryMember,
		TargetMonth: "2026-11",
		Options:     []models.PollOption{{ID: "register", Text: "등록"}},
	}

	require.NoError(t, s.CreatePoll(ctx, teamID, poll))

	has, err := s.HasPoll(ctx, teamID, models.PollCategoryMember, "2026-11")
	require.NoError(t, err)
	assert.True(t, has)

	err = s.CreatePoll(ctx, teamID, poll)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}
