package courtAlarm

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/fanout"
	"github.com/teamNotification/internal/models"
	"github.com/teamNotification/internal/push"
)

// Schedule runs Monday and Thursday at 23:30 in the configured timezone.
const Schedule = "30 23 * * 1,4"

const (
	alarmTitle = "내일 구장 예약 안내"
	alarmBody  = "내일 예약이 있습니다. 예약 시도 시간을 확인해 주세요."
)

type Store interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	HasReservationNotice(ctx context.Context, teamID string, start, end time.Time) (bool, error)
	ListMembersByStatus(ctx context.Context, teamID string, status models.MemberStatus) ([]models.Member, error)
}

type Notifier interface {
	Notify(ctx context.Context, tokens []string, notification fanout.Notification) (push.Result, error)
}

type Result struct {
	Teams    int `json:"teams"`
	Notified int `json:"notified"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

type Scheduler struct {
	store    Store
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewScheduler(store Store, notifier Notifier, loc *time.Location) *Scheduler {
	return &Scheduler{store: store, notifier: notifier, loc: loc, now: time.Now}
}

// TomorrowRange returns the half-open day [start, end) following now in loc.
func TomorrowRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Run alerts the active members of every team that has a reservation notice for tomorrow.
// A failing team is logged and does not stop the others.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	var result Result
	start, end := TomorrowRange(s.now(), s.loc)

	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return result, fmt.Errorf("listing teams: %w", err)
	}
	result.Teams = len(teams)

	for _, team := range teams {
		logger := log.WithField("teamId", team.ID)

		sent, err := s.alertTeam(ctx, team.ID, start, end)
		switch {
		case err != nil:
			logger.Errorf("court alarm failed: %s", err)
			result.Failed++
		case sent:
			result.Notified++
		default:
			result.Skipped++
		}
	}

	log.WithFields(log.Fields{
		"teams":    result.Teams,
		"notified": result.Notified,
		"skipped":  result.Skipped,
		"failed":   result.Failed,
		"date":     start.Format("2006-01-02"),
	}).Info("court alarm run finished")

	return result, nil
}

func (s *Scheduler) alertTeam(ctx context.Context, teamID string, start, end time.Time) (bool, error) {
	hasNotice, err := s.store.HasReservationNotice(ctx, teamID, start, end)
	if err != nil {
		return false, err
	}
	if !hasNotice {
		return false, nil
	}

	members, err := s.store.ListMembersByStatus(ctx, teamID, models.MemberActive)
	if err != nil {
		return false, err
	}

	tokens := fanout.TokensOf(members)
	if len(tokens) == 0 {
		log.WithField("teamId", teamID).Info("reservation tomorrow but no member tokens")
		return false, nil
	}

	result, err := s.notifier.Notify(ctx, tokens, fanout.Notification{
		Title: alarmTitle,
		Body:  alarmBody,
		Data:  map[string]string{"type": "court_alarm", "teamId": teamID},
	})
	if err != nil {
		return false, fmt.Errorf("sending court alarm: %w", err)
	}

	log.WithFields(log.Fields{
		"teamId":  teamID,
		"success": result.SuccessCount,
		"failure": result.FailureCount,
	}).Info("court alarm sent")

	return true, nil
}
