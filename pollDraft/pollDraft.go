package pollDraft

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/models"
	"github.com/teamNotification/internal/store"
)

// Schedule runs on the 20th of every month at 09:00 in the configured timezone.
const Schedule = "0 9 20 * *"

const closingDay = 24

type Store interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	HasPoll(ctx context.Context, teamID, category, targetMonth string) (bool, error)
	CreatePoll(ctx context.Context, teamID string, poll models.Poll) error
}

type Result struct {
	Month   string `json:"month"`
	Teams   int    `json:"teams"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

type Drafter struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

func NewDrafter(store Store, loc *time.Location) *Drafter {
	return &Drafter{store: store, loc: loc, now: time.Now}
}

// NextMonth returns the first instant of the month after now, in loc.
func NextMonth(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, loc)
}

func MonthKey(month time.Time) string {
	return month.Format("2006-01")
}

func PollID(monthKey string) string {
	return models.PollCategoryMember + "-" + monthKey
}

// NewMembershipPoll drafts an inactive poll for month that closes on the 24th.
func NewMembershipPoll(month time.Time) models.Poll {
	key := MonthKey(month)
	return models.Poll{
		ID:          PollID(key),
		Title:       fmt.Sprintf("%d년 %d월 회원 등록", month.Year(), int(month.Month())),
		Category:    models.PollCategoryMember,
		TargetMonth: key,
		IsActive:    false,
		ExpiresAt:   time.Date(month.Year(), month.Month(), closingDay, 23, 59, 59, 0, month.Location()),
		Options: []models.PollOption{
			{ID: "register", Text: "등록"},
			{ID: "pause", Text: "휴회"},
			{ID: "leave", Text: "탈퇴"},
		},
	}
}

// Run drafts next month's membership poll for every team that has none yet.
func (d *Drafter) Run(ctx context.Context) (Result, error) {
	month := NextMonth(d.now(), d.loc)
	result := Result{Month: MonthKey(month)}

	teams, err := d.store.ListTeams(ctx)
	if err != nil {
		return result, fmt.Errorf("listing teams: %w", err)
	}
	result.Teams = len(teams)

	for _, team := range teams {
		logger := log.WithFields(log.Fields{"teamId": team.ID, "targetMonth": result.Month})

		created, err := d.draft(ctx, team.ID, month)
		switch {
		case err != nil:
			logger.Errorf("drafting membership poll failed: %s", err)
			result.Failed++
		case created:
			logger.Info("membership poll drafted")
			result.Created++
		default:
			logger.Debug("membership poll already exists")
			result.Skipped++
		}
	}

	log.WithFields(log.Fields{
		"targetMonth": result.Month,
		"teams":       result.Teams,
		"created":     result.Created,
		"skipped":     result.Skipped,
		"failed":      result.Failed,
	}).Info("poll drafter run finished")

	return result, nil
}

func (d *Drafter) draft(ctx context.Context, teamID string, month time.Time) (bool, error) {
	key := MonthKey(month)

	exists, err := d.store.HasPoll(ctx, teamID, models.PollCategoryMember, key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	err = d.store.CreatePoll(ctx, teamID, NewMembershipPoll(month))
	if errors.Is(err, store.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
