package matchStatus

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/models"
)

// Schedule runs the updater every five minutes.
const Schedule = "*/5 * * * *"

type MatchStore interface {
	ListMatches(ctx context.Context) ([]models.Match, error)
	UpdateMatchStatuses(ctx context.Context, updates map[string]models.GameStatus) error
}

type Result struct {
	Scanned int `json:"scanned"`
	Skipped int `json:"skipped"`
	Updated int `json:"updated"`
}

type Updater struct {
	store MatchStore
	loc   *time.Location
	now   func() time.Time
}

func NewUpdater(store MatchStore, loc *time.Location) *Updater {
	return &Updater{store: store, loc: loc, now: time.Now}
}

// Status derives a match's status from the time of day of now and its "HH:MM" range [start, end).
func Status(now time.Time, startTime, endTime string) (models.GameStatus, error) {
	start, err := clockMinutes(startTime)
	if err != nil {
		return "", fmt.Errorf("start time: %w", err)
	}
	end, err := clockMinutes(endTime)
	if err != nil {
		return "", fmt.Errorf("end time: %w", err)
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	switch {
	case nowMinutes >= start && nowMinutes < end:
		return models.GameInProgress, nil
	case nowMinutes >= end:
		return models.GameFinished, nil
	default:
		return models.GameNotStarted, nil
	}
}

func clockMinutes(clock string) (int, error) {
	// Trailing fields such as seconds are ignored.
	fields := strings.Split(strings.TrimSpace(clock), ":")
	if len(fields) < 2 {
		return 0, fmt.Errorf("%q is not HH:MM", clock)
	}
	hh, mm := fields[0], fields[1]

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("%q has an invalid hour", clock)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", clock)
	}

	return hour*60 + minute, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Run recomputes today's match statuses and writes the changed ones in one batch.
func (u *Updater) Run(ctx context.Context) (Result, error) {
	var result Result
	now := u.now().In(u.loc)

	matches, err := u.store.ListMatches(ctx)
	if err != nil {
		return result, fmt.Errorf("listing matches: %w", err)
	}

	updates := map[string]models.GameStatus{}
	for _, match := range matches {
		result.Scanned++

		if match.Date.IsZero() || match.StartTime == "" || match.EndTime == "" {
			result.Skipped++
			continue
		}

		if !sameDay(match.Date.In(u.loc), now) {
			continue
		}

		gameStatus, err := Status(now, match.StartTime, match.EndTime)
		if err != nil {
			log.WithField("matchId", match.ID).Warnf("skipping match: %s", err)
			result.Skipped++
			continue
		}

		if gameStatus != match.GameStatus {
			log.WithField("matchId", match.ID).Infof("updating %s from %q to %q", match.ID, match.GameStatus, gameStatus)
			updates[match.ID] = gameStatus
		}
	}

	if len(updates) > 0 {
		if err := u.store.UpdateMatchStatuses(ctx, updates); err != nil {
			return result, err
		}
	}
	result.Updated = len(updates)

	log.WithFields(log.Fields{
		"scanned": result.Scanned,
		"skipped": result.Skipped,
		"updated": result.Updated,
	}).Info("match statuses updated")

	return result, nil
}
