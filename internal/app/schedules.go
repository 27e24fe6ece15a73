package app

import (
	"sort"

	"github.com/teamNotification/courtAlarm"
	"github.com/teamNotification/matchStatus"
	"github.com/teamNotification/pollDraft"
)

type Schedule struct {
	Job  string `json:"job"`
	Cron string `json:"cron"`
}

// Schedules lists the cron expression of every scheduled job, sorted by job name.
// All of them are evaluated in the configured timezone.
func Schedules() []Schedule {
	schedules := []Schedule{
		{Job: JobUpdateMatchStatuses, Cron: matchStatus.Schedule},
		{Job: JobCourtAlarm, Cron: courtAlarm.Schedule},
		{Job: JobDraftMembershipPolls, Cron: pollDraft.Schedule},
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].Job < schedules[j].Job })
	return schedules
}
