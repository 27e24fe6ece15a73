package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teamNotification/internal/app"
	"github.com/teamNotification/internal/config"
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Print each job's cron expression and timezone",
	Run: func(cmd *cobra.Command, args []string) {
		tz := config.Load().Schedule.TimeZone

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "JOB\tCRON\tTIMEZONE")
		for _, schedule := range app.Schedules() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", schedule.Job, schedule.Cron, tz)
		}
		w.Flush()
	},
}
