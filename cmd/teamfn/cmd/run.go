package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/teamNotification/internal/app"
)

var runCmd = &cobra.Command{
	Use:       "run <job>",
	Short:     "Run one scheduled job now and print its result",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: jobNames(),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := mustLoadApp(ctx)
		defer a.Close()

		result, err := a.Jobs()[args[0]](ctx)
		if err != nil {
			log.Fatalf("%s failed: %s", args[0], err)
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("encoding result: %s", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	},
}

func jobNames() []string {
	var names []string
	for _, schedule := range app.Schedules() {
		names = append(names, schedule.Job)
	}
	sort.Strings(names)
	return names
}

func init() {
	runCmd.Long = "Available jobs: " + strings.Join(jobNames(), ", ")
}
