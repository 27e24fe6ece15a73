package cmd

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/teamNotification/internal/app"
	"github.com/teamNotification/internal/config"
	"github.com/teamNotification/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "teamfn",
	Short: "Run the team notification functions outside Cloud Functions",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(config.Load().LogLevel)
	},
}

// Execute runs the root command. It is called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, runCmd, schedulesCmd)
}

func mustLoadApp(ctx context.Context) *app.App {
	a, err := app.New(ctx, config.Load())
	if err != nil {
		log.Fatalf("initializing app: %s", err)
	}
	return a
}
