package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/teamNotification/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve every function over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := mustLoadApp(ctx)
		defer a.Close()

		srv := server.NewServer(server.Deps{
			Nudge:        a.NudgeHandler(),
			Webhook:      a.WebhookHandler(),
			Jobs:         a.Jobs(),
			MemberEvents: a.JoinRequests().Handle,
		}, ":"+a.Config.Server.Port)

		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("server failed to start: %s", err)
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server forced to shutdown: %s", err)
		}
	},
}
