package teamNotification

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/app"
	"github.com/teamNotification/internal/callable"
	"github.com/teamNotification/internal/config"
	"github.com/teamNotification/internal/logging"
	"github.com/teamNotification/internal/models"
)

func init() {
	setupLogging()
}

// setupLogging applies LOG_LEVEL from the environment or a .env file.
func setupLogging() {
	logging.Setup(config.Load().LogLevel)
}

// PubSubMessage is the payload Cloud Scheduler publishes to trigger a job.
type PubSubMessage struct {
	Data []byte `json:"data"`
}

func runJob(ctx context.Context, name string) error {
	a, err := app.Default(ctx)
	if err != nil {
		log.Errorf("initializing app: %s", err)
		return err
	}

	result, err := a.Jobs()[name](ctx)
	if err != nil {
		log.WithField("job", name).Errorf("job failed: %s", err)
		return err
	}

	log.WithFields(log.Fields{"job": name, "result": result}).Info("job finished")
	return nil
}

func UpdateMatchStatuses(ctx context.Context, _ PubSubMessage) error {
	return runJob(ctx, app.JobUpdateMatchStatuses)
}

func CourtAlarmScheduled(ctx context.Context, _ PubSubMessage) error {
	return runJob(ctx, app.JobCourtAlarm)
}

func DraftMembershipPolls(ctx context.Context, _ PubSubMessage) error {
	return runJob(ctx, app.JobDraftMembershipPolls)
}

// NotifyJoinRequest is triggered by writes to teams/{teamId}/members/{userId}.
func NotifyJoinRequest(ctx context.Context, event models.MemberEvent) error {
	a, err := app.Default(ctx)
	if err != nil {
		log.Errorf("initializing app: %s", err)
		return err
	}

	return a.JoinRequests().Handle(ctx, event)
}

func SendNudgeToUnpaid(w http.ResponseWriter, r *http.Request) {
	a, err := app.Default(r.Context())
	if err != nil {
		log.Errorf("initializing app: %s", err)
		callable.WriteError(w, callable.ErrInternal)
		return
	}

	a.NudgeHandler().ServeHTTP(w, r)
}

// TelegramWebhook answers 200 even when the app cannot start so Telegram stops retrying.
func TelegramWebhook(w http.ResponseWriter, r *http.Request) {
	a, err := app.Default(r.Context())
	if err != nil {
		log.Errorf("initializing app: %s", err)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}

	a.WebhookHandler().ServeHTTP(w, r)
}
