package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/teamNotification/courtAlarm"
	"github.com/teamNotification/internal/callable"
	"github.com/teamNotification/internal/config"
	"github.com/teamNotification/internal/fanout"
	"github.com/teamNotification/internal/push"
	"github.com/teamNotification/internal/store"
	"github.com/teamNotification/internal/telegram"
	"github.com/teamNotification/joinRequest"
	"github.com/teamNotification/matchStatus"
	"github.com/teamNotification/pollDraft"
	"github.com/teamNotification/telegramWebhook"
	"github.com/teamNotification/unpaidNudge"
)

const (
	JobUpdateMatchStatuses  = "updateMatchStatuses"
	JobCourtAlarm           = "courtAlarm"
	JobDraftMembershipPolls = "draftMembershipPolls"
)

// Job is a scheduled run returning a loggable summary.
type Job func(ctx context.Context) (interface{}, error)

// App owns the Firebase clients shared by every function.
type App struct {
	Config *config.Config

	firestore *firestore.Client
	auth      *auth.Client
	store     *store.Firestore
	notifier  *fanout.Notifier
	telegram  *telegram.Client
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.Firebase.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}

	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("initializing firestore client: %w", err)
	}

	messagingClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		firestoreClient.Close()
		return nil, fmt.Errorf("initializing messaging client: %w", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		firestoreClient.Close()
		return nil, fmt.Errorf("initializing auth client: %w", err)
	}

	var expoSender push.Sender
	if cfg.Expo.Enabled {
		expoSender = push.NewExpoSender(push.NewExpoClient(cfg.Expo.Host))
	}

	a := &App{
		Config:    cfg,
		firestore: firestoreClient,
		auth:      authClient,
		store:     store.NewFirestore(firestoreClient),
		notifier:  fanout.NewNotifier(push.NewRouter(push.NewFCMSender(messagingClient), expoSender)),
	}

	if cfg.TelegramEnabled() {
		a.telegram = telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.BotToken)
	} else {
		log.Warn("telegram not configured, join requests will not be forwarded")
	}

	return a, nil
}

var (
	defaultOnce sync.Once
	defaultApp  *App
	defaultErr  error

	newApp = New
)

// Default builds the process-wide App from the environment on first use. The
// clients outlive the invocation that builds them, so they never see its cancellation.
func Default(ctx context.Context) (*App, error) {
	defaultOnce.Do(func() {
		defaultApp, defaultErr = newApp(context.WithoutCancel(ctx), config.Load())
	})
	return defaultApp, defaultErr
}

func (a *App) Close() error {
	return a.firestore.Close()
}

func (a *App) MatchUpdater() *matchStatus.Updater {
	return matchStatus.NewUpdater(a.store, a.Config.Location())
}

func (a *App) CourtAlarm() *courtAlarm.Scheduler {
	return courtAlarm.NewScheduler(a.store, a.notifier, a.Config.Location())
}

func (a *App) PollDrafter() *pollDraft.Drafter {
	return pollDraft.NewDrafter(a.store, a.Config.Location())
}

func (a *App) JoinRequests() *joinRequest.Notifier {
	if a.telegram == nil {
		return joinRequest.NewNotifier(a.store, nil, 0)
	}
	return joinRequest.NewNotifier(a.store, a.telegram, a.Config.Telegram.AdminChatID)
}

func (a *App) NudgeHandler() http.Handler {
	return callable.NewHandler(a.auth, unpaidNudge.NewInvoker(a.store, a.notifier).Call)
}

func (a *App) WebhookHandler() http.Handler {
	if a.telegram == nil {
		return telegramWebhook.NewHandler(a.store, nil, a.Config.Telegram.WebhookSecret)
	}
	return telegramWebhook.NewHandler(a.store, a.telegram, a.Config.Telegram.WebhookSecret)
}

func (a *App) Jobs() map[string]Job {
	return map[string]Job{
		JobUpdateMatchStatuses: func(ctx context.Context) (interface{}, error) {
			return a.MatchUpdater().Run(ctx)
		},
		JobCourtAlarm: func(ctx context.Context) (interface{}, error) {
			return a.CourtAlarm().Run(ctx)
		},
		JobDraftMembershipPolls: func(ctx context.Context) (interface{}, error) {
			return a.PollDrafter().Run(ctx)
		},
	}
}
