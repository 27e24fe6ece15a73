package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/teamNotification/internal/app"
	"github.com/teamNotification/internal/models"
)

// Deps are the function handlers exposed over HTTP when the module runs as a container.
type Deps struct {
	Nudge        http.Handler
	Webhook      http.Handler
	Jobs         map[string]app.Job
	MemberEvents func(ctx context.Context, event models.MemberEvent) error
}

type Server struct {
	echo *echo.Echo
	deps Deps
	addr string
}

func NewServer(deps Deps, addr string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(log.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Debug("request")
			return nil
		},
	}))

	s := &Server{echo: e, deps: deps, addr: addr}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	s.echo.POST("/sendNudgeToUnpaid", echo.WrapHandler(s.deps.Nudge))
	s.echo.Any("/telegramWebhook", echo.WrapHandler(s.deps.Webhook))

	s.echo.POST("/jobs/:job", s.runJob)
	s.echo.POST("/events/memberWritten", s.memberWritten)
}

func (s *Server) runJob(c echo.Context) error {
	name := c.Param("job")
	job, ok := s.deps.Jobs[name]
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown job " + name})
	}

	result, err := job(c.Request().Context())
	if err != nil {
		log.WithField("job", name).Errorf("job failed: %s", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

func (s *Server) memberWritten(c echo.Context) error {
	var event models.MemberEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid member event"})
	}

	if err := s.deps.MemberEvents(c.Request().Context(), event); err != nil {
		log.WithField("name", event.Value.Name).Errorf("member event failed: %s", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.NoContent(http.StatusNoContent)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	log.Infof("server starting on %s", s.addr)
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down")
	return s.echo.Shutdown(ctx)
}
