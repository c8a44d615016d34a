package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/casualjim/myna"
	"github.com/casualjim/myna/generation"
	"github.com/casualjim/myna/pkg/slogx"
	"github.com/gin-gonic/gin"
)

// opsServer is the operational HTTP surface: a liveness probe for the
// platform and the settings knobs for operators. The conversation itself
// never travels over HTTP.
type opsServer struct {
	bot     string
	session *myna.Session
	engine  *gin.Engine
	log     *slog.Logger
}

func newOpsServer(bot string, session *myna.Session) *opsServer {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &opsServer{
		bot:     bot,
		session: session,
		engine:  engine,
		log:     slog.With(slogx.LoggerName("ops")),
	}

	engine.GET("/healthz", s.health)
	v1 := engine.Group("/v1")
	v1.GET("/settings", s.settings)
	v1.GET("/settings/schema", s.settingsSchema)
	return s
}

func (s *opsServer) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			s.log.Error("ops server shutdown", slogx.Error(err))
		}
	}()

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *opsServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "bot": s.bot})
}

// settings reports the live snapshot, including patches applied since start.
func (s *opsServer) settings(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Params())
}

func (s *opsServer) settingsSchema(c *gin.Context) {
	c.JSON(http.StatusOK, generation.Schema())
}
