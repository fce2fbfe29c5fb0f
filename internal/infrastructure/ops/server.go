package ops

import (
	"context"
	"net/http"

	"wardenbot/internal/core/domain"
	"wardenbot/internal/core/ports"
	"wardenbot/internal/infrastructure/middleware"
	"wardenbot/internal/infrastructure/monitoring"
	apperrors "wardenbot/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes the read-only operational API: health, metrics, and
// inspection endpoints for admin rosters and live games.
type Server struct {
	permissions ports.PermissionService
	games       ports.GameService
	health      *monitoring.HealthChecker
	logger      *zap.SugaredLogger

	metricsEnabled bool
}

func NewServer(
	permissions ports.PermissionService,
	games ports.GameService,
	health *monitoring.HealthChecker,
	logger *zap.SugaredLogger,
	metricsEnabled bool,
) *Server {
	return &Server{
		permissions:    permissions,
		games:          games,
		health:         health,
		logger:         logger,
		metricsEnabled: metricsEnabled,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(s.logger))
	router.Use(middleware.ErrorHandlerMiddleware(s.logger))

	router.GET("/health", s.handleHealth)
	if s.metricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/groups/:id/admins", s.handleListAdmins)
		v1.GET("/games", s.handleListGames)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	status := s.health.CheckAll(c.Request.Context())
	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

func (s *Server) handleListAdmins(c *gin.Context) {
	group := domain.GroupID(c.Param("id"))
	if group == "" {
		c.Error(apperrors.NewInvalidInputError("group id is required"))
		return
	}

	tiers, title, err := s.permissions.ListByTier(c.Request.Context(), group)
	if err != nil {
		c.Error(apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to list admins", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group":       group,
		"group_title": title,
		"tiers":       tiers,
	})
}

func (s *Server) handleListGames(c *gin.Context) {
	sessions := s.games.Sessions(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count": len(sessions),
		"games": sessions,
	})
}

// Run serves the ops API until ctx is cancelled.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:    address,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	}
}
