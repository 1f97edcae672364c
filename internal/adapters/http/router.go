package http

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Stage/internal/app"
	"github.com/dkeye/Stage/internal/config"
	"github.com/dkeye/Stage/internal/core"
	"github.com/dkeye/Stage/internal/domain"
	"github.com/dkeye/Stage/internal/ws"
)

const ctxUser = "current_user"

// CurrentUserMiddleware resolves the caller from the session cookie (or the
// X-User-ID header for tooling) and stashes the user on the context.
// Identity issuance itself lives outside this service.
func CurrentUserMiddleware(users core.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := sessions.Default(c).Get("uid").(string)
		if id == "" {
			id = c.GetHeader("X-User-ID")
		}
		if id != "" {
			if user, err := users.ByID(c.Request.Context(), domain.UserID(id)); err == nil {
				c.Set(ctxUser, user)
			}
		}
		c.Next()
	}
}

func SetupRouter(cfg *config.Config, engine *app.Engine, users core.UserStore, hub *ws.Hub) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("StageSessions", store))
	r.Use(CurrentUserMiddleware(users))

	h := &Handler{Engine: engine}

	api := r.Group("/api")
	api.POST("/session", h.OpenSession)

	api.GET("/booth", h.GetBooth)
	api.GET("/booth/history", h.GetHistory)
	api.POST("/booth/skip", h.SkipBooth)
	api.POST("/booth/replace", h.ReplaceBooth)
	api.POST("/booth/favorite", h.Favorite)
	api.POST("/booth/vote", h.Vote)

	api.GET("/waitlist", h.GetWaitlist)
	api.POST("/waitlist", h.JoinWaitlist)
	api.DELETE("/waitlist", h.ClearWaitlist)
	api.PUT("/waitlist/move", h.MoveWaitlist)
	api.DELETE("/waitlist/:id", h.LeaveWaitlist)
	api.PUT("/waitlist/lock", h.LockWaitlist)

	api.GET("/ws", gin.WrapF(hub.Serve))

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}

func currentUser(c *gin.Context) (*domain.User, bool) {
	val, ok := c.Get(ctxUser)
	if !ok {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}

// abortErr maps the domain error taxonomy onto HTTP statuses.
func abortErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrPlaylistNotFound),
		errors.Is(err, domain.ErrHistoryNotFound),
		errors.Is(err, domain.ErrNotInWaitlist),
		errors.Is(err, domain.ErrWaitlistEmpty):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSelfFavorite),
		errors.Is(err, domain.ErrNotOwner),
		errors.Is(err, domain.ErrNotPrivileged),
		errors.Is(err, domain.ErrWaitlistLocked):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
