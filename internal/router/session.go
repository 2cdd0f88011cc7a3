package router

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"

	"github.com/yukikurage/gestor-tarefas/internal/config"
)

// NewSessionStore builds the configured session backend. Cookies are marked secure in production.
func NewSessionStore(cfg config.SessionConfig, production bool) (sessions.Store, error) {
	var store sessions.Store

	switch cfg.Store {
	case "redis":
		rs, err := redisStore.NewStore(
			cfg.RedisPool,
			"tcp",
			net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			"", // username
			"", // password
			[]byte(cfg.Secret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	case "cookie", "":
		store = cookie.NewStore([]byte(cfg.Secret))
	default:
		return nil, fmt.Errorf("unsupported session store %q", cfg.Store)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
