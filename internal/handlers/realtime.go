package handlers

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/gestor-tarefas/internal/errors"
	"github.com/yukikurage/gestor-tarefas/internal/middleware"
	"github.com/yukikurage/gestor-tarefas/internal/realtime"
)

type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect upgrades an authenticated request to a websocket subscription
func (h *RealtimeHandler) Connect(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	h.hub.ServeWs(c, principal)
}
