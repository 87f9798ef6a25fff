package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Broadcaster interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
	Clients() int
}

// FeedHandler upgrades clients to the live stock and config feed.
type FeedHandler struct {
	hub Broadcaster
}

func NewFeedHandler(hub Broadcaster) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// HandleFeed godoc
// @Summary      Live updates over WebSocket
// @Description  Pushes config, venues and tiers events whenever an admin edits them or stock moves.
// @Tags         feed
// @Router       /feed [get]
func (h *FeedHandler) HandleFeed(ctx *gin.Context) {
	if err := h.hub.ServeWS(ctx.Writer, ctx.Request); err != nil {
		// The upgrader already wrote the HTTP error.
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	zap.L().Debug("feed client connected", zap.Int("clients", h.hub.Clients()))
}
