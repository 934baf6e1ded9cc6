package matchmaker

import (
	"errors"
	"net/http"

	"DegensAgainstDecency/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /match/join  body: {game, tableSize}
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.PlayerID = c.GetString(middleware.PlayerIDKey)

	room, queued, err := h.svc.Join(c.Request.Context(), req)
	if err != nil {
		code := http.StatusConflict
		if errors.Is(err, ErrInvalidRequest) {
			code = http.StatusBadRequest
		}
		c.JSON(code, gin.H{"error": err.Error()})
		return
	}
	if queued {
		c.JSON(http.StatusOK, JoinResponse{Queued: true, Game: req.Game, TableSize: req.TableSize})
		return
	}
	c.JSON(http.StatusOK, JoinResponse{
		Queued: false, Game: room.Game, TableSize: room.TableSize, RoomID: room.ID, Players: room.Players,
	})
}

// POST /match/cancel
func (h *Handler) Cancel(c *gin.Context) {
	if err := h.svc.Cancel(c.Request.Context(), c.GetString(middleware.PlayerIDKey)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Register(g gin.IRoutes) {
	g.POST("/match/join", h.Join)
	g.POST("/match/cancel", h.Cancel)
}
