package manager

import (
	"errors"
	"net/http"

	"DegensAgainstDecency/internal/game/session"
	"DegensAgainstDecency/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	m *GameManager
}

func NewHandler(m *GameManager) *Handler {
	return &Handler{m: m}
}

type joinBody struct {
	Name string `json:"name"`
}

type actionBody struct {
	Type    string `json:"type" binding:"required"`
	Payload any    `json:"payload"`
}

// status maps engine and registry errors onto HTTP codes. Rule violations
// are conflicts.
func status(err error) int {
	switch {
	case errors.Is(err, ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotCreator), errors.Is(err, session.ErrUnknownPlayer):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrBadPayload), errors.Is(err, ErrUnknownKind),
		errors.Is(err, session.ErrInvalidCapacity), errors.Is(err, session.ErrInvalidPlayer):
		return http.StatusBadRequest
	case errors.Is(err, ErrTableClosed), errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable
	}
	return http.StatusConflict
}

func fail(c *gin.Context, err error) {
	c.JSON(status(err), gin.H{"error": err.Error()})
}

// POST /sessions  body: {game, capacity, private, name}
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.CreatorID = c.GetString(middleware.PlayerIDKey)
	if req.Name == "" {
		req.Name = c.GetString(middleware.PlayerNameKey)
	}
	snap, err := h.m.Create(req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GET /sessions
func (h *Handler) Lobby(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.m.Lobby()})
}

// GET /sessions/:id
func (h *Handler) Get(c *gin.Context) {
	snap, err := h.m.Get(c.Param("id"), c.GetString(middleware.PlayerIDKey))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// POST /sessions/:id/join  body: {name}
func (h *Handler) Join(c *gin.Context) {
	var body joinBody
	// 空 body 也可以
	_ = c.ShouldBindJSON(&body)
	if body.Name == "" {
		body.Name = c.GetString(middleware.PlayerNameKey)
	}
	snap, err := h.m.Join(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerIDKey), body.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// POST /sessions/:id/leave
func (h *Handler) Leave(c *gin.Context) {
	if _, err := h.m.Act(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerIDKey), ActionLeave, nil); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /sessions/:id/start
func (h *Handler) Start(c *gin.Context) {
	snap, err := h.m.Start(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerIDKey))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// POST /sessions/:id/actions  body: {type, payload}
func (h *Handler) Action(c *gin.Context) {
	var body actionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.Type == actionTimeout {
		fail(c, ErrUnknownAction)
		return
	}
	snap, err := h.m.Act(c.Request.Context(), c.Param("id"), c.GetString(middleware.PlayerIDKey), body.Type, body.Payload)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) Register(g gin.IRoutes) {
	g.POST("/sessions", h.Create)
	g.GET("/sessions", h.Lobby)
	g.GET("/sessions/:id", h.Get)
	g.POST("/sessions/:id/join", h.Join)
	g.POST("/sessions/:id/leave", h.Leave)
	g.POST("/sessions/:id/start", h.Start)
	g.POST("/sessions/:id/actions", h.Action)
}
