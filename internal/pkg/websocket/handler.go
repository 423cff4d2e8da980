package websocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/middleware"
)

// MinistryLookup resolves the ministries a coordinator belongs to
type MinistryLookup interface {
	MinistryIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// Handler upgrades manager connections onto the participation event feed
type Handler struct {
	hub        *Hub
	ministries MinistryLookup
	upgrader   websocket.Upgrader
	logger     zerolog.Logger
}

// NewHandler creates a new WebSocket handler. An empty origin list or "*" accepts any origin.
func NewHandler(hub *Hub, ministries MinistryLookup, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		ministries: ministries,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(origin, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return len(set) == 0 || origin == "" || set[origin]
	}
}

// TokenFromQuery copies a ?token= query parameter into the Authorization header.
// Browsers cannot set headers on a WebSocket handshake.
func TokenFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

// HandleConnection godoc
// @Summary Subscribe to participation events
// @Description Upgrades to a WebSocket that streams confirmations and change requests. Coordinators only receive events of their ministries.
// @Tags schedules
// @Security BearerAuth
// @Param token query string false "Access token, for clients that cannot send headers"
// @Success 101 {object} dto.ParticipationEvent "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /schedules/events [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var all bool
	var ministryIDs []string
	switch identity.Role {
	case models.RoleDirector:
		all = true
	case models.RoleCoordinator:
		ids, err := h.ministries.MinistryIDsForUser(c.Request.Context(), identity.UserID)
		if err != nil {
			middleware.HandleAPIError(c, err)
			return
		}
		ministryIDs = ids
	default:
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied")))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("userID", identity.UserID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: identity.UserID,
		scope:  newScope(all, ministryIDs),
		logger: h.logger,
	}
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
