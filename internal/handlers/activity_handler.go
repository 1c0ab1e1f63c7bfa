package handlers

import (
	"errors"
	"strings"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/ttthanh1411/gym/internal/models"
	activityws "github.com/ttthanh1411/gym/internal/websocket"
	"github.com/ttthanh1411/gym/pkg/utils"
)

type ActivityHandler struct {
	hub       *activityws.Hub
	jwtSecret string
}

func NewActivityHandler(hub *activityws.Hub, jwtSecret string) *ActivityHandler {
	return &ActivityHandler{hub: hub, jwtSecret: jwtSecret}
}

// WebSocketAuth accepts the token as a query parameter because browsers
// cannot set headers on websocket upgrades.
func (h *ActivityHandler) WebSocketAuth(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return jsonError(c, fiber.StatusUpgradeRequired, "UPGRADE_REQUIRED", "WebSocket upgrade required", nil)
	}

	claims, err := h.parseWSClaims(c)
	if err != nil {
		return jsonError(c, fiber.StatusUnauthorized, codeUnauthorized, "Invalid or expired token", nil)
	}
	if claims.Role != models.RoleName(models.RoleAdmin) {
		return jsonError(c, fiber.StatusForbidden, codeForbidden, "Forbidden", nil)
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("role", claims.Role)
	return c.Next()
}

func (h *ActivityHandler) HandleWebSocket(conn *websocket.Conn) {
	client := activityws.NewClient(h.hub, conn)

	h.hub.Register(client)
	go client.WritePump()
	client.ReadPump()
}

func (h *ActivityHandler) parseWSClaims(c *fiber.Ctx) (*utils.Claims, error) {
	tokenString := strings.TrimSpace(c.Query("token"))
	if tokenString == "" {
		authHeader := strings.TrimSpace(c.Get("Authorization"))
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
	}

	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	return utils.ValidateToken(tokenString, h.jwtSecret)
}
