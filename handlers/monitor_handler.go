package handlers

import (
	"github.com/olusegunak/school_cbt/middleware"
	ws "github.com/olusegunak/school_cbt/websocket"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MonitorUpgradeRequired gates the websocket route to upgrade requests and
// stashes the authenticated teacher's id for the connection handler.
func MonitorUpgradeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		c.Locals("monitor_user_id", middleware.ClaimUserID(c))
		return c.Next()
	}
}

// ExamMonitor streams live exam events (session starts and submissions) to a
// connected teacher until the socket closes.
func ExamMonitor() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("monitor_user_id").(uuid.UUID)
		client := &ws.Client{UserID: userID, Conn: conn}

		ws.RegisterMonitor(client)
		defer ws.UnregisterMonitor(client)

		for {
			// monitors only listen; reading drives disconnect detection
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
