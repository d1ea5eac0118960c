package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"monstager/internal/auth"
	"monstager/internal/ws"
)

// registerWebSocket mounts the task event stream. The access token travels in
// the query string because browser WebSocket clients cannot set headers.
func registerWebSocket(app *fiber.App, hub *ws.Hub, issuer *auth.TokenIssuer) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		accountID, err := issuer.VerifyAccessToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"success": false,
				"status":  fiber.StatusUnauthorized,
			})
		}
		c.Locals("accountID", accountID)
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		client := &ws.Client{
			AccountID: conn.Locals("accountID").(string),
			Conn:      conn,
		}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
		}()
		// The stream is server-to-client only; reading just detects close.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
