package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pharmabot/internal/bot"
	applog "pharmabot/internal/log"
	"pharmabot/internal/telegram"
)

type WebhookHandler struct {
	Router *bot.Router
}

// Receive ingests one Telegram update delivered over the webhook.
// Telegram retries non-2xx responses, so handler-level failures are
// logged and acknowledged rather than bounced back.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var u telegram.Update
	if err := c.BodyParser(&u); err != nil {
		applog.RequestError(c, "webhook.parse", err, nil)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed update"})
	}
	h.Router.HandleUpdate(c.UserContext(), u)
	return c.SendStatus(fiber.StatusOK)
}
