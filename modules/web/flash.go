package web

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookie = "shopsphere_flash"

// Flash levels drive the toast color. The toast auto-dismisses after a
// fixed delay; there is no further state machine behind it.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a one-shot notification carried across a redirect.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// setFlash stores a notification for the next rendered page.
func setFlash(c *fiber.Ctx, level, message string) {
	data, err := json.Marshal(Flash{Level: level, Message: message})
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HTTPOnly: true,
	})
}

// popFlash reads and clears the pending notification, if any.
func popFlash(c *fiber.Ctx) *Flash {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		Expires:  time.Unix(0, 0),
	})
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return &f
}
