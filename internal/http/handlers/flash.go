package handlers

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const flashCookie = "flash"

const (
	levelSuccess = "success"
	levelInfo    = "info"
	levelError   = "error"
)

// Flash is a one-shot notice shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

func setFlash(c *fiber.Ctx, level, msg string) {
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(level + "|" + msg),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// redirectWith sets a flash and redirects; the usual ending of a form POST.
func redirectWith(c *fiber.Ctx, to, level, msg string) error {
	setFlash(c, level, msg)
	return c.Redirect(to)
}

func popFlash(c *fiber.Ctx) (Flash, bool) {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return Flash{}, false
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	v, err := url.QueryUnescape(raw)
	if err != nil {
		return Flash{}, false
	}
	level, msg, ok := strings.Cut(v, "|")
	if !ok {
		return Flash{}, false
	}
	return Flash{Level: level, Message: msg}, true
}
