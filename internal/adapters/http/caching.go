package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets default Cache-Control headers on GET responses
// when the handler did not choose its own.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != 200 {
			return nil
		}
		if len(c.Response().Header.Peek("Cache-Control")) > 0 {
			return nil
		}

		path := c.Path()
		switch {
		case strings.HasPrefix(path, "/v1/profiles/"):
			// Profiles change rarely.
			c.Set("Cache-Control", "public, max-age=300")
		case path == "/v1/runs/box" || path == "/runs-in-box":
			// Box results go stale as soon as the user pans.
			c.Set("Cache-Control", "public, max-age=30")
		case strings.HasPrefix(path, "/v1/"):
			c.Set("Cache-Control", "public, max-age=60")
		default:
			c.Set("Cache-Control", "no-store")
		}
		return nil
	}
}
