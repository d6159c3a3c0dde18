package middleware

import (
	"tokodash/internal/errx"
	"tokodash/internal/session"
	logx "tokodash/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// AdminLocalsKey holds the signed-in moderator's name for later handlers.
const AdminLocalsKey = "admin"

// AdminRequired is a Fiber middleware that only lets signed-in moderators
// through. Everyone else is redirected to loginURL.
func AdminRequired(store *fibersession.Store, loginURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return errx.Internal(err)
		}

		name, ok := session.Admin(session.NewFiberCache(sess))
		if !ok {
			logx.Debug().Str("path", c.Path()).Msg("admin session required")
			return c.Redirect(loginURL, fiber.StatusSeeOther)
		}

		// Store the moderator in Fiber context for subsequent handlers
		c.Locals(AdminLocalsKey, name)

		// Continue to the next handler
		return c.Next()
	}
}
