package handlers

import (
	"errors"

	"tokodash/internal/errx"
	"tokodash/internal/session"
	logx "tokodash/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// CSRFContextKey is the Locals key the CSRF middleware stores its token under.
const CSRFContextKey = "csrf"

// openSession loads the visitor's session as a Cache.
func openSession(store *fibersession.Store, c *fiber.Ctx) (*session.FiberCache, error) {
	sess, err := store.Get(c)
	if err != nil {
		return nil, errx.Internal(err)
	}
	return session.NewFiberCache(sess), nil
}

func commit(cache *session.FiberCache) error {
	if err := cache.Commit(); err != nil {
		return errx.Internal(err)
	}
	return nil
}

// page merges the values shared by every template into data.
func page(c *fiber.Ctx, cache session.Cache, title string, data fiber.Map) fiber.Map {
	out := fiber.Map{
		"Title":   title,
		"CSRF":    csrfToken(c),
		"Flashes": []session.Flash{},
		"Admin":   false,
		"Refresh": 0,
	}
	if cache != nil {
		out["Flashes"] = session.TakeFlashes(cache)
	}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}

// redirect answers a form post or page visit with 303 See Other.
func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}

// ErrorHandler renders errors as an HTML page carrying their status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := errx.StatusOf(err)
	message := errx.MessageOf(err)

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
		if status == fiber.StatusNotFound {
			message = errx.NotFoundMessage
		}
	}

	if status >= fiber.StatusInternalServerError {
		logx.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
	} else {
		logx.Debug().Err(err).Str("path", c.Path()).Int("status", status).Msg("request rejected")
	}

	c.Status(status)
	renderErr := c.Render("error", fiber.Map{
		"Title":   "Error",
		"Status":  status,
		"Message": message,
		"Admin":   false,
		"Refresh": 0,
		"Flashes": []session.Flash{},
	})
	if renderErr != nil {
		return c.Status(status).SendString(message)
	}
	return nil
}
