package handlers

import (
	"context"
	"errors"

	"tokodash/internal/errx"
	"tokodash/internal/middleware"
	"tokodash/internal/models"
	"tokodash/internal/services"
	"tokodash/internal/session"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// AdminRefreshSeconds is how often the dashboard reloads while the queue loads.
const AdminRefreshSeconds = 1

// AdminHandler serves the moderation queue.
type AdminHandler struct {
	moderation *services.ModerationService
	store      *fibersession.Store
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(moderation *services.ModerationService, store *fibersession.Store) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		store:      store,
	}
}

// RegisterRoutes registers the moderation routes behind guard.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Get("/", guard, h.HandleDashboard)
	adminRoutes.Post("/refresh", guard, h.HandleRefresh)
	adminRoutes.Post("/moderation/:kind/:id/:action", guard, h.HandleResolve)
}

// queueContext detaches the background load from the request lifetime.
func queueContext(c *fiber.Ctx) context.Context {
	return context.WithoutCancel(c.UserContext())
}

// HandleDashboard renders the four moderation sections, or the loading
// placeholder while the queue is being populated.
func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}

	h.moderation.EnsureActivated(queueContext(c))

	loading := h.moderation.Loading()
	refresh := 0
	if loading {
		refresh = AdminRefreshSeconds
	}
	if err := c.Render("admin", page(c, cache, "Admin Dashboard", fiber.Map{
		"Admin":     true,
		"Loading":   loading,
		"Refresh":   refresh,
		"LoadError": h.moderation.LoadError() != nil,
		"Sections":  h.moderation.Sections(),
	})); err != nil {
		return err
	}
	return commit(cache)
}

// HandleRefresh re-populates the queue from its source.
func (h *AdminHandler) HandleRefresh(c *fiber.Ctx) error {
	h.moderation.Activate(queueContext(c))
	return redirect(c, "/admin")
}

// HandleResolve approves or rejects one pending item and returns to the dashboard.
func (h *AdminHandler) HandleResolve(c *fiber.Ctx) error {
	kind, err := models.ParseItemKind(c.Params("kind"))
	if err != nil {
		return errx.New(err, fiber.StatusNotFound, errx.NotFoundMessage)
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return errx.BadRequest(err, "Invalid item id.")
	}
	decision, err := models.ParseDecision(c.Params("action"))
	if err != nil {
		return errx.BadRequest(err, "Unknown moderation action.")
	}

	actor, _ := c.Locals(middleware.AdminLocalsKey).(string)

	cache, err := openSession(h.store, c)
	if err != nil {
		return err
	}

	removed, err := h.moderation.Resolve(c.UserContext(), kind, id, decision, actor)
	if err != nil {
		if errors.Is(err, services.ErrUnknownKind) {
			return errx.New(err, fiber.StatusNotFound, errx.NotFoundMessage)
		}
		return errx.Internal(err)
	}
	if !removed {
		session.AddFlash(cache, "error", "That item is no longer pending.")
	}
	if err := commit(cache); err != nil {
		return err
	}
	return redirect(c, "/admin")
}
