package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"custodia/internal/memberset"
	"custodia/internal/repositories"
	"custodia/internal/services/auth"
	"custodia/internal/services/registry"
	"custodia/internal/utils/response"
)

// ViewsHandler serves the read-only surface: settings, membership
// enumerations with index-range pagination, participant lookups and the
// change-event feed.
type ViewsHandler struct {
	registry *registry.Service
	auth     auth.Service
	events   repositories.EventRepository
}

func NewViewsHandler(reg *registry.Service, authService auth.Service, events repositories.EventRepository) *ViewsHandler {
	return &ViewsHandler{registry: reg, auth: authService, events: events}
}

func (h *ViewsHandler) GetSettings(c *fiber.Ctx) error {
	return response.Success(c, "settings", h.registry.Settings())
}

func (h *ViewsHandler) ListSenders(c *fiber.Ctx) error {
	return h.list(c, h.registry.SenderCount, h.registry.Senders, h.registry.SendersRange)
}

func (h *ViewsHandler) ListRecipients(c *fiber.Ctx) error {
	return h.list(c, h.registry.RecipientCount, h.registry.Recipients, h.registry.RecipientsRange)
}

func (h *ViewsHandler) ListTokens(c *fiber.Ctx) error {
	return h.list(c, h.registry.AssetCount, h.registry.Assets, h.registry.AssetsRange)
}

// GetParticipant reports what the system knows about an address: whether it
// belongs to a registered account and its whitelist standing.
func (h *ViewsHandler) GetParticipant(c *fiber.Ctx) error {
	address := c.Params("address")
	if address == "" {
		return response.BadRequest(c, "address is required")
	}

	registered := false
	if _, err := h.auth.GetAccountByAddress(address); err == nil {
		registered = true
	}

	return response.Success(c, "participant", fiber.Map{
		"address":               address,
		"registered":            registered,
		"sender_whitelisted":    h.registry.IsSenderWhitelisted(address),
		"recipient_whitelisted": h.registry.IsRecipientWhitelisted(address),
	})
}

// ListEvents returns the change-event feed for one kind, newest first.
func (h *ViewsHandler) ListEvents(c *fiber.Ctx) error {
	kind := c.Query("kind")
	if kind == "" {
		return response.BadRequest(c, "kind is required")
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		return response.BadRequest(c, "limit must be between 1 and 200")
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		return response.BadRequest(c, "offset must not be negative")
	}

	events, err := h.events.ListByKind(kind, limit, offset)
	if err != nil {
		return response.ServerError(c, "failed to list events")
	}
	return response.Success(c, "events", fiber.Map{"kind": kind, "events": events})
}

// list returns the full set, or the closed range [from, to] when both query
// parameters are present.
func (h *ViewsHandler) list(c *fiber.Ctx, count func() int, all func() []string, ranged func(int, int) ([]string, error)) error {
	fromParam, toParam := c.Query("from"), c.Query("to")
	if fromParam == "" && toParam == "" {
		return response.Success(c, "members", fiber.Map{
			"count":   count(),
			"members": all(),
		})
	}

	from, err := strconv.Atoi(fromParam)
	if err != nil {
		return response.BadRequest(c, "invalid from index")
	}
	to, err := strconv.Atoi(toParam)
	if err != nil {
		return response.BadRequest(c, "invalid to index")
	}

	members, err := ranged(from, to)
	if err != nil {
		if errors.Is(err, memberset.ErrOutOfRange) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "internal error")
	}
	return response.Success(c, "members", fiber.Map{
		"count":   count(),
		"members": members,
	})
}
