package mods

import (
	"errors"

	"mod-loader/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for mod loading.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the mod routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/mods")
	group.Get("/", h.HandleLast)
	group.Get("/order", h.HandleOrder)
	group.Post("/reload", h.HandleReload)
	group.Get("/history", h.HandleHistory)
	group.Get("/registry", h.HandleRegistry)
}

// HandleLast returns the report of the last load cycle.
// @Summary Last Load Cycle
// @Description Returns the enabled order, warnings and failures of the most recent load cycle.
// @Tags mods
// @Produce json
// @Success 200 {object} CycleReport
// @Failure 404 {object} map[string]string "No cycle has run"
// @Router /mods [get]
func (h *Handler) HandleLast(c *fiber.Ctx) error {
	report := h.service.Last()
	if report == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no load cycle has run"})
	}
	return c.JSON(report)
}

// HandleOrder resolves the load order of the archives currently available.
// @Summary Resolve Load Order
// @Description Discovers archives and resolves the mod order without loading them.
// @Tags mods
// @Produce json
// @Success 200 {object} map[string]interface{} "Order and warnings"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mods/order [get]
func (h *Handler) HandleOrder(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Order(c.Context())
	if err != nil {
		l.Error("Order resolution failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"order":    report.Order,
		"enabled":  report.Enabled,
		"warnings": report.Warnings,
		"failures": report.Failures,
	})
}

// HandleReload runs a new load cycle.
// @Summary Reload Mods
// @Description Rebuilds the resource namespace from every configured source.
// @Tags mods
// @Produce json
// @Success 200 {object} CycleReport
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mods/reload [post]
func (h *Handler) HandleReload(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Triggering load cycle")

	report, err := h.service.Reload(c.Context())
	if err != nil {
		l.Error("Load cycle failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleHistory lists recorded load cycles.
// @Summary Load History
// @Description Lists the most recent load cycles, newest first.
// @Tags mods
// @Produce json
// @Param limit query int false "Maximum number of cycles"
// @Success 200 {array} CycleRecord
// @Failure 404 {object} map[string]string "History disabled"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /mods/history [get]
func (h *Handler) HandleHistory(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	records, err := h.service.History(c.Context(), c.QueryInt("limit", 20))
	if errors.Is(err, ErrHistoryDisabled) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		l.Error("Failed to list load history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(records)
}

// HandleRegistry returns the mods, habitats and locations registered by the last cycle.
// @Summary Registered Content
// @Tags mods
// @Produce json
// @Success 200 {object} map[string]interface{} "Registry tables"
// @Router /mods/registry [get]
func (h *Handler) HandleRegistry(c *fiber.Ctx) error {
	r := h.service.Registry()
	return c.JSON(fiber.Map{
		"mods":      r.Mods(),
		"habitats":  r.Habitats(),
		"locations": r.Locations(),
		"archives":  r.LoadedArchives(),
	})
}
