package console

import (
	"net/url"
	"strings"

	"mod-loader/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the resource console.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the console routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/resources")
	group.Get("/", h.HandleList)
	group.Get("/stats", h.HandleStats)
	group.Get("/check/*", h.HandleCheck)
	group.Get("/info/*", h.HandleInfo)
	group.Get("/get/*", h.HandleGet)
	group.Post("/acquire/*", h.HandleAcquire)
	group.Post("/release/*", h.HandleRelease)
	group.Put("/*", h.HandlePut)
	group.Delete("/*", h.HandleRemove)
}

// name returns the unescaped wildcard. Fiber reuses the parameter buffer, so the result is
// cloned before it can end up as a store key.
func name(c *fiber.Ctx) (string, error) {
	n, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return "", err
	}
	return strings.Clone(n), nil
}

func badName(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid resource name: " + err.Error()})
}

func notFound(c *fiber.Ctx, n string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "resource not found", "key": n})
}

// HandleList lists registered resources.
// @Summary List Resources
// @Description Lists resource keys in lexical order, optionally filtered by prefix.
// @Tags resources
// @Produce json
// @Param prefix query string false "Key prefix"
// @Success 200 {object} map[string]interface{} "Keys"
// @Router /resources [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	keys := h.service.List(c.Query("prefix"))
	return c.JSON(fiber.Map{
		"count": len(keys),
		"keys":  keys,
	})
}

// HandleStats reports store counters.
// @Summary Store Statistics
// @Tags resources
// @Produce json
// @Success 200 {object} resource.Stats
// @Router /resources/stats [get]
func (h *Handler) HandleStats(c *fiber.Ctx) error {
	return c.JSON(h.service.Stats())
}

// HandleCheck reports whether a resource exists.
// @Summary Check Resource
// @Tags resources
// @Produce json
// @Param key path string true "Resource key"
// @Success 200 {object} map[string]interface{} "Existence"
// @Router /resources/check/{key} [get]
func (h *Handler) HandleCheck(c *fiber.Ctx) error {
	n, err := name(c)
	if err != nil {
		return badName(c, err)
	}
	return c.JSON(fiber.Map{"key": n, "exists": h.service.Check(n)})
}

// HandleInfo describes a resource without reading it.
// @Summary Describe Resource
// @Tags resources
// @Produce json
// @Param key path string true "Resource key"
// @Success 200 {object} resource.Info
// @Failure 404 {object} map[string]string "Not Found"
// @Router /resources/info/{key} [get]
func (h *Handler) HandleInfo(c *fiber.Ctx) error {
	n, err := name(c)
	if err != nil {
		return badName(c, err)
	}
	info, ok := h.service.Describe(n)
	if !ok {
		return notFound(c, n)
	}
	return c.JSON(info)
}

// HandleGet returns the bytes of a resource.
// @Summary Get Resource
// @Description Returns the raw bytes. The archive or mod the bytes came from is sent in X-Resource-Origin.
// @Tags resources
// @Produce octet-stream
// @Param key path string true "Resource key"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string "Not Found"
// @Router /resources/get/{key} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	n, err := name(c)
	if err != nil {
		return badName(c, err)
	}
	res, ok := h.service.Get(n)
	if !ok {
		return notFound(c, n)
	}
	c.Set("X-Resource-Origin", res.Origin)
	c.Set("X-Resource-Kind", res.Kind.String())
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(res.Data)
}

// HandlePut installs the request body as pinned content.
// @Summary Install Resource
// @Tags resources
// @Accept octet-stream
// @Produce json
// @Param key path string true "Resource key"
// @Success 201 {object} map[string]interface{} "Installed"
// @Router /resources/{key} [put]
func (h *Handler) HandlePut(c *fiber.Ctx) error {
	n, err := name(c)
	if err != nil || n == "" {
		if err == nil {
			err = fiber.ErrBadRequest
		}
		return badName(c, err)
	}
	key := h.service.Put(n, c.Body())
	logger.WithRayID(h.service.logger, c).Debug("Installed resource over HTTP", zap.String("key", key.String()))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": key, "size": len(c.Body())})
}

// HandleRemove drops a resource regardless of its reference count.
// @Summary Remove Resource
// @Tags resources
// @Produce json
// @Param key path string true "Resource key"
// @Success 200 {object} map[string]interface{} "Removed"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /resources/{key} [delete]
func (h *Handler) HandleRemove(c *fiber.Ctx) error {
	n, err := name(c)
	if err != nil {
		return badName(c, err)
	}
	if !h.service.Remove(n) {
		return notFound(c, n)
	}
	return c.JSON(fiber.Map{"key": n, "removed": true})
}

// HandleAcquire increments the reference count of a resource.
// @Summary Acquire Resource
// @Tags resources
// @Produce json
// @Param key path string true "Resource key"
// @Success 200 {object} map[string]interface{} "Reference count"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /resources/acquire/{key} [post]
func (h *Handler) HandleAcquire(c *fiber.Ctx) error {
	return h.refs(c, h.service.Acquire)
}

// HandleRelease decrements the reference count of a resource.
// @Summary Release Resource
// @Tags resources
// @Produce json
// @Param key path string true "Resource key"
// @Success 200 {object} map[string]interface{} "Reference count"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /resources/release/{key} [post]
func (h *Handler) HandleRelease(c *fiber.Ctx) error {
	return h.refs(c, h.service.Release)
}

func (h *Handler) refs(c *fiber.Ctx, op func(string) (int64, bool)) error {
	n, err := name(c)
	if err != nil {
		return badName(c, err)
	}
	count, ok := op(n)
	if !ok {
		return notFound(c, n)
	}
	return c.JSON(fiber.Map{"key": n, "refs": count})
}
