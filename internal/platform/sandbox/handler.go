package sandbox

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/recipients/internal/domain/recipient"
	"github.com/ehr/recipients/pkg/pagination"
)

// SeedHandler provides HTTP endpoints for sandbox recipient batches.
type SeedHandler struct {
	catalog *recipient.Catalog
	logger  zerolog.Logger

	mu     sync.Mutex
	seeder *Seeder
}

// NewSeedHandler creates a handler with no batch generated yet.
func NewSeedHandler(cat *recipient.Catalog, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{catalog: cat, logger: logger}
}

// RegisterRoutes registers sandbox routes on the given Echo group.
func (h *SeedHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/seed", h.handleSeed)
	g.GET("/recipients", h.handleListRecipients)
	g.GET("/recipients/sample", h.handleSample)
	g.POST("/reset", h.handleReset)
	g.GET("/export/json", h.handleExportJSON)
	g.GET("/export/ndjson", h.handleExportNDJSON)
}

func (h *SeedHandler) handleSeed(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var cfg SeedConfig
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(bindStatus(err), map[string]string{"error": err.Error()})
	}

	// Apply defaults for zero values
	if cfg.Count == 0 {
		cfg.Count = DefaultSeedConfig().Count
	}

	seeder, err := NewSeeder(cfg, h.catalog, h.logger)
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	result, err := seeder.Generate()
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	h.seeder = seeder

	return c.JSON(http.StatusOK, result)
}

func (h *SeedHandler) handleListRecipients(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	p := pagination.FromContext(c)
	if h.seeder == nil {
		return c.JSON(http.StatusOK, pagination.NewResponse([]recipient.Recipient{}, 0, p.Limit, p.Offset))
	}

	page, total := h.seeder.Page(p)
	resp := pagination.NewResponse(page, total, p.Limit, p.Offset).WithLinks(p.Links(c.Request().URL.Path, total))
	return c.JSON(http.StatusOK, resp)
}

func (h *SeedHandler) handleSample(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, projection, err := recipient.ParseShape(c.QueryParam("shape"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	seeder := h.seeder
	if seed := c.QueryParam("seed"); seed != "" || seeder == nil {
		cfg := DefaultSeedConfig()
		cfg.Count = 0
		if seed != "" {
			cfg.Seed, err = strconv.ParseInt(seed, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "seed must be an integer"})
			}
		}
		if seeder, err = NewSeeder(cfg, h.catalog, h.logger); err != nil {
			return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
		}
	}

	r, err := seeder.Sample(projection)
	if err != nil {
		return c.JSON(statusFor(err), map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, r)
}

func (h *SeedHandler) handleReset(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.seeder != nil {
		h.seeder.Reset()
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "reset"})
}

func (h *SeedHandler) handleExportJSON(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.seeder == nil {
		return c.JSON(http.StatusOK, []interface{}{})
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return h.seeder.ExportJSON(c.Response().Writer)
}

func (h *SeedHandler) handleExportNDJSON(c echo.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.seeder == nil {
		return c.String(http.StatusOK, "")
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)
	return h.seeder.ExportNDJSON(c.Response().Writer)
}

// bindStatus keeps the status of HTTP errors raised while reading the body,
// such as 413 from the body limit, and reports anything else as 400.
func bindStatus(err error) int {
	for ; err != nil; err = errors.Unwrap(err) {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he.Code
		}
	}
	return http.StatusBadRequest
}

// statusFor maps generation errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, recipient.ErrUnknownShape), errors.Is(err, ErrInvalidCount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
