// Package httpapi serves health checks and read-only order lookups.
package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/m3rciful/grocerybot/core/buildinfo"
	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/internal/orders"
)

const component = "http"

// OrderReader is the read side of the order service.
type OrderReader interface {
	Get(ctx context.Context, id string) (orders.Order, error)
	History(ctx context.Context, id string) ([]orders.StatusChange, error)
	ListByStatus(ctx context.Context, status orders.Status) ([]orders.Order, error)
}

// Options configure a Server.
type Options struct {
	Listen string
	// Token protects the /orders routes with a bearer token when set.
	Token string
}

// Server wraps an echo instance.
type Server struct {
	echo   *echo.Echo
	listen string
}

// Error is the JSON body of a failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// New builds the routes.
func New(reader OrderReader, opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger)

	h := &handlers{reader: reader}
	e.GET("/health", h.health)

	g := e.Group("/orders")
	if opts.Token != "" {
		token := []byte(opts.Token)
		g.Use(middleware.KeyAuth(func(key string, _ echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), token) == 1, nil
		}))
	}
	g.GET("", h.list)
	g.GET("/pending", h.pending)
	g.GET("/:id", h.order)
	g.GET("/:id/history", h.history)

	return &Server{echo: e, listen: opts.Listen}
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.echo }

// Start serves in the background. Listen errors other than a clean shutdown are logged.
func (s *Server) Start() {
	go func() {
		logger.Info(context.Background(), component, "listen",
			slog.String("status", "ok"),
			slog.String("addr", s.listen),
		)
		if err := s.echo.Start(s.listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), component, "listen",
				slog.String("status", "fail"),
				slog.String("addr", s.listen),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		logger.Debug(req.Context(), component, "request",
			slog.String("status", logger.Status(err)),
			slog.String("method", req.Method),
			slog.String("path", c.Path()),
			slog.Int("http_status", c.Response().Status),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return nil
	}
}

type handlers struct {
	reader OrderReader
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Current().Version,
	})
}

func (h *handlers) order(c echo.Context) error {
	o, err := h.reader.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, NewOrderView(o))
}

func (h *handlers) history(c echo.Context) error {
	changes, err := h.reader.History(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]StatusChangeView, 0, len(changes))
	for _, ch := range changes {
		out = append(out, NewStatusChangeView(ch))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) pending(c echo.Context) error {
	return h.byStatus(c, orders.Pending)
}

// list serves GET /orders?status=<status>; the status defaults to Pending.
func (h *handlers) list(c echo.Context) error {
	raw := c.QueryParam("status")
	if raw == "" {
		return h.byStatus(c, orders.Pending)
	}
	status, err := orders.ParseStatus(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "unknown status"})
	}
	return h.byStatus(c, status)
}

func (h *handlers) byStatus(c echo.Context, status orders.Status) error {
	list, err := h.reader.ListByStatus(c.Request().Context(), status)
	if err != nil {
		return h.fail(c, err)
	}
	out := make([]OrderView, 0, len(list))
	for _, o := range list {
		out = append(out, NewOrderView(o))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *handlers) fail(c echo.Context, err error) error {
	if errors.Is(err, orders.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "order not found"})
	}
	logger.Error(c.Request().Context(), component, "order.lookup",
		slog.String("status", "fail"),
		slog.String("path", c.Path()),
		slog.String("err", err.Error()),
	)
	return c.JSON(http.StatusInternalServerError, Error{Code: http.StatusInternalServerError, Message: "failed to load order"})
}
