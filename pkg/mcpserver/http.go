package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/compozy/http-client-mcp/pkg/config"
	"github.com/compozy/http-client-mcp/pkg/logger"
	"github.com/compozy/http-client-mcp/pkg/monitoring"
	"github.com/compozy/http-client-mcp/pkg/version"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HTTPServer serves the MCP streamable HTTP transport next to a health check endpoint.
type HTTPServer struct {
	Router          *gin.Engine
	httpServer      *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

// NewHTTPServer mounts s at cfg.Path and /healthz on a gin router. A non-nil
// mon adds request metrics and its exporter endpoint when enabled.
func NewHTTPServer(s *Server, cfg config.ServerConfig, mon *monitoring.Service) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.log))
	if mon != nil && mon.Enabled() {
		router.Use(mon.GinMiddleware())
		router.GET(mon.Path(), gin.WrapH(mon.ExporterHandler()))
	}

	mcpHandler := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return s.MCP() },
		&mcp.StreamableHTTPOptions{Logger: logger.Slog(s.log)},
	)
	router.GET("/healthz", healthzHandler)
	router.Any(cfg.Path, gin.WrapH(mcpHandler))

	return &HTTPServer{
		Router:          router,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             s.log,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

func healthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.Get().Version,
	})
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug(
			"HTTP request served",
			"method", c.Request.Method,
			"path", c.Request.URL.EscapedPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Addr returns the configured listen address.
func (h *HTTPServer) Addr() string {
	return h.httpServer.Addr
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down.
func (h *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		if err := h.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
			return
		}
		errChan <- nil
	}()
	h.log.Info("MCP HTTP transport listening", "addr", ln.Addr().String())
	select {
	case <-ctx.Done():
		h.log.Debug("Context canceled, shutting down HTTP transport")
		return h.Stop(context.WithoutCancel(ctx))
	case err := <-errChan:
		if err != nil {
			h.log.Error("HTTP transport failed", "error", err)
			return err
		}
		return nil
	}
}

// ListenAndServe binds the configured address and calls Serve.
func (h *HTTPServer) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.httpServer.Addr, err)
	}
	return h.Serve(ctx, ln)
}

// Stop gracefully stops the server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.log.Info("Shutting down MCP HTTP transport")
	shutdownCtx, cancel := context.WithTimeout(ctx, h.shutdownTimeout)
	defer cancel()
	if err := h.httpServer.Shutdown(shutdownCtx); err != nil {
		h.log.Error("HTTP transport shutdown failed", "error", err)
		return err
	}
	h.log.Info("MCP HTTP transport stopped gracefully")
	return nil
}
