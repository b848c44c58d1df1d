package supervisor

import (
	"context"
	"fmt"
	"time"
)

// HTTPServer is satisfied by *fiber.App.
type HTTPServer interface {
	Listen(addr string) error
	ShutdownWithContext(ctx context.Context) error
}

type HTTPService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration
}

func NewHTTPService(server HTTPServer, addr string, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, addr: addr, shutdownTimeout: shutdownTimeout}
}

func (h *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Listen(h.addr)
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return fmt.Errorf("http server stopped unexpectedly")

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (h *HTTPService) String() string {
	return "http-server"
}
