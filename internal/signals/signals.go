package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/amir-mohammad-HP/ws-cron/pkg/logger"
)

type Handler struct {
	logger  logger.Logger
	signals []os.Signal
}

func NewHandler(logger logger.Logger) *Handler {
	return &Handler{
		logger:  logger,
		signals: []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP},
	}
}

// Handle calls shutdownFunc on the first signal, or returns when ctx ends.
func (h *Handler) Handle(ctx context.Context, shutdownFunc func()) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, h.signals...)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		h.logger.Debug("Signal handler context cancelled")
		return
	case sig := <-sigChan:
		h.logger.Info("Received signal %s", sig)
		shutdownFunc()
	}
}
