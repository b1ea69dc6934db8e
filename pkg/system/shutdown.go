package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

// SignalContext derives a context that is cancelled on SIGINT or SIGTERM so
// long running commands like the scan wait loop and the webhook listener can
// unwind cleanly. A second signal exits immediately.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChannel := make(chan os.Signal, 2)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChannel:
			log.Info().Msg("Received interrupt signal, shutting down gracefully...")
			cancel()
		case <-ctx.Done():
			return
		}

		<-sigChannel
		log.Warn().Msg("Received second interrupt signal, exiting immediately")
		os.Exit(1)
	}()

	return ctx, cancel
}
