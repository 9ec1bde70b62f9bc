package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/davidola36/run-game/pkg/handlers"
)

// Start - serves the health endpoint until the context is canceled.
func Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlers.HealthHandler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
