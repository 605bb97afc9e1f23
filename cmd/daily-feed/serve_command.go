package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"daily-feed/api"
	"daily-feed/core/interchange"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var input string
	var addr string
	var rateLimit int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an exported document tree over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger(cfg)

			doc, err := interchange.LoadFile(input)
			if err != nil {
				return err
			}

			handler, err := api.NewDocumentServer(api.APIConfig{
				Logger:     logger,
				RateLimit:  rateLimit,
				RateWindow: time.Minute,
			}, doc)
			if err != nil {
				return err
			}

			if addr == "" {
				addr = cfg.Server.Addr
			}
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			srv := &http.Server{
				Handler:      handler,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			logger.Info("HTTP server starting", map[string]interface{}{
				"address":  listener.Addr().String(),
				"document": input,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", input, listener.Addr())

			return serveUntilDone(cmd.Context(), srv, listener)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Document tree JSON file")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	cmd.Flags().IntVar(&rateLimit, "rate-limit", 100, "Requests per minute per client (0 disables)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// serveUntilDone runs srv until ctx is canceled, then shuts it down gracefully
func serveUntilDone(ctx context.Context, srv *http.Server, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
