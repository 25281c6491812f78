package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	s3component "github.com/edgee-cloud/amazon-s3-component"
	"github.com/edgee-cloud/amazon-s3-component/config"
	s3http "github.com/edgee-cloud/amazon-s3-component/http"
	"github.com/edgee-cloud/amazon-s3-component/keybackend"
	"github.com/edgee-cloud/amazon-s3-component/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP signing service",
	Long: `Start the HTTP signing service.

Routes:
  POST /v1/events/{kind}
  POST /v1/destinations/{name}/events/{kind}
  POST /v1/verify
  GET  /metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5718, "HTTP server port (env: S3COMPONENT_SERVER_PORT)")
	serveCmd.Flags().Int64("max-body-size", 1<<20, "maximum request body size in bytes, 0 for no limit")
	serveCmd.Flags().String("region", "", "region accepted by the verifier (env: S3COMPONENT_AUTH_REGION)")
	serveCmd.Flags().Bool("strict", false, "reject events that cannot be serialized instead of sending an empty body")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	handler, err := newHandler(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr, "destinations", cfg.DestinationNames())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newHandler wires the component, metrics, key store and verifier from cfg.
func newHandler(cfg *config.Config) (*s3http.Handler, error) {
	recorder := metrics.NewRecorder()

	destinations := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "s3component",
		Name:      "destinations_configured",
		Help:      "Number of named destinations loaded from configuration.",
	})
	destinations.Set(float64(len(cfg.Destinations)))
	if err := recorder.Register(destinations); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []s3component.Option{
		s3component.WithLogger(slog.Default()),
		s3component.WithObserver(recorder),
	}
	if cfg.Serialization.Strict {
		opts = append(opts, s3component.WithStrictSerialization())
	}
	component := s3component.NewComponent(opts...)

	store, err := keybackend.NewSecretStore(cfg.Auth.Keys, cfg.DestinationSettings()...)
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	verifier := s3component.NewSignatureVerifier(cfg.Auth.Region, store)

	handlerCfg := s3http.HandlerConfig{
		Metrics:     recorder.Handler(),
		MaxBodySize: cfg.Server.MaxBodySize,
		CORS:        cfg.CORS,
	}
	if len(cfg.Destinations) > 0 {
		handlerCfg.Destinations = cfg
	}
	if cfg.Auth.Verify {
		handlerCfg.Verifier = verifier
	}
	if cfg.Auth.Required {
		if store.Len() == 0 {
			return nil, errors.New("auth.required is set but no keys are configured")
		}
		handlerCfg.APIVerifier = verifier
	}

	slog.Debug("handler configured",
		"keys", store.Len(),
		"verify", cfg.Auth.Verify,
		"auth_required", cfg.Auth.Required,
		"strict", cfg.Serialization.Strict,
	)

	return s3http.NewHandler(&handlerCfg, component), nil
}
