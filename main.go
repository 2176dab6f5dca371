package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"aigateway/config"
	"aigateway/generation"
	"aigateway/handler"
	"aigateway/logging"
	"aigateway/manager"
	"aigateway/runner"
	"aigateway/workflow"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "aigateway",
		Short: "HTTP gateway for local AI tools and n8n workflows",
		Long: `aigateway exposes a local Ollama server, whisper, pdftotext, pandoc and
festival, plus an n8n instance, behind one small JSON API.

Running it without a subcommand is the same as "aigateway serve".`,
		SilenceUsage: true,
	}
	cliArgs := config.BindFlags(rootCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cliArgs)
		},
	}
	rootCmd.RunE = serveCmd.RunE

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(cliArgs *config.CliConfig) error {
	cfg, err := config.LoadConfig(cliArgs.ConfigFile, cliArgs.EnvFile)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cliArgs.Debug {
		level = logrus.DebugLevel
	}
	log := logging.InitLogger(level, cfg.LogFormat)

	toolMonitor := manager.NewToolMonitor(generation.Tools, time.Second)
	defer toolMonitor.Shutdown()

	gen := generation.NewService(cfg, runner.NewExecRunner(), toolMonitor)
	wf := workflow.NewService(cfg)

	router := handler.NewRouter(
		cfg.BasePath,
		handler.NewGenerationHandler(gen, cfg.Uploads.MaxMemory),
		handler.NewWorkflowHandler(wf, cfg.Uploads.MaxMemory),
	)

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	if cfg.N8N.APIKey == "" {
		log.Warnln("N8N_API_KEY is not set, the n8n management routes will answer 500")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s (ollama: %s, n8n: %s)", cfg.ListenAddress, cfg.Ollama.URL, cfg.N8N.URL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infoln("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
