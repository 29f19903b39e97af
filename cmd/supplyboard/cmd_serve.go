package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/laiyunwu/casestudy12/internal/app"
	"github.com/laiyunwu/casestudy12/internal/appconf"
	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/internal/restapi"
	"github.com/laiyunwu/casestudy12/internal/webui"
)

// shutdownGrace is how long in-flight requests get to finish after a
// termination signal.
const shutdownGrace = 10 * time.Second

var serveFlags struct {
	port      int
	env       string
	apiKeys   string
	case1     string
	case2     string
	db        string
	rateLimit int
	rateBurst int
	verbose   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and JSON API server",
	Long: `Starts the HTTP server: the web dashboard at /, the JSON API under
/api/v1/ (authenticated by the key query parameter), and static assets
under /static/. Dataset paths may be CSV or XLSX; when omitted or
unreadable the server falls back to generated datasets.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.IntVar(&serveFlags.port, "port", 4000, "HTTP server port")
	f.StringVar(&serveFlags.env, "env", "development", "Environment (development|test|production)")
	f.StringVar(&serveFlags.apiKeys, "api-keys", "test", "Comma separated API keys")
	f.StringVar(&serveFlags.case1, "case1", "", "Historical sales dataset (CSV or XLSX); generated data when empty")
	f.StringVar(&serveFlags.case2, "case2", "", "Supply and demand dataset (CSV or XLSX); generated data when empty")
	f.StringVar(&serveFlags.db, "db", "supplyboard.db", "Run history SQLite path (:memory: allowed)")
	f.IntVar(&serveFlags.rateLimit, "rate-limit", 0, "Requests per second per API key (0 disables limiting)")
	f.IntVar(&serveFlags.rateBurst, "rate-burst", 0, "Burst allowance per API key (defaults to the rate)")
	f.BoolVar(&serveFlags.verbose, "verbose", false, "Enable debug logging")
}

func splitAPIKeys(flag string) []string {
	if flag == "" {
		return nil
	}
	keys := strings.Split(flag, ",")
	for i := range keys {
		keys[i] = strings.TrimSpace(keys[i])
	}
	return keys
}

func serveConfig() appconf.Config {
	return appconf.Config{
		Env:       appconf.EnvFlagToEnvironment(serveFlags.env),
		Port:      serveFlags.port,
		ApiKeys:   splitAPIKeys(serveFlags.apiKeys),
		RateLimit: serveFlags.rateLimit,
		RateBurst: serveFlags.rateBurst,
		Case1Path: serveFlags.case1,
		Case2Path: serveFlags.case2,
		DBPath:    serveFlags.db,
		Verbose:   serveFlags.verbose,
		Version:   version,
	}
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func runServe(cmd *cobra.Command, _ []string) error {
	config := serveConfig()
	logger := logging.NewStructuredLogger(os.Stdout, logLevel(config.Verbose))

	application, err := app.NewApplication(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			logging.LogError(logger, "failed to close run database", err)
		}
	}()

	api := restapi.NewRestAPI(application)
	defer api.Stop()
	webUI := webui.NewWebUI(application)

	mux := http.NewServeMux()
	webUI.SetRoutes(mux)
	api.SetRoutes(mux)

	// Logging sits outermost so recovered panics still produce a request
	// line with the 500 that went out.
	var handler http.Handler = mux
	handler = restapi.NewCompressionMiddleware(restapi.DefaultCompressionConfig())(handler)
	handler = api.RateLimit(handler)
	handler = api.WithSecurityHeaders(handler)
	handler = api.RecoverPanics(handler)
	handler = restapi.NewRequestLoggingMiddleware(logger)(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	logger.Info("starting server", "addr", srv.Addr, "env", config.Env.String(), "version", version)

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", "grace", shutdownGrace.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
