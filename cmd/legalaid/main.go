package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/legalaid/internal/app"
	"github.com/ternarybob/legalaid/internal/common"
	"github.com/ternarybob/legalaid/internal/server"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverPortP  = flag.Int("p", 0, "Server port (shorthand, overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// One-shot modes
	askQuery    = flag.String("ask", "", "Answer a single legal query and exit")
	analyzePath = flag.String("analyze", "", "Analyze a PDF or DOCX document and exit")
	reportOut   = flag.String("out", "", "With -analyze: write the report to this .txt or .pdf file")
	replMode    = flag.Bool("repl", false, "Start an interactive chat session on the terminal")
	sessionName = flag.String("name", "", "Display name for -ask and -repl sessions")
	sessionLang = flag.String("lang", "", "Language for -ask and -repl sessions")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("LegalAid version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Merge port flags (shorthand takes precedence)
	finalPort := *serverPort
	if *serverPortP != 0 {
		finalPort = *serverPortP
	}

	// Startup sequence:
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Load .env into the environment
	// 5. Print banner
	var err error

	if len(configFiles) == 0 {
		if _, err := os.Stat("legalaid.toml"); err == nil {
			configFiles = append(configFiles, "legalaid.toml")
		} else if _, err := os.Stat("deployments/local/legalaid.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/legalaid.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration files")
		os.Exit(1)
	}

	common.ApplyFlagOverrides(config, finalPort, *serverHost)

	logger = common.SetupLogger(config)

	if err := common.LoadEnvFile(config.Credentials.EnvFile, logger); err != nil {
		logger.Warn().Err(err).Str("file", config.Credentials.EnvFile).Msg("Failed to load .env file")
	}

	oneShot := *askQuery != "" || *analyzePath != "" || *replMode
	if !oneShot {
		common.PrintBanner(config, logger)
	}

	logger.Debug().
		Strs("config_files", configFiles).
		Str("log_level", config.Logging.Level).
		Strs("log_output", config.Logging.Output).
		Str("secret_store", config.Storage.Badger.Path).
		Str("secrets_file", config.Credentials.SecretsFile).
		Msg("Resolved configuration (sanitized)")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Terminal modes share the interrupt handling below via ctx
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !oneShot {
		serve(ctx, application)
		return
	}

	var code int
	switch {
	case *askQuery != "":
		code = runAsk(ctx, application, *askQuery)
	case *analyzePath != "":
		code = runAnalyze(ctx, application, *analyzePath, *reportOut)
	default:
		code = runREPL(ctx, application, os.Stdin, os.Stdout)
	}

	stop()
	application.Close()
	os.Exit(code)
}

// serve runs the HTTP API until ctx is cancelled by SIGINT/SIGTERM
func serve(ctx context.Context, application *app.App) {
	srv := server.New(application)

	errChan := make(chan error, 1)
	common.SafeGo(logger, "http-server", func() {
		errChan <- srv.Start()
	})

	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", config.Server.Host, config.Server.Port)).
		Msg("Server ready - Press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		logger.Info().Msg("Interrupt signal received")
	case err := <-errChan:
		if err != nil {
			logger.Error().Err(err).Msg("Server failed")
			return
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}

	logger.Info().Msg("Server stopped")
}
