package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/redmine-mcp/internal/common"
	"github.com/ternarybob/redmine-mcp/internal/interfaces"
	"github.com/ternarybob/redmine-mcp/internal/services/browser"
	"github.com/ternarybob/redmine-mcp/internal/services/redmine"
	"github.com/ternarybob/redmine-mcp/internal/storage/badger"
)

func main() {
	showVersion := flag.Bool("version", false, "Print version information and exit")
	configPath := flag.String("config", "", "Configuration file path (default: $REDMINE_CONFIG)")
	flag.Parse()

	if *showVersion {
		common.PrintBanner(common.GetFullVersion())
		return
	}

	// Load configuration
	path := *configPath
	if path == "" {
		path = os.Getenv("REDMINE_CONFIG")
	}
	config, err := common.LoadFromFiles(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Console output shares the terminal with the stdio protocol - keep it to warnings
	if !hasFileOutput(config) {
		config.Logging.Level = "warn"
	}
	logger := common.InitLogger(config)

	// Submission journal (optional)
	journal, closeJournal := openJournal(config, logger)
	defer closeJournal()

	controller := browser.NewController(browser.Options{
		UserAgent:             config.Browser.UserAgent,
		DisableGPU:            config.Browser.DisableGPU,
		NoSandbox:             config.Browser.NoSandbox,
		ExecPath:              config.Browser.ExecPath,
		RequestTimeout:        config.RequestTimeout(),
		MinNavigationInterval: config.MinNavigationInterval(),
		Retry:                 browser.NewRetryPolicy(config.Retry.MaxRetries, config.RetryDelay()),
	}, logger)
	defer controller.Close()

	service := redmine.NewService(config, controller, journal, logger)

	// Create MCP server
	mcpServer := server.NewMCPServer(
		"redmine-mcp",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)
	registerTools(mcpServer, service, logger)

	logger.Info().
		Str("base_url", config.Redmine.BaseURL).
		Bool("journal", journal != nil).
		Msg("Redmine MCP server starting")

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
	}

	service.Logout(context.Background())
}

func hasFileOutput(config *common.Config) bool {
	for _, output := range config.Logging.Output {
		if output == "file" {
			return true
		}
	}
	return false
}

// openJournal opens the badger submission journal when enabled. A journal that
// cannot be opened disables recording rather than stopping the server.
func openJournal(config *common.Config, logger arbor.ILogger) (interfaces.SubmissionStorage, func()) {
	if !config.Storage.Badger.Enabled {
		return nil, func() {}
	}

	db, err := badger.NewBadgerDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Warn().Err(err).Str("path", config.Storage.Badger.Path).Msg("Submission journal disabled")
		return nil, func() {}
	}

	journal := badger.NewSubmissionStorage(db, logger)
	return journal, func() {
		if err := journal.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close submission journal")
		}
	}
}
