package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aistudio/agentd/internal/config"
	"github.com/aistudio/agentd/internal/logger"
	"github.com/aistudio/agentd/internal/metrics"
	"github.com/aistudio/agentd/internal/server"
	"github.com/aistudio/agentd/pkg/chat"
	"github.com/aistudio/agentd/pkg/llm"
	"github.com/aistudio/agentd/pkg/session"
	"github.com/aistudio/agentd/pkg/tool"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat daemon",
	Long: `Run the chat daemon in the foreground. The daemon loads the settings
file, builds the model client pool, and serves the HTTP API until it
receives SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	appLogger, err := logger.New(logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	log := appLogger.GetZerolog()
	metrics.EnsureRegistered()

	pool := llm.NewPool(cfg.LLMList, log)
	store := session.NewStore()

	registry := tool.NewRegistry(log)
	if err := tool.RegisterBuiltins(registry); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	chatService := chat.NewService(pool, store, registry, chat.Config{
		SystemPrompt: cfg.Agent.SystemPrompt,
		MaxCycles:    cfg.Agent.MaxCycles,
		Temperature:  cfg.Agent.Temperature,
		MaxTokens:    cfg.Agent.MaxTokens,
	}, log)

	srv := server.New(cfg.Server, cfg.App.Agent, pool, store, chatService, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		return srv.Stop()
	case err := <-errCh:
		return err
	}
}
