package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"

	"github.com/shlee-lab/telegram-simple-llm-bot/internal/adapter/health"
	"github.com/shlee-lab/telegram-simple-llm-bot/internal/adapter/telegram"
	"github.com/shlee-lab/telegram-simple-llm-bot/internal/config"
	"github.com/shlee-lab/telegram-simple-llm-bot/internal/infra/gemini"
	"github.com/shlee-lab/telegram-simple-llm-bot/internal/observability"
	"github.com/shlee-lab/telegram-simple-llm-bot/internal/usecase"
)

// Version is set via ldflags at build time.
var Version = "dev"

var envFile string

var rootCmd = &cobra.Command{
	Use:   "telegram-llm-bot",
	Short: "Relay Telegram messages to Google Gemini and reply with the answer",
	Long: `Long-polls Telegram for messages. /start gets a greeting; any other text
is sent to Gemini as a single prompt and the answer is posted back to the chat.
Set ALLOWED_USER_IDS to restrict who may reach the model.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "telegram-llm-bot %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment (optional)")
	rootCmd.AddCommand(versionCmd)
}

func run(ctx context.Context) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		tp, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn("tracer shutdown", "error", err)
			}
		}()
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	bot.Debug = false
	log.Info("authorized on telegram", "username", bot.Self.UserName, "config", cfg)
	if cfg.AllowList.Open() {
		log.Warn("ALLOWED_USER_IDS is empty, every sender can reach the model")
	}

	llm := gemini.NewClient(cfg.GeminiAPIKey,
		gemini.WithBaseURL(cfg.GeminiBaseURL),
		gemini.WithModel(cfg.GeminiModel),
	)
	relay := usecase.NewRelay(llm, telegram.NewSender(bot),
		usecase.WithAuthorizer(cfg.AllowList),
		usecase.WithTimeout(cfg.LLMTimeout),
		usecase.WithLogger(log),
	)

	if cfg.HealthAddr != "" {
		go func() {
			if err := health.NewServer(cfg.HealthAddr, log).Run(ctx); err != nil {
				log.Error("health endpoint stopped", "error", err)
			}
		}()
	}

	handler := telegram.NewHandler(bot, relay, log)
	handler.SetPollTimeout(cfg.PollTimeout)
	handler.SetShutdownGrace(cfg.ShutdownGrace)
	log.Info("bot started")
	handler.Run(ctx)
	log.Info("bot stopped")
	return nil
}
