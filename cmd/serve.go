package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/Boniole/test-task-candidates-scraper/internal/api"
	"github.com/Boniole/test-task-candidates-scraper/internal/bot"
	"github.com/Boniole/test-task-candidates-scraper/internal/logger"
	"github.com/Boniole/test-task-candidates-scraper/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and, when enabled, the Telegram bot",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the "+app, zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	pipe, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	host, port := serverAddress(config)
	server := api.New(pipe, logger, host, port)

	if config.Telegram != nil && config.Telegram.Enabled {
		token, err := secrets.Load(secrets.Source{
			Name:  "telegram token",
			Value: config.Telegram.Token,
			File:  config.Telegram.TokenFile,
		})
		if err != nil {
			logger.Fatal(
				"loading telegram token",
				zap.Error(err),
				zap.String("hint", "set TELEGRAM_TOKEN_FILE environment variable or the 'telegram.token-file' key in the configuration file"),
			)
		}

		b, err := bot.New(token, pipe, logger)
		if err != nil {
			logger.Fatal("creating the telegram bot", zap.Error(err))
		}

		go func() {
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("telegram bot stopped", zap.Error(err))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down", zap.String("reason", "signal received"))
		if err := server.Shutdown(); err != nil {
			logger.Error("shutting down the http server", zap.Error(err))
		}
	}()

	if err := server.Listen(); err != nil {
		logger.Fatal("running the http server", zap.Error(err))
	}

	logger.Info("stopped")
}
