package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Boniole/test-task-candidates-scraper/internal/ai"
	"github.com/Boniole/test-task-candidates-scraper/internal/ai/gemini"
	"github.com/Boniole/test-task-candidates-scraper/internal/pipeline"
	"github.com/Boniole/test-task-candidates-scraper/internal/secrets"
	"github.com/Boniole/test-task-candidates-scraper/internal/workua"
)

const (
	app = "candidates-scraper"
)

type Config struct {
	Server   *ServerConfig    `mapstructure:"server"`
	Workua   *WorkuaConfig    `mapstructure:"workua"`
	Pipeline *pipeline.Config `mapstructure:"pipeline"`
	AI       *AIConfig        `mapstructure:"ai"`
	Telegram *TelegramConfig  `mapstructure:"telegram"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type WorkuaConfig struct {
	BaseURL   string `mapstructure:"base-url"`
	UserAgent string `mapstructure:"user-agent"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type TelegramConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"token-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "candidates-scraper searches resumes on work.ua and ranks them with an AI evaluation",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("telegram.token-file", "TELEGRAM_TOKEN_FILE"); err != nil {
		log.Fatalf("binding TELEGRAM_TOKEN_FILE environment variable: %v", err)
	}

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8000)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is "+app+".yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config is needed only for the serve and search commands.
	if serveCmd.CalledAs() == "" && searchCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}

	return config, nil
}

// buildPipeline wires the site client and the AI evaluator into a pipeline.
func buildPipeline(ctx context.Context, config *Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	site := workua.New(logger)
	if config.Workua != nil {
		if config.Workua.BaseURL != "" {
			site.BaseURL = strings.TrimRight(config.Workua.BaseURL, "/")
		}
		if config.Workua.UserAgent != "" {
			site.UserAgent = config.Workua.UserAgent
		}
	}

	evaluator, err := newEvaluator(ctx, config.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("building ai evaluator: %w", err)
	}

	return pipeline.New(site, site, evaluator, config.Pipeline, logger), nil
}

func newEvaluator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Evaluator, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required under the ai section")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	aiLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, aiLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewEvaluator(generator, aiLogger, cfg.Gemini.MaxLogLength), nil
}

func serverAddress(config *Config) (string, int) {
	host := "0.0.0.0"
	port := 8000

	if config.Server != nil {
		if config.Server.Host != "" {
			host = config.Server.Host
		}
		if config.Server.Port != 0 {
			port = config.Server.Port
		}
	}

	return host, port
}
