package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Boniole/test-task-candidates-scraper/internal/logger"
	"github.com/Boniole/test-task-candidates-scraper/internal/pipeline"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowTop       = "Show the top resumes"
	PromptResumesToFile = "Dump resumes to file"
	PromptExit          = "Exit"

	topSize = 5
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowTop, PromptResumesToFile, PromptExit},
}

var searchCmd = &cobra.Command{
	Use:   "search <position>",
	Short: "Search resumes for a position, evaluate them and rank the result",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		search(args)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

// search is the one-shot mode: scan, evaluate, then let the user inspect the result.
func search(args []string) {
	ctx := context.Background()

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

	pipe, err := buildPipeline(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	position := strings.Join(args, " ")
	logger.Info("starting the search", zap.String("position", position))

	result := pipe.Run(ctx, position)
	if result.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no resumes found"))
		return
	}

	logger.Info("search finished",
		zap.Int("count", result.Len()),
		zap.Int("scored", result.Scored()),
	)

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, result, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, result *pipeline.Result, logger *zap.Logger) error {
	switch action {
	case PromptShowTop:
		pretty, _ := json.MarshalIndent(result.Top(topSize), "", "  ")
		logger.Info(string(pretty), zap.Int("resumes count", result.Len()))
		return nil
	case PromptResumesToFile:
		filename, err := result.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}
