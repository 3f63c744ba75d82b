// Command advisor-check asks the configured sales advisor one question
// against the configured catalog, for verifying provider credentials and
// catalog access before a deploy.
//
//	advisor-check "¿Cuánto cuesta el láser IPL?"
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/ares-whatsapp-router/cmd/mainconfig"
	"github.com/wolfman30/ares-whatsapp-router/internal/app/bootstrap"
	"github.com/wolfman30/ares-whatsapp-router/internal/catalog"
	appconfig "github.com/wolfman30/ares-whatsapp-router/internal/config"
	"github.com/wolfman30/ares-whatsapp-router/internal/conversation"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

const defaultQuestion = "¿Qué equipos de depilación tienen disponibles?"

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	question := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if question == "" {
		question = defaultQuestion
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	answer, err := run(ctx, cfg, question, logger)
	if err != nil {
		logger.Error("advisor check failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(answer)
}

func run(ctx context.Context, cfg *appconfig.Config, question string, logger *logging.Logger) (string, error) {
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("load aws config: %w", err)
	}

	source, err := bootstrap.BuildCatalogSource(cfg, awsCfg)
	if err != nil {
		return "", err
	}
	start := time.Now()
	grounding, err := catalog.NewStore(source, 0, logger, nil).Text(ctx, cfg.CatalogDocument)
	if err != nil {
		return "", fmt.Errorf("catalog %s: %w", cfg.CatalogDocument, err)
	}
	logger.Info("catalog loaded", "document", cfg.CatalogDocument, "chars", len(grounding), "elapsed", time.Since(start).String())

	llm, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		return "", err
	}
	advisor := conversation.NewSalesAdvisor(llm, conversation.AdvisorConfig{
		BusinessName: cfg.BusinessName,
		MaxTokens:    cfg.LLMMaxTokens,
		Temperature:  cfg.LLMTemperature,
	}, logger, nil)

	start = time.Now()
	answer, err := advisor.Complete(ctx, "", grounding, question)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", errors.New("advisor returned an empty answer")
	}
	logger.Info("advisor answered", "provider", cfg.LLMProvider, "elapsed", time.Since(start).String())
	return answer, nil
}
