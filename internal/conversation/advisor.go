package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/ares-whatsapp-router/internal/observability/metrics"
	"github.com/wolfman30/ares-whatsapp-router/pkg/logging"
)

// SalesSystemPrompt returns the instruction set for catalog-grounded answers.
func SalesSystemPrompt(businessName string) string {
	return fmt.Sprintf(`Eres un asesor de ventas profesional de %s.
Tu misión es responder consultas sobre equipos médico-estéticos, explicar beneficios y fomentar la venta.
Si el cliente parece interesado, ofrece agendar una demo o hablar con un asesor humano.

Reglas:
- Sé claro, formal y amigable.
- Usa únicamente el contexto provisto (catálogo).
- Si no encuentras información exacta en el catálogo, responde que necesitas consultar con un asesor.
- Nunca inventes precios ni características que no estén en el contexto.
- Responde en español.`, businessName)
}

func salesUserPrompt(businessName, grounding, query string) string {
	return fmt.Sprintf("Contexto del catálogo:\n%s\n\nPregunta del cliente:\n%s\n\nPor favor, responde como asesor de ventas de %s.",
		grounding, query, businessName)
}

// SalesAdvisor answers customer questions from catalog text through an LLM.
type SalesAdvisor struct {
	llm          LLMClient
	businessName string
	model        string
	maxTokens    int32
	temperature  float32
	logger       *logging.Logger
	metrics      *metrics.RouterMetrics
}

type AdvisorConfig struct {
	BusinessName string
	Model        string
	MaxTokens    int
	Temperature  float64
}

func NewSalesAdvisor(llm LLMClient, cfg AdvisorConfig, logger *logging.Logger, m *metrics.RouterMetrics) *SalesAdvisor {
	if llm == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	return &SalesAdvisor{
		llm:          llm,
		businessName: cfg.BusinessName,
		model:        cfg.Model,
		maxTokens:    int32(cfg.MaxTokens),
		temperature:  float32(cfg.Temperature),
		logger:       logger,
		metrics:      m,
	}
}

// SystemPrompt returns the advisor's instruction set.
func (a *SalesAdvisor) SystemPrompt() string {
	return SalesSystemPrompt(a.businessName)
}

// Complete runs one grounded completion. An empty generation is returned
// as "" without error; the caller decides the default reply.
func (a *SalesAdvisor) Complete(ctx context.Context, system, grounding, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", errors.New("conversation: empty customer query")
	}
	if strings.TrimSpace(system) == "" {
		system = a.SystemPrompt()
	}

	start := time.Now()
	resp, err := a.llm.Complete(ctx, LLMRequest{
		Model:  a.model,
		System: []string{system},
		Messages: []ChatMessage{
			{Role: ChatRoleUser, Content: salesUserPrompt(a.businessName, grounding, query)},
		},
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	a.metrics.ObserveCompletion(err == nil, time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("conversation: sales completion: %w", err)
	}

	a.logger.Debug("sales completion",
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return strings.TrimSpace(resp.Text), nil
}
