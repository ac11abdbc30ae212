package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/DucLoc1999/Dexonic-Trading/internal/quote"
	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

// AgentConfig holds configuration for the AI agent.
type AgentConfig struct {
	// OpenRouter / LLM settings.
	OpenRouterAPIKey string
	// Model name as understood by OpenRouter, e.g. "openai/gpt-4.1-mini".
	Model string

	Logger *logrus.Logger
}

// Quoter is the slice of the quote pipeline the agent drives
type Quoter interface {
	Aggregate(ctx context.Context, req quote.Request) (*quote.AggregatedResult, error)
}

// Agent turns natural-language swap questions into quote requests and
// summarises the aggregated result back into prose.
type Agent struct {
	llm    llms.Model
	quoter Quoter
	logger *logrus.Logger
}

// NewAgent creates a new Agent backed by OpenRouter's OpenAI-compatible API.
func NewAgent(cfg AgentConfig, quoter Quoter) (*Agent, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	if cfg.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is required")
	}

	if cfg.Model == "" {
		// Sensible default OpenRouter model (can be overridden by caller).
		cfg.Model = "openai/gpt-4.1-mini"
	}

	llm, err := openai.New(
		openai.WithToken(cfg.OpenRouterAPIKey),
		openai.WithBaseURL("https://openrouter.ai/api/v1"),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenRouter LLM: %w", err)
	}

	cfg.Logger.WithField("model", cfg.Model).Info("initialized AI agent")

	return &Agent{
		llm:    llm,
		quoter: quoter,
		logger: cfg.Logger,
	}, nil
}

// swapIntent is the structured request extracted from the question
type swapIntent struct {
	InputSymbol  string `json:"input_symbol"`
	OutputSymbol string `json:"output_symbol"`
	Amount       string `json:"amount"`
	Error        string `json:"error"`
}

// AskResult is the structured result of an Ask call.
type AskResult struct {
	InputToken  string
	OutputToken string
	AmountIn    uint64
	Answer      string
}

// Ask extracts a swap intent from the question, runs it through the
// quote pipeline, and summarises the outcome.
func (a *Agent) Ask(ctx context.Context, question string) (*AskResult, error) {
	intent, err := a.extractIntent(ctx, question)
	if err != nil {
		return nil, err
	}

	req, err := intentToRequest(intent)
	if err != nil {
		return nil, err
	}

	res, err := a.quoter.Aggregate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("quote aggregation failed: %w", err)
	}

	answer, err := a.summariseResult(ctx, question, req, res)
	if err != nil {
		return nil, err
	}

	return &AskResult{
		InputToken:  req.InputToken,
		OutputToken: req.OutputToken,
		AmountIn:    req.AmountIn,
		Answer:      answer,
	}, nil
}

// extractIntent asks the LLM to encode the question as a swap intent.
func (a *Agent) extractIntent(ctx context.Context, question string) (*swapIntent, error) {
	prompt := fmt.Sprintf(`
You are an intent parser for an Aptos token swap service.
%s
User question:
%s
`, intentSchemaDescription, question)

	resp, err := llms.GenerateFromSinglePrompt(
		ctx,
		a.llm,
		prompt,
		llms.WithMaxTokens(256),
	)
	if err != nil {
		return nil, fmt.Errorf("LLM intent extraction failed: %w", err)
	}

	var intent swapIntent
	if err := json.Unmarshal([]byte(sanitizeJSON(resp)), &intent); err != nil {
		return nil, fmt.Errorf("malformed intent from LLM: %w", err)
	}
	if intent.Error != "" {
		return nil, fmt.Errorf("cannot answer: %s", intent.Error)
	}

	a.logger.WithFields(logrus.Fields{
		"in":     intent.InputSymbol,
		"out":    intent.OutputSymbol,
		"amount": intent.Amount,
	}).Debug("extracted swap intent")

	return &intent, nil
}

// intentToRequest resolves symbols against the token catalog and converts
// the human amount into raw units
func intentToRequest(intent *swapIntent) (quote.Request, error) {
	inToken, ok := registry.TokenTypes[strings.ToUpper(strings.TrimSpace(intent.InputSymbol))]
	if !ok {
		return quote.Request{}, fmt.Errorf("unknown input token %q", intent.InputSymbol)
	}
	outToken, ok := registry.TokenTypes[strings.ToUpper(strings.TrimSpace(intent.OutputSymbol))]
	if !ok {
		return quote.Request{}, fmt.Errorf("unknown output token %q", intent.OutputSymbol)
	}

	d, err := decimal.NewFromString(strings.TrimSpace(intent.Amount))
	if err != nil {
		return quote.Request{}, fmt.Errorf("invalid amount %q", intent.Amount)
	}
	raw := d.Shift(int32(registry.Decimals(inToken))).Floor().BigInt()
	if !raw.IsUint64() || raw.Uint64() == 0 {
		return quote.Request{}, fmt.Errorf("amount %q out of range", intent.Amount)
	}

	req := quote.Request{
		InputToken:  inToken,
		OutputToken: outToken,
		AmountIn:    raw.Uint64(),
	}
	return req, req.Validate()
}

// summariseResult asks the LLM to answer the question given the quotes.
func (a *Agent) summariseResult(ctx context.Context, question string, req quote.Request, res *quote.AggregatedResult) (string, error) {
	quotesJSON, err := json.Marshal(res)
	if err != nil {
		return "", fmt.Errorf("failed to marshal quotes: %w", err)
	}

	prompt := fmt.Sprintf(`
You are a helpful assistant for an Aptos DEX aggregator.

User question:
%s

Swap that was quoted: %d raw units of %s into %s.

Aggregated quotes in JSON (quotes are sorted best first, can be empty):
%s

Instructions:
- If the quote list is empty, say no venue could price the swap right now.
- Otherwise, lead with the best venue and its output, then mention how many
  venues responded.
- Use the human-readable decimal amounts, not raw units.
- Keep it to a few short sentences.
`, question, req.AmountIn, req.InputToken, req.OutputToken, quotesJSON)

	resp, err := llms.GenerateFromSinglePrompt(
		ctx,
		a.llm,
		prompt,
		llms.WithMaxTokens(512),
	)
	if err != nil {
		return "", fmt.Errorf("LLM summarisation failed: %w", err)
	}

	return strings.TrimSpace(resp), nil
}

// sanitizeJSON strips code fences from the LLM output.
func sanitizeJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		if strings.HasPrefix(strings.ToLower(s), "json") {
			s = s[4:]
		}
	}
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
