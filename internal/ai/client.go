package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"catalog-agent/internal/core"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared/constant"
	"golang.org/x/time/rate"
)

// rateLimitWait is the maximum time a request will queue for a token before
// failing fast (spec §5: requests queue on exhaustion up to a 10s wait).
const rateLimitWait = 10 * time.Second

// completionTimeout bounds a single language-model RPC (spec §5: 20s per call).
const completionTimeout = 20 * time.Second

// Client is the production Completer (core.Completer): it talks to the
// OpenAI Responses API and enforces the process-wide rate limit from spec §5.
type Client struct {
	openai  *openai.Client
	model   openai.ChatModel
	limiter *rate.Limiter
}

// NewClient constructs a Client against apiKey with a token-bucket rate
// limiter of requestsPerMinute (default 30 per spec §5 when ≤ 0).
func NewClient(apiKey string, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	c := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(3),
	)
	return &Client{
		openai:  &c,
		model:   openai.ChatModelGPT4o,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), requestsPerMinute),
	}
}

// waitForToken blocks until a rate-limit token is available or rateLimitWait
// elapses, whichever comes first. Callers that fail to acquire a token should
// surface a resource error (503, spec §7).
func (c *Client) waitForToken(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, rateLimitWait)
	defer cancel()
	if err := c.limiter.Wait(waitCtx); err != nil {
		return fmt.Errorf("language model rate limit exhausted: %w", err)
	}
	return nil
}

// Complete implements core.Completer for plain free-text completions, used
// by the Orchestrator's final answer-composition call.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.waitForToken(ctx); err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(userPrompt),
		},
	}

	resp, err := c.openai.Responses.New(ctx, params)
	if err != nil {
		return "", wrapOpenAIErr(err)
	}
	logUsage("complete", resp.Usage)

	text := resp.OutputText()
	if text == "" {
		return "", errors.New("language model returned an empty completion")
	}
	return text, nil
}

// CompleteStructured implements core.Completer for JSON-schema-constrained
// output, used by the Outlet SQL Gate (core.generatedQuery) and by any
// future structured-output consumer.
func (c *Client) CompleteStructured(ctx context.Context, systemPrompt, userPrompt, schemaName string, schema map[string]any, out any) error {
	if err := c.waitForToken(ctx); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	params := responses.ResponseNewParams{
		Model:        c.model,
		Instructions: openai.String(systemPrompt),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(userPrompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:   constant.JSONSchema("json_schema"),
					Name:   schemaName,
					Strict: openai.Bool(true),
					Schema: schema,
				},
			},
		},
	}

	resp, err := c.openai.Responses.New(ctx, params)
	if err != nil {
		return wrapOpenAIErr(err)
	}
	logUsage(schemaName, resp.Usage)

	content := resp.OutputText()
	if content == "" {
		return errors.New("language model returned empty structured content")
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode structured completion for %s: %w", schemaName, err)
	}
	return nil
}

func wrapOpenAIErr(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		log.Printf("openai api error %d: %s", apiErr.StatusCode, apiErr.DumpResponse(true))
	}
	return fmt.Errorf("language model request failed: %w", err)
}

func logUsage(label string, usage responses.ResponseUsage) {
	if usage.TotalTokens > 0 {
		log.Printf("language model usage (%s) — input: %d, output: %d, total: %d tokens",
			label, usage.InputTokens, usage.OutputTokens, usage.TotalTokens)
	}
}

var _ core.Completer = (*Client)(nil)
