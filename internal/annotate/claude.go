package annotate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"

	"github.com/worklens/worklens/internal/types"
)

// ClaudeAnnotator rewrites relationship rationales through the Anthropic
// API, batching pairs to keep request counts low.
type ClaudeAnnotator struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewClaudeAnnotator builds an annotator from the environment. The
// ANTHROPIC_API_KEY env var takes precedence over the explicit key.
func NewClaudeAnnotator(apiKey, model string) (*ClaudeAnnotator, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY", ErrAPIKeyRequired)
	}
	return &ClaudeAnnotator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}, nil
}

// verdict is one element of the model's JSON response.
type verdict struct {
	PrimaryID string `json:"primary_id"`
	RelatedID string `json:"related_id"`
	Rationale string `json:"rationale"`
}

// Annotate rewrites the rationale of each relationship it can. Pairs the
// model skips or mangles keep their mechanical rationale. Only rationale
// text flows back to the caller.
func (c *ClaudeAnnotator) Annotate(ctx context.Context, rels []types.EvidenceRelationship) ([]types.EvidenceRelationship, error) {
	out := make([]types.EvidenceRelationship, len(rels))
	copy(out, rels)

	byPair := make(map[string]int, len(out))
	for i := range out {
		byPair[out[i].PairKey()] = i
	}

	for start := 0; start < len(out); start += batchSize {
		end := start + batchSize
		if end > len(out) {
			end = len(out)
		}
		verdicts, err := c.annotateBatch(ctx, out[start:end])
		if err != nil {
			return nil, fmt.Errorf("annotating pairs %d-%d: %w", start, end-1, err)
		}
		for _, v := range verdicts {
			if v.Rationale == "" {
				continue
			}
			if i, ok := byPair[types.PairKey(v.PrimaryID, v.RelatedID)]; ok {
				out[i].Rationale = v.Rationale
			}
		}
	}
	return out, nil
}

func (c *ClaudeAnnotator) annotateBatch(ctx context.Context, batch []types.EvidenceRelationship) ([]verdict, error) {
	prompt, err := buildPrompt(batch)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	operation := func() (string, error) {
		message, err := c.client.Messages.New(ctx, params)
		if err != nil {
			if !isRetryable(err) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if len(message.Content) == 0 {
			return "", backoff.Permanent(fmt.Errorf("unexpected response format: no content blocks"))
		}
		content := message.Content[0]
		if content.Type != "text" {
			return "", backoff.Permanent(fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type))
		}
		return content.Text, nil
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Second),
		backoff.WithMaxElapsedTime(2*time.Minute),
	), ctx)
	text, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		return nil, err
	}
	return parseVerdicts(text)
}

// buildPrompt renders the batch as JSON and asks for a JSON array back.
func buildPrompt(batch []types.EvidenceRelationship) (string, error) {
	payload, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding batch: %w", err)
	}
	var b strings.Builder
	b.WriteString("You are reviewing links between engineering work items ")
	b.WriteString("(commits, merge requests, comments) and tickets. For each link ")
	b.WriteString("below, write one concise sentence explaining the connection for ")
	b.WriteString("a human reader.\n\n")
	b.WriteString("Respond with ONLY a JSON array, one object per link, with keys ")
	b.WriteString(`"primary_id", "related_id", and "rationale". Do not change ids.`)
	b.WriteString("\n\nLinks:\n")
	b.Write(payload)
	return b.String(), nil
}

// parseVerdicts extracts the JSON array from the model's reply, tolerating
// surrounding prose or a markdown fence.
func parseVerdicts(text string) ([]verdict, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model response")
	}
	var verdicts []verdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &verdicts); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}
	return verdicts, nil
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return false
}
