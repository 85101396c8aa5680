// Package genesis drafts fighter stat blocks from a free-text description
// using an Anthropic model.
package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fightbook/internal/config"
	"github.com/cory-johannsen/fightbook/internal/game/fighter"
)

// ErrDisabled is returned by New when no API key is configured.
var ErrDisabled = errors.New("genesis: no api key configured")

// ErrNoStatBlock means the model reply held no parsable JSON object.
var ErrNoStatBlock = errors.New("genesis: reply contained no stat block")

// maxAttempts bounds how often the model is re-asked after a validation failure.
const maxAttempts = 2

// MessageClient is the Messages API surface Generator uses.
// *anthropic.MessageService implements it.
type MessageClient interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Generator turns descriptions into validated registrations.
type Generator struct {
	client    MessageClient
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// New builds a Generator backed by the Anthropic API.
//
// Postcondition: returns ErrDisabled when cfg has no API key.
func New(cfg config.GenesisConfig, logger *zap.Logger) (*Generator, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return NewWithClient(&client.Messages, cfg.Model, cfg.MaxTokens, logger), nil
}

// NewWithClient builds a Generator on an existing client.
//
// Precondition: client and logger must be non-nil; maxTokens >= 1.
func NewWithClient(client MessageClient, model string, maxTokens int64, logger *zap.Logger) *Generator {
	return &Generator{client: client, model: model, maxTokens: maxTokens, logger: logger}
}

const systemPrompt = `You design fighters for a mixed martial arts simulator.
Reply with a single JSON object and nothing else. Keys are skill names, values are integers.
Use exactly these keys: ` + "%s" + `.
Every value must be between 20 and 95 inclusive.
The sum over all keys of (value - 30), counting only values above 30, must not exceed 1200.
Strong fighters have clear weaknesses.`

// Generate asks the model for stats matching description and validates
// them under name. A reply that breaks the registration rules is sent
// back once with the violations listed.
//
// Postcondition: on success the Registration passed fighter.NewRegistration.
func (g *Generator) Generate(ctx context.Context, name, description string) (fighter.Registration, error) {
	clean, err := fighter.SanitizeName(name)
	if err != nil {
		return fighter.Registration{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return fighter.Registration{}, fmt.Errorf("description is required: %w", fighter.ErrInvalidRegistration)
	}

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(
			fmt.Sprintf("Fighter name: %s\nDescription: %s", clean, description))),
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, err := g.ask(ctx, messages)
		if err != nil {
			return fighter.Registration{}, err
		}
		stats, err := ParseStatBlock(reply)
		if err == nil {
			var reg fighter.Registration
			reg, err = fighter.NewRegistration(clean, stats)
			if err == nil {
				g.logger.Info("genesis drafted fighter",
					zap.String("name", reg.Name),
					zap.Int("attempt", attempt),
				)
				return reg, nil
			}
		}
		lastErr = err
		g.logger.Debug("genesis draft rejected", zap.Int("attempt", attempt), zap.Error(err))
		messages = append(messages,
			anthropic.NewAssistantMessage(anthropic.NewTextBlock(reply)),
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				"That stat block was rejected: "+err.Error()+". Reply with a corrected JSON object only.")),
		)
	}
	return fighter.Registration{}, fmt.Errorf("genesis: no valid draft after %d attempts: %w", maxAttempts, lastErr)
}

func (g *Generator) ask(ctx context.Context, messages []anthropic.MessageParam) (string, error) {
	msg, err := g.client.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: fmt.Sprintf(systemPrompt, strings.Join(skillKeys(), ", "))},
		},
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("genesis: calling model: %w", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// skillKeys lists the full-format attributes the model is asked for.
func skillKeys() []string {
	keys := make([]string, 0, len(fighter.BudgetedStats))
	for _, k := range fighter.BudgetedStats {
		switch k {
		case "grappling", "stamina", "power", "speed":
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// ParseStatBlock extracts the outermost JSON object from reply. Prose or
// code fences around the object are ignored.
func ParseStatBlock(reply string) (map[string]any, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end < start {
		return nil, ErrNoStatBlock
	}
	var stats map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &stats); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoStatBlock, err)
	}
	if len(stats) == 0 {
		return nil, ErrNoStatBlock
	}
	return stats, nil
}
