// Package assist asks a hosted model for the route of a trip description
// the rule based reader could not place.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sdk "github.com/github/copilot-sdk/go"
	"github.com/rs/zerolog/log"
)

var ErrNoRoute = errors.New("assistant returned no route")

// RouteParams is the argument of the set_route tool.
type RouteParams struct {
	From string `json:"from" jsonschema:"Departure city, airport name or IATA code"`
	To   string `json:"to" jsonschema:"Arrival city, airport name or IATA code"`
}

type Config struct {
	Model    string
	LogLevel string
}

func DefaultConfig() Config {
	return Config{
		Model:    "gpt-4.1",
		LogLevel: "error",
	}
}

// Copilot implements interpreter.RouteAssistant on a copilot-sdk client.
// Each call runs in its own session.
type Copilot struct {
	client *sdk.Client
	model  string
}

func NewCopilot(config Config) (*Copilot, error) {
	if config.Model == "" {
		config.Model = DefaultConfig().Model
	}
	if config.LogLevel == "" {
		config.LogLevel = DefaultConfig().LogLevel
	}

	client := sdk.NewClient(&sdk.ClientOptions{
		LogLevel: config.LogLevel,
	})
	if err := client.Start(); err != nil {
		return nil, fmt.Errorf("start copilot client: %w", err)
	}
	return &Copilot{client: client, model: config.Model}, nil
}

func (c *Copilot) Close() {
	c.client.Stop()
}

func (c *Copilot) SuggestRoute(ctx context.Context, query string) (string, string, error) {
	var (
		mu       sync.Mutex
		captured *RouteParams
	)
	done := make(chan struct{}, 1)
	errCh := make(chan error, 1)

	tool := sdk.DefineTool("set_route", "Record the departure and arrival place of the trip",
		func(params RouteParams, inv sdk.ToolInvocation) (any, error) {
			mu.Lock()
			captured = &params
			mu.Unlock()
			select {
			case done <- struct{}{}:
			default:
			}
			return map[string]string{"status": "recorded"}, nil
		})

	session, err := c.client.CreateSession(&sdk.SessionConfig{
		Model:         c.model,
		Streaming:     false,
		Tools:         []sdk.Tool{tool},
		SystemMessage: systemMessage(),
	})
	if err != nil {
		return "", "", fmt.Errorf("create session: %w", err)
	}
	defer session.Destroy()

	session.On(func(event sdk.SessionEvent) {
		switch event.Type {
		case "session.idle":
			select {
			case done <- struct{}{}:
			default:
			}
		case "session.error":
			msg := "session error"
			if event.Data.Content != nil {
				msg = *event.Data.Content
			}
			select {
			case errCh <- errors.New(msg):
			default:
			}
		}
	})

	go func() {
		if _, err := session.Send(sdk.MessageOptions{Prompt: query}); err != nil {
			select {
			case errCh <- fmt.Errorf("send message: %w", err):
			default:
			}
		}
	}()

	start := time.Now()
	select {
	case <-ctx.Done():
		return "", "", ctx.Err()
	case err := <-errCh:
		return "", "", err
	case <-done:
	}

	mu.Lock()
	params := captured
	mu.Unlock()
	if params == nil {
		return "", "", ErrNoRoute
	}

	from, to, err := clean(*params)
	if err != nil {
		return "", "", err
	}
	log.Debug().Str("from", from).Str("to", to).Dur("took", time.Since(start)).Msg("Assistant route captured")
	return from, to, nil
}

// clean trims the tool arguments and rejects answers that are empty or
// name the same place twice.
func clean(p RouteParams) (string, string, error) {
	from := strings.TrimSpace(p.From)
	to := strings.TrimSpace(p.To)
	if from == "" || to == "" {
		return "", "", ErrNoRoute
	}
	if strings.EqualFold(from, to) {
		return "", "", fmt.Errorf("%w: origin and destination are both %q", ErrNoRoute, from)
	}
	return from, to, nil
}

func systemMessage() *sdk.SystemMessageConfig {
	return &sdk.SystemMessageConfig{
		Mode: "replace",
		Content: `You read flight search requests written by travellers.

Work out where the trip starts and where it goes, then call the set_route tool once.
Use the city or airport the traveller means, e.g. "New York" or "LHR".
If the departure place is not stated, do not guess: answer without calling the tool.
Do not reply with any other text.`,
	}
}
