// Package coach produces short AI-generated coaching text from the user's
// daily summaries.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/meltforce/fitlog/internal/hydration"
	"github.com/meltforce/fitlog/internal/nutrition"
	"github.com/meltforce/fitlog/internal/progress"
)

// Input is everything the coach sees about the user's day.
type Input struct {
	Date      string
	Nutrition *nutrition.Summary
	Water     hydration.Summary
	Frequency []progress.Frequency
}

// Service generates coaching text. Satisfied by *Coach and by test fakes.
type Service interface {
	DailyBriefing(ctx context.Context, in Input) (string, error)
}

// Coach wraps an LLM with the coaching prompt.
type Coach struct {
	llm llms.Model
	log *slog.Logger
}

// New creates a Coach backed by the OpenAI-compatible API.
func New(apiKey, model string, log *slog.Logger) (*Coach, error) {
	llm, err := openai.New(openai.WithToken(apiKey), openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	return &Coach{llm: llm, log: log}, nil
}

// NewWithModel creates a Coach over an existing model. Used in tests.
func NewWithModel(m llms.Model, log *slog.Logger) *Coach {
	return &Coach{llm: m, log: log}
}

const systemPrompt = `You are a supportive fitness coach inside a personal
fitness tracker. You receive one day's nutrition, hydration, and training
numbers. Reply with 3-5 short sentences of plain-text encouragement and one
concrete suggestion for tomorrow. No markdown, no lists, no emoji.`

// DailyBriefing renders the day's numbers into a prompt and returns the
// model's coaching text. No retry: a failed call surfaces once.
func (c *Coach) DailyBriefing(ctx context.Context, in Input) (string, error) {
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, renderInput(in)),
		},
		llms.WithTemperature(0.7),
	)
	if err != nil {
		return "", fmt.Errorf("generating coaching text: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generating coaching text: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// renderInput flattens the day's summaries into the prompt body.
func renderInput(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", in.Date)

	if n := in.Nutrition; n != nil {
		fmt.Fprintf(&b, "Calories: %.0f of %.0f (%d%%)\n", n.Calories.Consumed, n.Calories.Goal, n.Calories.Percent)
		fmt.Fprintf(&b, "Protein: %.0fg of %.0fg, carbs %.0fg of %.0fg, fats %.0fg of %.0fg\n",
			n.Protein.Consumed, n.Protein.Goal,
			n.Carbs.Consumed, n.Carbs.Goal,
			n.Fats.Consumed, n.Fats.Goal)
		for _, m := range n.Meals {
			fmt.Fprintf(&b, "Meal (%s): %s, %.0f kcal\n", m.Type, m.Label, m.Calories)
		}
	}

	fmt.Fprintf(&b, "Water: %dml of %dml (%d%%)\n", in.Water.TotalML, in.Water.GoalML, in.Water.Percent)

	trained := make([]string, 0, len(in.Frequency))
	for _, f := range in.Frequency {
		if f.Count > 0 {
			trained = append(trained, fmt.Sprintf("%s x%d", f.BodyPart, f.Count))
		}
	}
	if len(trained) > 0 {
		fmt.Fprintf(&b, "Body parts trained this week: %s\n", strings.Join(trained, ", "))
	} else {
		b.WriteString("No training logged this week.\n")
	}
	return b.String()
}
