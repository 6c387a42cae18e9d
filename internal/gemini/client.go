// Package gemini implements the navigator's generative collaborator on top of
// the Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultFastModel = "gemini-2.5-flash"
	DefaultProModel  = "gemini-2.5-pro"
)

type Config struct {
	APIKey    string
	FastModel string
	ProModel  string
}

// generator is the part of genai.Models the client calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Researcher produces free-text market research for a role.
type Researcher interface {
	Research(ctx context.Context, role string) (string, error)
}

// Client implements navigator.Collaborator.
type Client struct {
	models     generator
	researcher Researcher
	fast       string
	pro        string
	logger     *zap.Logger
}

var _ navigator.Collaborator = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("empty GOOGLE_API_KEY")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	cfg = withDefaults(cfg)
	researcher, err := NewMarketResearcher(ctx, cfg.APIKey, cfg.ProModel)
	if err != nil {
		return nil, err
	}
	return newClient(client.Models, researcher, cfg, logger), nil
}

func newClient(models generator, researcher Researcher, cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = withDefaults(cfg)
	return &Client{
		models:     models,
		researcher: researcher,
		fast:       cfg.FastModel,
		pro:        cfg.ProModel,
		logger:     logger,
	}
}

func withDefaults(cfg Config) Config {
	if cfg.FastModel == "" {
		cfg.FastModel = DefaultFastModel
	}
	if cfg.ProModel == "" {
		cfg.ProModel = DefaultProModel
	}
	return cfg
}

func (c *Client) GenerateCareerQuiz(ctx context.Context, age int) ([]navigator.QuizQuestion, error) {
	return generateJSON[[]navigator.QuizQuestion](ctx, c, "generate-quiz", c.fast, quizPrompt(age), quizSchema)
}

func (c *Client) EvaluateQuizResults(ctx context.Context, age int, answers []navigator.QuizAnswer) (navigator.Under18Result, error) {
	prompt, err := evaluationPrompt(age, answers)
	if err != nil {
		return navigator.Under18Result{}, fmt.Errorf("%w: %w", navigator.ErrCollaborator, err)
	}
	return generateJSON[navigator.Under18Result](ctx, c, "evaluate-quiz", c.pro, prompt, under18Schema)
}

func (c *Client) AnalyzeProfile(ctx context.Context, sources navigator.Sources) (navigator.Profile, error) {
	return generateJSON[navigator.Profile](ctx, c, "analyze-profile", c.fast, profilePrompt(sources), profileSchema)
}

// ArchitectCareerPlan runs the search-grounded research pass, then the
// schema-constrained plan synthesis seeded with its text.
func (c *Client) ArchitectCareerPlan(ctx context.Context, profile navigator.Profile, role string) (navigator.CareerPlan, error) {
	research, err := c.researcher.Research(ctx, role)
	if err != nil {
		return navigator.CareerPlan{}, fmt.Errorf("%w: market research: %w", navigator.ErrCollaborator, err)
	}
	prompt, err := planPrompt(profile, role, research)
	if err != nil {
		return navigator.CareerPlan{}, fmt.Errorf("%w: %w", navigator.ErrCollaborator, err)
	}
	return generateJSON[navigator.CareerPlan](ctx, c, "architect-plan", c.pro, prompt, careerPlanSchema)
}

// generateJSON asks model for a response constrained to schema and decodes it
// into T. Empty or malformed output wraps navigator.ErrCollaborator.
func generateJSON[T any](ctx context.Context, c *Client, op, model, prompt string, schema *genai.Schema) (T, error) {
	var out T
	started := time.Now()

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return out, fmt.Errorf("%w: %s: %w", navigator.ErrCollaborator, op, err)
	}

	text := ""
	if resp != nil {
		text = resp.Text()
	}
	c.logger.Debug("gemini response",
		zap.String("op", op),
		zap.String("model", model),
		zap.Int("bytes", len(text)),
		zap.Duration("duration", time.Since(started)))

	if strings.TrimSpace(text) == "" {
		return out, fmt.Errorf("%w: %s: empty response from model", navigator.ErrCollaborator, op)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(CleanJson(text))))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("%w: %s: json unmarshal error: %w", navigator.ErrCollaborator, op, err)
	}
	return out, nil
}

// CleanJson strips a markdown code fence around a JSON payload.
func CleanJson(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
