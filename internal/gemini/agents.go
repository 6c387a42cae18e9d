package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	adkgemini "google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/geminitool"
	"google.golang.org/genai"
)

const researchAgentName = "market_insights_agent"

// MarketResearcher is a search-enabled ADK agent. Every Research call gets a
// throwaway session.
type MarketResearcher struct {
	runner   *runner.Runner
	sessions session.Service
	appName  string
}

var _ Researcher = (*MarketResearcher)(nil)

func NewMarketResearcher(ctx context.Context, apiKey, model string) (*MarketResearcher, error) {
	m, err := adkgemini.NewModel(ctx, model, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}

	researcher, err := llmagent.New(llmagent.Config{
		Name:        researchAgentName,
		Model:       m,
		Description: "Researches live market requirements and learning resources for a role",
		Instruction: researchInstruction,
		Tools:       []tool.Tool{geminitool.GoogleSearch{}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %w", err)
	}

	sessions := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        researcher.Name(),
		Agent:          researcher,
		SessionService: sessions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return &MarketResearcher{runner: r, sessions: sessions, appName: researcher.Name()}, nil
}

func (m *MarketResearcher) Research(ctx context.Context, role string) (string, error) {
	created, err := m.sessions.Create(ctx, &session.CreateRequest{
		AppName:   m.appName,
		UserID:    "navigator",
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create agent session: %w", err)
	}
	sess := created.Session
	defer m.sessions.Delete(context.WithoutCancel(ctx), &session.DeleteRequest{
		AppName:   sess.AppName(),
		UserID:    sess.UserID(),
		SessionID: sess.ID(),
	})

	stream := m.runner.Run(ctx, sess.UserID(), sess.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: researchPrompt(role)},
		},
	}, agent.RunConfig{})

	var output strings.Builder
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event == nil || !event.IsFinalResponse() || event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			output.WriteString(part.Text)
		}
	}

	if strings.TrimSpace(output.String()) == "" {
		return "", fmt.Errorf("empty agent response")
	}
	return output.String(), nil
}
