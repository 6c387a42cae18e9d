package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type call struct {
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

type fakeModels struct {
	replies []string
	err     error
	calls   []call
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls = append(f.calls, call{model: model, prompt: contents[0].Parts[0].Text, config: config})
	if f.err != nil {
		return nil, f.err
	}
	text := f.replies[0]
	f.replies = f.replies[1:]
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}}},
	}, nil
}

type fakeResearcher struct {
	text string
	err  error
	role string
}

func (f *fakeResearcher) Research(_ context.Context, role string) (string, error) {
	f.role = role
	return f.text, f.err
}

func TestGenerateCareerQuiz(t *testing.T) {
	models := &fakeModels{replies: []string{"```json\n[{\"question\":\"Pick\",\"options\":[\"A\",\"B\",\"C\",\"D\"]}]\n```"}}
	c := newClient(models, nil, Config{}, nil)

	quiz, err := c.GenerateCareerQuiz(context.Background(), 14)
	require.NoError(t, err)
	assert.Equal(t, []navigator.QuizQuestion{{Question: "Pick", Options: []string{"A", "B", "C", "D"}}}, quiz)

	require.Len(t, models.calls, 1)
	got := models.calls[0]
	assert.Equal(t, DefaultFastModel, got.model)
	assert.Contains(t, got.prompt, "14-year-old")
	assert.Equal(t, "application/json", got.config.ResponseMIMEType)
	assert.Equal(t, genai.TypeArray, got.config.ResponseSchema.Type)
}

func TestEvaluateQuizResultsUsesProModel(t *testing.T) {
	models := &fakeModels{replies: []string{`{"recommendedPaths":[{"title":"Vet","description":"d","why":"w","skillsToStartNow":["biology"]}],"generalAdvice":"Volunteer."}`}}
	c := newClient(models, nil, Config{ProModel: "pro-x"}, nil)

	res, err := c.EvaluateQuizResults(context.Background(), 13, []navigator.QuizAnswer{{Question: "Pets?", Answer: "Yes"}})
	require.NoError(t, err)
	assert.Equal(t, "Volunteer.", res.GeneralAdvice)
	assert.Equal(t, "pro-x", models.calls[0].model)
	assert.Contains(t, models.calls[0].prompt, `"answer":"Yes"`)
}

func TestAnalyzeProfileFillsMissingSources(t *testing.T) {
	models := &fakeModels{replies: []string{`{"name":"A","currentTitle":"Dev","experience":[],"skills":[{"name":"Go","level":"Expert","category":"Technical"}],"education":[]}`}}
	c := newClient(models, nil, Config{}, nil)

	p, err := c.AnalyzeProfile(context.Background(), navigator.Sources{GithubInfo: "gopher"})
	require.NoError(t, err)
	assert.Equal(t, navigator.LevelExpert, p.Skills[0].Level)

	prompt := models.calls[0].prompt
	assert.Contains(t, prompt, "SOURCE: LINKEDIN\nN/A")
	assert.Contains(t, prompt, "SOURCE: GITHUB\ngopher")
	assert.Contains(t, prompt, "SOURCE: RESUME\nN/A")
}

func TestArchitectCareerPlanSeedsResearch(t *testing.T) {
	plan := `{"dreamRole":"SRE","marketAnalysis":"hot","gaps":[{"skill":"Kubernetes","importance":7,"gapDescription":"g","marketDemand":"high"}],` +
		`"roadmap":[{"day":1,"title":"Pods","description":"d","learningSources":[{"title":"Docs","url":"https://kubernetes.io"}],"mockTests":[],"mockInterviews":[],"checkpoint":"c"}],` +
		`"futureOutlook":{"summary":"s","technologicalShifts":[],"emergingSkills":[],"riskFactor":"Low","longevityScore":90}}`
	models := &fakeModels{replies: []string{plan}}
	research := &fakeResearcher{text: "SREs need Kubernetes."}
	c := newClient(models, research, Config{}, nil)

	got, err := c.ArchitectCareerPlan(context.Background(), navigator.Profile{Name: "Ada"}, "SRE")
	require.NoError(t, err)
	assert.Equal(t, "SRE", research.role)
	assert.Equal(t, 90, got.FutureOutlook.LongevityScore)
	assert.Equal(t, 7.0, got.Gaps[0].Importance)
	assert.Contains(t, models.calls[0].prompt, "MARKET RESEARCH: SREs need Kubernetes.")
	assert.Contains(t, models.calls[0].prompt, `"name":"Ada"`)
	assert.Equal(t, DefaultProModel, models.calls[0].model)
}

func TestFailuresWrapCollaboratorError(t *testing.T) {
	ctx := context.Background()

	c := newClient(&fakeModels{err: errors.New("quota")}, nil, Config{}, nil)
	_, err := c.GenerateCareerQuiz(ctx, 12)
	assert.ErrorIs(t, err, navigator.ErrCollaborator)

	c = newClient(&fakeModels{replies: []string{"   "}}, nil, Config{}, nil)
	_, err = c.AnalyzeProfile(ctx, navigator.Sources{ResumeText: "x"})
	assert.ErrorIs(t, err, navigator.ErrCollaborator)
	assert.ErrorContains(t, err, "empty response")

	c = newClient(&fakeModels{replies: []string{"{not json"}}, nil, Config{}, nil)
	_, err = c.EvaluateQuizResults(ctx, 12, nil)
	assert.ErrorIs(t, err, navigator.ErrCollaborator)

	c = newClient(&fakeModels{replies: []string{`{"currentTitle":"Dev","salary":1}`}}, nil, Config{}, nil)
	_, err = c.AnalyzeProfile(ctx, navigator.Sources{ResumeText: "x"})
	assert.ErrorIs(t, err, navigator.ErrCollaborator, "unknown fields are rejected")

	models := &fakeModels{}
	c = newClient(models, &fakeResearcher{err: errors.New("search down")}, Config{}, nil)
	_, err = c.ArchitectCareerPlan(ctx, navigator.Profile{}, "SRE")
	assert.ErrorIs(t, err, navigator.ErrCollaborator)
	assert.Empty(t, models.calls)
}

func TestCleanJson(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJson("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, CleanJson("```\n[1]```"))
	assert.Equal(t, `{"a":1}`, CleanJson(`  {"a":1} `))
}

func TestSchemasRequireEnums(t *testing.T) {
	skill := profileSchema.Properties["skills"].Items
	assert.Equal(t, []string{"Beginner", "Intermediate", "Expert"}, skill.Properties["level"].Enum)
	outlook := careerPlanSchema.Properties["futureOutlook"]
	assert.Equal(t, []string{"Low", "Medium", "High"}, outlook.Properties["riskFactor"].Enum)
	assert.Contains(t, careerPlanSchema.Required, "roadmap")
}
