package main

import (
	"fmt"
	"time"

	"github.com/muhammadolammi/careernavigator/internal/agentlog"
	"github.com/muhammadolammi/careernavigator/internal/content"
	"github.com/muhammadolammi/careernavigator/internal/metrics"
	"github.com/muhammadolammi/careernavigator/internal/navigator"
)

// viewLogLines is how many recent log entries accompany a view.
const viewLogLines = 6

// View is everything a client needs to render the current stage.
type View struct {
	SessionID        string                   `json:"sessionId"`
	Stage            navigator.StageName      `json:"stage"`
	Busy             bool                     `json:"busy"`
	Task             string                   `json:"task,omitempty"`
	Name             string                   `json:"name,omitempty"`
	Age              *int                     `json:"age,omitempty"`
	Quote            string                   `json:"quote"`
	ShowArchitecture bool                     `json:"showArchitecture"`
	Architecture     *content.Architecture    `json:"architecture,omitempty"`
	Quiz             []navigator.QuizQuestion `json:"quiz,omitempty"`
	Profile          *navigator.Profile       `json:"profile,omitempty"`
	Dashboard        *DashboardView           `json:"dashboard,omitempty"`
	Logs             []logItem                `json:"logs"`
}

const (
	planAdult = "adult"
	planMinor = "minor"
)

type DashboardView struct {
	Kind       string `json:"kind"`
	TargetRole string `json:"targetRole"`
	SelfPaced  bool   `json:"selfPaced"`
	PaceLabel  string `json:"paceLabel"`

	CompletionPercent int                         `json:"completionPercent"`
	TasksDone         int                         `json:"tasksDone"`
	TasksTotal        int                         `json:"tasksTotal"`
	Longevity         int                         `json:"longevityScore"`
	Mastery           []metrics.MasteryPoint      `json:"mastery,omitempty"`
	Roadmap           []RoadmapItem               `json:"roadmap,omitempty"`
	Gaps              []navigator.SkillGap        `json:"gaps,omitempty"`
	MarketAnalysis    string                      `json:"marketAnalysis,omitempty"`
	Outlook           navigator.FutureOutlook     `json:"futureOutlook"`
	RecommendedPaths  []navigator.RecommendedPath `json:"recommendedPaths,omitempty"`
	GeneralAdvice     string                      `json:"generalAdvice,omitempty"`
}

type RoadmapItem struct {
	Label           string               `json:"label"`
	Day             int                  `json:"day"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Completed       bool                 `json:"completed"`
	LearningSources []navigator.Resource `json:"learningSources"`
	MockTests       []navigator.Resource `json:"mockTests"`
	MockInterviews  []navigator.Resource `json:"mockInterviews"`
	Checkpoint      string               `json:"checkpoint"`
}

func buildView(id string, s navigator.State, log *agentlog.Log, c *content.Content) View {
	ident := navigator.IdentityOf(s.Stage)
	v := View{
		SessionID:        id,
		Stage:            s.Stage.Name(),
		Busy:             s.Busy(),
		Name:             ident.Name,
		Age:              ident.Age,
		Quote:            c.RandomQuote(),
		ShowArchitecture: s.ShowArchitecture,
		Logs:             logItems(log.Last(viewLogLines)),
	}
	if s.ShowArchitecture {
		arch := c.Architecture
		v.Architecture = &arch
	}

	switch st := s.Stage.(type) {
	case navigator.Analyzing:
		v.Task = st.Task
	case navigator.Quiz:
		v.Quiz = st.Questions
	case navigator.DreamRole:
		p := st.Profile
		v.Profile = &p
	case navigator.Dashboard:
		p := st.Profile
		v.Profile = &p
		d := dashboardView(st)
		v.Dashboard = &d
	}
	return v
}

func dashboardView(d navigator.Dashboard) DashboardView {
	v := DashboardView{
		TargetRole: d.Plan.Role(),
		SelfPaced:  d.SelfPaced,
		PaceLabel:  "30-DAY SPRINT",
	}
	if d.SelfPaced {
		v.PaceLabel = "SELF-PACED"
	}

	switch plan := d.Plan.(type) {
	case navigator.AdultPlan:
		sum := plan.Summary(d.Completed)
		v.Kind = planAdult
		v.CompletionPercent = sum.CompletionPercent
		v.TasksDone = sum.TasksDone
		v.TasksTotal = sum.TasksTotal
		v.Mastery = sum.Mastery
		v.Gaps = plan.Gaps
		v.MarketAnalysis = plan.MarketAnalysis
		v.Outlook = plan.Outlook
		v.Longevity = plan.Outlook.LongevityScore
		v.Roadmap = make([]RoadmapItem, len(plan.Roadmap))
		for i, t := range plan.Roadmap {
			v.Roadmap[i] = RoadmapItem{
				Label:           roadmapLabel(d.SelfPaced, i, t.Day),
				Day:             t.Day,
				Title:           t.Title,
				Description:     t.Description,
				Completed:       d.Completed.Has(t.Day),
				LearningSources: t.LearningSources,
				MockTests:       t.MockTests,
				MockInterviews:  t.MockInterviews,
				Checkpoint:      t.Checkpoint,
			}
		}
	case navigator.MinorPlan:
		v.Kind = planMinor
		v.MarketAnalysis = plan.Advice
		v.Outlook = plan.Outlook
		v.Longevity = plan.Outlook.LongevityScore
		v.RecommendedPaths = plan.Result.RecommendedPaths
		v.GeneralAdvice = plan.Result.GeneralAdvice
	}
	return v
}

// roadmapLabel is "DAY n" in sprint mode and "MODULE i" (1-based position)
// when self-paced.
func roadmapLabel(selfPaced bool, index, day int) string {
	if selfPaced {
		return fmt.Sprintf("MODULE %d", index+1)
	}
	return fmt.Sprintf("DAY %d", day)
}

func logItems(entries []agentlog.Entry) []logItem {
	items := make([]logItem, len(entries))
	for i, e := range entries {
		items[i] = logItem{Agent: e.Agent, Message: e.Message, Timestamp: e.Timestamp.Format(time.RFC3339Nano)}
	}
	return items
}
