package navigator

import "github.com/muhammadolammi/careernavigator/internal/metrics"

// Plan is what the dashboard renders: exactly one of AdultPlan or MinorPlan.
type Plan interface {
	// Role is the dashboard title role.
	Role() string
	// CareerPlan converts back to the persisted wire shape.
	CareerPlan() CareerPlan
	isPlan()
}

// AdultPlan is the gap analysis, roadmap and outlook for users 18 and over.
type AdultPlan struct {
	DreamRole      string
	MarketAnalysis string
	Gaps           []SkillGap
	Roadmap        []RoadmapTask
	Outlook        FutureOutlook
}

// MinorPlan is the quiz-driven discovery result for users under 18. Its
// outlook and role label are configured placeholders, not generated content.
type MinorPlan struct {
	Label   string
	Advice  string
	Result  Under18Result
	Outlook FutureOutlook
}

// MinorDefaults is the configured placeholder content of a MinorPlan.
type MinorDefaults struct {
	DreamRole string
	Outlook   FutureOutlook
}

func (AdultPlan) isPlan() {}
func (MinorPlan) isPlan() {}

func (p AdultPlan) Role() string { return p.DreamRole }
func (p MinorPlan) Role() string { return p.Label }

func (p AdultPlan) CareerPlan() CareerPlan {
	return CareerPlan{
		DreamRole:      p.DreamRole,
		MarketAnalysis: p.MarketAnalysis,
		Gaps:           p.Gaps,
		Roadmap:        p.Roadmap,
		FutureOutlook:  p.Outlook,
	}
}

func (p MinorPlan) CareerPlan() CareerPlan {
	result := p.Result
	return CareerPlan{
		DreamRole:      p.Label,
		MarketAnalysis: p.Advice,
		Gaps:           []SkillGap{},
		Roadmap:        []RoadmapTask{},
		FutureOutlook:  p.Outlook,
		Under18Result:  &result,
	}
}

// HasTask reports whether day keys a roadmap task.
func (p AdultPlan) HasTask(day int) bool {
	for _, t := range p.Roadmap {
		if t.Day == day {
			return true
		}
	}
	return false
}

// Summary runs the derived-metrics engine over this plan.
func (p AdultPlan) Summary(completed metrics.TaskSet) metrics.Summary {
	gaps := make([]metrics.Gap, len(p.Gaps))
	for i, g := range p.Gaps {
		gaps[i] = metrics.Gap{Skill: g.Skill, Importance: g.Importance}
	}
	tasks := make([]metrics.Task, len(p.Roadmap))
	for i, t := range p.Roadmap {
		tasks[i] = metrics.Task{Day: t.Day, Title: t.Title, Description: t.Description}
	}
	return metrics.Summarize(gaps, tasks, completed)
}

// NewAdultPlan ingests a generated plan. Roadmap days are the keys of the
// completed-task set, so duplicates are re-keyed by position first.
func NewAdultPlan(cp CareerPlan) AdultPlan {
	return AdultPlan{
		DreamRole:      cp.DreamRole,
		MarketAnalysis: cp.MarketAnalysis,
		Gaps:           cp.Gaps,
		Roadmap:        NormalizeRoadmap(cp.Roadmap),
		Outlook:        cp.FutureOutlook,
	}
}

// NewMinorPlan wraps a quiz evaluation with the configured placeholder content.
func NewMinorPlan(result Under18Result, defaults MinorDefaults) MinorPlan {
	return MinorPlan{
		Label:   defaults.DreamRole,
		Advice:  result.GeneralAdvice,
		Result:  result,
		Outlook: defaults.Outlook,
	}
}

// PlanFromCareerPlan restores a persisted plan; a present under-18 result
// selects the minor variant.
func PlanFromCareerPlan(cp CareerPlan) Plan {
	if cp.Under18Result != nil {
		return MinorPlan{
			Label:   cp.DreamRole,
			Advice:  cp.MarketAnalysis,
			Result:  *cp.Under18Result,
			Outlook: cp.FutureOutlook,
		}
	}
	return NewAdultPlan(cp)
}

// NormalizeRoadmap returns tasks unchanged when every day is positive and
// unique, otherwise a copy keyed by position (day = index + 1).
func NormalizeRoadmap(tasks []RoadmapTask) []RoadmapTask {
	seen := make(map[int]struct{}, len(tasks))
	unique := true
	for _, t := range tasks {
		if _, dup := seen[t.Day]; dup || t.Day <= 0 {
			unique = false
			break
		}
		seen[t.Day] = struct{}{}
	}
	if unique {
		return tasks
	}

	out := make([]RoadmapTask, len(tasks))
	for i, t := range tasks {
		t.Day = i + 1
		out[i] = t
	}
	return out
}
