// Package metrics derives the dashboard's live skill-mastery estimates and
// completion figures from a plan's gaps, its roadmap and the set of tasks the
// user has checked off. Everything here is a pure function of its inputs.
package metrics

import (
	"math"
	"strings"
)

const (
	// MaxGaps is the number of gaps rendered on the mastery chart.
	MaxGaps = 6
	// TargetMastery is the mastery every gap is measured against.
	TargetMastery = 10.0
	// ScaleMax is the top of the mastery scale.
	ScaleMax = 10.0
)

// Gap is the part of a skill gap the engine needs.
type Gap struct {
	Skill      string
	Importance float64
}

// Task is the part of a roadmap task the engine needs.
type Task struct {
	Day         int
	Title       string
	Description string
}

// MasteryPoint is one spoke of the mastery chart.
type MasteryPoint struct {
	Skill    string  `json:"skill"`
	Current  float64 `json:"current"`
	Target   float64 `json:"target"`
	FullMark float64 `json:"fullMark"`
}

// Summary bundles everything the dashboard header and chart show.
type Summary struct {
	Mastery           []MasteryPoint `json:"mastery"`
	CompletionPercent int            `json:"completionPercent"`
	TasksDone         int            `json:"tasksDone"`
	TasksTotal        int            `json:"tasksTotal"`
}

// SkillMastery estimates current mastery for at most the first MaxGaps gaps.
//
// A gap starts at 10 - importance. Tasks whose title or description mention
// the skill (case-insensitive) drive its progress; when no task mentions it
// the overall completion ratio is used instead.
func SkillMastery(gaps []Gap, roadmap []Task, completed TaskSet) []MasteryPoint {
	if len(gaps) > MaxGaps {
		gaps = gaps[:MaxGaps]
	}
	global := float64(completed.Len()) / float64(max(1, len(roadmap)))

	points := make([]MasteryPoint, 0, len(gaps))
	for _, g := range gaps {
		baseline := 10 - g.Importance
		skill := strings.ToLower(g.Skill)

		matched, matchedCompleted := 0, 0
		for _, task := range roadmap {
			if !mentions(task, skill) {
				continue
			}
			matched++
			if completed.Has(task.Day) {
				matchedCompleted++
			}
		}

		progress := global
		if matched > 0 {
			progress = float64(matchedCompleted) / float64(matched)
		}

		points = append(points, MasteryPoint{
			Skill:    g.Skill,
			Current:  roundTenth(baseline + g.Importance*progress),
			Target:   TargetMastery,
			FullMark: ScaleMax,
		})
	}
	return points
}

// CompletionPercent is round(100 * done / max(1, total)).
func CompletionPercent(done, total int) int {
	return int(math.Round(100 * float64(done) / float64(max(1, total))))
}

// Summarize computes the mastery chart and the completion figures together.
func Summarize(gaps []Gap, roadmap []Task, completed TaskSet) Summary {
	return Summary{
		Mastery:           SkillMastery(gaps, roadmap, completed),
		CompletionPercent: CompletionPercent(completed.Len(), len(roadmap)),
		TasksDone:         completed.Len(),
		TasksTotal:        len(roadmap),
	}
}

func mentions(task Task, lowerSkill string) bool {
	return strings.Contains(strings.ToLower(task.Title), lowerSkill) ||
		strings.Contains(strings.ToLower(task.Description), lowerSkill)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
