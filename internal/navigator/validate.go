package navigator

import (
	"fmt"
	"strings"
)

// Conformance checks applied to every collaborator response. A response that
// fails them is a collaborator failure, never a partial result.

func ValidateQuiz(questions []QuizQuestion) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", ErrCollaborator)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return fmt.Errorf("%w: question %d has no text", ErrCollaborator, i+1)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d has %d options", ErrCollaborator, i+1, len(q.Options))
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			o = strings.TrimSpace(o)
			if o == "" {
				return fmt.Errorf("%w: question %d has a blank option", ErrCollaborator, i+1)
			}
			if _, dup := seen[o]; dup {
				return fmt.Errorf("%w: question %d repeats option %q", ErrCollaborator, i+1, o)
			}
			seen[o] = struct{}{}
		}
	}
	return nil
}

func (r Under18Result) Validate() error {
	if len(r.RecommendedPaths) == 0 {
		return fmt.Errorf("%w: no recommended paths", ErrCollaborator)
	}
	for i, p := range r.RecommendedPaths {
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("%w: path %d has no title", ErrCollaborator, i+1)
		}
	}
	if strings.TrimSpace(r.GeneralAdvice) == "" {
		return fmt.Errorf("%w: general advice missing", ErrCollaborator)
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.CurrentTitle) == "" {
		return fmt.Errorf("%w: profile has no current title", ErrCollaborator)
	}
	for i, s := range p.Skills {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("%w: skill %d has no name", ErrCollaborator, i+1)
		}
		switch s.Level {
		case LevelBeginner, LevelIntermediate, LevelExpert:
		default:
			return fmt.Errorf("%w: skill %q has level %q", ErrCollaborator, s.Name, s.Level)
		}
		switch s.Category {
		case CategoryTechnical, CategorySoft, CategoryDomain:
		default:
			return fmt.Errorf("%w: skill %q has category %q", ErrCollaborator, s.Name, s.Category)
		}
	}
	return nil
}

func (cp CareerPlan) Validate() error {
	if strings.TrimSpace(cp.DreamRole) == "" {
		return fmt.Errorf("%w: plan has no dream role", ErrCollaborator)
	}
	for i, g := range cp.Gaps {
		if strings.TrimSpace(g.Skill) == "" {
			return fmt.Errorf("%w: gap %d has no skill", ErrCollaborator, i+1)
		}
		if g.Importance < 0 || g.Importance > 10 {
			return fmt.Errorf("%w: gap %q importance %v outside 0-10", ErrCollaborator, g.Skill, g.Importance)
		}
	}
	if len(cp.Roadmap) == 0 {
		return fmt.Errorf("%w: plan has an empty roadmap", ErrCollaborator)
	}
	for i, t := range cp.Roadmap {
		if t.Day <= 0 {
			return fmt.Errorf("%w: task %d has day %d", ErrCollaborator, i+1, t.Day)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%w: task %d has no title", ErrCollaborator, i+1)
		}
	}
	return cp.FutureOutlook.Validate()
}

func (o FutureOutlook) Validate() error {
	switch o.RiskFactor {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return fmt.Errorf("%w: risk factor %q", ErrCollaborator, o.RiskFactor)
	}
	if o.LongevityScore < 1 || o.LongevityScore > 100 {
		return fmt.Errorf("%w: longevity score %d outside 1-100", ErrCollaborator, o.LongevityScore)
	}
	return nil
}
