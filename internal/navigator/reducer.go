package navigator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/muhammadolammi/careernavigator/internal/metrics"
)

// Collaborator is the generative-content service behind the flow.
type Collaborator interface {
	GenerateCareerQuiz(ctx context.Context, age int) ([]QuizQuestion, error)
	EvaluateQuizResults(ctx context.Context, age int, answers []QuizAnswer) (Under18Result, error)
	AnalyzeProfile(ctx context.Context, sources Sources) (Profile, error)
	ArchitectCareerPlan(ctx context.Context, profile Profile, dreamRole string) (CareerPlan, error)
}

// Event is an input to Reduce.
type Event interface{ isEvent() }

type SubmitName struct{ Name string }
type SubmitAge struct{ Age int }

// SubmitQuiz carries one answer per question, index-aligned; "" is unanswered.
type SubmitQuiz struct{ Answers []string }
type SubmitProfile struct{ Sources Sources }
type SubmitRole struct{ Role string }
type ToggleTask struct{ Day int }
type SetPacing struct{ SelfPaced bool }
type ToggleArchitecture struct{}
type Restart struct{}

// Completion events, produced only by a Call.
type (
	quizGenerated   struct{ questions []QuizQuestion }
	quizEvaluated   struct{ result Under18Result }
	profileAnalyzed struct{ profile Profile }
	planArchitected struct{ plan CareerPlan }
	callFailed      struct{ err error }
)

func (SubmitName) isEvent()         {}
func (SubmitAge) isEvent()          {}
func (SubmitQuiz) isEvent()         {}
func (SubmitProfile) isEvent()      {}
func (SubmitRole) isEvent()         {}
func (ToggleTask) isEvent()         {}
func (SetPacing) isEvent()          {}
func (ToggleArchitecture) isEvent() {}
func (Restart) isEvent()            {}
func (quizGenerated) isEvent()      {}
func (quizEvaluated) isEvent()      {}
func (profileAnalyzed) isEvent()    {}
func (planArchitected) isEvent()    {}
func (callFailed) isEvent()         {}

// LogLine is a Session Log entry requested by a transition.
type LogLine struct {
	Agent   string
	Message string
}

// Call is one collaborator request. Run never returns nil; failures come
// back as a completion event too.
type Call struct {
	Name string
	Run  func(ctx context.Context, c Collaborator) Event
}

// Effect is what the controller must do after adopting the new state:
// append Logs in order, then start Call.
type Effect struct {
	Logs []LogLine
	Call *Call
}

// Options carries configuration the reducer needs.
type Options struct {
	Minor MinorDefaults
}

const (
	agentGuidance  = "Guidance Agent"
	agentPredictor = "Career Predictor"
	agentProfile   = "Profile Analyzer"
	agentMarket    = "Market Insights Agent"
	agentGap       = "Gap Architect"
	agentSystem    = "System"
)

// Reduce is the stage machine. It never mutates s; on error the returned
// state is s unchanged.
func Reduce(s State, ev Event, opts Options) (State, Effect, error) {
	switch e := ev.(type) {
	case ToggleArchitecture:
		s.ShowArchitecture = !s.ShowArchitecture
		return s, Effect{}, nil
	case Restart:
		if s.Busy() {
			return s, Effect{}, ErrBusy
		}
		return State{Stage: NameInput{}, ShowArchitecture: s.ShowArchitecture}, Effect{}, nil
	case quizGenerated, quizEvaluated, profileAnalyzed, planArchitected, callFailed:
		return completeCall(s, e, opts)
	}

	if s.Busy() {
		return s, Effect{}, ErrBusy
	}

	switch st := s.Stage.(type) {
	case NameInput:
		e, ok := ev.(SubmitName)
		if !ok {
			return s, Effect{}, wrongStage(ev, st)
		}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return s, Effect{}, fmt.Errorf("%w: name is required", ErrValidation)
		}
		s.Stage = AgeInput{Identity: Identity{Name: name}}
		return s, Effect{}, nil

	case AgeInput:
		e, ok := ev.(SubmitAge)
		if !ok {
			return s, Effect{}, wrongStage(ev, st)
		}
		if e.Age < 0 {
			return s, Effect{}, fmt.Errorf("%w: age must not be negative", ErrValidation)
		}
		age := e.Age
		id := Identity{Name: st.Identity.Name, Age: &age}
		if !id.IsMinor() {
			s.Stage = ProfileInput{Identity: id}
			return s, Effect{}, nil
		}
		s.Stage = Analyzing{Identity: id, Task: "quiz", Fallback: AgeInput{Identity: st.Identity}}
		return s, Effect{
			Logs: []LogLine{{agentGuidance, fmt.Sprintf("Preparing curiosity-based quiz for %s...", id.Name)}},
			Call: generateQuizCall(age),
		}, nil

	case Quiz:
		e, ok := ev.(SubmitQuiz)
		if !ok {
			return s, Effect{}, wrongStage(ev, st)
		}
		answers, err := quizAnswers(st.Questions, e.Answers)
		if err != nil {
			return s, Effect{}, err
		}
		s.Stage = Analyzing{Identity: st.Identity, Task: "quiz-evaluation", Fallback: AgeInput{Identity: Identity{Name: st.Identity.Name}}}
		return s, Effect{
			Logs: []LogLine{{agentPredictor, fmt.Sprintf("Analyzing %s's interests and potential...", st.Identity.Name)}},
			Call: evaluateQuizCall(*st.Identity.Age, answers),
		}, nil

	case ProfileInput:
		e, ok := ev.(SubmitProfile)
		if !ok {
			return s, Effect{}, wrongStage(ev, st)
		}
		if e.Sources.Empty() {
			return s, Effect{}, fmt.Errorf("%w: at least one profile source is required", ErrValidation)
		}
		s.Stage = Analyzing{Identity: st.Identity, Task: "profile", Fallback: st}
		return s, Effect{
			Logs: []LogLine{{agentProfile, fmt.Sprintf("Synthesizing %s's professional data...", st.Identity.Name)}},
			Call: analyzeProfileCall(e.Sources),
		}, nil

	case DreamRole:
		e, ok := ev.(SubmitRole)
		if !ok {
			return s, Effect{}, wrongStage(ev, st)
		}
		role := strings.TrimSpace(e.Role)
		if role == "" {
			return s, Effect{}, fmt.Errorf("%w: dream role is required", ErrValidation)
		}
		s.Stage = Analyzing{Identity: st.Identity, Task: "career-plan", Fallback: st}
		return s, Effect{
			Logs: []LogLine{{agentMarket, fmt.Sprintf("Architecting the path for %s to become a %s...", st.Identity.Name, role)}},
			Call: architectPlanCall(st.Profile, role),
		}, nil

	case Dashboard:
		return reduceDashboard(s, st, ev)

	case Analyzing:
		return s, Effect{}, ErrBusy

	default:
		panic(fmt.Sprintf("navigator: unknown stage %T", s.Stage))
	}
}

func reduceDashboard(s State, st Dashboard, ev Event) (State, Effect, error) {
	switch e := ev.(type) {
	case ToggleTask:
		plan, ok := st.Plan.(AdultPlan)
		if !ok {
			return s, Effect{}, fmt.Errorf("%w: this plan has no roadmap", ErrWrongStage)
		}
		if !plan.HasTask(e.Day) {
			return s, Effect{}, fmt.Errorf("%w: no roadmap task for day %d", ErrValidation, e.Day)
		}
		st.Completed = st.Completed.Toggle(e.Day)
		s.Stage = st
		return s, Effect{}, nil
	case SetPacing:
		st.SelfPaced = e.SelfPaced
		s.Stage = st
		return s, Effect{}, nil
	default:
		return s, Effect{}, wrongStage(ev, st)
	}
}

// completeCall applies a call's outcome. Completions only ever land on the
// Analyzing stage that issued the call.
func completeCall(s State, ev Event, opts Options) (State, Effect, error) {
	wait, ok := s.Stage.(Analyzing)
	if !ok {
		return s, Effect{}, wrongStage(ev, s.Stage)
	}
	id := wait.Identity

	switch e := ev.(type) {
	case quizGenerated:
		s.Stage = Quiz{Identity: id, Questions: e.questions}
		return s, Effect{}, nil

	case quizEvaluated:
		s.Stage = Dashboard{
			Identity:  id,
			Profile:   Profile{Name: id.Name, Age: id.Age, Experience: []string{}, Skills: []Skill{}, Education: []string{}},
			Plan:      NewMinorPlan(e.result, opts.Minor),
			Completed: metrics.NewTaskSet(),
		}
		return s, Effect{}, nil

	case profileAnalyzed:
		profile := e.profile
		profile.Name = id.Name
		profile.Age = id.Age
		s.Stage = DreamRole{Identity: id, Profile: profile}
		return s, Effect{Logs: []LogLine{{agentProfile, "Consolidated profile successfully created."}}}, nil

	case planArchitected:
		profile := Profile{Name: id.Name, Age: id.Age}
		if prev, ok := wait.Fallback.(DreamRole); ok {
			profile = prev.Profile
		}
		s.Stage = Dashboard{
			Identity:  id,
			Profile:   profile,
			Plan:      NewAdultPlan(e.plan),
			Completed: metrics.NewTaskSet(),
		}
		return s, Effect{Logs: []LogLine{{agentGap, "Mapping individual competencies to market benchmarks."}}}, nil

	case callFailed:
		s.Stage = wait.Fallback
		var logs []LogLine
		switch wait.Fallback.(type) {
		case ProfileInput:
			logs = []LogLine{{agentSystem, "Synthesis failed. Please try again."}}
		case DreamRole:
			logs = []LogLine{{agentSystem, "Agent reasoning failed."}}
		}
		return s, Effect{Logs: logs}, nil
	}
	return s, Effect{}, wrongStage(ev, s.Stage)
}

func quizAnswers(questions []QuizQuestion, given []string) ([]QuizAnswer, error) {
	if len(given) != len(questions) {
		return nil, fmt.Errorf("%w: %d of %d questions answered", ErrValidation, countAnswered(given), len(questions))
	}
	answers := make([]QuizAnswer, len(questions))
	for i, q := range questions {
		a := strings.TrimSpace(given[i])
		if a == "" {
			return nil, fmt.Errorf("%w: %d of %d questions answered", ErrValidation, countAnswered(given), len(questions))
		}
		// Options keep the collaborator's exact text; matching ignores padding.
		j := slices.IndexFunc(q.Options, func(o string) bool { return strings.TrimSpace(o) == a })
		if j < 0 {
			return nil, fmt.Errorf("%w: %q is not an option of question %d", ErrValidation, a, i+1)
		}
		answers[i] = QuizAnswer{Question: q.Question, Answer: q.Options[j]}
	}
	return answers, nil
}

func countAnswered(given []string) int {
	n := 0
	for _, a := range given {
		if strings.TrimSpace(a) != "" {
			n++
		}
	}
	return n
}

func wrongStage(ev Event, st Stage) error {
	return fmt.Errorf("%w: %T in %s", ErrWrongStage, ev, st.Name())
}

func generateQuizCall(age int) *Call {
	return &Call{Name: "generate-quiz", Run: func(ctx context.Context, c Collaborator) Event {
		questions, err := c.GenerateCareerQuiz(ctx, age)
		if err == nil {
			err = ValidateQuiz(questions)
		}
		if err != nil {
			return callFailed{err: err}
		}
		return quizGenerated{questions: questions}
	}}
}

func evaluateQuizCall(age int, answers []QuizAnswer) *Call {
	return &Call{Name: "evaluate-quiz", Run: func(ctx context.Context, c Collaborator) Event {
		result, err := c.EvaluateQuizResults(ctx, age, answers)
		if err == nil {
			err = result.Validate()
		}
		if err != nil {
			return callFailed{err: err}
		}
		return quizEvaluated{result: result}
	}}
}

func analyzeProfileCall(sources Sources) *Call {
	return &Call{Name: "analyze-profile", Run: func(ctx context.Context, c Collaborator) Event {
		profile, err := c.AnalyzeProfile(ctx, sources)
		if err == nil {
			err = profile.Validate()
		}
		if err != nil {
			return callFailed{err: err}
		}
		return profileAnalyzed{profile: profile}
	}}
}

func architectPlanCall(profile Profile, role string) *Call {
	return &Call{Name: "architect-plan", Run: func(ctx context.Context, c Collaborator) Event {
		plan, err := c.ArchitectCareerPlan(ctx, profile, role)
		if err == nil {
			err = plan.Validate()
		}
		if err != nil {
			return callFailed{err: err}
		}
		return planArchitected{plan: plan}
	}}
}

// failureOf returns the error carried by a failed completion event, or nil.
func failureOf(ev Event) error {
	if f, ok := ev.(callFailed); ok {
		return f.err
	}
	return nil
}
