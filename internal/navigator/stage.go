package navigator

import (
	"fmt"

	"github.com/muhammadolammi/careernavigator/internal/metrics"
)

// AdultAge is the first age routed to the professional path.
const AdultAge = 18

// StageName is the stable external name of a stage.
type StageName string

const (
	StageNameInput    StageName = "NAME_INPUT"
	StageAgeInput     StageName = "AGE_INPUT"
	StageQuiz         StageName = "QUIZ"
	StageProfileInput StageName = "PROFILE_INPUT"
	StageDreamRole    StageName = "DREAM_ROLE"
	StageAnalyzing    StageName = "ANALYZING"
	StageDashboard    StageName = "DASHBOARD"
)

// Stage is one step of the guided flow. The set of implementations is closed;
// every switch over it lists all seven variants.
type Stage interface {
	Name() StageName
	isStage()
}

// NameInput is the initial stage.
type NameInput struct{}

type AgeInput struct {
	Identity Identity
}

type Quiz struct {
	Identity  Identity
	Questions []QuizQuestion
}

type ProfileInput struct {
	Identity Identity
}

type DreamRole struct {
	Identity Identity
	Profile  Profile
}

// Analyzing waits on one collaborator call. Fallback is the stage restored
// when the call fails.
type Analyzing struct {
	Identity Identity
	Task     string
	Fallback Stage
}

// Dashboard is terminal. Completed is owned here and starts empty for every
// plan that enters the dashboard.
type Dashboard struct {
	Identity  Identity
	Profile   Profile
	Plan      Plan
	Completed metrics.TaskSet
	SelfPaced bool
}

func (NameInput) Name() StageName    { return StageNameInput }
func (AgeInput) Name() StageName     { return StageAgeInput }
func (Quiz) Name() StageName         { return StageQuiz }
func (ProfileInput) Name() StageName { return StageProfileInput }
func (DreamRole) Name() StageName    { return StageDreamRole }
func (Analyzing) Name() StageName    { return StageAnalyzing }
func (Dashboard) Name() StageName    { return StageDashboard }

func (NameInput) isStage()    {}
func (AgeInput) isStage()     {}
func (Quiz) isStage()         {}
func (ProfileInput) isStage() {}
func (DreamRole) isStage()    {}
func (Analyzing) isStage()    {}
func (Dashboard) isStage()    {}

// IdentityOf returns the identity carried by s; NameInput carries none.
func IdentityOf(s Stage) Identity {
	switch st := s.(type) {
	case NameInput:
		return Identity{}
	case AgeInput:
		return st.Identity
	case Quiz:
		return st.Identity
	case ProfileInput:
		return st.Identity
	case DreamRole:
		return st.Identity
	case Analyzing:
		return st.Identity
	case Dashboard:
		return st.Identity
	default:
		panic(fmt.Sprintf("navigator: unknown stage %T", s))
	}
}

// State is the whole of one navigator session's view state.
type State struct {
	Stage Stage
	// ShowArchitecture overlays the architecture description without
	// touching Stage.
	ShowArchitecture bool
}

// Initial is the state of a fresh session.
func Initial() State {
	return State{Stage: NameInput{}}
}

// Busy reports whether a collaborator call is outstanding.
func (s State) Busy() bool {
	_, ok := s.Stage.(Analyzing)
	return ok
}
