package navigator

import (
	"fmt"

	"github.com/muhammadolammi/careernavigator/internal/metrics"
)

// Snapshot is the persisted form of a State.
//
// An Analyzing stage is stored as its fallback: the call it waits on does not
// survive a restart, so a restored session resumes where resubmission is
// possible.
type Snapshot struct {
	Stage            StageName      `json:"stage"`
	Identity         Identity       `json:"identity"`
	Questions        []QuizQuestion `json:"questions,omitempty"`
	Profile          *Profile       `json:"profile,omitempty"`
	Plan             *CareerPlan    `json:"plan,omitempty"`
	Completed        []int          `json:"completed,omitempty"`
	SelfPaced        bool           `json:"selfPaced,omitempty"`
	ShowArchitecture bool           `json:"showArchitecture,omitempty"`
}

// Snapshot captures s for persistence.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{ShowArchitecture: s.ShowArchitecture}
	stage := s.Stage
	if wait, ok := stage.(Analyzing); ok {
		stage = wait.Fallback
	}
	snap.Stage = stage.Name()
	snap.Identity = IdentityOf(stage)

	switch st := stage.(type) {
	case NameInput, AgeInput, ProfileInput:
	case Quiz:
		snap.Questions = st.Questions
	case DreamRole:
		p := st.Profile
		snap.Profile = &p
	case Dashboard:
		p := st.Profile
		cp := st.Plan.CareerPlan()
		snap.Profile = &p
		snap.Plan = &cp
		snap.Completed = st.Completed.Days()
		snap.SelfPaced = st.SelfPaced
	case Analyzing:
		// Fallbacks are never Analyzing.
		panic("navigator: nested analyzing stage")
	default:
		panic(fmt.Sprintf("navigator: unknown stage %T", stage))
	}
	return snap
}

// Restore rebuilds the State a snapshot was taken from.
func (snap Snapshot) Restore() (State, error) {
	s := State{ShowArchitecture: snap.ShowArchitecture}
	switch snap.Stage {
	case StageNameInput:
		s.Stage = NameInput{}
	case StageAgeInput:
		s.Stage = AgeInput{Identity: snap.Identity}
	case StageQuiz:
		if snap.Identity.Age == nil || len(snap.Questions) == 0 {
			return State{}, fmt.Errorf("snapshot: quiz stage without age or questions")
		}
		s.Stage = Quiz{Identity: snap.Identity, Questions: snap.Questions}
	case StageProfileInput:
		s.Stage = ProfileInput{Identity: snap.Identity}
	case StageDreamRole:
		if snap.Profile == nil {
			return State{}, fmt.Errorf("snapshot: dream role stage without profile")
		}
		s.Stage = DreamRole{Identity: snap.Identity, Profile: *snap.Profile}
	case StageDashboard:
		if snap.Plan == nil {
			return State{}, fmt.Errorf("snapshot: dashboard stage without plan")
		}
		d := Dashboard{
			Identity:  snap.Identity,
			Plan:      PlanFromCareerPlan(*snap.Plan),
			Completed: metrics.NewTaskSet(snap.Completed...),
			SelfPaced: snap.SelfPaced,
		}
		if snap.Profile != nil {
			d.Profile = *snap.Profile
		}
		s.Stage = d
	default:
		return State{}, fmt.Errorf("snapshot: unknown stage %q", snap.Stage)
	}
	return s, nil
}
