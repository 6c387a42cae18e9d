package navigator

import "strings"

type SkillLevel string

const (
	LevelBeginner     SkillLevel = "Beginner"
	LevelIntermediate SkillLevel = "Intermediate"
	LevelExpert       SkillLevel = "Expert"
)

type SkillCategory string

const (
	CategoryTechnical SkillCategory = "Technical"
	CategorySoft      SkillCategory = "Soft"
	CategoryDomain    SkillCategory = "Domain"
)

type RiskFactor string

const (
	RiskLow    RiskFactor = "Low"
	RiskMedium RiskFactor = "Medium"
	RiskHigh   RiskFactor = "High"
)

// Identity is what the first two stages capture. Age is nil until submitted.
type Identity struct {
	Name string `json:"name"`
	Age  *int   `json:"age,omitempty"`
}

// IsMinor reports whether a submitted age is below 18.
func (i Identity) IsMinor() bool {
	return i.Age != nil && *i.Age < AdultAge
}

type Skill struct {
	Name     string        `json:"name"`
	Level    SkillLevel    `json:"level"`
	Category SkillCategory `json:"category"`
}

type Profile struct {
	Name         string   `json:"name"`
	CurrentTitle string   `json:"currentTitle"`
	Experience   []string `json:"experience"`
	Skills       []Skill  `json:"skills"`
	Education    []string `json:"education"`
	Age          *int     `json:"age,omitempty"`
}

// Sources are the free-text inputs of the profile stage.
type Sources struct {
	LinkedinText string `json:"linkedinText,omitempty"`
	GithubInfo   string `json:"githubInfo,omitempty"`
	ResumeText   string `json:"resumeText,omitempty"`
}

// Empty reports whether every source is blank.
func (s Sources) Empty() bool {
	return strings.TrimSpace(s.LinkedinText) == "" &&
		strings.TrimSpace(s.GithubInfo) == "" &&
		strings.TrimSpace(s.ResumeText) == ""
}

type SkillGap struct {
	Skill          string  `json:"skill"`
	Importance     float64 `json:"importance"`
	GapDescription string  `json:"gapDescription"`
	MarketDemand   string  `json:"marketDemand"`
}

type Resource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type RoadmapTask struct {
	Day             int        `json:"day"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	LearningSources []Resource `json:"learningSources"`
	MockTests       []Resource `json:"mockTests"`
	MockInterviews  []Resource `json:"mockInterviews"`
	Checkpoint      string     `json:"checkpoint"`
}

type FutureOutlook struct {
	Summary             string     `json:"summary"`
	TechnologicalShifts []string   `json:"technologicalShifts"`
	EmergingSkills      []string   `json:"emergingSkills"`
	RiskFactor          RiskFactor `json:"riskFactor"`
	LongevityScore      int        `json:"longevityScore"`
}

type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type QuizAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type RecommendedPath struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Why              string   `json:"why"`
	SkillsToStartNow []string `json:"skillsToStartNow"`
}

type Under18Result struct {
	RecommendedPaths []RecommendedPath `json:"recommendedPaths"`
	GeneralAdvice    string            `json:"generalAdvice"`
}

// CareerPlan is the wire shape Gemini returns for the adult path. It is also
// the persisted shape of both plan kinds; see AdultPlan and MinorPlan.
type CareerPlan struct {
	DreamRole      string         `json:"dreamRole"`
	MarketAnalysis string         `json:"marketAnalysis"`
	Gaps           []SkillGap     `json:"gaps"`
	Roadmap        []RoadmapTask  `json:"roadmap"`
	FutureOutlook  FutureOutlook  `json:"futureOutlook"`
	Under18Result  *Under18Result `json:"under18Result,omitempty"`
}
