// Package content holds the static copy served with navigator views:
// motivational quotes, the placeholder outlook of under-18 plans and the
// architecture overlay.
package content

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/muhammadolammi/careernavigator/internal/navigator"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embedded []byte

type Content struct {
	Quotes       []string     `yaml:"quotes"`
	MinorPlan    MinorPlan    `yaml:"minor_plan"`
	Architecture Architecture `yaml:"architecture"`
}

type MinorPlan struct {
	DreamRole string  `yaml:"dream_role"`
	Outlook   Outlook `yaml:"outlook"`
}

type Outlook struct {
	Summary             string   `yaml:"summary"`
	TechnologicalShifts []string `yaml:"technological_shifts"`
	EmergingSkills      []string `yaml:"emerging_skills"`
	RiskFactor          string   `yaml:"risk_factor"`
	LongevityScore      int      `yaml:"longevity_score"`
}

type Architecture struct {
	Title   string   `yaml:"title" json:"title"`
	Summary string   `yaml:"summary" json:"summary"`
	Agents  []Agent  `yaml:"agents" json:"agents"`
	Stack   []string `yaml:"stack" json:"stack"`
}

type Agent struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Default returns the embedded content.
func Default() (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(embedded, &c); err != nil {
		return nil, fmt.Errorf("parse embedded content: %w", err)
	}
	return &c, c.Validate()
}

// Load reads path over the embedded defaults; keys missing from the file keep
// their default. An empty path returns the defaults.
func Load(path string) (*Content, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse content file %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("content file %s: %w", path, err)
	}
	return c, nil
}

func (c *Content) Validate() error {
	if len(c.Quotes) == 0 {
		return fmt.Errorf("at least one quote is required")
	}
	if c.MinorPlan.DreamRole == "" {
		return fmt.Errorf("minor_plan.dream_role is required")
	}
	switch navigator.RiskFactor(c.MinorPlan.Outlook.RiskFactor) {
	case navigator.RiskLow, navigator.RiskMedium, navigator.RiskHigh:
	default:
		return fmt.Errorf("minor_plan.outlook.risk_factor %q is not Low, Medium or High", c.MinorPlan.Outlook.RiskFactor)
	}
	if s := c.MinorPlan.Outlook.LongevityScore; s < 1 || s > 100 {
		return fmt.Errorf("minor_plan.outlook.longevity_score %d outside 1-100", s)
	}
	return nil
}

// RandomQuote picks one quote uniformly.
func (c *Content) RandomQuote() string {
	return c.Quotes[rand.IntN(len(c.Quotes))]
}

// MinorDefaults is the placeholder content of every under-18 plan.
func (c *Content) MinorDefaults() navigator.MinorDefaults {
	o := c.MinorPlan.Outlook
	return navigator.MinorDefaults{
		DreamRole: c.MinorPlan.DreamRole,
		Outlook: navigator.FutureOutlook{
			Summary:             o.Summary,
			TechnologicalShifts: o.TechnologicalShifts,
			EmergingSkills:      o.EmergingSkills,
			RiskFactor:          navigator.RiskFactor(o.RiskFactor),
			LongevityScore:      o.LongevityScore,
		},
	}
}

// YAML renders the effective content.
func (c *Content) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
