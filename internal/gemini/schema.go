package gemini

import "google.golang.org/genai"

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

func strList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: str()}
}

func enum(values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Enum: values}
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func list(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

var quizSchema = list(object(
	[]string{"question", "options"},
	map[string]*genai.Schema{
		"question": str(),
		"options":  strList(),
	},
))

var under18Schema = object(
	[]string{"recommendedPaths", "generalAdvice"},
	map[string]*genai.Schema{
		"recommendedPaths": list(object(
			[]string{"title", "description", "why", "skillsToStartNow"},
			map[string]*genai.Schema{
				"title":            str(),
				"description":      str(),
				"why":              str(),
				"skillsToStartNow": strList(),
			},
		)),
		"generalAdvice": str(),
	},
)

var profileSchema = object(
	[]string{"name", "currentTitle", "experience", "skills", "education"},
	map[string]*genai.Schema{
		"name":         str(),
		"currentTitle": str(),
		"experience":   strList(),
		"skills": list(object(
			[]string{"name", "level", "category"},
			map[string]*genai.Schema{
				"name":     str(),
				"level":    enum("Beginner", "Intermediate", "Expert"),
				"category": enum("Technical", "Soft", "Domain"),
			},
		)),
		"education": strList(),
	},
)

func resourceSchema(withDescription bool) *genai.Schema {
	props := map[string]*genai.Schema{
		"title": str(),
		"url":   str(),
	}
	if withDescription {
		props["description"] = str()
	}
	return object([]string{"title", "url"}, props)
}

var careerPlanSchema = object(
	[]string{"dreamRole", "marketAnalysis", "gaps", "roadmap", "futureOutlook"},
	map[string]*genai.Schema{
		"dreamRole":      str(),
		"marketAnalysis": str(),
		"gaps": list(object(
			[]string{"skill", "importance", "gapDescription", "marketDemand"},
			map[string]*genai.Schema{
				"skill":          str(),
				"importance":     {Type: genai.TypeNumber},
				"gapDescription": str(),
				"marketDemand":   str(),
			},
		)),
		"roadmap": list(object(
			[]string{"day", "title", "description", "checkpoint"},
			map[string]*genai.Schema{
				"day":             {Type: genai.TypeInteger},
				"title":           str(),
				"description":     str(),
				"learningSources": list(resourceSchema(true)),
				"mockTests":       list(resourceSchema(false)),
				"mockInterviews":  list(resourceSchema(false)),
				"checkpoint":      str(),
			},
		)),
		"futureOutlook": object(
			[]string{"summary", "technologicalShifts", "emergingSkills", "riskFactor", "longevityScore"},
			map[string]*genai.Schema{
				"summary":             str(),
				"technologicalShifts": strList(),
				"emergingSkills":      strList(),
				"riskFactor":          enum("Low", "Medium", "High"),
				"longevityScore":      {Type: genai.TypeInteger},
			},
		),
	},
)
