package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/muhammadolammi/careernavigator/internal/navigator"
)

func quizPrompt(age int) string {
	return fmt.Sprintf(`Generate a 10-question career interest quiz for a %d-year-old student.
The questions should be engaging and diverse, covering interests in:
1. Problem solving & Logic
2. Creativity & Design
3. Helping others & Social Impact
4. Building & Engineering
5. Leadership & Strategy
6. Nature & Environment
7. Writing & Communication
8. Science & Discovery

Each question should have 4 distinct options that map to different traits.`, age)
}

func evaluationPrompt(age int, answers []navigator.QuizAnswer) (string, error) {
	data, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("encode quiz answers: %w", err)
	}
	return fmt.Sprintf(`Analyze these quiz results for a %d-year-old.
Suggest 3 exciting career paths they could pursue when they grow up.
Explain why each fits them and what they can do NOW to prepare.

QUIZ DATA: %s`, age, data), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func profilePrompt(sources navigator.Sources) string {
	return fmt.Sprintf(`Analyze the following composite professional data. Deduplicate and consolidate into a unified profile.

DATA:
SOURCE: LINKEDIN
%s

SOURCE: GITHUB
%s

SOURCE: RESUME
%s`, orNA(sources.LinkedinText), orNA(sources.GithubInfo), orNA(sources.ResumeText))
}

const researchInstruction = `You are a labour-market research agent. Use Google Search to ground every claim in current sources.
Report concrete requirements, salary ranges and skill frequencies, and name working URLs for every resource you recommend.
Answer in plain prose; do not return JSON.`

func researchPrompt(role string) string {
	return fmt.Sprintf(`Identify current requirements for '%s', predict its 10-year evolution, and find high-quality learning resources (YouTube, Coursera, Udemy), specialized mock test platforms (LeetCode, TestGorilla, certifications), and mock interview services (Pramp, Interviewing.io).`, role)
}

func planPrompt(profile navigator.Profile, role, research string) (string, error) {
	data, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	return fmt.Sprintf(`USER PROFILE: %s
DREAM ROLE: %s
MARKET RESEARCH: %s

Generate current gaps, a 30-day modular roadmap, and a 10-year future outlook.

IMPORTANT: While the roadmap should be structured for a 30-day sprint by default, ensure each task is a self-contained module so the user can learn at their own pace if they prefer a non-linear or extended approach.
Each roadmap task MUST include specific, working links for learning, mock tests, and mock interviews if applicable.
Number roadmap days from 1 without repeating a day.`, data, role, research), nil
}
