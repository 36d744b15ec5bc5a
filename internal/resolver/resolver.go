package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go-jobpilot-automation/internal/llm"
	"go-jobpilot-automation/internal/models"
)

// JobContext is the posting the question was asked for.
type JobContext struct {
	Title       string
	Company     string
	Description string
}

// Answer is the resolver's normalized output. Confidence is the model's own
// 0..1 estimate; Reasoning is optional and for audit only.
type Answer struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// Resolver turns (screening question, job context) into a short
// form-appropriate answer using the candidate profile and an LLM call.
// It is stateless apart from the system prompt built once at construction.
// It never retries: transport errors propagate so the caller can log and
// move on to the next question.
type Resolver struct {
	client       llm.Client
	systemPrompt string
	opts         llm.Options
}

func New(client llm.Client, profile *models.CandidateProfile) *Resolver {
	return &Resolver{
		client:       client,
		systemPrompt: buildSystemPrompt(profile),
		opts: llm.Options{
			Temperature: 0.2, // low temperature for terse, consistent answers
			MaxTokens:   200,
		},
	}
}

// Resolve answers one screening question. If the model's reply is not the
// expected JSON shape, the raw text is returned as the answer rather than
// failing the apply attempt.
func (r *Resolver) Resolve(ctx context.Context, q models.ScreeningQuestion, job JobContext) (*Answer, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: r.systemPrompt},
		{Role: llm.RoleUser, Content: buildUserPrompt(q, job)},
	}

	content, err := r.client.ChatCompletion(ctx, messages, r.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve screening question %s: %w", q.ID, err)
	}

	cleaned := cleanMarkdownJSON(content)

	var answer Answer
	if err := json.Unmarshal([]byte(cleaned), &answer); err != nil || answer.Answer == "" {
		//fall back to the raw text rather than failing the whole attempt
		return &Answer{Answer: strings.TrimSpace(content), Confidence: 0.5}, nil
	}

	answer.Answer = strings.TrimSpace(answer.Answer)
	return &answer, nil
}

// buildSystemPrompt embeds the full candidate profile once per resolver
func buildSystemPrompt(p *models.CandidateProfile) string {
	var sb strings.Builder
	sb.WriteString(`You are filling out job application screening questions on behalf of a candidate.
Answer as the candidate, in first person, as briefly as the question allows.
Never invent facts that contradict the profile below. If the profile does not cover
the question, give the most reasonable positive answer for a serious applicant.

Candidate profile:
`)

	fmt.Fprintf(&sb, "Name: %s\nEmail: %s\nPhone: %s\nLocation: %s\n", p.FullName, p.Email, p.Phone, p.Location)
	fmt.Fprintf(&sb, "Current title: %s\nTotal experience: %.1f years\n", p.CurrentTitle, p.TotalExperience)
	if p.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", p.Summary)
	}

	if len(p.Skills) > 0 {
		sb.WriteString("Skills:\n")
		for _, s := range p.Skills {
			fmt.Fprintf(&sb, "- %s (%.1f years, %s)\n", s.Name, s.Years, s.Proficiency)
		}
	}

	if len(p.Education) > 0 {
		sb.WriteString("Education:\n")
		for _, e := range p.Education {
			fmt.Fprintf(&sb, "- %s, %s %s\n", e.Degree, e.Institution, e.Year)
		}
	}

	if len(p.PreferredTitles) > 0 {
		fmt.Fprintf(&sb, "Preferred roles: %s\n", strings.Join(p.PreferredTitles, ", "))
	}
	if len(p.PreferredLocations) > 0 {
		fmt.Fprintf(&sb, "Preferred locations: %s\n", strings.Join(p.PreferredLocations, ", "))
	}
	if p.CurrentSalary != "" {
		fmt.Fprintf(&sb, "Current salary: %s\n", p.CurrentSalary)
	}
	if p.ExpectedSalary != "" {
		fmt.Fprintf(&sb, "Expected salary: %s\n", p.ExpectedSalary)
	}
	if p.NoticePeriod != "" {
		fmt.Fprintf(&sb, "Notice period: %s\n", p.NoticePeriod)
	}
	if p.WorkMode != "" {
		fmt.Fprintf(&sb, "Preferred work mode: %s\n", p.WorkMode)
	}

	sb.WriteString(`
Respond ONLY with a raw JSON object of the shape
{"answer": "...", "confidence": 0.0-1.0, "reasoning": "..."}
Do not wrap the JSON in markdown blocks.`)

	return sb.String()
}

// buildUserPrompt creates the per-question message with type-specific instructions
func buildUserPrompt(q models.ScreeningQuestion, job JobContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Job: %s at %s\n", job.Title, job.Company)
	if job.Description != "" {
		fmt.Fprintf(&sb, "Job description: %s\n", job.Description)
	}
	fmt.Fprintf(&sb, "\nScreening question: %s\n", q.Question)

	switch q.Type {
	case models.QuestionSelect, models.QuestionRadio:
		fmt.Fprintf(&sb, "Choose exactly one of these options and return its text as the answer:\n")
		for _, opt := range q.Options {
			fmt.Fprintf(&sb, "- %s\n", opt)
		}
	case models.QuestionMultiselect, models.QuestionCheckbox:
		if len(q.Options) > 0 {
			sb.WriteString("Options:\n")
			for _, opt := range q.Options {
				fmt.Fprintf(&sb, "- %s\n", opt)
			}
		}
		sb.WriteString("Return the chosen option(s) as a comma-separated list in the answer.\n")
	case models.QuestionNumber:
		sb.WriteString("The answer must be a bare number with no units or words.\n")
	}

	return sb.String()
}

// cleanMarkdownJSON removes backticks and "json" prefix if the model tries to be helpful
func cleanMarkdownJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
