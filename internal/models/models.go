package models

import "time"

// QuestionType is the closed set of screening question kinds a scraper can detect.
type QuestionType string

const (
	QuestionText        QuestionType = "text"
	QuestionNumber      QuestionType = "number"
	QuestionSelect      QuestionType = "select"
	QuestionRadio       QuestionType = "radio"
	QuestionCheckbox    QuestionType = "checkbox"
	QuestionMultiselect QuestionType = "multiselect"
)

// JobListing is one scraped job posting. Immutable once scraped; the pair
// (Source, ExternalID) is the identity used for deduplication.
type JobListing struct {
	Source     string    `json:"source"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Location   string    `json:"location"`
	Experience string    `json:"experience"`
	Salary     string    `json:"salary"`
	URL        string    `json:"url"`
	PostedDate string    `json:"posted_date"`
	ScrapedAt  time.Time `json:"scraped_at"`
}

// DedupKey is the identity key used by the dedup cache and the database upsert.
func (j JobListing) DedupKey() string {
	return j.Source + ":" + j.ExternalID
}

// ScreeningQuestion is one question block found on an application form.
// IDs are positional (q-0, q-1, ...) and only stable within one apply attempt.
type ScreeningQuestion struct {
	ID       string       `json:"id"`
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`
	Options  []string     `json:"options,omitempty"`
	Required bool         `json:"required"`
	Answer   string       `json:"answer,omitempty"`
}

// ApplyOutcome is the result of one apply attempt. Exactly one of the four
// terminal shapes holds: success, already-applied, error with no questions,
// or questions pending (a suspended attempt awaiting answers + submission).
type ApplyOutcome struct {
	Success            bool                `json:"success"`
	AlreadyApplied     bool                `json:"already_applied,omitempty"`
	Error              string              `json:"error,omitempty"`
	ScreeningQuestions []ScreeningQuestion `json:"screening_questions,omitempty"`
}

// SessionState tracks one browser-login lifetime for a job source.
type SessionState struct {
	IsLoggedIn   bool        `json:"is_logged_in"`
	IsRunning    bool        `json:"is_running"`
	CurrentJob   *JobListing `json:"current_job,omitempty"`
	AppliedCount int         `json:"applied_count"`
	FailedCount  int         `json:"failed_count"`
}

// QueueRunResult aggregates one queue-processing run.
type QueueRunResult struct {
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
