// Define the contract every site scraper must satisfy
// Ensure consistency between job sources

package scraper

import (
	"context"
	"time"

	"go-jobpilot-automation/internal/models"
)

// SearchParams are the source-independent inputs to a listing search.
type SearchParams struct {
	Keywords         []string
	Locations        []string
	ExperienceYears  int
	PostedWithinDays int
	Page             int
}

// SearchResult is one page of extracted listings. HasMore is true when the
// page produced jobs and page*pageSize is still below TotalCount.
type SearchResult struct {
	Jobs       []models.JobListing
	TotalCount int
	Page       int
	HasMore    bool
}

// Scraper drives one job portal through a single browser page: login
// detection, search, apply-flow navigation, screening questions and
// submission confirmation.
//
// Failure discipline: methods called from the queue-processing loop
// (CheckLoginStatus, SearchJobs on timeout, GetJobDetails, ApplyToJob,
// GetScreeningQuestions, FillScreeningAnswer, SubmitApplication) never
// return DOM-interaction failures as errors; they log and surface a
// false/empty/error-shaped value instead. Explicit setup calls
// (Initialize, OpenLoginPage) do return errors.
type Scraper interface {
	// Name is the source name ("naukri", ...), the orchestrator registry key.
	Name() string

	// Initialize navigates to the portal home to warm the session.
	// A failure here is fatal: the queue loop must not be entered.
	Initialize(ctx context.Context) error

	// CheckLoginStatus inspects the portal home for an authenticated-session
	// marker. Fails closed: any navigation error yields false.
	CheckLoginStatus(ctx context.Context) bool

	// OpenLoginPage navigates to the login URL and returns immediately.
	// Credentials are entered by a human in the visible browser.
	OpenLoginPage(ctx context.Context) error

	// WaitForManualLogin polls CheckLoginStatus on a fixed interval until
	// login is detected (session persisted, returns true) or the timeout
	// elapses (returns false). Callers needing early abort cancel ctx.
	WaitForManualLogin(ctx context.Context, timeout time.Duration) bool

	// SearchJobs builds a source-specific query URL and extracts one listing
	// per result card. A missing listings marker is an empty result, not an
	// error; only hard navigation failures return one.
	SearchJobs(ctx context.Context, params SearchParams) (*SearchResult, error)

	// GetJobDetails deep-fetches a single listing; nil if unreachable.
	GetJobDetails(ctx context.Context, jobID string) *models.JobListing

	// ApplyToJob performs one apply attempt. The outcome is exactly one of:
	// success, already-applied, error, or screening-questions-pending (a
	// suspended attempt: nothing was submitted yet).
	ApplyToJob(ctx context.Context, job models.JobListing) models.ApplyOutcome

	// GetScreeningQuestions scans question containers in DOM order and
	// assigns positional ids (q-0, q-1, ...). Idempotent on an unchanged form.
	GetScreeningQuestions(ctx context.Context) []models.ScreeningQuestion

	// FillScreeningAnswer injects an answer into the container addressed by a
	// positional question id. Silently returns if the container or a matching
	// control cannot be found.
	FillScreeningAnswer(ctx context.Context, questionID, answer string)

	// SubmitApplication clicks the first known submit control and reports
	// whether the portal confirmed the application.
	SubmitApplication(ctx context.Context) bool

	// State returns a snapshot of the session counters and flags.
	State() models.SessionState
}
