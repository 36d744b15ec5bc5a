package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go-jobpilot-automation/internal/events"
	"go-jobpilot-automation/internal/llm"
	"go-jobpilot-automation/internal/models"
	"go-jobpilot-automation/internal/resolver"
	"go-jobpilot-automation/internal/scraper"
)

// Precondition errors: thrown before any browser interaction, never retried
// without fixing the cause.
var (
	ErrNoProfile     = errors.New("orchestrator: no candidate profile set")
	ErrUnknownSource = errors.New("orchestrator: unknown source")
	ErrQueueBusy     = errors.New("orchestrator: a queue run is already in progress")
)

// stopToken is a per-run cancellation signal. Each ProcessJobQueue call gets
// its own token so concurrent or consecutive runs can never share one flag.
type stopToken struct {
	fired atomic.Bool
}

func (t *stopToken) Stop()         { t.fired.Store(true) }
func (t *stopToken) Stopped() bool { return t.fired.Load() }

// Options bound and pace one queue run.
type Options struct {
	// MaxApplicationsPerSession caps attempts per run; <=0 means no cap.
	MaxApplicationsPerSession int
	// ApplicationDelay is awaited between jobs (not after the last one).
	ApplicationDelay time.Duration
}

// ProgressFunc receives each job's outcome as the queue advances.
type ProgressFunc func(job models.JobListing, index int, outcome models.ApplyOutcome)

// Manager sequences browser-driven apply attempts across registered site
// scrapers, routing screening questions through the resolver. Jobs are
// processed strictly in caller order on a single logical worker; the only
// shared state after setup is the read-only candidate profile.
type Manager struct {
	mu       sync.Mutex
	scrapers map[string]scraper.Scraper
	profile  *models.CandidateProfile
	resolver *resolver.Resolver
	running  bool
	token    *stopToken

	client llm.Client
	sink   *events.Sink
	opts   Options
}

func New(client llm.Client, sink *events.Sink, opts Options) *Manager {
	return &Manager{
		scrapers: make(map[string]scraper.Scraper),
		client:   client,
		sink:     sink,
		opts:     opts,
	}
}

// RegisterScraper adds a site scraper under its source name.
func (m *Manager) RegisterScraper(s scraper.Scraper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrapers[s.Name()] = s
}

// SetProfile installs the candidate profile shared by every scraper and the
// resolver. The profile is read-only afterwards; call SetProfile again to
// replace it.
func (m *Manager) SetProfile(p *models.CandidateProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profile = p
	m.resolver = resolver.New(m.client, p)
}

// IsRunning reports whether a queue run is in progress.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Stop requests cooperative cancellation of the active run. The request
// takes effect at the next job boundary; an in-flight apply attempt always
// completes first.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != nil {
		m.token.Stop()
	}
}

func (m *Manager) lookup(source string) (scraper.Scraper, *resolver.Resolver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil, nil, ErrNoProfile
	}
	s, ok := m.scrapers[source]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	return s, m.resolver, nil
}

// ApplyToJob runs one apply attempt end to end. When the scraper reports
// pending screening questions it resolves and fills each one in order, then
// submits; a failed resolution skips that question but never aborts the
// rest. The returned outcome carries the (possibly partially) answered
// question list for audit.
func (m *Manager) ApplyToJob(ctx context.Context, source string, job models.JobListing) (models.ApplyOutcome, error) {
	s, res, err := m.lookup(source)
	if err != nil {
		return models.ApplyOutcome{}, err
	}

	outcome := s.ApplyToJob(ctx, job)
	if len(outcome.ScreeningQuestions) == 0 {
		//terminal already: success, already-applied or error
		return outcome, nil
	}

	questions := outcome.ScreeningQuestions
	jobCtx := resolver.JobContext{Title: job.Title, Company: job.Company}

	for i := range questions {
		answer, err := res.Resolve(ctx, questions[i], jobCtx)
		if err != nil {
			m.sink.Log("warn", fmt.Sprintf("could not answer %q: %v", questions[i].Question, err))
			m.sink.Error(err, &job)
			continue
		}

		m.sink.ScreeningQuestion(questions[i], answer.Answer)
		s.FillScreeningAnswer(ctx, questions[i].ID, answer.Answer)
		questions[i].Answer = answer.Answer
	}

	submitted := s.SubmitApplication(ctx)
	final := models.ApplyOutcome{
		Success:            submitted,
		ScreeningQuestions: questions,
	}
	if !submitted {
		final.Error = "submission after answering screening questions failed"
	}
	return final, nil
}

// ProcessJobQueue applies to at most min(len(jobs), MaxApplicationsPerSession)
// jobs in caller order, pacing attempts with the configured delay and
// classifying every outcome as applied, skipped (already applied) or failed.
// A crash inside one job's processing is counted as failed and the queue
// continues. Exactly one run may be active per manager; a second call
// returns ErrQueueBusy.
func (m *Manager) ProcessJobQueue(ctx context.Context, source string, jobs []models.JobListing, onProgress ProgressFunc) (models.QueueRunResult, error) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return models.QueueRunResult{}, ErrQueueBusy
	}
	if m.profile == nil {
		m.mu.Unlock()
		return models.QueueRunResult{}, ErrNoProfile
	}
	if _, ok := m.scrapers[source]; !ok {
		m.mu.Unlock()
		return models.QueueRunResult{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	token := &stopToken{}
	m.token = token
	m.running = true
	m.mu.Unlock()

	var result models.QueueRunResult
	defer func() {
		m.mu.Lock()
		m.running = false
		m.token = nil
		m.mu.Unlock()
		m.sink.SessionComplete(result.Applied, result.Failed)
	}()

	total := len(jobs)
	if max := m.opts.MaxApplicationsPerSession; max > 0 && total > max {
		total = max
	}

	for i := 0; i < total; i++ {
		if token.Stopped() || ctx.Err() != nil {
			m.sink.Log("info", "queue run stopped before exhaustion")
			break
		}

		job := jobs[i]
		m.sink.QueueProgress(i+1, total)
		log.Printf("📤 [%d/%d] Applying: %s @ %s", i+1, total, job.Title, job.Company)

		outcome := m.attempt(ctx, source, job)
		switch {
		case outcome.AlreadyApplied:
			result.Skipped++
		case outcome.Success:
			result.Applied++
		default:
			result.Failed++
			if outcome.Error != "" {
				m.sink.Log("warn", fmt.Sprintf("apply failed for %s: %s", job.Title, outcome.Error))
			}
		}

		notifyProgress(onProgress, job, i, outcome)

		if i < total-1 && !token.Stopped() {
			if !sleepCtx(ctx, m.opts.ApplicationDelay) {
				break
			}
		}
	}

	return result, nil
}

// attempt wraps one apply attempt so that neither a panic nor a stray error
// can terminate the run; both become a failed outcome.
func (m *Manager) attempt(ctx context.Context, source string, job models.JobListing) (out models.ApplyOutcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("apply attempt crashed: %v", r)
			m.sink.Error(err, &job)
			out = models.ApplyOutcome{Error: err.Error()}
		}
	}()

	outcome, err := m.ApplyToJob(ctx, source, job)
	if err != nil {
		m.sink.Error(err, &job)
		return models.ApplyOutcome{Error: err.Error()}
	}
	return outcome
}

func notifyProgress(onProgress ProgressFunc, job models.JobListing, index int, outcome models.ApplyOutcome) {
	if onProgress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ Progress callback panicked: %v", r)
		}
	}()
	onProgress(job, index, outcome)
}

// sleepCtx waits for d unless the context ends first; the inter-job delay
// is the only deliberate throttle in the system.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
