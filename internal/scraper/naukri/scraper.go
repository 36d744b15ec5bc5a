package naukri

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"

	"go-jobpilot-automation/internal/browser"
	"go-jobpilot-automation/internal/config"
	"go-jobpilot-automation/internal/events"
	"go-jobpilot-automation/internal/models"
	"go-jobpilot-automation/internal/scraper"
)

const (
	sourceName = "naukri"
	baseURL    = "https://www.naukri.com"
	loginURL   = "https://www.naukri.com/nlogin/login"

	// listings per search results page
	pageSize = 20

	loginPollInterval = 3 * time.Second
)

// DOM markers. Each has a primary selector plus the fallbacks observed on
// older page variants.
const (
	selLoggedIn       = ".nI-gNb-drawer__bars, .nI-gNb-menuItems, img.nI-gNb-icon-img"
	selLoginControl   = "a#login_Layer, .nI-gNb-lg-rg__login"
	selJobCard        = ".srp-jobtuple-wrapper, article.jobTuple"
	selResultCount    = ".styles_count-string__DlPaZ, span.fleft.count-string, #searchCount"
	selAlreadyApplied = "#already-applied, .already-applied, span.applied-status"
	selApplyButton    = "#apply-button, button.apply-button"
	selSuccessMarker  = ".apply-message, .apply-status-header, .success-msg"
)

var submitSelectors = []string{
	".sendMsg",
	"button.submit-btn",
	"button[type='submit']",
}

var successPhrases = []string{
	"successfully applied",
	"application sent",
	"you have applied",
	"applied successfully",
}

var digitsRegex = regexp.MustCompile(`[\d,]+`)

// Scraper drives naukri.com through one playwright page. It owns the page
// and its SessionState exclusively; nothing else touches either.
type Scraper struct {
	cfg     *config.Config
	page    playwright.Page
	sink    *events.Sink
	limiter *rate.Limiter
	shots   *browser.ScreenshotDebugger

	mu    sync.Mutex
	state models.SessionState
}

var _ scraper.Scraper = (*Scraper)(nil)

func NewScraper(cfg *config.Config, page playwright.Page, sink *events.Sink) *Scraper {
	return &Scraper{
		cfg:  cfg,
		page: page,
		sink: sink,
		// one navigation per 2s keeps well under the portal's rate ceiling
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		shots:   browser.NewScreenshotDebugger(),
	}
}

func (s *Scraper) Name() string {
	return sourceName
}

// State returns a copy of the session state.
func (s *Scraper) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.CurrentJob != nil {
		job := *st.CurrentJob
		st.CurrentJob = &job
	}
	return st
}

// Initialize warms the session by opening the portal home. Errors propagate:
// the queue loop must never start on a dead browser.
func (s *Scraper) Initialize(ctx context.Context) error {
	if err := s.goto_(ctx, baseURL); err != nil {
		return fmt.Errorf("failed to open %s: %w", baseURL, err)
	}
	browser.RandomDelay(1000, 2000)
	browser.MouseJiggle(s.page)
	return nil
}

// CheckLoginStatus fails closed: a navigation error is logged and reported
// as "not logged in" so the caller is never aborted by a status probe.
func (s *Scraper) CheckLoginStatus(ctx context.Context) bool {
	if err := s.goto_(ctx, baseURL); err != nil {
		log.Printf("⚠️ Login check navigation failed: %v", err)
		return false
	}

	if n, _ := s.page.Locator(selLoggedIn).Count(); n > 0 {
		s.setLoggedIn(true)
		return true
	}
	if n, _ := s.page.Locator(selLoginControl).Count(); n > 0 {
		s.setLoggedIn(false)
		return false
	}

	//neither marker present, assume logged out
	s.setLoggedIn(false)
	return false
}

// OpenLoginPage brings up the portal's login form and returns immediately;
// the human at the visible browser does the rest.
func (s *Scraper) OpenLoginPage(ctx context.Context) error {
	if err := s.goto_(ctx, loginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	return nil
}

// WaitForManualLogin polls until the session looks authenticated or the
// timeout elapses. On success the context cookies are persisted so the
// login survives a restart.
func (s *Scraper) WaitForManualLogin(ctx context.Context, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for {
		if ctx.Err() != nil || !time.Now().Before(deadline) {
			return false
		}

		if s.CheckLoginStatus(ctx) {
			s.persistSession()
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(loginPollInterval):
		}
	}
}

func (s *Scraper) persistSession() {
	path := s.cfg.CookiesPath + "/cookies-naukri.json"
	cookies, err := s.page.Context().Cookies()
	if err != nil {
		log.Printf("⚠️ Could not read session cookies: %v", err)
		return
	}
	if err := browser.SaveCookies(path, cookies); err != nil {
		log.Printf("⚠️ Could not save session cookies: %v", err)
		return
	}
	log.Printf("🍪 Session cookies saved to %s", path)
}

// SearchJobs extracts one page of listings. A results page that never shows
// the listings marker is an empty result, not an error; only a hard
// navigation failure returns one.
func (s *Scraper) SearchJobs(ctx context.Context, params scraper.SearchParams) (*scraper.SearchResult, error) {
	searchURL := buildSearchURL(params)
	log.Printf("🔍 Searching: %s", searchURL)

	if err := s.goto_(ctx, searchURL); err != nil {
		return nil, fmt.Errorf("failed to open search page: %w", err)
	}

	empty := &scraper.SearchResult{Page: params.Page}

	if _, err := s.page.WaitForSelector(selJobCard, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(15000),
	}); err != nil {
		//absence of results is not an error
		log.Println("ℹ️ No job cards appeared within the wait window.")
		return empty, nil
	}

	browser.RandomDelay(500, 1200)
	browser.SmoothScroll(s.page)

	totalCount := s.extractTotalCount()

	cards, err := s.page.Locator(selJobCard).All()
	if err != nil {
		log.Printf("⚠️ Error collecting job cards: %v", err)
		return empty, nil
	}
	log.Printf("📦 Found %d job cards", len(cards))

	seen := mapset.NewSet[string]()
	var jobs []models.JobListing
	for _, card := range cards {
		job, ok := s.extractCard(card)
		if !ok {
			continue
		}
		//same external id twice on one page yields one listing
		if !seen.Add(job.DedupKey()) {
			continue
		}
		jobs = append(jobs, job)
		s.sink.JobFound(job)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	return &scraper.SearchResult{
		Jobs:       jobs,
		TotalCount: totalCount,
		Page:       page,
		HasMore:    len(jobs) > 0 && page*pageSize < totalCount,
	}, nil
}

// extractCard reads one result card with per-field fallbacks: a missing
// field becomes a placeholder, never an error, so one malformed card cannot
// kill the extraction. Only a card without identity is dropped.
func (s *Scraper) extractCard(card playwright.Locator) (models.JobListing, bool) {
	titleEl := card.Locator("a.title, .title a").First()
	title := textOr(titleEl, "")
	href, _ := titleEl.GetAttribute("href")
	if title == "" || href == "" {
		return models.JobListing{}, false
	}

	externalID, _ := card.GetAttribute("data-job-id")
	if externalID == "" {
		externalID = idFromURL(href)
	}
	if externalID == "" {
		return models.JobListing{}, false
	}

	job := models.JobListing{
		Source:     sourceName,
		ExternalID: externalID,
		Title:      title,
		Company:    textOr(card.Locator(".comp-name, a.comp-name, .companyInfo a").First(), "Unknown company"),
		Location:   textOr(card.Locator(".locWdth, .loc span, .location").First(), "Not specified"),
		Experience: textOr(card.Locator(".expwdth, .exp span").First(), "Not specified"),
		Salary:     textOr(card.Locator(".sal-wrap span, .salary").First(), "Not disclosed"),
		PostedDate: textOr(card.Locator(".job-post-day, .postedDate").First(), "Recent"),
		URL:        absoluteURL(href),
		ScrapedAt:  time.Now(),
	}
	return job, true
}

// GetJobDetails deep-fetches a single listing page; nil when unreachable.
func (s *Scraper) GetJobDetails(ctx context.Context, jobID string) *models.JobListing {
	detailURL := fmt.Sprintf("%s/job-listings-%s", baseURL, jobID)
	if err := s.goto_(ctx, detailURL); err != nil {
		log.Printf("⚠️ Detail page unreachable for %s: %v", jobID, err)
		return nil
	}

	if _, err := s.page.WaitForSelector("h1", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		return nil
	}

	html, err := s.page.Content()
	if err != nil {
		log.Printf("⚠️ Could not read detail page content: %v", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	job := &models.JobListing{
		Source:     sourceName,
		ExternalID: jobID,
		Title:      firstText(doc, "h1.styles_jd-header-title__rZwM1, h1.jd-header-title, h1", "Unknown title"),
		Company:    firstText(doc, ".styles_jd-header-comp-name__MvqAI a, .jd-header-comp-name a, .comp-name", "Unknown company"),
		Location:   firstText(doc, ".styles_jhc__location__W_pVs, .loc a, .location", "Not specified"),
		Experience: firstText(doc, ".styles_jhc__exp__k_giM, .exp", "Not specified"),
		Salary:     firstText(doc, ".styles_jhc__salary__jdfEC, .salary", "Not disclosed"),
		URL:        s.page.URL(),
		ScrapedAt:  time.Now(),
	}
	return job
}

// ApplyToJob performs one apply attempt. The result is exactly one of the
// four terminal shapes; the screening-pending shape leaves the attempt
// suspended (nothing clicked submit yet) and touches no session counters.
func (s *Scraper) ApplyToJob(ctx context.Context, job models.JobListing) models.ApplyOutcome {
	s.setCurrent(&job)
	s.sink.ApplicationStart(job)

	//ensure the page shows this job
	if s.page.URL() != job.URL {
		if err := s.goto_(ctx, job.URL); err != nil {
			log.Printf("⚠️ Could not open job page: %v", err)
			return s.finishFailed(job, fmt.Sprintf("could not open job page: %v", err))
		}
	}
	browser.RandomDelay(800, 1500)

	//already applied? leave without clicking anything
	if n, _ := s.page.Locator(selAlreadyApplied).Count(); n > 0 {
		log.Printf("⏭️ Already applied: %s", job.Title)
		s.setCurrent(nil)
		s.sink.ApplicationComplete(job, false)
		return models.ApplyOutcome{AlreadyApplied: true}
	}

	if !s.clickApplyControl() {
		s.shots.CaptureAndLog(s.page, "naukri-no-apply-button", "🚨 Apply button not found")
		return s.finishFailed(job, "Apply button not found")
	}
	browser.RandomDelay(1500, 2500)

	//screening questions suspend the attempt until the caller answers them
	if n, _ := s.page.Locator(selQuestionContainer).Count(); n > 0 {
		questions := s.GetScreeningQuestions(ctx)
		if len(questions) > 0 {
			log.Printf("❓ %d screening questions detected", len(questions))
			return models.ApplyOutcome{ScreeningQuestions: questions}
		}
	}

	if s.detectSubmission() {
		log.Printf("✅ Applied: %s @ %s", job.Title, job.Company)
		s.finishCounted(job, true)
		return models.ApplyOutcome{Success: true}
	}

	return s.finishFailed(job, "Application submission unclear")
}

// clickApplyControl tries the primary apply selector, then scans buttons and
// links for an "apply" label.
func (s *Scraper) clickApplyControl() bool {
	btn := s.page.Locator(selApplyButton).First()
	if n, _ := btn.Count(); n > 0 {
		if err := btn.Click(); err == nil {
			return true
		}
	}

	//text-based fallback
	candidates, err := s.page.Locator("button, a").All()
	if err != nil {
		return false
	}
	for i, el := range candidates {
		if i >= 60 {
			break
		}
		text, err := el.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(200)})
		if err != nil {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(text))
		if lower == "" || strings.Contains(lower, "applied") {
			continue
		}
		if strings.Contains(lower, "apply") {
			if err := el.Click(); err == nil {
				return true
			}
		}
	}
	return false
}

// SubmitApplication clicks the first known submit control and re-runs the
// shared success detection. Some forms auto-submit on the last answer, so a
// missing button still falls through to detection.
func (s *Scraper) SubmitApplication(ctx context.Context) bool {
	for _, sel := range submitSelectors {
		btn := s.page.Locator(sel).First()
		n, err := btn.Count()
		if err != nil || n == 0 {
			continue
		}
		if err := btn.Click(); err != nil {
			log.Printf("⚠️ Submit click failed on %q: %v", sel, err)
			continue
		}
		browser.RandomDelay(1500, 2500)
		break
	}

	ok := s.detectSubmission()
	s.mu.Lock()
	job := s.state.CurrentJob
	s.mu.Unlock()
	if job != nil {
		s.finishCounted(*job, ok)
	}
	return ok
}

// detectSubmission looks for a success marker element or a success phrase in
// the page text.
func (s *Scraper) detectSubmission() bool {
	if visible, _ := s.page.Locator(selSuccessMarker).First().IsVisible(); visible {
		return true
	}

	body, err := s.page.Locator("body").InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(3000),
	})
	if err != nil {
		return false
	}
	lower := strings.ToLower(body)
	for _, phrase := range successPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ---- session state helpers ----

func (s *Scraper) setLoggedIn(v bool) {
	s.mu.Lock()
	s.state.IsLoggedIn = v
	s.mu.Unlock()
}

func (s *Scraper) setCurrent(job *models.JobListing) {
	s.mu.Lock()
	s.state.CurrentJob = job
	s.state.IsRunning = job != nil
	s.mu.Unlock()
}

// finishCounted closes a terminal attempt: bumps the session counter, emits
// the completion event and clears the current job.
func (s *Scraper) finishCounted(job models.JobListing, success bool) {
	s.mu.Lock()
	if success {
		s.state.AppliedCount++
	} else {
		s.state.FailedCount++
	}
	s.state.CurrentJob = nil
	s.state.IsRunning = false
	s.mu.Unlock()
	s.sink.ApplicationComplete(job, success)
}

func (s *Scraper) finishFailed(job models.JobListing, reason string) models.ApplyOutcome {
	s.finishCounted(job, false)
	return models.ApplyOutcome{Error: reason}
}

// ---- navigation helpers ----

// goto_ paces navigations through the rate limiter and waits for the DOM to
// be ready.
func (s *Scraper) goto_(ctx context.Context, target string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	return err
}

func (s *Scraper) extractTotalCount() int {
	countText, err := s.page.Locator(selResultCount).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(2000),
	})
	if err != nil {
		return 0
	}
	match := digitsRegex.FindString(countText)
	if match == "" {
		return 0
	}
	n, _ := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	return n
}

func buildSearchURL(params scraper.SearchParams) string {
	slug := slugify(strings.Join(params.Keywords, " "))
	path := fmt.Sprintf("%s/%s-jobs", baseURL, slug)
	if len(params.Locations) > 0 {
		path += "-in-" + slugify(params.Locations[0])
	}

	q := url.Values{}
	q.Set("k", strings.Join(params.Keywords, ", "))
	if len(params.Locations) > 0 {
		q.Set("l", strings.Join(params.Locations, ", "))
	}
	if params.ExperienceYears > 0 {
		q.Set("experience", strconv.Itoa(params.ExperienceYears))
	}
	if params.PostedWithinDays > 0 {
		q.Set("jobAge", strconv.Itoa(params.PostedWithinDays))
	}
	if params.Page > 1 {
		q.Set("pageNo", strconv.Itoa(params.Page))
	}
	return path + "?" + q.Encode()
}

func slugify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

// idFromURL pulls the trailing numeric id out of a listing URL like
// .../job-listings-golang-developer-acme-bangalore-310524012345
func idFromURL(href string) string {
	trimmed := strings.SplitN(href, "?", 2)[0]
	idx := strings.LastIndex(trimmed, "-")
	if idx < 0 || idx == len(trimmed)-1 {
		return ""
	}
	candidate := trimmed[idx+1:]
	if _, err := strconv.ParseUint(candidate, 10, 64); err != nil {
		return ""
	}
	return candidate
}

// textOr reads a locator's text with a short timeout, falling back to a
// placeholder when the element is missing.
func textOr(el playwright.Locator, placeholder string) string {
	text, err := el.TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})
	if err != nil {
		return placeholder
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return placeholder
	}
	return text
}

func firstText(doc *goquery.Document, selectors, placeholder string) string {
	text := strings.TrimSpace(doc.Find(selectors).First().Text())
	if text == "" {
		return placeholder
	}
	return text
}
