package naukri

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobpilot-automation/internal/config"
	"go-jobpilot-automation/internal/models"
	"go-jobpilot-automation/internal/scraper"
)

// setupPage launches a headless browser for DOM-level tests. Skipped in
// short mode and whenever no playwright driver is installed.
func setupPage(t *testing.T) playwright.Page {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	t.Cleanup(func() { pw.Stop() })

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Skipf("chromium unavailable: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	page, err := b.NewPage()
	require.NoError(t, err)
	return page
}

func newTestScraper(t *testing.T, page playwright.Page) *Scraper {
	t.Helper()
	return NewScraper(&config.Config{CookiesPath: t.TempDir()}, page, nil)
}

// routeHTML serves the same document for every navigation in the test.
func routeHTML(t *testing.T, page playwright.Page, html string) {
	t.Helper()
	err := page.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			ContentType: playwright.String("text/html"),
			Body:        html,
		})
	})
	require.NoError(t, err)
}

const searchResultsHTML = `<!DOCTYPE html>
<html><body>
<span class="styles_count-string__DlPaZ">243 Golang Jobs</span>
<div class="srp-jobtuple-wrapper" data-job-id="111">
  <a class="title" href="/job-listings-golang-developer-acme-111">Golang Developer</a>
  <span class="comp-name">Acme Corp</span>
  <span class="locWdth">Bangalore</span>
  <span class="expwdth">3-5 Yrs</span>
  <span class="job-post-day">2 Days Ago</span>
</div>
<div class="srp-jobtuple-wrapper" data-job-id="222">
  <a class="title" href="/job-listings-backend-engineer-beta-222">Backend Engineer</a>
  <span class="comp-name">Beta Labs</span>
</div>
<div class="srp-jobtuple-wrapper" data-job-id="111">
  <a class="title" href="/job-listings-golang-developer-acme-111">Golang Developer</a>
</div>
<div class="srp-jobtuple-wrapper" data-job-id="333">
  <span class="comp-name">No Title Inc</span>
</div>
</body></html>`

func TestSearchJobs_ExtractsAndDeduplicatesCards(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, searchResultsHTML)
	s := newTestScraper(t, page)

	result, err := s.SearchJobs(context.Background(), scraper.SearchParams{
		Keywords: []string{"golang"},
		Page:     1,
	})

	require.NoError(t, err)
	require.Len(t, result.Jobs, 2, "duplicate ids and identity-less cards are dropped")
	assert.Equal(t, 243, result.TotalCount)
	assert.True(t, result.HasMore)

	first := result.Jobs[0]
	assert.Equal(t, "naukri", first.Source)
	assert.Equal(t, "111", first.ExternalID)
	assert.Equal(t, "Golang Developer", first.Title)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "Bangalore", first.Location)
	assert.Equal(t, "2 Days Ago", first.PostedDate)
	assert.Equal(t, "Not disclosed", first.Salary, "missing fields become placeholders")
	assert.Equal(t, "https://www.naukri.com/job-listings-golang-developer-acme-111", first.URL)

	second := result.Jobs[1]
	assert.Equal(t, "222", second.ExternalID)
	assert.Equal(t, "Not specified", second.Location)
}

const emptyResultsHTML = `<!DOCTYPE html>
<html><body>
<span class="styles_count-string__DlPaZ">0 Golang Jobs</span>
<p>No matching jobs found. Try different keywords.</p>
</body></html>`

func TestSearchJobs_NoCardsIsEmptyResultNotError(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, emptyResultsHTML)
	s := newTestScraper(t, page)

	result, err := s.SearchJobs(context.Background(), scraper.SearchParams{
		Keywords: []string{"cobol"},
		Page:     1,
	})

	require.NoError(t, err, "absence of results is not an error")
	assert.Empty(t, result.Jobs)
	assert.False(t, result.HasMore)
	assert.Equal(t, 1, result.Page)
}

const jobDetailHTML = `<!DOCTYPE html>
<html><body>
<h1 class="jd-header-title">Golang Developer</h1>
<div class="jd-header-comp-name"><a>Acme Corp</a></div>
<span class="loc"><a>Bangalore</a></span>
<span class="exp">4-6 Yrs</span>
</body></html>`

func TestGetJobDetails_ExtractsDetailPage(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, jobDetailHTML)
	s := newTestScraper(t, page)

	job := s.GetJobDetails(context.Background(), "310524012345")

	require.NotNil(t, job)
	assert.Equal(t, "naukri", job.Source)
	assert.Equal(t, "310524012345", job.ExternalID)
	assert.Equal(t, "Golang Developer", job.Title)
	assert.Equal(t, "Acme Corp", job.Company)
	assert.Equal(t, "Bangalore", job.Location)
	assert.Equal(t, "4-6 Yrs", job.Experience)
	assert.Equal(t, "Not disclosed", job.Salary, "missing fields become placeholders")
	assert.Equal(t, "https://www.naukri.com/job-listings-310524012345", job.URL)
	assert.False(t, job.ScrapedAt.IsZero())
}

const detailWithoutHeaderHTML = `<!DOCTYPE html>
<html><body><p>This job is no longer available.</p></body></html>`

func TestGetJobDetails_NilWhenHeaderNeverAppears(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, detailWithoutHeaderHTML)
	s := newTestScraper(t, page)

	job := s.GetJobDetails(context.Background(), "310524012345")

	assert.Nil(t, job)
}

const applyPageHTML = `<!DOCTYPE html>
<html><body>
<h1>Golang Developer</h1>
<button id="apply-button" onclick="document.getElementById('drawer').style.display='block'">Apply</button>
<div id="drawer" class="chatbot_DrawerContentWrapper" style="display:none">
  <div class="botItem">
    <span class="botMsg">How many years of experience do you have in Go?</span>
    <input type="number" required>
  </div>
  <div class="botItem">
    <span class="botMsg">Are you willing to relocate?</span>
    <label><input type="radio" name="reloc">Yes</label>
    <label><input type="radio" name="reloc">No</label>
  </div>
  <button class="sendMsg" onclick="document.getElementById('done').textContent='You have applied successfully'">Send</button>
</div>
<div id="done"></div>
</body></html>`

func testJob() models.JobListing {
	return models.JobListing{
		Source:     "naukri",
		ExternalID: "111",
		Title:      "Golang Developer",
		Company:    "Acme Corp",
		URL:        "https://www.naukri.com/job-listings-golang-developer-acme-111",
	}
}

func TestApplyToJob_SuspendsOnScreeningQuestions(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, applyPageHTML)
	s := newTestScraper(t, page)

	outcome := s.ApplyToJob(context.Background(), testJob())

	assert.False(t, outcome.Success)
	assert.False(t, outcome.AlreadyApplied)
	assert.Empty(t, outcome.Error)
	require.Len(t, outcome.ScreeningQuestions, 2)

	q0 := outcome.ScreeningQuestions[0]
	assert.Equal(t, "q-0", q0.ID)
	assert.Equal(t, "How many years of experience do you have in Go?", q0.Question)
	assert.Equal(t, models.QuestionNumber, q0.Type)
	assert.True(t, q0.Required)

	q1 := outcome.ScreeningQuestions[1]
	assert.Equal(t, "q-1", q1.ID)
	assert.Equal(t, models.QuestionRadio, q1.Type)
	assert.Equal(t, []string{"Yes", "No"}, q1.Options)

	//the attempt is suspended: nothing counted yet, current job retained
	st := s.State()
	assert.Zero(t, st.AppliedCount)
	assert.Zero(t, st.FailedCount)
	require.NotNil(t, st.CurrentJob)
	assert.Equal(t, "111", st.CurrentJob.ExternalID)
}

func TestFillAndSubmit_CompletesSuspendedAttempt(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, applyPageHTML)
	s := newTestScraper(t, page)
	ctx := context.Background()

	outcome := s.ApplyToJob(ctx, testJob())
	require.Len(t, outcome.ScreeningQuestions, 2)

	s.FillScreeningAnswer(ctx, "q-0", "4")
	s.FillScreeningAnswer(ctx, "q-1", "Yes")

	value, err := page.Locator(".botItem input[type='number']").InputValue()
	require.NoError(t, err)
	assert.Equal(t, "4", value)

	checked, err := page.Locator("input[name='reloc']").First().IsChecked()
	require.NoError(t, err)
	assert.True(t, checked, "the Yes radio is selected")

	ok := s.SubmitApplication(ctx)
	assert.True(t, ok)

	st := s.State()
	assert.Equal(t, 1, st.AppliedCount)
	assert.Nil(t, st.CurrentJob)
}

func TestFillScreeningAnswer_BadIDIsIgnored(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, applyPageHTML)
	s := newTestScraper(t, page)
	ctx := context.Background()

	_ = s.ApplyToJob(ctx, testJob())

	//none of these may panic or touch the form
	s.FillScreeningAnswer(ctx, "question-7", "x")
	s.FillScreeningAnswer(ctx, "q-abc", "x")
	s.FillScreeningAnswer(ctx, "q-99", "x")

	value, err := page.Locator(".botItem input[type='number']").InputValue()
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestGetScreeningQuestions_IsIdempotent(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, applyPageHTML)
	s := newTestScraper(t, page)
	ctx := context.Background()

	_ = s.ApplyToJob(ctx, testJob())

	first := s.GetScreeningQuestions(ctx)
	second := s.GetScreeningQuestions(ctx)
	assert.Equal(t, first, second)
}

const alreadyAppliedHTML = `<!DOCTYPE html>
<html><body>
<h1>Golang Developer</h1>
<span id="already-applied">Applied on 28 Aug</span>
</body></html>`

func TestApplyToJob_AlreadyAppliedShortCircuits(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, alreadyAppliedHTML)
	s := newTestScraper(t, page)

	outcome := s.ApplyToJob(context.Background(), testJob())

	assert.True(t, outcome.AlreadyApplied)
	assert.False(t, outcome.Success)

	st := s.State()
	assert.Zero(t, st.AppliedCount)
	assert.Zero(t, st.FailedCount)
	assert.Nil(t, st.CurrentJob)
}

const noApplyButtonHTML = `<!DOCTYPE html>
<html><body><h1>Golang Developer</h1><p>This listing has expired.</p></body></html>`

func TestApplyToJob_MissingApplyButtonFails(t *testing.T) {
	page := setupPage(t)
	routeHTML(t, page, noApplyButtonHTML)
	s := newTestScraper(t, page)

	outcome := s.ApplyToJob(context.Background(), testJob())

	assert.Equal(t, "Apply button not found", outcome.Error)
	st := s.State()
	assert.Equal(t, 1, st.FailedCount)
}

const selectQuestionHTML = `<!DOCTYPE html>
<html><body>
<div class="screening-question">
  <label class="question-label">Highest qualification?</label>
  <select>
    <option>Select an option</option>
    <option>B.Tech</option>
    <option>M.Tech</option>
  </select>
</div>
<div class="screening-question">
  <label class="question-label">Which shifts can you work?</label>
  <label><input type="checkbox">Day</label>
  <label><input type="checkbox">Night</label>
</div>
<div class="screening-question">
  <label class="question-label">Do you have a valid passport?</label>
  <label><input type="checkbox">Yes, I do</label>
</div>
<div class="screening-question">
  <label class="question-label">Describe your current role.</label>
  <textarea></textarea>
</div>
</body></html>`

func TestClassifyControl_Precedence(t *testing.T) {
	page := setupPage(t)
	require.NoError(t, page.SetContent(selectQuestionHTML))
	s := newTestScraper(t, page)

	questions := s.GetScreeningQuestions(context.Background())
	require.Len(t, questions, 4)

	assert.Equal(t, models.QuestionSelect, questions[0].Type)
	assert.Equal(t, []string{"B.Tech", "M.Tech"}, questions[0].Options, "the placeholder option is dropped")

	assert.Equal(t, models.QuestionMultiselect, questions[1].Type, "two checkboxes make a multiselect")
	assert.Equal(t, []string{"Day", "Night"}, questions[1].Options)

	assert.Equal(t, models.QuestionCheckbox, questions[2].Type, "a single checkbox stays a checkbox")

	assert.Equal(t, models.QuestionText, questions[3].Type)
}

func TestFillScreeningAnswer_SelectAndMultiselect(t *testing.T) {
	page := setupPage(t)
	require.NoError(t, page.SetContent(selectQuestionHTML))
	s := newTestScraper(t, page)
	ctx := context.Background()

	s.FillScreeningAnswer(ctx, "q-0", "b.tech")
	s.FillScreeningAnswer(ctx, "q-1", "Day, Night")

	value, err := page.Locator("select").InputValue()
	require.NoError(t, err)
	assert.Equal(t, "B.Tech", value)

	boxes, err := page.Locator(".screening-question input[type='checkbox']").All()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(boxes), 2)
	for _, box := range boxes[:2] {
		checked, err := box.IsChecked()
		require.NoError(t, err)
		assert.True(t, checked)
	}
}
