package naukri

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-jobpilot-automation/internal/models"
)

// screening question blocks inside the apply drawer/chatbot
const (
	selQuestionContainer = ".chatbot_DrawerContentWrapper .botItem, li.question-item, .screening-question"
	selQuestionText      = ".botMsg, .question-text, label.question-label"
	selRequiredMarker    = "[required], .required, .mandatory, sup.astrisk"
)

// questionIDPrefix makes ids positional: q-0, q-1, ... Stable only within
// one apply attempt; a reopened form restarts at q-0.
const questionIDPrefix = "q-"

// GetScreeningQuestions scans question containers in DOM order. Calling it
// twice on an unchanged form returns the same ordered list with the same ids.
func (s *Scraper) GetScreeningQuestions(ctx context.Context) []models.ScreeningQuestion {
	containers, err := s.page.Locator(selQuestionContainer).All()
	if err != nil {
		log.Printf("⚠️ Could not scan question containers: %v", err)
		return nil
	}

	var questions []models.ScreeningQuestion
	for i, c := range containers {
		q := models.ScreeningQuestion{
			ID:       fmt.Sprintf("%s%d", questionIDPrefix, i),
			Question: questionText(c),
		}
		q.Type, q.Options = classifyControl(c)
		if n, _ := c.Locator(selRequiredMarker).Count(); n > 0 {
			q.Required = true
		}
		questions = append(questions, q)
	}
	return questions
}

func questionText(c playwright.Locator) string {
	text := textOr(c.Locator(selQuestionText).First(), "")
	if text != "" {
		return text
	}
	//fall back to the container's first text line
	full, err := c.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(500)})
	if err != nil {
		return ""
	}
	lines := strings.SplitN(strings.TrimSpace(full), "\n", 2)
	return strings.TrimSpace(lines[0])
}

// classifyControl infers the question type from the controls inside a
// container. The precedence is a fixed ordered list, checked top to bottom:
// select > radio > multiselect > checkbox > number > text.
func classifyControl(c playwright.Locator) (models.QuestionType, []string) {
	if n, _ := c.Locator("select").Count(); n > 0 {
		return models.QuestionSelect, optionTexts(c.Locator("select option"))
	}

	if n, _ := c.Locator("input[type='radio']").Count(); n > 0 {
		return models.QuestionRadio, optionTexts(c.Locator("label"))
	}

	if n, _ := c.Locator("input[type='checkbox']").Count(); n > 1 {
		return models.QuestionMultiselect, optionTexts(c.Locator("label"))
	}

	if n, _ := c.Locator("input[type='checkbox']").Count(); n == 1 {
		return models.QuestionCheckbox, optionTexts(c.Locator("label"))
	}

	if n, _ := c.Locator("input[type='number']").Count(); n > 0 {
		return models.QuestionNumber, nil
	}

	return models.QuestionText, nil
}

func optionTexts(options playwright.Locator) []string {
	texts, err := options.AllTextContents()
	if err != nil {
		return nil
	}
	var out []string
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" || strings.EqualFold(t, "select an option") {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FillScreeningAnswer re-locates the container by positional index and
// injects the answer with a type dispatch matching the detection precedence.
// Injection failures are logged, never escalated: a human operator is
// expected to be watching the visible browser.
//
// Known fragility: the index addresses the container's position at discovery
// time. If the form reflows between GetScreeningQuestions and this call
// (async validation inserting blocks, for instance) the index may land on a
// different container.
func (s *Scraper) FillScreeningAnswer(ctx context.Context, questionID, answer string) {
	idxStr, ok := strings.CutPrefix(questionID, questionIDPrefix)
	if !ok {
		log.Printf("⚠️ Unrecognized question id %q", questionID)
		return
	}
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 0 {
		log.Printf("⚠️ Unrecognized question id %q", questionID)
		return
	}

	containers, err := s.page.Locator(selQuestionContainer).All()
	if err != nil || idx >= len(containers) {
		log.Printf("⚠️ Question container %s no longer present", questionID)
		return
	}
	c := containers[idx]

	qType, _ := classifyControl(c)
	switch qType {
	case models.QuestionSelect:
		s.fillSelect(c, answer)
	case models.QuestionRadio:
		s.clickMatchingLabel(c, answer)
	case models.QuestionMultiselect, models.QuestionCheckbox:
		//comma-separated answers toggle one checkbox each
		for _, part := range strings.Split(answer, ",") {
			s.clickMatchingLabel(c, strings.TrimSpace(part))
		}
	default:
		input := c.Locator("input, textarea").First()
		if n, _ := input.Count(); n == 0 {
			return
		}
		if err := input.Fill(answer); err != nil {
			log.Printf("⚠️ Could not fill %s: %v", questionID, err)
		}
	}
}

func (s *Scraper) fillSelect(c playwright.Locator, answer string) {
	sel := c.Locator("select").First()
	texts, err := sel.Locator("option").AllTextContents()
	if err != nil {
		return
	}
	for _, t := range texts {
		if labelMatches(t, answer) {
			label := strings.TrimSpace(t)
			if _, err := sel.SelectOption(playwright.SelectOptionValues{
				Labels: &[]string{label},
			}); err != nil {
				log.Printf("⚠️ Could not select option %q: %v", label, err)
			}
			return
		}
	}
}

func (s *Scraper) clickMatchingLabel(c playwright.Locator, answer string) {
	labels, err := c.Locator("label").All()
	if err != nil {
		return
	}
	for _, l := range labels {
		text, err := l.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(300)})
		if err != nil {
			continue
		}
		if labelMatches(text, answer) {
			if err := l.Click(); err != nil {
				log.Printf("⚠️ Could not click option %q: %v", strings.TrimSpace(text), err)
			}
			return
		}
	}
}

// labelMatches compares an option label against an answer case- and
// diacritic-insensitively, in either containment direction ("Yes" matches
// "Yes, immediately available").
func labelMatches(label, answer string) bool {
	l := normalizeText(label)
	a := normalizeText(answer)
	if l == "" || a == "" {
		return false
	}
	return strings.Contains(l, a) || strings.Contains(a, l)
}

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(strings.TrimSpace(result))
}
