package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	relativeRegex = regexp.MustCompile(`(?i)\b(\d+)\+?\s*day`)
)

// IsRecentJob parses the portal's posted-date text ("Just Now", "3 Days
// Ago", "30+ Days Ago", ISO dates) and rejects listings older than
// maxAgeDays. Unparseable text passes: absence of a date is not staleness.
func IsRecentJob(dateStr string, maxAgeDays int) bool {
	if maxAgeDays <= 0 {
		return true
	}

	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" || dateStr == "N/A" || dateStr == "Recent" {
		return true
	}

	lower := strings.ToLower(dateStr)
	if strings.Contains(lower, "just now") || strings.Contains(lower, "today") || strings.Contains(lower, "few hours") {
		return true
	}

	//relative format: "3 Days Ago", "30+ Days Ago"
	if match := relativeRegex.FindStringSubmatch(lower); match != nil {
		days, _ := strconv.Atoi(match[1])
		if strings.Contains(lower, "+") {
			//"30+ days" means at least that old
			return days < maxAgeDays
		}
		return days <= maxAgeDays
	}

	//ISO format "2026-08-14" or "2026-08-14T..."
	if isoDateRegex.MatchString(dateStr) {
		jobDate, err := time.Parse("2006-01-02", dateStr[:10])
		if err == nil {
			return isWithinDays(time.Now(), jobDate, maxAgeDays)
		}
	}

	//default
	return true
}

func isWithinDays(now, jobDate time.Time, maxAgeDays int) bool {
	diff := now.Sub(jobDate)
	if diff > time.Duration(maxAgeDays)*24*time.Hour {
		return false
	}

	//reject if future date >2 days (timezone issues)
	if diff < -2*24*time.Hour {
		return false
	}
	return true
}
