package filter

import (
	"strings"

	"go-jobpilot-automation/internal/models"
)

// CalculateMatchScore rates a listing against the candidate profile on a
// 0-10 scale. Used by the caller to order the apply queue, best first.
func CalculateMatchScore(job models.JobListing, profile *models.CandidateProfile) int {
	score := 0
	text := strings.ToLower(job.Title + " " + job.Company)

	//preferred title match (+4)
	for _, title := range profile.PreferredTitles {
		if title != "" && strings.Contains(text, strings.ToLower(title)) {
			score += 4
			break
		}
	}

	//keyword match (+2)
	for _, kw := range profile.Keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			score += 2
			break
		}
	}

	//skill mentions (+1 each, capped at 2)
	skillHits := 0
	for _, skill := range profile.Skills {
		if skill.Name != "" && strings.Contains(text, strings.ToLower(skill.Name)) {
			skillHits++
			if skillHits == 2 {
				break
			}
		}
	}
	score += skillHits

	//location preference
	location := strings.ToLower(job.Location)
	for _, loc := range profile.PreferredLocations {
		if loc != "" && strings.Contains(location, strings.ToLower(loc)) {
			score += 2
			break
		}
	}
	if strings.Contains(location, "remote") && strings.EqualFold(profile.WorkMode, "remote") {
		score++
	}

	//score normalizing
	if score > 10 {
		return 10
	}
	return score
}

// ShouldIncludeJob decides whether a listing is worth queueing at all:
// it must touch the profile's titles/keywords/skills and be recent enough.
func ShouldIncludeJob(job models.JobListing, profile *models.CandidateProfile, maxAgeDays int) bool {
	if CalculateMatchScore(job, profile) == 0 {
		return false
	}

	if !IsRecentJob(job.PostedDate, maxAgeDays) {
		return false
	}

	return true
}
