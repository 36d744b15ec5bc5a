package models

// Skill is one candidate skill with years of use and a proficiency tier
// (beginner, intermediate, advanced, expert).
type Skill struct {
	Name        string  `json:"name"`
	Years       float64 `json:"years"`
	Proficiency string  `json:"proficiency"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year,omitempty"`
}

// CandidateProfile holds everything the resolver may need to answer a
// screening question. It is set once on the orchestrator and treated as
// read-only afterwards; replacing it requires another SetProfile call.
type CandidateProfile struct {
	FullName        string  `json:"full_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Location        string  `json:"location"`
	CurrentTitle    string  `json:"current_title"`
	TotalExperience float64 `json:"total_experience_years"`
	Summary         string  `json:"summary,omitempty"`

	Skills    []Skill     `json:"skills"`
	Education []Education `json:"education"`

	PreferredTitles    []string `json:"preferred_titles"`
	PreferredLocations []string `json:"preferred_locations"`
	Keywords           []string `json:"keywords"`

	CurrentSalary  string `json:"current_salary,omitempty"`
	ExpectedSalary string `json:"expected_salary,omitempty"`
	NoticePeriod   string `json:"notice_period,omitempty"`
	WorkMode       string `json:"work_mode,omitempty"` //office, hybrid, remote
}
