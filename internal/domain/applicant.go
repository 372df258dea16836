package domain

import "time"

// QuizStatus is the admissions-quiz completion state of an applicant.
type QuizStatus string

const (
	QuizComplete   QuizStatus = "complete"
	QuizIncomplete QuizStatus = "incomplete"
)

// Group is the experiment arm an applicant was assigned to.
// The zero value means the applicant is not part of a running experiment.
type Group string

const (
	GroupControl   Group = "no email (control)"
	GroupTreatment Group = "email (treatment)"
)

// Groups returns both experiment arms, control first.
func Groups() []Group {
	return []Group{GroupControl, GroupTreatment}
}

// Applicant is one row of the admissions dataset.
type Applicant struct {
	CountryISO2   string
	Birthday      time.Time
	HighestDegree string
	Quiz          QuizStatus
	CreatedAt     time.Time
	Group         Group
}

// HasGroup reports whether the applicant carries an experiment label.
func (a Applicant) HasGroup() bool {
	return a.Group != ""
}

// Age returns the applicant's age in whole years at now, using 365.25-day years.
func (a Applicant) Age(now time.Time) int {
	days := int(now.Sub(a.Birthday).Hours() / 24)
	return int(float64(days) / 365.25)
}
