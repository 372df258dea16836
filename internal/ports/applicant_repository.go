package ports

import (
	"time"

	"github.com/apodwikat/abtest/internal/domain"
)

// ApplicantRepository answers descriptive queries over the applicant dataset
// and holds the experiment group labels.
type ApplicantRepository interface {
	NationalityCounts(normalize bool) []domain.CountryCount
	Ages(now time.Time) []int
	EducationCounts(normalize bool) []domain.DegreeCount
	IncompletePerDay() []domain.DailyCount
	ContingencyTable() domain.ContingencyTable
	Applicants() []domain.Applicant
	UpdateGroups(fn func(applicants []domain.Applicant))
	Len() int
}
