// Package memory holds the in-process applicant dataset.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/pariz/gountries"

	"github.com/apodwikat/abtest/internal/domain"
)

// ApplicantRepository keeps the dataset in memory. The dataset is loaded once;
// only group labels change afterwards.
type ApplicantRepository struct {
	mu         sync.RWMutex
	applicants []domain.Applicant
	countries  *gountries.Query
}

// NewApplicantRepository copies applicants into a new repository.
func NewApplicantRepository(applicants []domain.Applicant) *ApplicantRepository {
	data := make([]domain.Applicant, len(applicants))
	copy(data, applicants)
	return &ApplicantRepository{
		applicants: data,
		countries:  gountries.New(),
	}
}

// Len returns the number of applicants in the dataset.
func (r *ApplicantRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.applicants)
}

// Applicants returns a snapshot of the dataset.
func (r *ApplicantRepository) Applicants() []domain.Applicant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Applicant, len(r.applicants))
	copy(out, r.applicants)
	return out
}

// UpdateGroups runs fn with exclusive access to the dataset.
// fn may change Group fields only.
func (r *ApplicantRepository) UpdateGroups(fn func(applicants []domain.Applicant)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.applicants)
}

// NationalityCounts returns applicant counts per country in ascending count order.
// When normalize is set, Percent holds each country's share of all applicants.
func (r *ApplicantRepository) NationalityCounts(normalize bool) []domain.CountryCount {
	r.mu.RLock()
	counts := make(map[string]int64)
	var total int64
	for _, a := range r.applicants {
		if a.CountryISO2 == "" {
			continue
		}
		counts[a.CountryISO2]++
		total++
	}
	r.mu.RUnlock()

	out := make([]domain.CountryCount, 0, len(counts))
	for code, n := range counts {
		cc := domain.CountryCount{ISO2: code, Count: n}
		if country, err := r.countries.FindCountryByAlpha(code); err == nil {
			cc.ISO3 = country.Alpha3
			cc.Name = country.Name.Common
		}
		if normalize && total > 0 {
			cc.Percent = float64(n) / float64(total) * 100
		}
		out = append(out, cc)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].ISO2 < out[j].ISO2
	})
	return out
}

// Ages returns every applicant's age at now. Applicants without a birthday are skipped.
func (r *ApplicantRepository) Ages(now time.Time) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ages := make([]int, 0, len(r.applicants))
	for _, a := range r.applicants {
		if a.Birthday.IsZero() {
			continue
		}
		ages = append(ages, a.Age(now))
	}
	return ages
}

// EducationCounts returns applicant counts per highest degree, ordered from
// the lowest to the highest degree. Normalized values are percentages.
func (r *ApplicantRepository) EducationCounts(normalize bool) []domain.DegreeCount {
	r.mu.RLock()
	counts := make(map[string]int64)
	var total int64
	for _, a := range r.applicants {
		if a.HighestDegree == "" {
			continue
		}
		counts[a.HighestDegree]++
		total++
	}
	r.mu.RUnlock()

	degrees := make([]string, 0, len(counts))
	for d := range counts {
		degrees = append(degrees, d)
	}
	domain.SortDegrees(degrees)

	out := make([]domain.DegreeCount, len(degrees))
	for i, d := range degrees {
		v := float64(counts[d])
		if normalize && total > 0 {
			v = v / float64(total) * 100
		}
		out[i] = domain.DegreeCount{Degree: d, Value: v}
	}
	return out
}

// IncompletePerDay counts applicants who did not complete the quiz, per
// calendar day of application. Days without such applicants are omitted.
func (r *ApplicantRepository) IncompletePerDay() []domain.DailyCount {
	r.mu.RLock()
	counts := make(map[string]int64)
	for _, a := range r.applicants {
		if a.Quiz != domain.QuizIncomplete {
			continue
		}
		counts[a.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	r.mu.RUnlock()

	out := make([]domain.DailyCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, domain.DailyCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ContingencyTable cross-tabulates experiment group by quiz status.
// The table is empty when no experiment has been run.
func (r *ApplicantRepository) ContingencyTable() domain.ContingencyTable {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.Crosstab(r.applicants)
}
