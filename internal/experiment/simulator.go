// Package experiment simulates a randomized controlled trial over the
// applicant dataset.
package experiment

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/ports"
)

// Assignment is the outcome of one experiment run.
type Assignment struct {
	Window     domain.Window
	Applicants []domain.Applicant
}

// Simulator assigns applicants to experiment groups.
type Simulator struct {
	repo ports.ApplicantRepository

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a Simulator drawing from src.
func NewSimulator(repo ports.ApplicantRepository, src rand.Source) *Simulator {
	return &Simulator{repo: repo, rng: rand.New(src)}
}

// NewSeededSource returns a deterministic PCG source for seed.
func NewSeededSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// NewRandomSource returns a PCG source seeded from the runtime's random generator.
func NewRandomSource() rand.Source {
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// ResetGroups clears every group label. It is a no-op when none is set.
func (s *Simulator) ResetGroups() {
	s.repo.UpdateGroups(func(applicants []domain.Applicant) {
		for i := range applicants {
			applicants[i].Group = ""
		}
	})
}

// Window returns the experiment window for days, starting at the earliest
// application timestamp. ok is false when the dataset is empty.
func (s *Simulator) Window(days int) (domain.Window, bool) {
	return windowFor(s.repo.Applicants(), days)
}

// RunExperiment labels every applicant created in the window
// [start, start+days) as control or treatment with equal probability.
// Applicants outside the window end up unlabeled. An empty window is not an
// error: the returned assignment simply holds no applicants.
func (s *Simulator) RunExperiment(days int) (*Assignment, error) {
	if days <= 0 {
		return nil, domain.ErrInvalidDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := &Assignment{}
	s.repo.UpdateGroups(func(applicants []domain.Applicant) {
		w, ok := windowFor(applicants, days)
		if !ok {
			return
		}
		result.Window = w

		groups := domain.Groups()
		for i := range applicants {
			if !w.Contains(applicants[i].CreatedAt) {
				applicants[i].Group = ""
				continue
			}
			applicants[i].Group = groups[s.rng.IntN(len(groups))]
			result.Applicants = append(result.Applicants, applicants[i])
		}
	})

	return result, nil
}

func windowFor(applicants []domain.Applicant, days int) (domain.Window, bool) {
	if len(applicants) == 0 {
		return domain.Window{}, false
	}

	start := applicants[0].CreatedAt
	for _, a := range applicants[1:] {
		if a.CreatedAt.Before(start) {
			start = a.CreatedAt
		}
	}
	return domain.Window{Start: start, End: start.Add(time.Duration(days) * 24 * time.Hour)}, true
}
