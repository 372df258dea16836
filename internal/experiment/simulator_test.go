package experiment

import (
	"errors"
	"testing"
	"time"

	"github.com/apodwikat/abtest/internal/adapters/memory"
	"github.com/apodwikat/abtest/internal/domain"
)

var start = time.Date(2022, 5, 1, 8, 0, 0, 0, time.UTC)

// applicants spreads n applicants evenly over the given number of days,
// alternating quiz status.
func applicants(n, days int) []domain.Applicant {
	out := make([]domain.Applicant, n)
	step := time.Duration(days) * 24 * time.Hour / time.Duration(n)
	for i := range out {
		quiz := domain.QuizComplete
		if i%2 == 1 {
			quiz = domain.QuizIncomplete
		}
		out[i] = domain.Applicant{
			CountryISO2: "NG",
			Quiz:        quiz,
			CreatedAt:   start.Add(time.Duration(i) * step),
		}
	}
	return out
}

func TestRunExperiment_LabelsOnlyWindow(t *testing.T) {
	repo := memory.NewApplicantRepository(applicants(40, 10))
	sim := NewSimulator(repo, NewSeededSource(1))

	res, err := sim.RunExperiment(3)
	if err != nil {
		t.Fatalf("RunExperiment failed: %v", err)
	}

	if !res.Window.Start.Equal(start) {
		t.Errorf("window start: expected %v, got %v", start, res.Window.Start)
	}
	if want := start.Add(72 * time.Hour); !res.Window.End.Equal(want) {
		t.Errorf("window end: expected %v, got %v", want, res.Window.End)
	}

	inWindow := 0
	for _, a := range repo.Applicants() {
		if res.Window.Contains(a.CreatedAt) {
			inWindow++
			if a.Group != domain.GroupControl && a.Group != domain.GroupTreatment {
				t.Errorf("in-window applicant at %v has label %q", a.CreatedAt, a.Group)
			}
		} else if a.HasGroup() {
			t.Errorf("out-of-window applicant at %v has label %q", a.CreatedAt, a.Group)
		}
	}
	if inWindow != 12 {
		t.Errorf("expected 12 applicants in window, got %d", inWindow)
	}
	if len(res.Applicants) != inWindow {
		t.Errorf("expected %d assigned applicants, got %d", inWindow, len(res.Applicants))
	}
}

func TestRunExperiment_InvalidDays(t *testing.T) {
	sim := NewSimulator(memory.NewApplicantRepository(applicants(4, 1)), NewSeededSource(1))
	if _, err := sim.RunExperiment(0); !errors.Is(err, domain.ErrInvalidDays) {
		t.Errorf("expected ErrInvalidDays, got %v", err)
	}
}

func TestRunExperiment_EmptyDataset(t *testing.T) {
	sim := NewSimulator(memory.NewApplicantRepository(nil), NewSeededSource(1))
	res, err := sim.RunExperiment(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Applicants) != 0 {
		t.Errorf("expected no applicants, got %d", len(res.Applicants))
	}
}

func TestRunExperiment_ReplacesPreviousLabels(t *testing.T) {
	repo := memory.NewApplicantRepository(applicants(20, 10))
	sim := NewSimulator(repo, NewSeededSource(7))

	if _, err := sim.RunExperiment(10); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := sim.RunExperiment(1); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	labeled := 0
	for _, a := range repo.Applicants() {
		if a.HasGroup() {
			labeled++
		}
	}
	if labeled != 2 {
		t.Errorf("expected 2 labeled applicants after a one-day run, got %d", labeled)
	}
}

func TestResetGroups(t *testing.T) {
	repo := memory.NewApplicantRepository(applicants(10, 2))
	sim := NewSimulator(repo, NewSeededSource(3))

	sim.ResetGroups() // no labels yet
	if _, err := sim.RunExperiment(2); err != nil {
		t.Fatalf("RunExperiment failed: %v", err)
	}
	sim.ResetGroups()

	for _, a := range repo.Applicants() {
		if a.HasGroup() {
			t.Fatalf("applicant at %v still labeled %q", a.CreatedAt, a.Group)
		}
	}
	if !repo.ContingencyTable().Empty() {
		t.Error("expected empty contingency table after reset")
	}
}

func TestRunExperiment_StableTableShape(t *testing.T) {
	repo := memory.NewApplicantRepository(applicants(100, 5))
	sim := NewSimulator(repo, NewSeededSource(42))

	var first domain.ContingencyTable
	for i := 0; i < 5; i++ {
		sim.ResetGroups()
		if _, err := sim.RunExperiment(5); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		table := repo.ContingencyTable()
		if !table.Is2x2() {
			t.Fatalf("run %d: expected 2x2 table, got %dx%d", i, len(table.Rows), len(table.Columns))
		}
		if table.Total() != 100 {
			t.Errorf("run %d: expected total 100, got %d", i, table.Total())
		}
		if i == 0 {
			first = table
			continue
		}
		for r := range first.Rows {
			if table.Rows[r] != first.Rows[r] {
				t.Errorf("run %d: row %d label changed from %q to %q", i, r, first.Rows[r], table.Rows[r])
			}
		}
		for c := range first.Columns {
			if table.Columns[c] != first.Columns[c] {
				t.Errorf("run %d: column %d label changed from %q to %q", i, c, first.Columns[c], table.Columns[c])
			}
		}
	}
}
