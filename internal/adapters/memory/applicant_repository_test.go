package memory

import (
	"testing"
	"time"

	"github.com/apodwikat/abtest/internal/domain"
	"github.com/apodwikat/abtest/internal/ports"
)

var _ ports.ApplicantRepository = (*ApplicantRepository)(nil)

func day(d, h int) time.Time {
	return time.Date(2022, 5, d, h, 0, 0, 0, time.UTC)
}

func fixture() []domain.Applicant {
	return []domain.Applicant{
		{CountryISO2: "NG", Birthday: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC), HighestDegree: "Bachelor's degree", Quiz: domain.QuizIncomplete, CreatedAt: day(1, 9)},
		{CountryISO2: "NG", Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), HighestDegree: "Master's degree", Quiz: domain.QuizIncomplete, CreatedAt: day(1, 17)},
		{CountryISO2: "US", Birthday: time.Date(1985, 1, 1, 0, 0, 0, 0, time.UTC), HighestDegree: "Doctorate (e.g. PhD)", Quiz: domain.QuizComplete, CreatedAt: day(2, 8)},
		{CountryISO2: "IN", HighestDegree: "Bachelor's degree", Quiz: domain.QuizIncomplete, CreatedAt: day(3, 8)},
		{CountryISO2: "NG", HighestDegree: "Bootcamp", Quiz: domain.QuizComplete, CreatedAt: day(3, 12)},
	}
}

func TestNationalityCounts(t *testing.T) {
	repo := NewApplicantRepository(fixture())

	counts := repo.NationalityCounts(true)
	if len(counts) != 3 {
		t.Fatalf("expected 3 countries, got %d", len(counts))
	}

	last := counts[len(counts)-1]
	if last.ISO2 != "NG" || last.Count != 3 {
		t.Errorf("expected NG with 3 applicants last, got %+v", last)
	}
	if last.ISO3 != "NGA" {
		t.Errorf("expected ISO3 NGA, got %q", last.ISO3)
	}
	if last.Percent != 60 {
		t.Errorf("expected 60%%, got %f", last.Percent)
	}
	// equal counts are ordered by code
	if counts[0].ISO2 != "IN" || counts[1].ISO2 != "US" {
		t.Errorf("unexpected order: %s, %s", counts[0].ISO2, counts[1].ISO2)
	}
}

func TestNationalityCounts_NotNormalized(t *testing.T) {
	repo := NewApplicantRepository(fixture())
	for _, c := range repo.NationalityCounts(false) {
		if c.Percent != 0 {
			t.Errorf("%s: expected no percentage, got %f", c.ISO2, c.Percent)
		}
	}
}

func TestAges(t *testing.T) {
	repo := NewApplicantRepository(fixture())
	ages := repo.Ages(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	want := []int{29, 34, 39}
	if len(ages) != len(want) {
		t.Fatalf("expected %d ages, got %d", len(want), len(ages))
	}
	for i := range want {
		if ages[i] != want[i] {
			t.Errorf("age %d: expected %d, got %d", i, want[i], ages[i])
		}
	}
}

func TestEducationCounts(t *testing.T) {
	repo := NewApplicantRepository(fixture())

	counts := repo.EducationCounts(false)
	wantOrder := []string{"Bachelor's degree", "Master's degree", "Doctorate (e.g. PhD)", "Bootcamp"}
	if len(counts) != len(wantOrder) {
		t.Fatalf("expected %d degrees, got %d", len(wantOrder), len(counts))
	}
	for i, d := range wantOrder {
		if counts[i].Degree != d {
			t.Errorf("position %d: expected %q, got %q", i, d, counts[i].Degree)
		}
	}
	if counts[0].Value != 2 {
		t.Errorf("expected 2 bachelor's degrees, got %f", counts[0].Value)
	}

	normalized := repo.EducationCounts(true)
	if normalized[0].Value != 40 {
		t.Errorf("expected 40%% bachelor's degrees, got %f", normalized[0].Value)
	}
}

func TestIncompletePerDay(t *testing.T) {
	repo := NewApplicantRepository(fixture())
	daily := repo.IncompletePerDay()

	if len(daily) != 2 {
		t.Fatalf("expected 2 days, got %d: %+v", len(daily), daily)
	}
	if daily[0].Date != "2022-05-01" || daily[0].Count != 2 {
		t.Errorf("unexpected first day: %+v", daily[0])
	}
	if daily[1].Date != "2022-05-03" || daily[1].Count != 1 {
		t.Errorf("unexpected second day: %+v", daily[1])
	}
}

func TestContingencyTable_EmptyWithoutGroups(t *testing.T) {
	repo := NewApplicantRepository(fixture())
	if table := repo.ContingencyTable(); !table.Empty() {
		t.Errorf("expected empty table, got %+v", table)
	}
}

func TestUpdateGroups(t *testing.T) {
	repo := NewApplicantRepository(fixture())
	repo.UpdateGroups(func(applicants []domain.Applicant) {
		for i := range applicants {
			if i%2 == 0 {
				applicants[i].Group = domain.GroupControl
			} else {
				applicants[i].Group = domain.GroupTreatment
			}
		}
	})

	table := repo.ContingencyTable()
	if !table.Is2x2() {
		t.Fatalf("expected 2x2 table, got %+v", table)
	}
	if table.Total() != 5 {
		t.Errorf("expected total 5, got %d", table.Total())
	}

	snapshot := repo.Applicants()
	snapshot[0].Group = ""
	if repo.Applicants()[0].Group != domain.GroupControl {
		t.Error("snapshot must not alias repository storage")
	}
}
