package charts

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apodwikat/abtest/internal/adapters/memory"
	"github.com/apodwikat/abtest/internal/domain"
)

func testBuilder(t *testing.T, applicants []domain.Applicant) *Builder {
	t.Helper()
	b := NewBuilder(memory.NewApplicantRepository(applicants))
	b.now = func() time.Time { return time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC) }
	return b
}

func sampleApplicants() []domain.Applicant {
	created := time.Date(2022, 5, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Applicant{
		{CountryISO2: "NG", Birthday: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), HighestDegree: "Bachelor's degree", Quiz: domain.QuizComplete, CreatedAt: created, Group: domain.GroupControl},
		{CountryISO2: "NG", Birthday: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC), HighestDegree: "Master's degree", Quiz: domain.QuizIncomplete, CreatedAt: created, Group: domain.GroupTreatment},
		{CountryISO2: "US", Birthday: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), HighestDegree: "Bachelor's degree", Quiz: domain.QuizIncomplete, CreatedAt: created, Group: domain.GroupControl},
		{CountryISO2: "IN", Birthday: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), HighestDegree: "Doctorate (e.g. PhD)", Quiz: domain.QuizComplete, CreatedAt: created, Group: domain.GroupTreatment},
	}
}

func TestHistogram(t *testing.T) {
	labels, counts := histogram([]int{20, 25, 30, 40, 40}, 4)

	require.Len(t, labels, 4)
	require.Len(t, counts, 4)
	assert.Equal(t, []float64{1, 1, 1, 2}, counts)
	assert.Equal(t, "20.0", labels[0])

	var total float64
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 5.0, total, "the maximum must land in the last bin")
}

func TestHistogram_SingleValue(t *testing.T) {
	_, counts := histogram([]int{30, 30, 30}, ageBins)
	require.Len(t, counts, ageBins)
	assert.Equal(t, 3.0, counts[0])
}

func TestHistogram_Empty(t *testing.T) {
	labels, counts := histogram(nil, ageBins)
	assert.Nil(t, labels)
	assert.Nil(t, counts)
}

func TestRender_AllCharts(t *testing.T) {
	b := testBuilder(t, sampleApplicants())

	tests := []struct {
		name string
		want string
	}{
		{"nationality", TitleNationality},
		{"age", TitleAge},
		{"education", TitleEducation},
		{"contingency", TitleContingency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, b.Render(&buf, tt.name))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestRender_Unknown(t *testing.T) {
	b := testBuilder(t, sampleApplicants())
	var buf bytes.Buffer
	assert.Error(t, b.Render(&buf, "pie"))
}

func TestContingencyBar_NoGroups(t *testing.T) {
	applicants := sampleApplicants()
	for i := range applicants {
		applicants[i].Group = ""
	}
	b := testBuilder(t, applicants)

	var buf bytes.Buffer
	require.NoError(t, b.Render(&buf, "contingency"))
	assert.Contains(t, buf.String(), TitleNoData)
	assert.Contains(t, buf.String(), SubtitleNoData)
}

func TestContingencyBar_Series(t *testing.T) {
	table := domain.Crosstab(sampleApplicants())
	bar := ContingencyBar(table)

	var buf bytes.Buffer
	require.NoError(t, bar.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, string(domain.QuizComplete))
	assert.Contains(t, out, string(domain.QuizIncomplete))
	assert.Contains(t, out, "Number of Applicants")
}

func TestNationalityData_WorldRegionNames(t *testing.T) {
	created := time.Date(2022, 5, 1, 9, 0, 0, 0, time.UTC)
	var applicants []domain.Applicant
	for _, code := range []string{"NG", "NG", "CD", "CI", "US", "GB"} {
		applicants = append(applicants, domain.Applicant{CountryISO2: code, CreatedAt: created})
	}
	repo := memory.NewApplicantRepository(applicants)

	data, max := nationalityData(repo.NationalityCounts(true))

	names := make(map[string]float64, len(data))
	for _, d := range data {
		names[d.Name] = d.Value.(float64)
	}
	assert.Len(t, names, 5)
	for _, want := range []string{"Nigeria", "Dem. Rep. Congo", "Côte d'Ivoire", "United States", "United Kingdom"} {
		assert.Contains(t, names, want)
	}
	assert.InDelta(t, 100*2.0/6, names["Nigeria"], 1e-9)
	assert.InDelta(t, 100*2.0/6, max, 1e-9)
}

func TestRegionName(t *testing.T) {
	assert.Equal(t, "Dem. Rep. Congo", regionName(domain.CountryCount{ISO3: "COD", Name: "DR Congo"}))
	assert.Equal(t, "Nigeria", regionName(domain.CountryCount{ISO3: "NGA", Name: "Nigeria"}))
	assert.Equal(t, "", regionName(domain.CountryCount{ISO2: "XX"}))
}
