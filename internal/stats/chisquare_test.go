package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apodwikat/abtest/internal/domain"
)

func table(counts [][]int64) domain.ContingencyTable {
	return domain.ContingencyTable{
		Rows:    []domain.Group{domain.GroupTreatment, domain.GroupControl},
		Columns: []domain.QuizStatus{domain.QuizComplete, domain.QuizIncomplete},
		Counts:  counts,
	}
}

func TestChiSquareTest(t *testing.T) {
	res := ChiSquareTest(table([][]int64{{10, 20}, {30, 40}}))
	require.NotNil(t, res)

	assert.Equal(t, 1, res.DF)
	assert.InDelta(t, 0.7936507936507936, res.Statistic, 1e-12)
	assert.InDelta(t, 0.37299848361348714, res.PValue, 1e-9)
}

func TestChiSquareTest_Independent(t *testing.T) {
	res := ChiSquareTest(table([][]int64{{25, 25}, {25, 25}}))
	require.NotNil(t, res)
	assert.Zero(t, res.Statistic)
	assert.InDelta(t, 1, res.PValue, 1e-12)
}

func TestChiSquareTest_NoResult(t *testing.T) {
	tests := []struct {
		name  string
		table domain.ContingencyTable
	}{
		{"empty", domain.ContingencyTable{}},
		{"one column", domain.ContingencyTable{
			Rows:    []domain.Group{domain.GroupTreatment, domain.GroupControl},
			Columns: []domain.QuizStatus{domain.QuizIncomplete},
			Counts:  [][]int64{{3}, {4}},
		}},
		{"all zero", table([][]int64{{0, 0}, {0, 0}})},
		{"empty row", table([][]int64{{0, 0}, {3, 4}})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ChiSquareTest(tt.table))
		})
	}
}
