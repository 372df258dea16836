package stats

import (
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/apodwikat/abtest/internal/domain"
)

// ChiSquareTest runs Pearson's chi-square test of independence (no
// continuity correction) on a 2x2 contingency table. It returns nil when the
// table is not 2x2 or has an empty row or column.
func ChiSquareTest(t domain.ContingencyTable) *domain.ChiSquareResult {
	if !t.Is2x2() {
		return nil
	}
	total := float64(t.Total())
	if total == 0 {
		return nil
	}

	rowSums := make([]float64, len(t.Rows))
	colSums := make([]float64, len(t.Columns))
	for i, row := range t.Counts {
		for j, c := range row {
			rowSums[i] += float64(c)
			colSums[j] += float64(c)
		}
	}

	expected := make([]float64, 0, len(rowSums)*len(colSums))
	for _, r := range rowSums {
		for _, c := range colSums {
			e := r * c / total
			if e == 0 {
				return nil
			}
			expected = append(expected, e)
		}
	}

	df := (len(t.Rows) - 1) * (len(t.Columns) - 1)
	statistic := stat.ChiSquare(t.Float(), expected)
	return &domain.ChiSquareResult{
		DF:        df,
		Statistic: statistic,
		PValue:    distuv.ChiSquared{K: float64(df)}.Survival(statistic),
	}
}
