package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ProbabilityOfReaching returns the chance, in percent, of observing more
// than nObs events in the given number of days. Daily counts are modeled as
// independent normal draws with the mean and sample standard deviation of
// daily; mean scales with days and standard deviation with sqrt(days).
// ok is false when the history cannot support the model.
func ProbabilityOfReaching(daily []float64, nObs, days int) (pct float64, ok bool) {
	if days <= 0 || len(daily) < 2 {
		return 0, false
	}

	mean, std := stat.MeanStdDev(daily, nil)
	if std == 0 || math.IsNaN(std) {
		return 0, false
	}

	dist := distuv.Normal{
		Mu:    mean * float64(days),
		Sigma: std * math.Sqrt(float64(days)),
	}
	return (1 - dist.CDF(float64(nObs))) * 100, true
}
