// Package stats implements the power analysis and hypothesis tests behind
// the experiment dashboard.
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/apodwikat/abtest/internal/domain"
)

const (
	// DefaultAlpha is the significance level used for sample-size planning.
	DefaultAlpha = 0.05
	// DefaultPower is the target probability of detecting the effect.
	DefaultPower = 0.80
	// Bins is the number of outcome categories in the goodness-of-fit test.
	Bins = 2

	maxSampleSize = 1e12
)

// Power returns the power of a chi-square goodness-of-fit test with df
// degrees of freedom to detect effectSize (Cohen's w) with nobs observations.
func Power(effectSize, nobs, alpha float64, df int) float64 {
	k := float64(df)
	crit := distuv.ChiSquared{K: k}.Quantile(1 - alpha)
	return noncentralChiSquaredSurvival(crit, k, effectSize*effectSize*nobs)
}

// GroupSize solves Power(effectSize, n, alpha, Bins-1) = power for n.
// The result is not rounded.
func GroupSize(effectSize, alpha, power float64) (float64, error) {
	if effectSize <= 0 || math.IsNaN(effectSize) || math.IsInf(effectSize, 0) {
		return 0, domain.ErrInvalidEffectSize
	}
	df := Bins - 1
	f := func(n float64) float64 { return Power(effectSize, n, alpha, df) - power }

	lo, hi := 0.0, 1.0
	for f(hi) < 0 {
		lo = hi
		hi *= 2
		if hi > maxSampleSize {
			return 0, fmt.Errorf("no sample size below %.0g reaches power %.2f for effect size %g", maxSampleSize, power, effectSize)
		}
	}

	for i := 0; i < 200 && hi-lo > 1e-10*hi; i++ {
		mid := lo + (hi-lo)/2
		if f(mid) < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, nil
}

// RequiredSampleSize returns the total number of observations, across both
// experiment groups, needed to detect effectSize at DefaultAlpha with
// DefaultPower.
func RequiredSampleSize(effectSize float64) (int, error) {
	n, err := GroupSize(effectSize, DefaultAlpha, DefaultPower)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(n)) * 2, nil
}

// noncentralChiSquaredSurvival evaluates P(X > x) for a noncentral chi-square
// variable with k degrees of freedom and noncentrality lambda, as a Poisson
// mixture of central chi-square survival functions.
func noncentralChiSquaredSurvival(x, k, lambda float64) float64 {
	if lambda == 0 {
		return distuv.ChiSquared{K: k}.Survival(x)
	}

	mu := lambda / 2
	spread := 10*math.Sqrt(mu) + 10
	lo := math.Max(0, math.Floor(mu-spread))
	hi := math.Ceil(mu + spread)

	weights := distuv.Poisson{Lambda: mu}
	var sum float64
	for j := lo; j <= hi; j++ {
		w := weights.Prob(j)
		if w == 0 {
			continue
		}
		sum += w * distuv.ChiSquared{K: k + 2*j}.Survival(x)
	}
	return math.Min(sum, 1)
}
