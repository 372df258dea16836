package templates

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/a-h/templ"

	"github.com/apodwikat/abtest/internal/domain"
)

// writer accumulates the first write error so components read as markup.
type writer struct {
	w   io.Writer
	err error
}

func (p *writer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *writer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *writer) rawf(format string, args ...any) {
	p.raw(fmt.Sprintf(format, args...))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// SampleSizeText describes the observations needed for an effect size.
func SampleSizeText(p Planning) string {
	if !p.SampleSizeOK {
		return fmt.Sprintf("An effect size of %s is outside the supported range.", formatFloat(p.EffectSize))
	}
	return fmt.Sprintf("To detect an effect size of %s, you would need %d observations.",
		formatFloat(p.EffectSize), p.SampleSize)
}

// ProbabilityText describes the chance of collecting enough observations.
func ProbabilityText(p Planning) string {
	if !p.SampleSizeOK || !p.ProbabilityOK {
		return fmt.Sprintf("The probability of getting this number of observations in %d days cannot be estimated from the available data.", p.Days)
	}
	pct := math.Round(p.Probability*100) / 100
	return fmt.Sprintf("The probability of getting this number of observations in %d days is %s%%", p.Days, formatFloat(pct))
}

// ChiSquareLines formats a test result for display.
func ChiSquareLines(res *domain.ChiSquareResult) []string {
	if res == nil {
		return []string{"Insufficient data for statistical testing"}
	}
	return []string{
		fmt.Sprintf("Degrees of Freedom: %d", res.DF),
		fmt.Sprintf("p-value: %.4f", res.PValue),
		fmt.Sprintf("Statistic: %.2f", res.Statistic),
	}
}

func formatPValue(res *domain.ChiSquareResult) string {
	if res == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", res.PValue)
}
