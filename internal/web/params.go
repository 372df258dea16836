package web

import (
	"fmt"
	"math"
	"strconv"

	"github.com/apodwikat/abtest/internal/web/templates"
)

const epsilon = 1e-9

// effectFromForm parses an effect size for the dashboard, clamping it to the
// slider bounds and snapping it to the slider step.
func effectFromForm(v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return templates.EffectDefault
	}
	f = math.Max(templates.EffectMin, math.Min(templates.EffectMax, f))
	return math.Round(f*10) / 10
}

// daysFromForm parses a duration for the dashboard, clamped to the slider bounds.
func daysFromForm(v string) int {
	d, err := strconv.Atoi(v)
	if err != nil {
		return templates.DaysDefault
	}
	return max(templates.DaysMin, min(templates.DaysMax, d))
}

func parseEffect(v string) (float64, error) {
	if v == "" {
		return 0, fmt.Errorf("effect is required")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return 0, fmt.Errorf("effect must be a number")
	}
	if f < templates.EffectMin-epsilon || f > templates.EffectMax+epsilon {
		return 0, fmt.Errorf("effect must be between %g and %g", templates.EffectMin, templates.EffectMax)
	}
	return f, nil
}

func parseDays(v string) (int, error) {
	if v == "" {
		return 0, fmt.Errorf("days is required")
	}
	d, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("days must be an integer")
	}
	if d < templates.DaysMin || d > templates.DaysMax {
		return 0, fmt.Errorf("days must be between %d and %d", templates.DaysMin, templates.DaysMax)
	}
	return d, nil
}
