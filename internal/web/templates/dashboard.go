package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/apodwikat/abtest/internal/domain"
)

// Dashboard is the full demographics and experiment page.
func Dashboard(data DashboardData) templ.Component {
	return Layout("Applicant A/B Experiment", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}

		p.raw(`<h1>Application Demographics</h1>`)
		p.rawf(`<p class="muted">%d applicants loaded</p>`, data.Applicants)
		p.raw(`<select id="demo-plots-dropdown" name="demographic" onchange="document.getElementById('demo-plots-display').src='/charts/'+this.value">`)
		for _, d := range Demographics {
			selected := ""
			if d.Chart == data.Demographic {
				selected = " selected"
			}
			p.raw(`<option value="` + templ.EscapeString(d.Chart) + `"` + selected + `>`)
			p.text(d.Label)
			p.raw(`</option>`)
		}
		p.raw(`</select>`)
		p.raw(`<iframe id="demo-plots-display" src="/charts/` + templ.EscapeString(data.Demographic) + `"></iframe>`)

		p.raw(`<form id="controls" method="post" action="/experiment" hx-post="/experiment" hx-target="#results-display" hx-swap="innerHTML">`)
		p.raw(`<h1>Experiment</h1><h2>Choose your effect size</h2>`)
		p.rawf(`<input type="range" id="effect-size-slider" name="effect" min="%s" max="%s" step="0.1" value="%s" hx-get="/planning" hx-include="#controls" hx-target="#planning" hx-trigger="change">`,
			formatFloat(EffectMin), formatFloat(EffectMax), formatFloat(data.Planning.EffectSize))
		p.raw(`<h2>Choose experiment duration</h2>`)
		p.rawf(`<input type="range" id="experiment-days-slider" name="days" min="%d" max="%d" step="1" value="%d" hx-get="/planning" hx-include="#controls" hx-target="#planning" hx-trigger="change">`,
			DaysMin, DaysMax, data.Planning.Days)
		p.raw(`<div id="planning">`)
		if p.err != nil {
			return p.err
		}
		if err := PlanningBlock(data.Planning).Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</div>`)

		p.raw(`<h1>Results</h1><button type="submit" id="start-experiment-button">Begin Experiment</button></form>`)
		p.raw(`<div id="results-display">`)
		if p.err != nil {
			return p.err
		}
		if data.Run != nil {
			if err := Results(data.Run).Render(ctx, w); err != nil {
				return err
			}
		}
		p.raw(`</div>`)
		return p.err
	}))
}

// PlanningBlock shows the sample size and the probability of reaching it.
func PlanningBlock(pl Planning) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}
		p.raw(`<div id="effect-size-display">`)
		p.text(SampleSizeText(pl))
		p.raw(`</div><div id="experiment-days-display">`)
		p.text(ProbabilityText(pl))
		p.raw(`</div>`)
		return p.err
	})
}

// Results shows the observed contingency chart and the chi-square outcome.
func Results(run *domain.ExperimentRun) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}
		p.raw(`<h2>Observations</h2>`)
		p.raw(`<iframe id="contingency-chart" src="/charts/contingency?run=` + templ.EscapeString(run.ID) + `"></iframe>`)
		p.rawf(`<p class="muted">%d applicants assigned between %s and %s</p>`,
			run.AssignedCount,
			templ.EscapeString(run.Window.Start.UTC().Format("2006-01-02 15:04")),
			templ.EscapeString(run.Window.End.UTC().Format("2006-01-02 15:04")))
		p.raw(`<h2>Chi-Square Test for Independence</h2>`)
		for _, line := range ChiSquareLines(run.ChiSquare) {
			p.raw(`<h3>`)
			p.text(line)
			p.raw(`</h3>`)
		}
		return p.err
	})
}

// ExperimentError replaces the results block when a run fails.
func ExperimentError(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}
		p.raw(`<h2>Error</h2><p>An error occurred while running the experiment: `)
		p.text(msg)
		p.raw(`</p>`)
		return p.err
	})
}
