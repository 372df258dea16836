package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/apodwikat/abtest/internal/util"
)

// Runs lists previous experiment runs.
func Runs(data RunsData) templ.Component {
	return Layout("Experiment Runs", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}
		p.raw(`<h1>Experiment Runs</h1>`)

		switch {
		case data.Unavailable:
			p.raw(`<p class="muted">Run history is unavailable.</p>`)
			return p.err
		case len(data.Runs) == 0:
			p.raw(`<p class="muted">No experiments have been run yet.</p>`)
			return p.err
		}

		p.raw(`<table><thead><tr><th>Run</th><th>Created</th><th>Dataset</th><th>Days</th><th>Window start</th><th>Assigned</th><th>p-value</th><th>Statistic</th></tr></thead><tbody>`)
		for _, r := range data.Runs {
			p.raw(`<tr><td>`)
			p.text(shortID(r.ID))
			p.raw(`</td><td>`)
			p.text(util.FormatDateTime(r.CreatedAt))
			p.raw(`</td><td>`)
			p.text(r.Dataset)
			p.rawf(`</td><td>%d</td><td>`, r.Days)
			p.text(util.FormatDate(r.Window.Start))
			p.raw(`</td><td>`)
			p.text(util.FormatNumber(r.AssignedCount))
			p.raw(`</td><td>`)
			p.text(formatPValue(r.ChiSquare))
			p.raw(`</td><td>`)
			if r.ChiSquare != nil {
				p.rawf(`%.2f`, r.ChiSquare.Statistic)
			} else {
				p.raw(`-`)
			}
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	}))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
