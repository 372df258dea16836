package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const htmxScript = "https://unpkg.com/htmx.org@1.9.12"

const style = `body{font-family:system-ui,sans-serif;margin:0 auto;max-width:1100px;padding:1rem 2rem;color:#222}
nav a{margin-right:1rem}
iframe{border:0;width:100%;height:520px}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #ddd;padding:.4rem;text-align:left}
.muted{color:#777}`

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &writer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(`</title><script src="` + htmxScript + `"></script><style>` + style + `</style></head><body>`)
		p.raw(`<nav><a href="/">Dashboard</a><a href="/runs">Runs</a></nav>`)
		if p.err != nil {
			return p.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</body></html>`)
		return p.err
	})
}
