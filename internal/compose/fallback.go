// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package compose

import (
	"html/template"
	"strings"
)

var fallbackTemplate = template.Must(template.New("fallback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{if .Title}}{{.Title}}{{else}}{{.SiteTitle}}{{end}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:46rem;margin:2rem auto;padding:0 1rem;line-height:1.6;color:#222}
.notice{padding:.75rem 1rem;background:#fff4e5;border:1px solid #f0c36d;border-radius:4px}
.debug{margin-top:2rem;padding:1rem;background:#f4f4f4;border:1px solid #ccc;font-size:.85rem}
.debug pre{white-space:pre-wrap;overflow-x:auto}
</style>
</head>
<body>
{{if .Title}}<h1>{{.Title}}</h1>{{end}}
<p class="notice">Sorry, there was an error displaying this page.</p>
{{if .Content}}<main>{{.Content}}</main>{{end}}
{{with .Debug}}<section class="debug">
<h2>Render error</h2>
<pre>{{.Error}}</pre>
<dl>
<dt>Host</dt><dd>{{.Host}}</dd>
<dt>Username</dt><dd>{{.Username}}</dd>
<dt>Subdomain</dt><dd>{{.IsSubdomain}}</dd>
<dt>Backend available</dt><dd>{{.BackendAvailable}}</dd>
<dt>Demo content</dt><dd>{{.DemoContent}}</dd>
<dt>Theme</dt><dd>{{.ThemeID}}</dd>
<dt>Template</dt><dd>{{.Template}}</dd>
</dl>
{{if .Stack}}<pre>{{.Stack}}</pre>{{end}}
</section>
{{end}}
</body>
</html>
`))

// lastResort is served if the fallback template itself fails.
const lastResort = `<!DOCTYPE html><html><head><title>Error</title></head><body><p>Sorry, there was an error displaying this page.</p></body></html>`

type fallbackDebug struct {
	DebugInfo
	ThemeID string
	Error   string
	Stack   string
}

type fallbackData struct {
	Title     string
	SiteTitle string
	Content   template.HTML
	Debug     *fallbackDebug
}

// fallbackPage renders the minimal page served when a theme fails. Error
// details are only included when debug output is enabled.
func (c *Composer) fallbackPage(rc RenderContext, renderErr error, stack []byte) string {
	b := rc.base()
	title, body := rc.summary()

	data := fallbackData{
		Title:     title,
		SiteTitle: b.Site.Title,
		// Page and post content is sanitised when it is loaded.
		Content: template.HTML(body), //nolint:gosec
	}

	if c.opts.IsDev {
		d := &fallbackDebug{ThemeID: b.ThemeID, Error: renderErr.Error(), Stack: string(stack)}
		if b.Debug != nil {
			d.DebugInfo = *b.Debug
		}
		data.Debug = d
	}

	var sb strings.Builder
	if err := fallbackTemplate.Execute(&sb, data); err != nil {
		c.logger.Error("fallback page render failed", "error", err)
		return lastResort
	}
	return sb.String()
}
