package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/river-swww/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"rfc3339": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>river-swww</title>
<style>
body { font-family: monospace; max-width: 720px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 30%; }
.failed { color: red; }
.connected { color: green; }
.disconnected { color: #888; }
</style>
</head>
<body>
<h1>river-swww</h1>

<h2>Outputs</h2>
<table>
{{range .Outputs}}<tr><th>{{.Name}}</th><td class="{{if .Error}}failed{{end}}">{{.Path}}{{if .Error}} ({{.Error}}){{end}}<br><small>{{rfc3339 .AppliedAt}}</small></td></tr>
{{else}}<tr><td colspan="2">no wallpaper applied yet</td></tr>
{{end}}</table>

<h2>Coalescing</h2>
<table>
<tr><th>Pending</th><td>{{.Pending}}</td></tr>
<tr><th>Observations</th><td>{{.Counts.Observations}}</td></tr>
<tr><th>Coalesced</th><td>{{.Counts.Coalesced}}</td></tr>
<tr><th>Restarted</th><td>{{.Counts.Restarted}}</td></tr>
<tr><th>Applied</th><td>{{.Counts.Applied}}</td></tr>
<tr><th>Failed</th><td>{{.Counts.ApplyFailed}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{rfc3339 .StartTime}}</td></tr>
<tr><th>Config</th><td>{{.Config.ConfigPath}}</td></tr>
<tr><th>Default</th><td>{{.Config.Default}}</td></tr>
<tr><th>Mapped tags</th><td>{{.Config.Tags}}</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .Config.Broker}}{{.Config.Broker}} ({{if .MQTTConnected}}connected{{else}}disconnected{{end}}){{else}}disabled{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
