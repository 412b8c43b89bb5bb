package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/rc-lights/internal/logic"
	"github.com/sweeney/rc-lights/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		return d.Truncate(time.Second).String()
	},
	"orUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"command": describeCommand,
	"swatch": func(c logic.Command) template.CSS {
		return template.CSS(fmt.Sprintf("#%02x%02x%02x", c.RGB.R, c.RGB.G, c.RGB.B))
	},
	"isRGB": func(c logic.Command) bool { return c.Kind == logic.KindRGB },
}).Parse(indexHTML))

// describeCommand renders a command's value for the status page.
func describeCommand(c logic.Command) string {
	switch c.Kind {
	case logic.KindBinary:
		if c.On {
			return "ON"
		}
		return "OFF"
	case logic.KindLevel:
		return fmt.Sprintf("%d / 255", c.Level)
	case logic.KindRGB:
		return fmt.Sprintf("(%d, %d, %d)", c.RGB.R, c.RGB.G, c.RGB.B)
	}
	return "?"
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width">
<meta http-equiv="refresh" content="2">
<title>RC Lights</title>
<style>
body { font: 14px/1.4 monospace; max-width: 640px; margin: 1.5em auto; padding: 0 1em; }
h1 { font-size: 1.3em; margin-bottom: 0; }
h2 { font-size: 1.1em; margin-top: 1.5em; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 3px 6px; border-bottom: 1px solid #e4e4e4; }
th { width: 35%; font-weight: normal; color: #555; }
.live { color: #080; font-weight: bold; }
.failsafe { color: #c00; font-weight: bold; }
.unknown { color: #c80; }
.stale { color: #999; }
.up { color: #080; }
.down { color: #c00; }
.swatch { display: inline-block; width: 12px; height: 12px; margin-left: 6px; vertical-align: middle; border: 1px solid #444; }
</style>
</head>
<body>
<h1>RC Lights</h1>

<h2>Signal</h2>
<table>
<tr><th>Mode</th><td id="mode" class="{{if eq (printf "%s" .Mode) "LIVE"}}live{{else if eq (printf "%s" .Mode) "FAILSAFE"}}failsafe{{else}}unknown{{end}}">{{orUnknown (printf "%s" .Mode)}}</td></tr>
<tr><th>Health</th><td>{{orUnknown (printf "%s" .Health)}}</td></tr>
<tr><th>Failsafe entries</th><td>{{.Counts.FailsafeEntries}}</td></tr>
</table>

<h2>Channels</h2>
<table>
<tr><th>Channel</th><td>Width / accepted / rejected</td></tr>
{{range $i, $c := .Channels}}<tr class="{{if not $c.Fresh}}stale{{end}}"><th>CH{{$i}}</th><td>{{$c.Width}}µs{{if not $c.Captured}} (idle){{end}} / {{$c.Accepted}} / {{$c.Rejected}}</td></tr>
{{end}}</table>

<h2>Actuators</h2>
<table>
{{range .Commands}}<tr><th>{{.Actuator}}</th><td>{{command .}}{{if isRGB .}}<span class="swatch" style="background: {{swatch .}}"></span>{{end}}</td></tr>
{{end}}{{if .Failing}}<tr><th>Failing</th><td class="failsafe">{{range $i, $n := .Failing}}{{if $i}}, {{end}}{{$n}}{{end}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th>{{if .MQTTConnected}}<td class="up">connected</td>{{else}}<td class="down">not connected</td>{{end}}</tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02 15:04:05 MST"}}</td></tr>
<tr><th>Ticks</th><td>{{.Counts.Ticks}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Failsafe timeout</th><td>{{.Config.TimeoutMs}}ms</td></tr>
<tr><th>Glitch filter</th><td>{{if .Config.GlitchFilter}}{{.Config.ValidLow}}-{{.Config.ValidHigh}}µs{{else}}off{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{with .Config.HeartbeatMs}}{{.}}ms{{else}}off{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/roles.json">Roles</a></p>
</body>
</html>
`

// renderHTML writes the status page. Snapshot methods such as Uptime are
// called from the template.
func renderHTML(w io.Writer, snap status.Snapshot) error {
	return indexTmpl.Execute(w, snap)
}
