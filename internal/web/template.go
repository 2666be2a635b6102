package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/tomikoski/Alpakkabadge2024/internal/status"
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
	"impressionOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"celsius": func(temp float64) string {
		return fmt.Sprintf("%.1f °C", temp)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Alpakka Badge</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.warm { color: #d08000; font-weight: bold; }
.cold { color: #2020ff; font-weight: bold; }
.unknown { color: orange; }
.fault { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Alpakka Badge</h1>

<h2>Impression</h2>
<table>
<tr><th>Impression</th><td class="{{if eq (impressionOrUnknown (printf "%s" .Impression)) "WARM"}}warm{{else if eq (impressionOrUnknown (printf "%s" .Impression)) "COLD"}}cold{{else}}unknown{{end}}">{{impressionOrUnknown (printf "%s" .Impression)}}</td></tr>
<tr><th>Temperature</th><td>{{if .HaveTemp}}{{celsius .Temp.Celsius}}{{else}}no reading yet{{end}}</td></tr>
<tr><th>Sensor</th><td{{if .InFallback}} class="fault"{{end}}>{{if .InFallback}}FAULT FALLBACK{{else if gt .Faults 0}}{{.Faults}} consecutive fault(s){{else}}ok{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>OPC server</th><td>{{.Config.OPCServer}}</td></tr>
</table>

<h2>Counters</h2>
<table>
<tr><th>COLD transitions</th><td>{{.Counts.Cold}}</td></tr>
<tr><th>WARM transitions</th><td>{{.Counts.Warm}}</td></tr>
<tr><th>Sensor faults</th><td>{{.Counts.Faults}}</td></tr>
<tr><th>Fault fallbacks</th><td>{{.Counts.Fallbacks}}</td></tr>
<tr><th>Frames written</th><td>{{.FramesWritten}}</td></tr>
<tr><th>Driver errors</th><td>{{.DriverErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Sample</th><td>{{.Config.SampleMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>Sensor</th><td>{{.Config.SensorPath}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
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
