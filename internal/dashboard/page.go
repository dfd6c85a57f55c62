package dashboard

import (
	"html/template"
	"strings"

	"github.com/florianilch/tavla/internal/departures"
)

// pageData feeds the board template.
type pageData struct {
	Title          string
	RefreshSeconds int
	Rows           []row
	Error          string
}

// row is a departure prepared for display. Missing colours stay empty and
// fall back to the stylesheet.
type row struct {
	Line       string
	Direction  string
	Platform   string
	Time       string
	Planned    string
	Delayed    bool
	Cancelled  bool
	Background string
	Foreground string
}

func rows(deps []departures.Departure) []row {
	out := make([]row, 0, len(deps))
	for _, d := range deps {
		r := row{
			Line:      d.Line,
			Direction: d.Direction,
			Platform:  d.Platform,
			Time:      d.Time,
			Planned:   d.Planned,
			Delayed:   d.Delayed(),
			Cancelled: d.IsCancelled,
		}
		if d.BackgroundColor != nil {
			r.Background = *d.BackgroundColor
		}
		if d.ForegroundColor != nil {
			r.Foreground = *d.ForegroundColor
		}
		out = append(out, r)
	}
	return out
}

func parsePage() (*template.Template, error) {
	return template.New("board").Parse(boardTemplate)
}

var boardTemplate = strings.TrimSpace(`
<!doctype html>
<html lang="sv">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="{{ .RefreshSeconds }}">
<title>Avgångar – {{ .Title }}</title>
<style>
:root{--bg:#000;--text:#fff;--muted:rgba(255,255,255,.65);--rowA:rgba(255,255,255,.03);--rowB:rgba(255,255,255,.06);--track:rgba(255,255,255,.12);--fill:rgba(255,255,255,.35)}
*{box-sizing:border-box}
body{margin:0;background:var(--bg);color:var(--text);font-family:system-ui,-apple-system,"Segoe UI",Roboto,Arial,sans-serif}
.wrap{padding:32px 40px 72px;max-width:1200px;margin:0 auto}
h1{margin:0 0 18px;font-size:56px;font-weight:800}
.sub{margin:-6px 0 18px;color:var(--muted);font-size:18px}
.error{padding:16px 20px;border-radius:14px;background:rgba(255,80,80,.15);color:#ffb3b3;font-size:24px;font-weight:650}
table{width:100%;border-collapse:collapse;font-size:28px}
thead th{text-align:left;color:var(--muted);font-weight:650;padding:14px;border-bottom:1px solid rgba(255,255,255,.08)}
tbody tr:nth-child(odd){background:var(--rowA)}
tbody tr:nth-child(even){background:var(--rowB)}
td{padding:16px 14px;vertical-align:middle}
.line{display:inline-flex;align-items:center;justify-content:center;min-width:74px;height:44px;padding:0 14px;border-radius:999px;font-weight:800;background:#fff;color:#000}
.dest{font-weight:650}
.platform{display:inline-flex;align-items:center;justify-content:center;min-width:44px;height:44px;border-radius:14px;background:rgba(255,255,255,.08);font-weight:750}
.time{text-align:right;white-space:nowrap}
.time-main{font-size:1.6rem;font-weight:600}
.time-planned{font-size:.9rem;color:#9aa0a6;margin-top:2px;text-decoration:line-through}
.cancel{color:#ffb3b3;font-weight:750;margin-left:10px;font-size:20px}
.progress{position:fixed;left:50%;transform:translateX(-50%);bottom:18px;width:320px;height:6px;background:var(--track);border-radius:999px;overflow:hidden}
.progress div{height:100%;width:0;background:var(--fill)}
</style>
</head>
<body>
<div class="wrap">
<h1>{{ .Title }}</h1>
<div class="sub">Uppdateras var {{ .RefreshSeconds }} s</div>
{{- if .Error }}
<div class="error" role="alert">{{ .Error }}</div>
{{- else }}
<table>
<thead>
<tr><th style="width:140px">Linje</th><th>Destination</th><th style="width:160px">Läge</th><th style="width:220px;text-align:right">Tid</th></tr>
</thead>
<tbody>
{{- range .Rows }}
<tr>
<td><span class="line" style="{{ with .Background }}background: {{ . }};{{ end }}{{ with .Foreground }}color: {{ . }};{{ end }}">{{ .Line }}</span></td>
<td class="dest">{{ .Direction }}{{ if .Cancelled }}<span class="cancel">INSTÄLLD</span>{{ end }}</td>
<td><span class="platform">{{ .Platform }}</span></td>
<td class="time"><div class="time-main">{{ .Time }}</div>{{ if .Delayed }}<div class="time-planned">{{ .Planned }}</div>{{ end }}</td>
</tr>
{{- else }}
<tr><td colspan="4" class="dest">Inga avgångar den närmaste timmen</td></tr>
{{- end }}
</tbody>
</table>
{{- end }}
</div>
<div class="progress" aria-hidden="true"><div id="bar"></div></div>
<script>
const refresh = {{ .RefreshSeconds }};
const bar = document.getElementById("bar");
const start = Date.now();
function tick(){
  const p = Math.max(0, Math.min(1, (Date.now() - start) / 1000 / refresh));
  bar.style.width = (p * 100).toFixed(1) + "%";
  requestAnimationFrame(tick);
}
requestAnimationFrame(tick);
</script>
</body>
</html>
`)
