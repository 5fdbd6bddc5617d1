// server/http.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package server

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"strconv"
	"time"

	"github.com/mmp/airsep/conflict"
	"github.com/mmp/airsep/math"
	"github.com/mmp/airsep/util"

	"github.com/shirou/gopsutil/v3/cpu"
)

type serverStats struct {
	AllocMemory      uint64
	TotalAllocMemory uint64
	SysMemory        uint64
	RX, TX           int64
	NumGC            uint32
	NumGoRoutines    int
	CPUUsage         int
	WebsocketClients int

	Airspace Status
	Alerts   []alertRow
}

type alertRow struct {
	Pair          conflict.PairID
	Level         conflict.AlertLevel
	Risk          string
	TimeToClosest string
	ClosestNM     string
	ClosestFt     string
}

func makeAlertRow(ra conflict.RiskAssessment) alertRow {
	r := alertRow{
		Pair:          ra.PairID,
		Level:         ra.AlertLevel,
		Risk:          fmt.Sprintf("%.1f", ra.RiskLevel),
		TimeToClosest: "-",
		ClosestNM:     fmt.Sprintf("%.2f", ra.ClosestHorizontalNM),
		ClosestFt:     fmt.Sprintf("%.0f", ra.ClosestVerticalFt),
	}
	if ra.HasFiniteCPA() {
		r.TimeToClosest = fmt.Sprintf("%.0fs", ra.TimeToClosest)
	}
	return r
}

// Handler returns the HTTP routes: the status page, the websocket alert
// stream (if hub is non-nil), and pprof.
func (a *Airspace) Handler(hub *AlertHub) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/sup", func(w http.ResponseWriter, r *http.Request) {
		a.statsHandler(w, r, hub)
		a.lg.Infof("%s: served stats request", r.URL.String())
	})
	if hub != nil {
		mux.Handle("/ws/alerts", hub)
	}

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}

// LaunchHTTPServer serves handler on the first available port starting
// at port and returns the port used. The server shuts down when ctx is
// canceled.
func LaunchHTTPServer(ctx context.Context, port int, handler http.Handler, a *Airspace) (int, error) {
	var listener net.Listener
	var err error
	for i := range 10 {
		if listener, err = net.Listen("tcp", ":"+strconv.Itoa(port+i)); err == nil {
			port += i
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("unable to start HTTP server: %w", err)
	}

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.lg.Errorf("HTTP server error: %v", err)
		}
	}()

	a.lg.Info("HTTP server", slog.Int("port", port))
	return port, nil
}

var templateFuncs = template.FuncMap{"bytes": func(v int64) string { return util.ByteCount(v).String() }}

var statsTemplate = template.Must(template.New("").Funcs(templateFuncs).Parse(`
<!DOCTYPE html>
<html>
<head>
<title>airsep</title>
</head>
<style>
table {
  border-collapse: collapse;
  width: 100%;
}

th, td {
  border: 1px solid #dddddd;
  padding: 8px;
  text-align: left;
}

tr:nth-child(even) {
  background-color: #f2f2f2;
}

.RED_CONFLICT {
  color: #c00000;
  font-weight: bold;
}
</style>
<body>
<h1>Server Status</h1>
<ul>
  <li>Uptime: {{.Airspace.Uptime}}</li>
  <li>CPU usage: {{.CPUUsage}}%</li>
  <li>Bandwidth: {{bytes .RX}} RX, {{bytes .TX}} TX</li>
  <li>Allocated memory: {{.AllocMemory}} MB</li>
  <li>Total allocated memory: {{.TotalAllocMemory}} MB</li>
  <li>System memory: {{.SysMemory}} MB</li>
  <li>Garbage collection passes: {{.NumGC}}</li>
  <li>Running goroutines: {{.NumGoRoutines}}</li>
  <li>Websocket clients: {{.WebsocketClients}}</li>
</ul>

<h1>Airspace</h1>
<ul>
  <li>Aircraft: {{.Airspace.Aircraft}}</li>
  <li>Running: {{.Airspace.Running}} ({{.Airspace.RefreshRateHz}} Hz)</li>
  <li>Tick: {{.Airspace.Tick}} ({{.Airspace.AdvancedTicks}} advanced, {{.Airspace.PausedTicks}} paused)</li>
  <li>Detection passes: {{.Airspace.Detector.Passes}}, last {{.Airspace.Detector.LastPass}} for {{.Airspace.Detector.LastPassPairs}} pairs</li>
  <li>Pair failures: {{.Airspace.Detector.Failures}}</li>
  <li>Alerts: {{.Airspace.RedAlerts}} red, {{.Airspace.WhiteAlerts}} white</li>
</ul>

<table>
  <tr>
  <th>Pair</th>
  <th>Level</th>
  <th>Risk</th>
  <th>Time to CPA</th>
  <th>CPA (nm)</th>
  <th>CPA (ft)</th>
  </tr>
{{range .Alerts}}
  <tr>
  <td><tt>{{.Pair}}</tt></td>
  <td class="{{.Level}}">{{.Level}}</td>
  <td>{{.Risk}}</td>
  <td>{{.TimeToClosest}}</td>
  <td>{{.ClosestNM}}</td>
  <td>{{.ClosestFt}}</td>
</tr>
{{end}}
</table>

</body>
</html>
`))

func (a *Airspace) statsHandler(w http.ResponseWriter, r *http.Request, hub *AlertHub) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	usage, _ := cpu.Percent(200*time.Millisecond, false)
	if len(usage) == 0 {
		usage = []float64{0}
	}

	stats := serverStats{
		AllocMemory:      m.Alloc / (1024 * 1024),
		TotalAllocMemory: m.TotalAlloc / (1024 * 1024),
		SysMemory:        m.Sys / (1024 * 1024),
		NumGC:            m.NumGC,
		NumGoRoutines:    runtime.NumGoroutine(),
		CPUUsage:         int(math.Round(usage[0])),
		Airspace:         a.status(),
	}
	if hub != nil {
		stats.WebsocketClients = hub.NumClients()
	}
	if a.monitor != nil {
		for _, ra := range a.monitor.Active() {
			stats.Alerts = append(stats.Alerts, makeAlertRow(ra))
		}
	}

	stats.RX, stats.TX = util.GetLoggedRPCBandwidth()

	if err := statsTemplate.Execute(w, stats); err != nil {
		a.lg.Warn("stats template", slog.Any("error", err))
	}
}
