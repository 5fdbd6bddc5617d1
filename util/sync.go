// util/sync.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"encoding/json"
	"log/slog"
	gomath "math"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmp/airsep/log"

	"github.com/shirou/gopsutil/v3/cpu"
)

///////////////////////////////////////////////////////////////////////////
// AtomicBool

// AtomicBool is a simple wrapper around atomic.Bool that adds support for
// JSON marshaling/unmarshaling.
type AtomicBool struct {
	atomic.Bool
}

func (a *AtomicBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Load())
}

func (a *AtomicBool) UnmarshalJSON(data []byte) error {
	var b bool
	err := json.Unmarshal(data, &b)
	if err == nil {
		a.Store(b)
	}
	return err
}

///////////////////////////////////////////////////////////////////////////
// LoggingRWMutex

// MutexStallTimeout is how long LoggingRWMutex waits before it logs
// diagnostics about a lock that can't be acquired.
var MutexStallTimeout = 10 * time.Second

// LoggingRWMutex is a sync.RWMutex that logs when acquiring it stalls
// and when the write lock is held for too long. Readers don't record
// anything so that concurrent readers never contend on its bookkeeping.
type LoggingRWMutex struct {
	sync.RWMutex
	acq      time.Time
	acqStack []log.StackFrame
}

func (l *LoggingRWMutex) Lock(lg *log.Logger) {
	tryTime := time.Now()

	if !l.RWMutex.TryLock() {
		acquireSlowly(lg, "write", l.RWMutex.Lock)
	}

	l.acq = time.Now()
	l.acqStack = log.Callstack(l.acqStack)
	if w := l.acq.Sub(tryTime); w > time.Second {
		lg.Warn("long wait to acquire mutex", slog.Any("mutex", l), slog.Duration("wait", w))
	}
}

func (l *LoggingRWMutex) Unlock(lg *log.Logger) {
	if d := time.Since(l.acq); d > time.Second {
		lg.Warn("mutex held for over 1 second", slog.Any("mutex", l), slog.Duration("held", d))
	}

	l.acq = time.Time{}
	l.acqStack = nil
	l.RWMutex.Unlock()
}

func (l *LoggingRWMutex) RLock(lg *log.Logger) {
	if !l.RWMutex.TryRLock() {
		acquireSlowly(lg, "read", l.RWMutex.RLock)
	}
}

func (l *LoggingRWMutex) RUnlock(lg *log.Logger) {
	l.RWMutex.RUnlock()
}

// acquireSlowly calls lock and logs system state if it hasn't returned
// after MutexStallTimeout; it always waits for the lock to be acquired.
func acquireSlowly(lg *log.Logger, kind string, lock func()) {
	locked := make(chan struct{})
	go func() {
		lock()
		close(locked)
	}()

	if DebuggerIsRunning() {
		<-locked
		return
	}

	select {
	case <-locked:
	case <-time.After(MutexStallTimeout):
		lg.Error("unable to acquire mutex", slog.String("kind", kind),
			slog.Duration("timeout", MutexStallTimeout))
		LogSystemStats(lg)
		<-locked
	}
}

// LogSystemStats logs CPU and memory usage along with the goroutine count.
func LogSystemStats(lg *log.Logger) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	usage, _ := cpu.Percent(time.Second, false)
	if len(usage) == 0 {
		usage = []float64{0}
	}

	lg.Errorf("CPU: %d%% alloc: %dMB total alloc: %dMB sys mem: %dMB goroutines: %d",
		int(gomath.Round(usage[0])), m.Alloc/(1024*1024), m.TotalAlloc/(1024*1024), m.Sys/(1024*1024),
		runtime.NumGoroutine())
}

func (l *LoggingRWMutex) LogValue() slog.Value {
	if l.acq.IsZero() {
		return slog.GroupValue(slog.Bool("held", false))
	}
	return slog.GroupValue(
		slog.Time("acq", l.acq),
		slog.Duration("held", time.Since(l.acq)),
		slog.Any("acq_stack", l.acqStack))
}

// DebuggerIsRunning returns true if we are running under a debugger; this
// allows inhibiting various timeouts that may otherwise get in the way of
// debugging. Currently only detects dlv.
func DebuggerIsRunning() bool {
	dlv, ok := os.LookupEnv("_")
	return ok && strings.HasSuffix(dlv, "/dlv")
}
