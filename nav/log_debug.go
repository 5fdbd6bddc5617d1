//go:build navlog

// nav/log_debug.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"strings"
	"sync"
)

// Navigation logging configuration
var (
	navlogMu         sync.Mutex
	navlogEnabled    bool
	navlogCategories map[string]bool
	navlogCallsign   string // filter to only log this callsign (empty = log all)
)

// InitNavLog initializes the navigation logging system
func InitNavLog(enabled bool, categories string, callsign string) {
	navlogMu.Lock()
	defer navlogMu.Unlock()

	navlogEnabled = enabled
	navlogCategories = make(map[string]bool)
	navlogCallsign = strings.TrimSpace(callsign)

	if !enabled {
		return
	}

	if categories == "" || categories == "all" {
		for _, cat := range allNavLogCategories {
			navlogCategories[cat] = true
		}
	} else {
		for _, cat := range strings.Split(categories, ",") {
			navlogCategories[strings.TrimSpace(cat)] = true
		}
	}
}

// NavLog logs a message with the simulation tick, callsign, and category
func NavLog(callsign string, tick int64, category string, format string, args ...any) {
	navlogMu.Lock()
	defer navlogMu.Unlock()

	if !navlogEnabled || !navlogCategories[category] {
		return
	}
	if navlogCallsign != "" && navlogCallsign != callsign {
		return
	}

	// Format: [tick] [callsign] [category] message
	fmt.Printf("[%6d] [%s] [%s] %s\n", tick, callsign, category, fmt.Sprintf(format, args...))
}

// NavLogEnabled returns whether navigation logging is enabled for a given category
func NavLogEnabled(category string) bool {
	navlogMu.Lock()
	defer navlogMu.Unlock()
	return navlogEnabled && navlogCategories[category]
}
