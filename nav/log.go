// nav/log.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

// Available logging categories
const (
	NavLogState    = "state"
	NavLogAltitude = "altitude"
	NavLogSpeed    = "speed"
	NavLogHeading  = "heading"
	NavLogDirect   = "direct"
	NavLogCommand  = "command"
)

var allNavLogCategories = []string{NavLogState, NavLogAltitude, NavLogSpeed, NavLogHeading,
	NavLogDirect, NavLogCommand}
