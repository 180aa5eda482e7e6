// Package web holds the embedded dashboard page served at /.
package web

import _ "embed"

// Dashboard is the single-page event monitor. It polls /api/events with a
// since watermark (the newest timestamp it has seen) so each poll only
// transfers new events.
//
//go:embed dashboard.html
var Dashboard []byte
