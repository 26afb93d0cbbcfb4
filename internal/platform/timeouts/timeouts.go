// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// ArchiveBusy caps how long an archive connection waits on a locked SQLite
// database before failing.
const ArchiveBusy = 5 * time.Second

// TelemetryShutdown limits how long a command waits for pending spans to
// flush on exit.
const TelemetryShutdown = 5 * time.Second
