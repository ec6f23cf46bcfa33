// Package vidmetrics periodically records engagement counters (views, likes,
// comments, shares) of social-media video pages into an append-only table.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, xlsx/, sqlite/).
package vidmetrics
