// Package normalisers converts raw telemetry payloads into the canonical
// domain.Normalized fields. Each source kind has its own normaliser in a
// subpackage; the Registry dispatches by source kind.
//
// Normalisers are pure: they never touch the network, the disk or the clock.
// Built-in normalisers are registered with RegisterDefaults at startup.
package normalisers
