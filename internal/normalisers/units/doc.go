// Package units holds the unit conversions and tolerant field decoding
// shared by the per-source normalisers.
package units
