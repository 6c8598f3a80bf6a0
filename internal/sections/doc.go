// Package sections reads and rewrites named sections of markdown documents
// that are shared between automated writers and a human editor.
//
// A section is a heading line plus everything up to the next heading of
// equal or shallower level. Writers only ever replace the body of their
// own sections (or append new ones at the end), so text outside those
// sections is preserved byte for byte. All functions are pure.
package sections
