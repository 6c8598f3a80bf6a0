// Package analysis holds the Analyzer implementations used by the flows.
//
// The rules subpackage is deterministic and needs no network; the llm
// subpackage renders a prompt, calls a language model and parses its
// JSON answer.
package analysis
