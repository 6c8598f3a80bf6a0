// Package file keeps daylog's settings and prompt templates as plain
// files under ~/.daylog: config.toml for the ConfigStore and prompts/*.txt
// for the PromptStore, which falls back to built-in templates.
package file
