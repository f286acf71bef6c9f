// Package file provides file-backed configuration and prompt storage.
// Configuration lives in a TOML file under ~/.elfeed-ai/, prompts in
// user-editable text files alongside it.
package file
