// Package file keeps normativa's user-editable state on disk.
//
// ConfigStore reads and writes normativa.toml as flattened dot keys.
// PromptStore serves the RAG and direct prompts from the prompts directory,
// seeding it with the built-in Spanish templates on first use.
package file
