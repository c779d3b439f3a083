// Package ui renders cyrene's terminal output: tables, confirmation
// prompts, download progress and styled app and version names.
//
// Colour and interactive widgets are used only when stdout is a terminal
// and NO_COLOR is unset. Everything else falls back to plain text.
package ui
