// Package shell generates the snippet that puts cyrene's exe dir on PATH
// and optionally wires it into the user's rc file.
//
// Users add one line to their shell config:
//
//	eval "$(cyrene env bash)"   # bash, zsh
//	cyrene env fish | source    # fish
//
// Changes to rc files are idempotent and written atomically.
package shell
