//go:build tools
// +build tools

// Package tools declares Go tool dependencies, kept out of the regular
// build so they don't pollute the binary's dependency graph.
package tools

import (
	_ "golang.org/x/tools/cmd/stringer"
)
