//go:build tools
// +build tools

// Pins mockgen, used by the go:generate directives.
package main

import (
	_ "go.uber.org/mock/mockgen"
)
