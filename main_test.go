package main

import (
	"os"
	"testing"

	"github.com/urbanarchive/submiteval/cmd"
)

// TestExecuteHelp exercises the real rootCmd wiring through cmd.Execute:
// it runs the root command with --help and checks that Execute returns no
// error.
func TestExecuteHelp(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"submiteval", "--help"}
	defer func() { os.Args = oldArgs }()

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}
