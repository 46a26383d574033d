package main

import (
	"fmt"
	"os"

	"ordindex.dev/core/index"
)

// textProgress prints a single updating line to stderr, the CLI analogue
// of the Rust updater's indicatif progress bar (spec §9 SUPPLEMENT).
type textProgress struct{}

var _ index.ProgressReporter = textProgress{}

func (textProgress) Advance(height, tip uint64) {
	if tip > 0 {
		fmt.Fprintf(os.Stderr, "\rindexing height %d/%d", height, tip)
		return
	}
	fmt.Fprintf(os.Stderr, "\rindexing height %d", height)
}

func (textProgress) Finish() {
	fmt.Fprintln(os.Stderr)
}
