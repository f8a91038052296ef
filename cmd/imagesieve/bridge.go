package main

import (
	"fmt"
	"io"

	"imagesieve/internal/collection"
	"imagesieve/internal/sieve"
)

// cliBridge is the reference Bridge: it forwards publications and commit
// reports onto channels the command loop consumes, and mirrors status text
// to the writer.
type cliBridge struct {
	sieve.NopBridge
	out       io.Writer
	verbose   bool
	published chan collection.Collection
	reports   chan collection.Report
}

func newCLIBridge(out io.Writer, verbose bool) *cliBridge {
	return &cliBridge{
		out:       out,
		verbose:   verbose,
		published: make(chan collection.Collection, 16),
		reports:   make(chan collection.Report, 64),
	}
}

func (b *cliBridge) CollectionChanged(snapshot collection.Collection) {
	b.published <- snapshot
}

func (b *cliBridge) StatusChanged(text string) {
	if b.verbose {
		fmt.Fprintln(b.out, text)
	}
}

func (b *cliBridge) CommitReport(report collection.Report) {
	b.reports <- report
}
