// Package main provides the entry point for the patternqa CLI.
//
// patternqa evaluates the quality of CMS fingerprinting patterns produced
// by repeated analysis runs: naming consistency across runs, coverage
// against curated reference sets, verification of claimed patterns against
// raw collected evidence, and performance comparison between analysis phases.
//
// Usage:
//
//	patternqa evaluate <results-dir>
//	patternqa consistency <results-dir>
//	patternqa history wordpress
//
// See --help for all available options.
package main

// main is the entry point for patternqa.
func main() {
	Execute()
}
