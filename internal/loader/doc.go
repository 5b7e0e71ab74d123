// Package loader reads analysis run records and reference pattern sets
// from disk and normalizes them into the model types used by the
// evaluators.
//
// Two record layouts exist in the wild. Learn records carry the detected
// technology and a flat list of pattern names under "analysis", while
// full analysis records carry structured pattern objects under
// "analysisResult". The loader detects the layout per file and converts
// both into model.AnalysisRun, so the rest of the program never sees the
// raw layouts.
//
// Directory loading is concurrent with a configurable worker limit.
// Malformed or unrecognized files are counted and skipped rather than
// failing the whole load.
package loader
