package loader

import "errors"

var (
	// ErrUnrecognizedRecord is returned when a JSON document matches
	// neither the learn layout nor the analysis result layout.
	ErrUnrecognizedRecord = errors.New("loader: unrecognized record layout")

	// ErrEmptyReference is returned when a reference file parses but
	// contains no required patterns.
	ErrEmptyReference = errors.New("loader: reference file has no required patterns")

	// ErrNoRecords is returned when a results directory contains no
	// usable run records.
	ErrNoRecords = errors.New("loader: no usable records found")
)
