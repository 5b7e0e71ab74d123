// Package config provides configuration structures and utilities for
// patternqa. It defines the evaluation options, the validation rules,
// and the optional .patternqa YAML file mapping technologies to their
// reference pattern sets and label aliases.
package config
