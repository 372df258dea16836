package domain

import "errors"

var (
	// ErrInvalidEffectSize is returned for effect sizes the power solver cannot handle.
	ErrInvalidEffectSize = errors.New("effect size must be a positive finite number")

	// ErrInvalidDays is returned when an experiment duration is not positive.
	ErrInvalidDays = errors.New("experiment duration must be at least one day")

	// ErrMissingColumn is returned when a dataset lacks a required column.
	ErrMissingColumn = errors.New("dataset is missing a required column")

	// ErrEmptyDataset is returned when a dataset has no usable rows.
	ErrEmptyDataset = errors.New("dataset has no usable rows")
)
