package core

import "errors"

var (
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrStorage           = errors.New("storage failure")
	ErrGeneration        = errors.New("generation failure")
	ErrEmptyOwner        = errors.New("owner id is empty")
)
