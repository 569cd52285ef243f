package store

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrBracketExists   = errors.New("bracket already exists")
	ErrVersionConflict = errors.New("record was modified concurrently")
)
