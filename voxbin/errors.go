package voxbin

import "errors"

var (
	// ErrInvalidDimension is returned when a grid dimension is not in [1,255].
	ErrInvalidDimension = errors.New("voxbin: invalid dimension")
	// ErrEncoding is returned when a value destined for a single-byte field is outside [0,255].
	ErrEncoding = errors.New("voxbin: value does not fit in a byte")
	// ErrIO wraps directory creation, open and write failures. The underlying cause is wrapped too.
	ErrIO = errors.New("voxbin: i/o failure")
	// ErrOutOfBounds is returned when a voxel coordinate lies outside the grid.
	ErrOutOfBounds = errors.New("voxbin: coordinate outside grid")
	// ErrTruncated is returned when a save or pack ends before its declared length.
	ErrTruncated = errors.New("voxbin: truncated data")
	// ErrTrailingData is returned when bytes follow the voxel body.
	ErrTrailingData = errors.New("voxbin: trailing data after voxel body")
	// ErrNameCollision is returned when no free artifact name could be created.
	ErrNameCollision = errors.New("voxbin: artifact already exists")
	// ErrDuplicateEntry is returned when a pack already holds an entry with the same name.
	ErrDuplicateEntry = errors.New("voxbin: duplicate pack entry")
)
