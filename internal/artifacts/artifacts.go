// Package artifacts holds the error type and existence check shared by the
// loaders of the offline-produced files (feature tables, model bundle).
package artifacts

import (
	"errors"
	"fmt"
	"os"
)

// Kind classifies a DataFileError.
type Kind string

const (
	KindMissing Kind = "missing"
	KindCorrupt Kind = "corrupt"
	KindSchema  Kind = "schema"
)

// Sentinels for errors.Is checks against a *DataFileError.
var (
	ErrMissing = errors.New("data file missing")
	ErrCorrupt = errors.New("data file unreadable")
	ErrSchema  = errors.New("data file schema mismatch")
)

// DataFileError reports a missing or unusable artifact. It is always fatal.
type DataFileError struct {
	Kind Kind
	Path string
	Err  error
}

func (e *DataFileError) Error() string {
	switch e.Kind {
	case KindMissing:
		return fmt.Sprintf("%s missing; ensure the file exists", e.Path)
	default:
		return fmt.Sprintf("%s %s: %v", e.Path, e.Kind, e.Err)
	}
}

func (e *DataFileError) Unwrap() error { return e.Err }

func (e *DataFileError) Is(target error) bool {
	switch e.Kind {
	case KindMissing:
		return target == ErrMissing
	case KindCorrupt:
		return target == ErrCorrupt
	case KindSchema:
		return target == ErrSchema
	}
	return false
}

// Corrupt wraps err as a corrupt-file error for path.
func Corrupt(path string, err error) *DataFileError {
	return &DataFileError{Kind: KindCorrupt, Path: path, Err: err}
}

// Schema wraps err as a schema-mismatch error for path.
func Schema(path string, err error) *DataFileError {
	return &DataFileError{Kind: KindSchema, Path: path, Err: err}
}

// Require returns a missing-file error when path does not exist or is a
// directory.
func Require(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &DataFileError{Kind: KindMissing, Path: path, Err: err}
	}
	if err != nil {
		return Corrupt(path, err)
	}
	if info.IsDir() {
		return Corrupt(path, fmt.Errorf("is a directory"))
	}
	return nil
}
