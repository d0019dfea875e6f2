package domain

import "fmt"

// ValidationError reports caller supplied data that fails the required field checks
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError reports a persistence backend that could not be opened, written or read
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: while %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a lookup of a point that does not exist
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no point found with ID %d", e.ID)
}

// AssetError reports a problem with an image file referenced by a point.
// A missing image at delete time is carried as a warning, not returned.
type AssetError struct {
	Path string
	Op   string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("image '%s': while %s: %v", e.Path, e.Op, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
