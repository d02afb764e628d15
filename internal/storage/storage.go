// Package storage provides object storage access used to remove table and
// partition data when managed entities are dropped with deleteData.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Common errors for storage operations.
var (
	ErrDeleteFailed        = errors.New("delete failed")
	ErrListFailed          = errors.New("list failed")
	ErrUnsupportedLocation = errors.New("unsupported location")
)

// ObjectStorage abstracts the object store holding table data.
// Locations are full URIs as recorded in the catalog (s3://bucket/path,
// file:///path).
type ObjectStorage interface {
	// Supports reports whether this storage can handle the location.
	Supports(location string) bool

	// ListObjects returns every object location under the given location.
	// The location is treated as a directory: "s3://b/t" does not match "s3://b/t2/x".
	ListObjects(ctx context.Context, location string) ([]string, error)

	// Delete removes a single object. Deleting a missing object is not an error.
	Delete(ctx context.Context, location string) error
}

// BatchDeleter is implemented by stores that can remove many objects per
// request.
type BatchDeleter interface {
	DeleteBatch(ctx context.Context, locations []string) (int, error)
}

// DeleteLocation removes every object stored under location and returns the
// number of objects deleted. Deletion stops at the first failure.
func DeleteLocation(ctx context.Context, store ObjectStorage, location string) (int, error) {
	if location == "" {
		return 0, fmt.Errorf("%w: empty location", ErrUnsupportedLocation)
	}
	if !store.Supports(location) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedLocation, location)
	}

	objects, err := store.ListObjects(ctx, location)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}

	if batch, ok := store.(BatchDeleter); ok {
		return batch.DeleteBatch(ctx, objects)
	}

	deleted := 0
	for _, obj := range objects {
		if err := store.Delete(ctx, obj); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
