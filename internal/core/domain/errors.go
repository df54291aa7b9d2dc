package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfiguration indicates settings that cannot work together,
	// such as a chunk overlap not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Index Errors.

	// ErrEmbeddingDimensionMismatch indicates the provider returned a vector
	// whose length differs from the discovered dimensionality.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCollectionNotFound indicates a named collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrEmptyCollectionRejected indicates promotion of a collection with
	// zero entries was refused.
	ErrEmptyCollectionRejected = errors.New("empty collection rejected")

	// ErrInvalidTransition indicates a version state change that the
	// lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid version transition")

	// ErrNoRollbackTarget indicates there is no retired version to restore.
	ErrNoRollbackTarget = errors.New("no retired version to roll back to")

	// ErrRetrievalUnavailable indicates the vector backend could not serve
	// a query.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
)
