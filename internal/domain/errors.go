package domain

import "errors"

var (
	// ErrRetrievalUnavailable signals that the vector store is unreachable or rejected the query.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrProfileUnavailable signals a profile store failure.
	ErrProfileUnavailable = errors.New("profile store unavailable")
	// ErrSessionNotFound signals an unknown or discarded session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidIntent signals a malformed intent record.
	ErrInvalidIntent = errors.New("invalid intent")
	// ErrCustomerNotFound signals a missing customer profile.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound signals a product id with no catalog entry.
	ErrProductNotFound = errors.New("product not found")
)
