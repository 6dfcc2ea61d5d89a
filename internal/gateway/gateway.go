// Package gateway is the persistence facade the application core talks to.
// It exposes collection-level CRUD and batch operations against a document
// store and nothing else: no queries beyond field equality, no pagination,
// no cross-collection transactions. Three backends implement the contract:
// an in-memory store for tests and the dev profile, PostgreSQL (documents in
// a JSONB table) and MongoDB.
package gateway

import (
	"context"
	"errors"
)

// Record pairs a document id with its field set. The id is the key of the
// document, never one of its stored fields.
type Record struct {
	ID     string
	Fields map[string]any
}

// ErrNotFound is returned by UpdateDocument when the target does not exist.
var ErrNotFound = errors.New("document not found")

type Gateway interface {
	// GetCollection reads a full collection. Large collections are not
	// paginated.
	GetCollection(ctx context.Context, collection string) ([]Record, error)

	// SetDocument creates or replaces a document.
	SetDocument(ctx context.Context, collection, id string, fields map[string]any) error

	// UpdateDocument merges fields into an existing document and fails with
	// ErrNotFound if it does not already exist.
	UpdateDocument(ctx context.Context, collection, id string, fields map[string]any) error

	// DeleteDocument removes a document. Deleting a missing document is not
	// an error.
	DeleteDocument(ctx context.Context, collection, id string) error

	// BatchWrite creates or replaces multiple documents in one all-or-nothing
	// call. Every record must carry its own id.
	BatchWrite(ctx context.Context, collection string, records []Record) error

	// BatchDelete removes multiple documents by id.
	BatchDelete(ctx context.Context, collection string, ids []string) error

	// DeleteByQuery removes every document whose field equals value.
	DeleteByQuery(ctx context.Context, collection, field string, value any) error

	// AddDocument creates a document under a store-assigned id and returns it.
	AddDocument(ctx context.Context, collection string, fields map[string]any) (string, error)
}

// assignedIDLength is the length of store-assigned document ids.
const assignedIDLength = 20
