// internal/store/store.go
package store

import "context"

// Collection names used across the application.
const (
	CollectionItems    = "items"
	CollectionOrders   = "orders"
	CollectionMachines = "machines"
)

// Op is the kind of write applied to a document.
type Op string

const (
	OpUpsert Op = "upsert"
	OpPatch  Op = "patch"
	OpDelete Op = "delete"
)

// WriteIntent describes one pending write against the document store.
// Core operations return intents instead of talking to the store directly,
// so their effects can be asserted in tests without any I/O.
type WriteIntent struct {
	Op         Op
	Collection string
	ID         string
	// Doc is the full document for upserts (any bson-marshalable value),
	// or a map of changed fields for patches. Nil for deletes.
	Doc interface{}
}

// Upsert builds a full-document write intent.
func Upsert(collection, id string, doc interface{}) WriteIntent {
	return WriteIntent{Op: OpUpsert, Collection: collection, ID: id, Doc: doc}
}

// Patch builds a partial-document write intent.
func Patch(collection, id string, fields map[string]interface{}) WriteIntent {
	return WriteIntent{Op: OpPatch, Collection: collection, ID: id, Doc: fields}
}

// Delete builds a delete intent.
func Delete(collection, id string) WriteIntent {
	return WriteIntent{Op: OpDelete, Collection: collection, ID: id}
}

// Dispatcher applies write intents to a backing store. Dispatch is
// fire-and-forget from the caller's point of view: services do not wait for
// persistence before reflecting the change in memory, and a failed write is
// logged but never retried. Two clients patching the same document race
// last-writer-wins; that hazard is accepted for this domain.
//
// The flow is one-way: services never read back what they dispatched. Their
// in-memory read model starts empty on boot, so a restart does not rehydrate
// existing documents from the store.
type Dispatcher interface {
	Dispatch(ctx context.Context, intents ...WriteIntent)
}
