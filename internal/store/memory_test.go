package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUpsertAndDelete(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	type doc struct{ Name string }

	mem.Dispatch(ctx, Upsert(CollectionItems, "a", doc{Name: "first"}))
	mem.Dispatch(ctx, Upsert(CollectionItems, "a", doc{Name: "second"}))
	assert.Equal(t, doc{Name: "second"}, mem.Get(CollectionItems, "a"))

	mem.Dispatch(ctx, Delete(CollectionItems, "a"))
	assert.Nil(t, mem.Get(CollectionItems, "a"))

	applied := mem.Applied()
	require.Len(t, applied, 3)
	assert.Equal(t, OpDelete, applied[2].Op)
}

func TestMemoryStorePatchMergesFields(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()

	mem.Dispatch(ctx, Patch(CollectionMachines, "m1", map[string]interface{}{
		"rental_status": "rented",
		"rented_by":     "u1",
	}))
	mem.Dispatch(ctx, Patch(CollectionMachines, "m1", map[string]interface{}{
		"rental_status": "available",
		"rented_by":     "",
	}))

	got, ok := mem.Get(CollectionMachines, "m1").(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "available", got["rental_status"])
	assert.Equal(t, "", got["rented_by"])
}
