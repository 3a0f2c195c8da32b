package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/eventdesk/store"
)

func TestClientStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, testCacheConfig())

	bob, err := ts.CreateClient(ctx, &store.Client{Name: "Bob", Email: "bob@example.com", Company: "Acme"})
	require.NoError(t, err)
	_, err = ts.CreateClient(ctx, &store.Client{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)

	list, err := ts.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Bob", list[1].Name)

	_, err = ts.ListClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ts.Driver.ClientLists())

	found, err := ts.GetClient(ctx, bob.UID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Company)

	require.NoError(t, ts.DeleteClient(ctx, &store.DeleteClient{UID: bob.UID}))
	_, err = ts.GetClient(ctx, bob.UID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	list, err = ts.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, ts.DeleteClient(ctx, &store.DeleteClient{UID: bob.UID}), store.ErrNotFound)
}

func TestContactRequestStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t, testCacheConfig())

	for _, name := range []string{"Ann", "Ben", "Cid"} {
		created, err := ts.CreateContactRequest(ctx, &store.ContactRequest{
			Name:    name,
			Email:   name + "@example.com",
			Message: "hello",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.UID)
		assert.NotZero(t, created.CreatedTs)
	}

	list, err := ts.ListContactRequests(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	limit := 2
	list, err = ts.ListContactRequests(ctx, &store.FindContactRequest{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 0, ts.Cache.Len(), "contact requests bypass the cache")
}
