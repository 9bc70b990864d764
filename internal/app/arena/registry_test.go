package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parlor/internal/pkg/errs"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	c := NewClient(nil, nil, "alice")

	require.Nil(t, r.Register("alice", c))
	assert.Same(t, c, r.Lookup("alice"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	first := NewClient(nil, nil, "alice")
	second := NewClient(nil, nil, "alice")

	require.Nil(t, r.Register("alice", first))

	customErr := r.Register("alice", second)
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUsernameTaken, customErr.Code)

	// The original binding survives the rejected attempt.
	assert.Same(t, first, r.Lookup("alice"))
}

func TestRegistryUsernamesAreCaseSensitive(t *testing.T) {
	r := NewRegistry()

	require.Nil(t, r.Register("alice", NewClient(nil, nil, "alice")))
	assert.Nil(t, r.Register("Alice", NewClient(nil, nil, "Alice")))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryRename(t *testing.T) {
	r := NewRegistry()
	c := NewClient(nil, nil, "alice")
	require.Nil(t, r.Register("alice", c))

	require.Nil(t, r.Rename("alice", "alicia"))

	assert.Nil(t, r.Lookup("alice"))
	assert.Same(t, c, r.Lookup("alicia"))

	// The freed name is immediately available again.
	assert.Nil(t, r.Register("alice", NewClient(nil, nil, "alice")))
}

func TestRegistryRenameCollision(t *testing.T) {
	r := NewRegistry()
	alice := NewClient(nil, nil, "alice")
	require.Nil(t, r.Register("alice", alice))
	require.Nil(t, r.Register("bob", NewClient(nil, nil, "bob")))

	customErr := r.Rename("alice", "bob")
	require.NotNil(t, customErr)
	assert.Equal(t, errs.ErrUsernameTaken, customErr.Code)

	// A failed rename leaves both bindings untouched.
	assert.Same(t, alice, r.Lookup("alice"))
}

func TestRegistryRenameUnknownName(t *testing.T) {
	r := NewRegistry()
	assert.NotNil(t, r.Rename("ghost", "anything"))
}

func TestRegistrySnapshotSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"carol", "alice", "bob"} {
		require.Nil(t, r.Register(name, NewClient(nil, nil, name)))
	}

	assert.Equal(t, []string{"alice", "bob", "carol"}, r.Snapshot())
}
