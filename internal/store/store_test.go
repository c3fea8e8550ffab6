package store

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	_, err := kv.Get(ctx, KeyUserToken)
	assert.Equal(t, ErrNotFound, err)

	require.NoError(t, kv.Set(ctx, KeyUserToken, "tok"))
	val, err := kv.Get(ctx, KeyUserToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", val)

	require.NoError(t, kv.Remove(ctx, KeyUserToken))
	_, err = kv.Get(ctx, KeyUserToken)
	assert.Equal(t, ErrNotFound, err)
}

func TestMemory_NamespacesAreDisjoint(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	require.NoError(t, kv.Set(ctx, KeyUserToken, "user"))
	require.NoError(t, kv.Set(ctx, KeyAdminToken, "admin"))
	require.NoError(t, kv.Set(ctx, KeyViewState, `{"current_view":"home"}`))

	// Clearing one key must not affect the others.
	require.NoError(t, kv.Remove(ctx, KeyAdminToken))

	val, err := kv.Get(ctx, KeyUserToken)
	require.NoError(t, err)
	assert.Equal(t, "user", val)

	_, err = kv.Get(ctx, KeyViewState)
	assert.NoError(t, err)
}

func TestJSONHelpers_Roundtrip(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, SetJSON(ctx, kv, "key", record{Name: "a", Count: 3}))

	var out record
	require.NoError(t, GetJSON(ctx, kv, "key", &out))
	assert.Equal(t, record{Name: "a", Count: 3}, out)
}

func TestJSONHelpers_CorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.Set(ctx, "key", "{broken"))

	var out map[string]any
	err := GetJSON(ctx, kv, "key", &out)
	assert.Error(t, err)
	assert.NotEqual(t, ErrNotFound, err)
}

func TestRedis_GetSetRemove(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	kv := NewRedis(client, "portal")

	mock.ExpectSet("portal:auth:token", "tok", 0).SetVal("OK")
	require.NoError(t, kv.Set(ctx, KeyUserToken, "tok"))

	mock.ExpectGet("portal:auth:token").SetVal("tok")
	val, err := kv.Get(ctx, KeyUserToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", val)

	mock.ExpectDel("portal:auth:token").SetVal(1)
	require.NoError(t, kv.Remove(ctx, KeyUserToken))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_MissingKey(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	kv := NewRedis(client, "")

	mock.ExpectGet(KeyViewState).RedisNil()

	_, err := kv.Get(ctx, KeyViewState)
	assert.Equal(t, ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
