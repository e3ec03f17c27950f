// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/platform/constants"
	"github.com/taibuivan/passport/internal/platform/sec"
)

// RedisIdentityCache implements [IdentityCache] using Redis.
//
// Entries are JSON-encoded [sec.Identity] values under auth:identity:<id>
// and expire after ttl, which bounds how long a renamed account can be seen
// under its old username.
//
// Delete leaves a tombstone under auth:deleted:<id> for one ttl. Set refuses
// to write while the tombstone exists, so a lookup that read the account just
// before its deletion cannot cache it again afterwards.
type RedisIdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ IdentityCache = (*RedisIdentityCache)(nil)

// setUnlessDeleted writes KEYS[1] unless the tombstone KEYS[2] exists.
var setUnlessDeleted = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// NewIdentityCache creates a new Redis-backed IdentityCache.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *RedisIdentityCache {
	return &RedisIdentityCache{client: client, ttl: ttl}
}

/*
Get retrieves the cached identity for an account.

Description: Returns apperr.NotFound if the entry is absent or expired.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *sec.Identity: Cached principal
  - error: apperr.NotFound or connectivity errors
*/
func (cache *RedisIdentityCache) Get(context context.Context, accountID string) (*sec.Identity, error) {
	payload, err := cache.client.Get(context, identityKey(accountID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Identity")
		}
		return nil, fmt.Errorf("redis_identity_get_failed: %w", err)
	}

	var identity sec.Identity
	if err := json.Unmarshal(payload, &identity); err != nil {
		return nil, fmt.Errorf("redis_identity_decode_failed: %w", err)
	}

	return &identity, nil
}

/*
Set stores the identity with the configured TTL.

Description: A no-op while the account carries a deletion tombstone.

Parameters:
  - context: context.Context
  - identity: *sec.Identity

Returns:
  - error: Storage failures
*/
func (cache *RedisIdentityCache) Set(context context.Context, identity *sec.Identity) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("redis_identity_encode_failed: %w", err)
	}

	keys := []string{identityKey(identity.AccountID), deletedKey(identity.AccountID)}
	if err := setUnlessDeleted.Run(context, cache.client, keys, payload, cache.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis_identity_set_failed: %w", err)
	}

	return nil
}

/*
Delete evicts the identity of an account and tombstones it for one TTL.

Description: Both writes happen in one MULTI block. Callers deleting an
account must treat a failure here as fatal to the deletion.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - error: Deletion failures
*/
func (cache *RedisIdentityCache) Delete(context context.Context, accountID string) error {
	_, err := cache.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Set(context, deletedKey(accountID), "1", cache.ttl)
		pipe.Del(context, identityKey(accountID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_identity_delete_failed: %w", err)
	}

	return nil
}

func identityKey(accountID string) string {
	return constants.RedisPrefixIdentity + accountID
}

func deletedKey(accountID string) string {
	return constants.RedisPrefixDeleted + accountID
}
