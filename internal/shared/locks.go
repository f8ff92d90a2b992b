package shared

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PartyLockKey builds redis keys for per-party posting critical sections.
func PartyLockKey(partyID int64) string {
	return fmt.Sprintf("ledger:party:%d:lock", partyID)
}

// PartyLocker serialises allocate/reverse sequences per ledger party. The
// allocator and reversal engine read-then-write a shared invoice set, so two
// concurrent postings for one party must never interleave.
type PartyLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPartyLocker constructs the locker. The TTL bounds how long a crashed
// posting can hold a party hostage.
func NewPartyLocker(client *redis.Client, ttl time.Duration) *PartyLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &PartyLocker{client: client, ttl: ttl}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Acquire takes the party lock or fails fast with ErrPartyBusy. The returned
// release func only deletes the key if this holder still owns it.
func (l *PartyLocker) Acquire(ctx context.Context, partyID int64) (func(context.Context), error) {
	if l == nil || l.client == nil {
		// Lock-less mode for single-process test setups.
		return func(context.Context) {}, nil
	}
	key := PartyLockKey(partyID)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPartyBusy
	}
	release := func(ctx context.Context) {
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, nil
}
