package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*PartyLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPartyLocker(client, time.Minute), mr
}

func TestPartyLockerSerialisesSameParty(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, 42)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, 42)
	require.ErrorIs(t, err, ErrPartyBusy)

	release(ctx)

	release2, err := locker.Acquire(ctx, 42)
	require.NoError(t, err)
	release2(ctx)
}

func TestPartyLockerIndependentParties(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	r1, err := locker.Acquire(ctx, 1)
	require.NoError(t, err)
	defer r1(ctx)

	r2, err := locker.Acquire(ctx, 2)
	require.NoError(t, err)
	defer r2(ctx)
}

func TestPartyLockerExpiresWithTTL(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	_, err := locker.Acquire(ctx, 7)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	release, err := locker.Acquire(ctx, 7)
	require.NoError(t, err)
	release(ctx)
}

func TestPartyLockerNilClientIsLockless(t *testing.T) {
	var locker *PartyLocker
	release, err := locker.Acquire(context.Background(), 1)
	require.NoError(t, err)
	release(context.Background())
}
