package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockers(t *testing.T) map[string]Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return map[string]Locker{
		"memory": NewMemory(),
		"redis":  NewRedis(client, "test:", time.Second),
	}
}

func TestLocker_SerializesSameKey(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			var inside, maxInside int32
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					unlock, err := l.Lock(context.Background(), "000001")
					if !assert.NoError(t, err) {
						return
					}
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					atomic.AddInt32(&inside, -1)
					unlock()
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), maxInside)
		})
	}
}

func TestLocker_TimesOutWhileHeld(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlock, err := l.Lock(context.Background(), "000002")
			require.NoError(t, err)
			defer unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			_, err = l.Lock(ctx, "000002")
			require.ErrorIs(t, err, ErrTimeout)
		})
	}
}

func TestLocker_DistinctKeysDoNotBlock(t *testing.T) {
	for name, l := range lockers(t) {
		t.Run(name, func(t *testing.T) {
			unlockA, err := l.Lock(context.Background(), "000003")
			require.NoError(t, err)
			defer unlockA()

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			unlockB, err := l.Lock(ctx, "000004")
			require.NoError(t, err)
			unlockB()
		})
	}
}

func TestMemory_ReleasesSlots(t *testing.T) {
	m := NewMemory()
	unlock, err := m.Lock(context.Background(), "000005")
	require.NoError(t, err)
	unlock()
	assert.Empty(t, m.slots)
}
