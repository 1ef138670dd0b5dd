package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/intake/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultStoreContract runs a standard suite of tests against a ResultStore implementation.
// The store must be empty when the contract starts.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	records := []domain.Record{
		{ID: "r1", FileName: "report.csv", Rule: domain.RuleFileName, Result: "File name is valid. ✅", CreatedAt: base},
		{ID: "r2", FileName: "report.csv", Rule: domain.RuleFileSize, Result: "File size is valid. ✅", CreatedAt: base.Add(time.Second)},
		{ID: "r3", FileName: "other.txt", Rule: domain.RuleHeaders, Result: "Headers are not matching. ❌", CreatedAt: base.Add(2 * time.Second)},
	}

	t.Run("List Empty", func(t *testing.T) {
		got, err := store.List(ctx, domain.Filter{FileName: "missing.csv"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Save", func(t *testing.T) {
		for _, rec := range records {
			require.NoError(t, store.Save(ctx, rec), "Save should not return error")
		}
	})

	t.Run("List All Newest First", func(t *testing.T) {
		got, err := store.List(ctx, domain.Filter{})
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "r3", got[0].ID)
		assert.Equal(t, "r2", got[1].ID)
		assert.Equal(t, "r1", got[2].ID)
		assert.Equal(t, domain.RuleHeaders, got[0].Rule)
		assert.Equal(t, "Headers are not matching. ❌", got[0].Result)
		assert.True(t, got[0].CreatedAt.Equal(records[2].CreatedAt), "CreatedAt should round-trip")
	})

	t.Run("List By File Name", func(t *testing.T) {
		got, err := store.List(ctx, domain.Filter{FileName: "report.csv"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, rec := range got {
			assert.Equal(t, "report.csv", rec.FileName)
		}
		assert.Equal(t, "r2", got[0].ID)
	})

	t.Run("List With Limit", func(t *testing.T) {
		got, err := store.List(ctx, domain.Filter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "r3", got[0].ID)
	})
}

// RunLockerContract verifies mutual exclusion and release semantics of a Locker.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()

	t.Run("Lock And Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-a", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		// Re-acquire after release.
		unlock, err = locker.Lock(ctx, "contract-a", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("Blocked Until Context Done", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-b", 5*time.Second)
		require.NoError(t, err)
		defer unlock(ctx)

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "contract-b", 5*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Mutual Exclusion", func(t *testing.T) {
		var (
			mu      sync.Mutex
			holders int
			maxSeen int
			wg      sync.WaitGroup
		)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "contract-c", 5*time.Second)
				if !assert.NoError(t, err, fmt.Sprintf("worker %d", i)) {
					return
				}
				mu.Lock()
				holders++
				if holders > maxSeen {
					maxSeen = holders
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)

				mu.Lock()
				holders--
				mu.Unlock()
				assert.NoError(t, unlock(ctx))
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen, "only one holder at a time")
	})
}
