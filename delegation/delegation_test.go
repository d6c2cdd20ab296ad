// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package delegation_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/delegation"
	"github.com/blinklabs-io/wombat/ledger"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/votes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time {
	return c.current
}

func (c *testClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func setupRegistry(
	t *testing.T,
) (*delegation.Registry, *ledger.MemoryNFTOracle, *testClock) {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	oracle := ledger.NewMemoryNFTOracle()
	clock := &testClock{current: time.Unix(1_700_000_000, 0)}
	power := votes.New(votes.PowerSourceConfig{
		DB:     db,
		Oracle: oracle,
		Now:    clock.now,
	})
	registry := delegation.NewRegistry(delegation.RegistryConfig{
		DB:    db,
		Power: power,
		Now:   clock.now,
	})
	return registry, oracle, clock
}

func TestSetDelegation(t *testing.T) {
	registry, oracle, _ := setupRegistry(t)
	delegator := principal.ModuleAddress("test/delegator")
	delegate := principal.ModuleAddress("test/delegate")
	oracle.SetBalance(delegator, 1)

	require.NoError(t, registry.Set(delegator, delegate))

	record, err := registry.Info(delegator)
	require.NoError(t, err)
	assert.Equal(t, delegate.Bytes(), record.Delegate)
	assert.Equal(t, uint32(1), record.ChangeCount)

	resolved, err := registry.Delegate(delegator, nil)
	require.NoError(t, err)
	assert.Equal(t, delegate, resolved)
}

func TestSetDelegationRejections(t *testing.T) {
	registry, oracle, _ := setupRegistry(t)
	delegator := principal.ModuleAddress("test/rejections")
	delegate := principal.ModuleAddress("test/rejections-delegate")

	// no voting power
	err := registry.Set(delegator, delegate)
	require.ErrorIs(t, err, delegation.ErrInvalidSigner)

	oracle.SetBalance(delegator, 1)
	err = registry.Set(delegator, delegator)
	require.ErrorIs(t, err, delegation.ErrSelfDelegation)
	err = registry.Set(delegator, principal.ZeroAddress)
	require.ErrorIs(t, err, delegation.ErrInvalidDelegateAddress)
}

func TestDelegationLock(t *testing.T) {
	registry, oracle, clock := setupRegistry(t)
	delegator := principal.ModuleAddress("test/lock")
	first := principal.ModuleAddress("test/lock-first")
	second := principal.ModuleAddress("test/lock-second")
	oracle.SetBalance(delegator, 1)

	require.NoError(t, registry.Set(delegator, first))

	err := registry.Set(delegator, second)
	require.ErrorIs(t, err, delegation.ErrDelegationLocked)
	err = registry.Remove(delegator)
	require.ErrorIs(t, err, delegation.ErrDelegationLocked)

	// still locked one second before the boundary
	clock.advance(delegation.DefaultLockPeriod - time.Second)
	err = registry.Set(delegator, second)
	require.ErrorIs(t, err, delegation.ErrDelegationLocked)
	err = registry.Remove(delegator)
	require.ErrorIs(t, err, delegation.ErrDelegationLocked)

	// changeable at exactly timestamp + lock period
	clock.advance(time.Second)
	require.NoError(t, registry.Set(delegator, second))

	record, err := registry.Info(delegator)
	require.NoError(t, err)
	assert.Equal(t, second.Bytes(), record.Delegate)
	assert.Equal(t, uint32(2), record.ChangeCount)
}

func TestDelegationChangeLimit(t *testing.T) {
	registry, oracle, clock := setupRegistry(t)
	delegator := principal.ModuleAddress("test/limit")
	delegate := principal.ModuleAddress("test/limit-delegate")
	oracle.SetBalance(delegator, 1)

	for range delegation.DefaultMaxChanges {
		require.NoError(t, registry.Set(delegator, delegate))
		clock.advance(delegation.DefaultLockPeriod)
	}
	err := registry.Set(delegator, delegate)
	require.ErrorIs(t, err, delegation.ErrMaxDelegationsExceeded)

	// removal hands a change back to the budget
	require.NoError(t, registry.Remove(delegator))
	require.NoError(t, registry.Set(delegator, delegate))
	err = registry.Set(delegator, delegate)
	require.ErrorIs(t, err, delegation.ErrDelegationLocked)
}

func TestRemoveRestoresChangeBudget(t *testing.T) {
	registry, oracle, clock := setupRegistry(t)
	delegator := principal.ModuleAddress("test/budget")
	delegate := principal.ModuleAddress("test/budget-delegate")
	oracle.SetBalance(delegator, 1)

	// balanced set/remove cycles never exhaust the budget
	for range delegation.DefaultMaxChanges {
		require.NoError(t, registry.Set(delegator, delegate))
		clock.advance(delegation.DefaultLockPeriod)
		require.NoError(t, registry.Remove(delegator))
	}
	require.NoError(t, registry.Set(delegator, delegate))

	record, err := registry.Info(delegator)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), record.ChangeCount)
}

func TestPauseBlocksChanges(t *testing.T) {
	registry, oracle, clock := setupRegistry(t)
	delegator := principal.ModuleAddress("test/paused")
	delegate := principal.ModuleAddress("test/paused-delegate")
	oracle.SetBalance(delegator, 1)
	require.NoError(t, registry.Set(delegator, delegate))
	clock.advance(delegation.DefaultLockPeriod)

	registry.Pause()
	err := registry.Set(delegator, delegate)
	require.ErrorIs(t, err, delegation.ErrPaused)
	err = registry.Remove(delegator)
	require.ErrorIs(t, err, delegation.ErrPaused)

	registry.Unpause()
	require.NoError(t, registry.Remove(delegator))
}

func TestRemoveDelegation(t *testing.T) {
	registry, oracle, clock := setupRegistry(t)
	delegator := principal.ModuleAddress("test/remove")
	delegate := principal.ModuleAddress("test/remove-delegate")
	oracle.SetBalance(delegator, 1)

	err := registry.Remove(delegator)
	require.ErrorIs(t, err, delegation.ErrNoDelegation)

	require.NoError(t, registry.Set(delegator, delegate))
	clock.advance(delegation.DefaultLockPeriod)
	require.NoError(t, registry.Remove(delegator))

	_, err = registry.Info(delegator)
	require.ErrorIs(t, err, delegation.ErrNoDelegation)

	// vote resolution falls back to the delegator itself
	resolved, err := registry.Delegate(delegator, nil)
	require.NoError(t, err)
	assert.Equal(t, delegator, resolved)
}
