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

package votes_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/wombat/database"
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

func setupPowerSource(
	t *testing.T,
) (*votes.PowerSource, *ledger.MemoryNFTOracle, *testClock) {
	t.Helper()
	db, err := database.New(&database.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	oracle := ledger.NewMemoryNFTOracle()
	clock := &testClock{current: time.Unix(1_700_000_000, 0)}
	ps := votes.New(votes.PowerSourceConfig{
		DB:     db,
		Oracle: oracle,
		Now:    clock.now,
	})
	return ps, oracle, clock
}

func TestPowerDerivation(t *testing.T) {
	ps, oracle, _ := setupPowerSource(t)
	account := principal.ModuleAddress("test/power")
	assert.Equal(t, uint64(0), ps.Power(account))
	oracle.SetBalance(account, 3)
	assert.Equal(t, 3*votes.WeightPerToken, ps.Power(account))
	assert.Equal(t, 3*votes.WeightPerToken, ps.TotalPower())
}

func TestLock(t *testing.T) {
	ps, oracle, clock := setupPowerSource(t)
	account := principal.ModuleAddress("test/lock")
	oracle.SetBalance(account, 2)

	err := ps.Lock(account, votes.WeightPerToken)
	require.NoError(t, err)

	lock, err := ps.LockInfo(account)
	require.NoError(t, err)
	assert.Equal(t, votes.WeightPerToken, lock.Amount)
	assert.Equal(
		t,
		uint64(clock.current.Add(votes.LockDuration).Unix()),
		lock.UnlockTime,
	)

	available, err := ps.Available(account, nil)
	require.NoError(t, err)
	assert.Equal(t, votes.WeightPerToken, available)
}

func TestLockAdditive(t *testing.T) {
	ps, oracle, clock := setupPowerSource(t)
	account := principal.ModuleAddress("test/lock-additive")
	oracle.SetBalance(account, 3)

	require.NoError(t, ps.Lock(account, votes.WeightPerToken))
	clock.advance(time.Hour)
	require.NoError(t, ps.Lock(account, votes.WeightPerToken))

	lock, err := ps.LockInfo(account)
	require.NoError(t, err)
	assert.Equal(t, 2*votes.WeightPerToken, lock.Amount)
	// second lock extends the unlock time
	assert.Equal(
		t,
		uint64(clock.current.Add(votes.LockDuration).Unix()),
		lock.UnlockTime,
	)
}

func TestLockInsufficientPower(t *testing.T) {
	ps, oracle, _ := setupPowerSource(t)
	account := principal.ModuleAddress("test/lock-insufficient")
	oracle.SetBalance(account, 1)

	err := ps.Lock(account, 2*votes.WeightPerToken)
	require.ErrorIs(t, err, votes.ErrInsufficientPower)

	require.NoError(t, ps.Lock(account, votes.WeightPerToken))
	err = ps.Lock(account, 1)
	require.ErrorIs(t, err, votes.ErrInsufficientPower)
}

func TestUnlock(t *testing.T) {
	ps, oracle, clock := setupPowerSource(t)
	account := principal.ModuleAddress("test/unlock")
	oracle.SetBalance(account, 1)
	require.NoError(t, ps.Lock(account, votes.WeightPerToken))

	err := ps.Unlock(account)
	require.ErrorIs(t, err, votes.ErrStillLocked)

	clock.advance(votes.LockDuration)
	require.NoError(t, ps.Unlock(account))

	available, err := ps.Available(account, nil)
	require.NoError(t, err)
	assert.Equal(t, votes.WeightPerToken, available)
}

func TestPowerSourcePause(t *testing.T) {
	ps, oracle, clock := setupPowerSource(t)
	account := principal.ModuleAddress("test/pause")
	oracle.SetBalance(account, 1)

	ps.Pause()
	err := ps.Lock(account, votes.WeightPerToken)
	require.ErrorIs(t, err, votes.ErrPaused)
	err = ps.Unlock(account)
	require.ErrorIs(t, err, votes.ErrPaused)

	ps.Unpause()
	require.NoError(t, ps.Lock(account, votes.WeightPerToken))
	clock.advance(votes.LockDuration)
	require.NoError(t, ps.Unlock(account))
}

func TestSetOracle(t *testing.T) {
	ps, _, _ := setupPowerSource(t)
	account := principal.ModuleAddress("test/set-oracle")
	replacement := ledger.NewMemoryNFTOracle()
	replacement.SetBalance(account, 5)
	ps.SetOracle(replacement)
	assert.Equal(t, 5*votes.WeightPerToken, ps.Power(account))
}
