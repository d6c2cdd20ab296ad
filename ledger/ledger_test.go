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

package ledger

import (
	"testing"

	"github.com/blinklabs-io/wombat/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerTransfer(t *testing.T) {
	l := NewMemoryLedger()
	alice := principal.ModuleAddress("alice")
	bob := principal.ModuleAddress("bob")
	l.Mint(alice, 100)

	require.NoError(t, l.Transfer(alice, bob, 60))
	assert.Equal(t, uint64(40), l.BalanceOf(alice))
	assert.Equal(t, uint64(60), l.BalanceOf(bob))
}

func TestMemoryLedgerInsufficientBalance(t *testing.T) {
	l := NewMemoryLedger()
	alice := principal.ModuleAddress("alice")
	bob := principal.ModuleAddress("bob")
	l.Mint(alice, 10)

	err := l.Transfer(alice, bob, 11)
	require.ErrorIs(t, err, ErrInsufficientBalance)
	// Failed transfers leave balances untouched
	assert.Equal(t, uint64(10), l.BalanceOf(alice))
	assert.Equal(t, uint64(0), l.BalanceOf(bob))
}

func TestMemoryNFTOracle(t *testing.T) {
	o := NewMemoryNFTOracle()
	alice := principal.ModuleAddress("alice")
	bob := principal.ModuleAddress("bob")

	o.SetBalance(alice, 3)
	o.SetBalance(bob, 2)
	assert.Equal(t, uint64(3), o.BalanceOf(alice))
	assert.Equal(t, uint64(5), o.TotalSupply())

	// Re-assigning adjusts supply rather than accumulating
	o.SetBalance(alice, 1)
	assert.Equal(t, uint64(3), o.TotalSupply())

	o.SetTotalSupply(100)
	assert.Equal(t, uint64(100), o.TotalSupply())
}
