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

// Package ledger abstracts the account ledger and NFT ownership oracle that
// the governance engine consumes. The host platform supplies the real ledger;
// the in-memory implementations here back tests and dev mode.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/blinklabs-io/wombat/principal"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// AccountLedger moves value between accounts. Deposits are escrowed and
// released through it; implementations must apply each transfer atomically.
type AccountLedger interface {
	BalanceOf(account principal.Address) uint64
	Transfer(from principal.Address, to principal.Address, amount uint64) error
}

// NFTOracle reports NFT ownership, from which voting power is derived
type NFTOracle interface {
	BalanceOf(account principal.Address) uint64
	TotalSupply() uint64
}

// MemoryLedger is an in-memory AccountLedger
type MemoryLedger struct {
	balances map[principal.Address]uint64
	mutex    sync.RWMutex
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[principal.Address]uint64),
	}
}

// Mint credits an account with new value
func (l *MemoryLedger) Mint(account principal.Address, amount uint64) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.balances[account] += amount
}

func (l *MemoryLedger) BalanceOf(account principal.Address) uint64 {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.balances[account]
}

func (l *MemoryLedger) Transfer(
	from principal.Address,
	to principal.Address,
	amount uint64,
) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.balances[from] < amount {
		return fmt.Errorf(
			"%w: account %s has %d, needs %d",
			ErrInsufficientBalance,
			from,
			l.balances[from],
			amount,
		)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// MemoryNFTOracle is an in-memory NFTOracle
type MemoryNFTOracle struct {
	balances map[principal.Address]uint64
	supply   uint64
	mutex    sync.RWMutex
}

func NewMemoryNFTOracle() *MemoryNFTOracle {
	return &MemoryNFTOracle{
		balances: make(map[principal.Address]uint64),
	}
}

// SetBalance assigns an NFT count to an account, adjusting total supply
func (o *MemoryNFTOracle) SetBalance(account principal.Address, count uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.supply = o.supply - o.balances[account] + count
	o.balances[account] = count
}

// SetTotalSupply overrides the reported total supply. Useful for modelling
// supply held outside the accounts known to the oracle.
func (o *MemoryNFTOracle) SetTotalSupply(supply uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.supply = supply
}

func (o *MemoryNFTOracle) BalanceOf(account principal.Address) uint64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.balances[account]
}

func (o *MemoryNFTOracle) TotalSupply() uint64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.supply
}
