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

// Package votes derives voting power from NFT ownership and manages
// voluntary temporary locks of that power.
package votes

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/database/models"
	"github.com/blinklabs-io/wombat/event"
	"github.com/blinklabs-io/wombat/ledger"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// WeightPerToken is the voting weight granted per owned NFT
	WeightPerToken = uint64(1_000_000)
	// LockDuration is the fixed period a voluntary power lock remains in force
	LockDuration = 7 * 24 * time.Hour
)

const (
	LockEventType   event.EventType = "power.locked"
	UnlockEventType event.EventType = "power.unlocked"
)

// LockEvent is emitted when an account locks part of its voting power
type LockEvent struct {
	Account    principal.Address
	Amount     uint64
	UnlockTime uint64
}

// UnlockEvent is emitted when an account releases a power lock
type UnlockEvent struct {
	Account principal.Address
	Amount  uint64
}

var (
	ErrInsufficientPower = errors.New("insufficient voting power")
	ErrStillLocked       = errors.New("voting power still locked")
	ErrPaused            = errors.New("voting power source is paused")
)

type PowerSourceConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	DB           *database.Database
	Oracle       ledger.NFTOracle
	Now          func() time.Time
}

// PowerSource derives per-account voting weight from the NFT ownership
// oracle and tracks voluntary power locks
type PowerSource struct {
	logger   *slog.Logger
	eventBus *event.EventBus
	db       *database.Database
	now      func() time.Time
	metrics  struct {
		locksTotal   prometheus.Counter
		unlocksTotal prometheus.Counter
	}
	oracle      ledger.NFTOracle
	oracleMutex sync.RWMutex
	paused      atomic.Bool
}

func New(cfg PowerSourceConfig) *PowerSource {
	p := &PowerSource{
		logger:   cfg.Logger,
		eventBus: cfg.EventBus,
		db:       cfg.DB,
		oracle:   cfg.Oracle,
		now:      cfg.Now,
	}
	if p.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if p.now == nil {
		p.now = time.Now
	}
	if cfg.PromRegistry != nil {
		promFactory := promauto.With(cfg.PromRegistry)
		p.metrics.locksTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_power_locks_total",
			Help: "total voting power locks created",
		})
		p.metrics.unlocksTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_power_unlocks_total",
			Help: "total voting power locks released",
		})
	}
	return p
}

// SetOracle replaces the NFT ownership oracle
func (p *PowerSource) SetOracle(oracle ledger.NFTOracle) {
	p.oracleMutex.Lock()
	defer p.oracleMutex.Unlock()
	p.oracle = oracle
}

// Oracle returns the current NFT ownership oracle
func (p *PowerSource) Oracle() ledger.NFTOracle {
	p.oracleMutex.RLock()
	defer p.oracleMutex.RUnlock()
	return p.oracle
}

// Power returns an account's total voting weight, locked or not
func (p *PowerSource) Power(account principal.Address) uint64 {
	return p.Oracle().BalanceOf(account) * WeightPerToken
}

// TotalPower returns the total voting weight across the NFT supply
func (p *PowerSource) TotalPower() uint64 {
	return p.Oracle().TotalSupply() * WeightPerToken
}

// Available returns an account's voting weight net of any active lock
func (p *PowerSource) Available(
	account principal.Address,
	txn *database.Txn,
) (uint64, error) {
	power := p.Power(account)
	lock, err := p.db.GetPowerLock(account.Bytes(), txn)
	if err != nil {
		if errors.Is(err, models.ErrPowerLockNotFound) {
			return power, nil
		}
		return 0, err
	}
	if lock.Amount >= power {
		return 0, nil
	}
	return power - lock.Amount, nil
}

// Lock locks the given amount of an account's voting power for LockDuration.
// Locking again adds to an existing lock and extends its unlock time.
func (p *PowerSource) Lock(account principal.Address, amount uint64) error {
	if p.paused.Load() {
		return ErrPaused
	}
	return p.db.Transaction(true).Do(func(txn *database.Txn) error {
		available, err := p.Available(account, txn)
		if err != nil {
			return err
		}
		if amount > available {
			return fmt.Errorf(
				"%w: requested %d, available %d",
				ErrInsufficientPower,
				amount,
				available,
			)
		}
		var locked uint64
		lock, err := p.db.GetPowerLock(account.Bytes(), txn)
		if err != nil {
			if !errors.Is(err, models.ErrPowerLockNotFound) {
				return err
			}
		} else {
			locked = lock.Amount
		}
		unlockTime := uint64(p.now().Add(LockDuration).Unix()) // #nosec G115
		if err := p.db.SetPowerLock(&models.PowerLock{
			Account:    account.Bytes(),
			Amount:     locked + amount,
			UnlockTime: unlockTime,
		}, txn); err != nil {
			return err
		}
		if p.metrics.locksTotal != nil {
			p.metrics.locksTotal.Inc()
		}
		p.logger.Info(
			"voting power locked",
			"component", "votes",
			"account", account.String(),
			"amount", amount,
			"unlock_time", unlockTime,
		)
		if p.eventBus != nil {
			p.eventBus.Publish(
				LockEventType,
				event.NewEvent(
					LockEventType,
					LockEvent{
						Account:    account,
						Amount:     locked + amount,
						UnlockTime: unlockTime,
					},
				),
			)
		}
		return nil
	})
}

// Unlock releases an account's power lock once its unlock time has passed
func (p *PowerSource) Unlock(account principal.Address) error {
	if p.paused.Load() {
		return ErrPaused
	}
	return p.db.Transaction(true).Do(func(txn *database.Txn) error {
		lock, err := p.db.GetPowerLock(account.Bytes(), txn)
		if err != nil {
			return err
		}
		now := uint64(p.now().Unix()) // #nosec G115
		if now < lock.UnlockTime {
			return fmt.Errorf(
				"%w: unlocks at %d, now %d",
				ErrStillLocked,
				lock.UnlockTime,
				now,
			)
		}
		if err := p.db.DeletePowerLock(account.Bytes(), txn); err != nil {
			return err
		}
		if p.metrics.unlocksTotal != nil {
			p.metrics.unlocksTotal.Inc()
		}
		p.logger.Info(
			"voting power unlocked",
			"component", "votes",
			"account", account.String(),
			"amount", lock.Amount,
		)
		if p.eventBus != nil {
			p.eventBus.Publish(
				UnlockEventType,
				event.NewEvent(
					UnlockEventType,
					UnlockEvent{
						Account: account,
						Amount:  lock.Amount,
					},
				),
			)
		}
		return nil
	})
}

// LockInfo returns an account's active power lock
func (p *PowerSource) LockInfo(
	account principal.Address,
) (*models.PowerLock, error) {
	return p.db.GetPowerLock(account.Bytes(), nil)
}

// Pause stops all mutating operations
func (p *PowerSource) Pause() {
	p.paused.Store(true)
}

// Unpause resumes mutating operations
func (p *PowerSource) Unpause() {
	p.paused.Store(false)
}
