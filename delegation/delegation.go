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

// Package delegation tracks vote delegation between accounts
package delegation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/database/models"
	"github.com/blinklabs-io/wombat/event"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/votes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// DefaultMaxChanges is the lifetime cap on delegation changes per account
	DefaultMaxChanges = uint32(5)
	// DefaultLockPeriod is how long a delegation must stand before it can
	// be changed or removed
	DefaultLockPeriod = 24 * time.Hour
)

const (
	SetEventType    event.EventType = "delegation.set"
	RemoveEventType event.EventType = "delegation.removed"
)

// SetEvent is emitted when an account delegates its vote
type SetEvent struct {
	Delegator principal.Address
	Delegate  principal.Address
}

// RemoveEvent is emitted when an account removes its delegation
type RemoveEvent struct {
	Delegator principal.Address
	Delegate  principal.Address
}

var (
	ErrPaused                 = errors.New("delegation registry is paused")
	ErrInvalidSigner          = errors.New("signer has no voting power")
	ErrSelfDelegation         = errors.New("cannot delegate to self")
	ErrMaxDelegationsExceeded = errors.New("delegation change limit reached")
	ErrNoDelegation           = errors.New("no active delegation")
	ErrDelegationLocked       = errors.New("delegation is locked")
	ErrInvalidDelegateAddress = errors.New("invalid delegate address")
)

type RegistryConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	DB           *database.Database
	Power        *votes.PowerSource
	MaxChanges   uint32
	LockPeriod   time.Duration
	Now          func() time.Time
}

// Registry records which account each delegator has redirected its vote to
type Registry struct {
	logger     *slog.Logger
	eventBus   *event.EventBus
	db         *database.Database
	power      *votes.PowerSource
	maxChanges uint32
	lockPeriod time.Duration
	now        func() time.Time
	paused     atomic.Bool
	metrics    struct {
		changesTotal prometheus.Counter
	}
}

func NewRegistry(cfg RegistryConfig) *Registry {
	r := &Registry{
		logger:     cfg.Logger,
		eventBus:   cfg.EventBus,
		db:         cfg.DB,
		power:      cfg.Power,
		maxChanges: cfg.MaxChanges,
		lockPeriod: cfg.LockPeriod,
		now:        cfg.Now,
	}
	if r.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		r.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if r.maxChanges == 0 {
		r.maxChanges = DefaultMaxChanges
	}
	if r.lockPeriod == 0 {
		r.lockPeriod = DefaultLockPeriod
	}
	if r.now == nil {
		r.now = time.Now
	}
	if cfg.PromRegistry != nil {
		promFactory := promauto.With(cfg.PromRegistry)
		r.metrics.changesTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_delegation_changes_total",
			Help: "total delegation changes recorded",
		})
	}
	return r
}

// Set records or replaces the delegator's delegation. Every successful call
// counts against the delegator's change budget and restarts the delegation
// lock; removing a delegation hands the change back.
func (r *Registry) Set(delegator, delegate principal.Address) error {
	if r.paused.Load() {
		return ErrPaused
	}
	if delegate.IsZero() {
		return ErrInvalidDelegateAddress
	}
	if delegator == delegate {
		return ErrSelfDelegation
	}
	if r.power.Power(delegator) == 0 {
		return ErrInvalidSigner
	}
	return r.db.Transaction(true).Do(func(txn *database.Txn) error {
		now := uint64(r.now().Unix()) // #nosec G115
		record := &models.Delegation{
			Delegator: delegator.Bytes(),
			Delegate:  delegate.Bytes(),
			Timestamp: now,
		}
		existing, err := r.db.GetDelegation(delegator.Bytes(), txn)
		if err != nil {
			if !errors.Is(err, models.ErrDelegationNotFound) {
				return err
			}
		} else {
			if len(existing.Delegate) > 0 {
				if err := r.checkLocked(existing, now); err != nil {
					return err
				}
			}
			record.ID = existing.ID
			record.ChangeCount = existing.ChangeCount
		}
		if record.ChangeCount >= r.maxChanges {
			return fmt.Errorf(
				"%w: limit %d",
				ErrMaxDelegationsExceeded,
				r.maxChanges,
			)
		}
		record.ChangeCount++
		if err := r.db.SetDelegation(record, txn); err != nil {
			return err
		}
		if err := r.bumpNonce(delegator, txn); err != nil {
			return err
		}
		if r.metrics.changesTotal != nil {
			r.metrics.changesTotal.Inc()
		}
		r.logger.Info(
			"delegation set",
			"component", "delegation",
			"delegator", delegator.String(),
			"delegate", delegate.String(),
			"change_count", record.ChangeCount,
		)
		if r.eventBus != nil {
			r.eventBus.Publish(
				SetEventType,
				event.NewEvent(
					SetEventType,
					SetEvent{Delegator: delegator, Delegate: delegate},
				),
			)
		}
		return nil
	})
}

// Remove clears the delegator's delegation once its lock has expired and
// hands the change back to the delegator's budget. The record is kept with
// an empty delegate so the remaining count survives removal.
func (r *Registry) Remove(delegator principal.Address) error {
	if r.paused.Load() {
		return ErrPaused
	}
	return r.db.Transaction(true).Do(func(txn *database.Txn) error {
		existing, err := r.db.GetDelegation(delegator.Bytes(), txn)
		if err != nil {
			if errors.Is(err, models.ErrDelegationNotFound) {
				return ErrNoDelegation
			}
			return err
		}
		if len(existing.Delegate) == 0 {
			return ErrNoDelegation
		}
		now := uint64(r.now().Unix()) // #nosec G115
		if err := r.checkLocked(existing, now); err != nil {
			return err
		}
		delegate, err := principal.AddressFromBytes(existing.Delegate)
		if err != nil {
			return err
		}
		existing.Delegate = []byte{}
		if existing.ChangeCount > 0 {
			existing.ChangeCount--
		}
		if err := r.db.SetDelegation(existing, txn); err != nil {
			return err
		}
		if err := r.bumpNonce(delegator, txn); err != nil {
			return err
		}
		r.logger.Info(
			"delegation removed",
			"component", "delegation",
			"delegator", delegator.String(),
			"delegate", delegate.String(),
		)
		if r.eventBus != nil {
			r.eventBus.Publish(
				RemoveEventType,
				event.NewEvent(
					RemoveEventType,
					RemoveEvent{Delegator: delegator, Delegate: delegate},
				),
			)
		}
		return nil
	})
}

// Info returns the delegator's active delegation
func (r *Registry) Info(
	delegator principal.Address,
) (*models.Delegation, error) {
	record, err := r.db.GetDelegation(delegator.Bytes(), nil)
	if err != nil {
		if errors.Is(err, models.ErrDelegationNotFound) {
			return nil, ErrNoDelegation
		}
		return nil, err
	}
	if len(record.Delegate) == 0 {
		return nil, ErrNoDelegation
	}
	return record, nil
}

// Delegate returns the account a delegator's vote is redirected to, or the
// delegator itself when no delegation is active
func (r *Registry) Delegate(
	delegator principal.Address,
	txn *database.Txn,
) (principal.Address, error) {
	record, err := r.db.GetDelegation(delegator.Bytes(), txn)
	if err != nil {
		if errors.Is(err, models.ErrDelegationNotFound) {
			return delegator, nil
		}
		return principal.ZeroAddress, err
	}
	if len(record.Delegate) == 0 {
		return delegator, nil
	}
	return principal.AddressFromBytes(record.Delegate)
}

// A delegation may be changed at or after timestamp+lockPeriod, not before
func (r *Registry) checkLocked(
	record *models.Delegation,
	now uint64,
) error {
	unlockTime := record.Timestamp + uint64(r.lockPeriod.Seconds()) // #nosec G115
	if now < unlockTime {
		return fmt.Errorf(
			"%w: changeable at %d, now %d",
			ErrDelegationLocked,
			unlockTime,
			now,
		)
	}
	return nil
}

// Pause stops all mutating operations
func (r *Registry) Pause() {
	r.paused.Store(true)
}

// Unpause resumes mutating operations
func (r *Registry) Unpause() {
	r.paused.Store(false)
}

func (r *Registry) bumpNonce(
	account principal.Address,
	txn *database.Txn,
) error {
	nonce, err := r.db.GetNonce(account.Bytes(), txn)
	if err != nil {
		return err
	}
	return r.db.SetNonce(account.Bytes(), nonce+1, txn)
}
