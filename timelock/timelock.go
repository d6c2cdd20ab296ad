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

// Package timelock schedules external calls behind an enforced delay, with
// role-gated scheduling, execution, and cancellation.
package timelock

import (
	"bytes"
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/crypto/blake2b"
)

const (
	// MinDelay is the shortest allowed scheduling delay
	MinDelay = 24 * time.Hour
	// MaxDelay is the longest allowed scheduling delay
	MaxDelay = 30 * 24 * time.Hour
)

const (
	ScheduleEventType event.EventType = "timelock.scheduled"
	ExecuteEventType  event.EventType = "timelock.executed"
	CancelEventType   event.EventType = "timelock.cancelled"
)

// ScheduleEvent is emitted when an operation is queued
type ScheduleEvent struct {
	OpId      []byte
	Target    principal.Address
	Value     uint64
	ReadyTime uint64
}

// ExecuteEvent is emitted when a queued operation executes
type ExecuteEvent struct {
	OpId   []byte
	Target principal.Address
	Value  uint64
}

// CancelEvent is emitted when a queued operation is cancelled
type CancelEvent struct {
	OpId []byte
}

var (
	ErrPaused                 = errors.New("timelock queue is paused")
	ErrUnauthorized           = errors.New("account lacks required role")
	ErrDelayTooShort          = errors.New("delay below minimum")
	ErrDelayTooLong           = errors.New("delay above maximum")
	ErrOperationExists        = errors.New("operation already scheduled")
	ErrOperationNotReady      = errors.New("operation delay has not elapsed")
	ErrAlreadyExecuted        = errors.New("operation already executed")
	ErrOperationCancelled     = errors.New("operation cancelled")
	ErrAlreadySigned          = errors.New("operation already signed by account")
	ErrInsufficientSignatures = errors.New("operation lacks required signatures")
)

// ExecutionError wraps a failure from the underlying call so callers can
// distinguish it from queue state errors
type ExecutionError struct {
	Err error
}

func (e ExecutionError) Error() string {
	return fmt.Sprintf("operation execution failed: %s", e.Err)
}

func (e ExecutionError) Unwrap() error {
	return e.Err
}

// OperationStatus describes where a queued operation is in its lifecycle
type OperationStatus string

const (
	StatusPending   OperationStatus = "pending"
	StatusReady     OperationStatus = "ready"
	StatusExecuted  OperationStatus = "executed"
	StatusCancelled OperationStatus = "cancelled"
)

// CallInvoker performs the external call an operation was scheduled for
type CallInvoker interface {
	Invoke(target principal.Address, value uint64, payload []byte) error
}

// OperationID derives the deterministic identifier for a call, the
// blake2b-256 hash of its target, value, payload, predecessor, and salt
func OperationID(
	target principal.Address,
	value uint64,
	payload []byte,
	predecessor []byte,
	salt []byte,
) []byte {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	hasher.Write(target.Bytes())
	var valueBytes [8]byte
	for i := range 8 {
		valueBytes[7-i] = byte(value >> (8 * i))
	}
	hasher.Write(valueBytes[:])
	hasher.Write(payload)
	hasher.Write(predecessor)
	hasher.Write(salt)
	return hasher.Sum(nil)
}

type QueueConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	DB           *database.Database
	Access       *AccessControl
	Invoker      CallInvoker
	Now          func() time.Time
}

// Queue is the timelocked operation queue
type Queue struct {
	logger   *slog.Logger
	eventBus *event.EventBus
	db       *database.Database
	access   *AccessControl
	invoker  CallInvoker
	now      func() time.Time
	metrics  struct {
		scheduledTotal prometheus.Counter
		executedTotal  prometheus.Counter
		cancelledTotal prometheus.Counter
	}
	paused atomic.Bool
}

func NewQueue(cfg QueueConfig) *Queue {
	q := &Queue{
		logger:   cfg.Logger,
		eventBus: cfg.EventBus,
		db:       cfg.DB,
		access:   cfg.Access,
		invoker:  cfg.Invoker,
		now:      cfg.Now,
	}
	if q.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		q.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if q.access == nil {
		q.access = NewAccessControl()
	}
	if q.now == nil {
		q.now = time.Now
	}
	if cfg.PromRegistry != nil {
		promFactory := promauto.With(cfg.PromRegistry)
		q.metrics.scheduledTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_timelock_scheduled_total",
			Help: "total operations scheduled",
		})
		q.metrics.executedTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_timelock_executed_total",
			Help: "total operations executed",
		})
		q.metrics.cancelledTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_timelock_cancelled_total",
			Help: "total operations cancelled",
		})
	}
	return q
}

// Access returns the queue's role table
func (q *Queue) Access() *AccessControl {
	return q.access
}

// Schedule queues a call for execution after the given delay and returns
// its operation ID
func (q *Queue) Schedule(
	caller principal.Address,
	target principal.Address,
	value uint64,
	payload []byte,
	predecessor []byte,
	salt []byte,
	delay time.Duration,
	txn *database.Txn,
) ([]byte, error) {
	if q.paused.Load() {
		return nil, ErrPaused
	}
	if !q.access.Authorized(RoleProposer, caller) {
		return nil, fmt.Errorf("%w: proposer", ErrUnauthorized)
	}
	if delay < MinDelay {
		return nil, fmt.Errorf(
			"%w: %s < %s",
			ErrDelayTooShort,
			delay,
			MinDelay,
		)
	}
	if delay > MaxDelay {
		return nil, fmt.Errorf(
			"%w: %s > %s",
			ErrDelayTooLong,
			delay,
			MaxDelay,
		)
	}
	opId := OperationID(target, value, payload, predecessor, salt)
	schedule := func(txn *database.Txn) error {
		_, err := q.db.GetOperation(opId, txn)
		if err == nil {
			return ErrOperationExists
		}
		if !errors.Is(err, models.ErrOperationNotFound) {
			return err
		}
		readyTime := uint64(q.now().Add(delay).Unix()) // #nosec G115
		if err := q.db.SetOperation(&models.TimelockOperation{
			OpId:        opId,
			Target:      target.Bytes(),
			Value:       value,
			Predecessor: predecessor,
			Salt:        salt,
			Delay:       uint64(delay.Seconds()),
			ReadyTime:   readyTime,
		}, txn); err != nil {
			return err
		}
		if err := q.db.SetOperationPayload(opId, payload, txn); err != nil {
			return err
		}
		q.logger.Info(
			"operation scheduled",
			"component", "timelock",
			"op_id", fmt.Sprintf("%x", opId),
			"target", target.String(),
			"value", value,
			"ready_time", readyTime,
		)
		if q.metrics.scheduledTotal != nil {
			q.metrics.scheduledTotal.Inc()
		}
		if q.eventBus != nil {
			q.eventBus.Publish(
				ScheduleEventType,
				event.NewEvent(
					ScheduleEventType,
					ScheduleEvent{
						OpId:      opId,
						Target:    target,
						Value:     value,
						ReadyTime: readyTime,
					},
				),
			)
		}
		return nil
	}
	if txn != nil {
		if err := schedule(txn); err != nil {
			return nil, err
		}
		return opId, nil
	}
	if err := q.db.Transaction(true).Do(schedule); err != nil {
		return nil, err
	}
	return opId, nil
}

// Execute performs a ready operation's call. The operation is marked executed
// in the same transaction as the call, so a call failure leaves it pending.
func (q *Queue) Execute(
	caller principal.Address,
	opId []byte,
	txn *database.Txn,
) error {
	if q.paused.Load() {
		return ErrPaused
	}
	if !q.access.Authorized(RoleExecutor, caller) {
		return fmt.Errorf("%w: executor", ErrUnauthorized)
	}
	execute := func(txn *database.Txn) error {
		op, err := q.db.GetOperation(opId, txn)
		if err != nil {
			return err
		}
		if op.Executed {
			return ErrAlreadyExecuted
		}
		if op.Cancelled {
			return ErrOperationCancelled
		}
		now := uint64(q.now().Unix()) // #nosec G115
		if now < op.ReadyTime {
			return fmt.Errorf(
				"%w: ready at %d, now %d",
				ErrOperationNotReady,
				op.ReadyTime,
				now,
			)
		}
		if op.RequiredSignatures > 0 {
			sigs, err := q.db.GetOperationSignatures(opId, txn)
			if err != nil {
				return err
			}
			if uint32(len(sigs)) < op.RequiredSignatures { // #nosec G115
				return fmt.Errorf(
					"%w: have %d, need %d",
					ErrInsufficientSignatures,
					len(sigs),
					op.RequiredSignatures,
				)
			}
		}
		target, err := principal.AddressFromBytes(op.Target)
		if err != nil {
			return err
		}
		payload, err := q.db.GetOperationPayload(opId, txn)
		if err != nil {
			return err
		}
		op.Executed = true
		if err := q.db.SetOperation(op, txn); err != nil {
			return err
		}
		if q.invoker != nil {
			if err := q.invoker.Invoke(target, op.Value, payload); err != nil {
				return ExecutionError{Err: err}
			}
		}
		q.logger.Info(
			"operation executed",
			"component", "timelock",
			"op_id", fmt.Sprintf("%x", opId),
			"target", target.String(),
			"value", op.Value,
		)
		if q.metrics.executedTotal != nil {
			q.metrics.executedTotal.Inc()
		}
		if q.eventBus != nil {
			q.eventBus.Publish(
				ExecuteEventType,
				event.NewEvent(
					ExecuteEventType,
					ExecuteEvent{
						OpId:   opId,
						Target: target,
						Value:  op.Value,
					},
				),
			)
		}
		return nil
	}
	if txn != nil {
		return execute(txn)
	}
	return q.db.Transaction(true).Do(execute)
}

// Cancel withdraws a pending operation from the queue
func (q *Queue) Cancel(
	caller principal.Address,
	opId []byte,
	txn *database.Txn,
) error {
	if q.paused.Load() {
		return ErrPaused
	}
	if !q.access.Authorized(RoleCanceller, caller) {
		return fmt.Errorf("%w: canceller", ErrUnauthorized)
	}
	cancel := func(txn *database.Txn) error {
		op, err := q.db.GetOperation(opId, txn)
		if err != nil {
			return err
		}
		if op.Executed {
			return ErrAlreadyExecuted
		}
		if op.Cancelled {
			return ErrOperationCancelled
		}
		op.Cancelled = true
		if err := q.db.SetOperation(op, txn); err != nil {
			return err
		}
		q.logger.Info(
			"operation cancelled",
			"component", "timelock",
			"op_id", fmt.Sprintf("%x", opId),
		)
		if q.metrics.cancelledTotal != nil {
			q.metrics.cancelledTotal.Inc()
		}
		if q.eventBus != nil {
			q.eventBus.Publish(
				CancelEventType,
				event.NewEvent(CancelEventType, CancelEvent{OpId: opId}),
			)
		}
		return nil
	}
	if txn != nil {
		return cancel(txn)
	}
	return q.db.Transaction(true).Do(cancel)
}

// Sign records the caller's approval of a pending operation
func (q *Queue) Sign(
	signer principal.Address,
	opId []byte,
	txn *database.Txn,
) error {
	if q.paused.Load() {
		return ErrPaused
	}
	sign := func(txn *database.Txn) error {
		op, err := q.db.GetOperation(opId, txn)
		if err != nil {
			return err
		}
		if op.Executed {
			return ErrAlreadyExecuted
		}
		if op.Cancelled {
			return ErrOperationCancelled
		}
		sigs, err := q.db.GetOperationSignatures(opId, txn)
		if err != nil {
			return err
		}
		for _, sig := range sigs {
			if bytes.Equal(sig.Signer, signer.Bytes()) {
				return ErrAlreadySigned
			}
		}
		if err := q.db.AddOperationSignature(&models.OperationSignature{
			OpId:   opId,
			Signer: signer.Bytes(),
		}, txn); err != nil {
			return err
		}
		q.logger.Info(
			"operation signed",
			"component", "timelock",
			"op_id", fmt.Sprintf("%x", opId),
			"signer", signer.String(),
		)
		return nil
	}
	if txn != nil {
		return sign(txn)
	}
	return q.db.Transaction(true).Do(sign)
}

// SetRequiredSignatures sets the approval threshold an operation must meet
// before it can execute. Admin only.
func (q *Queue) SetRequiredSignatures(
	caller principal.Address,
	opId []byte,
	required uint32,
) error {
	if !q.access.Authorized(RoleAdmin, caller) {
		return fmt.Errorf("%w: admin", ErrUnauthorized)
	}
	return q.db.Transaction(true).Do(func(txn *database.Txn) error {
		op, err := q.db.GetOperation(opId, txn)
		if err != nil {
			return err
		}
		if op.Executed {
			return ErrAlreadyExecuted
		}
		if op.Cancelled {
			return ErrOperationCancelled
		}
		op.RequiredSignatures = required
		return q.db.SetOperation(op, txn)
	})
}

// Info returns a queued operation
func (q *Queue) Info(opId []byte) (*models.TimelockOperation, error) {
	return q.db.GetOperation(opId, nil)
}

// Status returns an operation's lifecycle state
func (q *Queue) Status(opId []byte) (OperationStatus, error) {
	op, err := q.db.GetOperation(opId, nil)
	if err != nil {
		return "", err
	}
	switch {
	case op.Cancelled:
		return StatusCancelled, nil
	case op.Executed:
		return StatusExecuted, nil
	case uint64(q.now().Unix()) >= op.ReadyTime: // #nosec G115
		return StatusReady, nil
	default:
		return StatusPending, nil
	}
}

// Pause stops scheduling, execution, and cancellation. Admin only.
func (q *Queue) Pause(caller principal.Address) error {
	if !q.access.Authorized(RoleAdmin, caller) {
		return fmt.Errorf("%w: admin", ErrUnauthorized)
	}
	q.paused.Store(true)
	return nil
}

// Unpause resumes queue operations. Admin only.
func (q *Queue) Unpause(caller principal.Address) error {
	if !q.access.Authorized(RoleAdmin, caller) {
		return fmt.Errorf("%w: admin", ErrUnauthorized)
	}
	q.paused.Store(false)
	return nil
}
