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

package wombat

import (
	"time"

	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/database/models"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/timelock"
)

// ScheduleOperation queues an external call for execution after the given
// delay. The caller must hold the timelock proposer role.
func (g *Governor) ScheduleOperation(
	caller principal.Address,
	target principal.Address,
	value uint64,
	payload []byte,
	predecessor []byte,
	salt []byte,
	delay time.Duration,
) ([]byte, error) {
	if err := g.enter(); err != nil {
		return nil, err
	}
	defer g.exit()
	if caller.IsZero() {
		return nil, principal.ErrInvalidPrincipal
	}
	return g.queue.Schedule(
		caller, target, value, payload, predecessor, salt, delay, nil,
	)
}

// ExecuteOperation performs a queued call once its delay has elapsed and its
// signature threshold, if any, is met
func (g *Governor) ExecuteOperation(
	caller principal.Address,
	opId []byte,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if caller.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	return g.queue.Execute(caller, opId, nil)
}

// CancelOperation withdraws a queued call. The caller must hold the
// canceller role.
func (g *Governor) CancelOperation(
	caller principal.Address,
	opId []byte,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if caller.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	return g.queue.Cancel(caller, opId, nil)
}

// SignOperation records an approval against a queued operation, either from
// the direct caller or the verified signer of the proof
func (g *Governor) SignOperation(
	caller principal.Address,
	opId []byte,
	proof *principal.SignatureProof,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	// One transaction for the nonce bump and the signature, so a rejected
	// sign does not consume the signer's nonce
	return g.db.Transaction(true).Do(func(txn *database.Txn) error {
		signer, err := g.resolveSigner(
			caller,
			proof,
			func(nonce uint64) [32]byte {
				return g.domain.OperationSignHash(
					opId,
					nonce,
					proofExpiry(proof),
				)
			},
			true,
			txn,
		)
		if err != nil {
			return err
		}
		return g.queue.Sign(signer, opId, txn)
	})
}

// SetRequiredSignatures sets the approval threshold a queued operation must
// meet before execution. Owner only.
func (g *Governor) SetRequiredSignatures(
	caller principal.Address,
	opId []byte,
	required uint32,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	return g.queue.SetRequiredSignatures(g.addr, opId, required)
}

// OperationInfo returns a queued operation
func (g *Governor) OperationInfo(
	opId []byte,
) (*models.TimelockOperation, error) {
	return g.queue.Info(opId)
}

// OperationStatus returns a queued operation's lifecycle state
func (g *Governor) OperationStatus(
	opId []byte,
) (timelock.OperationStatus, error) {
	return g.queue.Status(opId)
}
