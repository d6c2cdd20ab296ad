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
	"errors"
	"fmt"

	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/proposal"
	"github.com/blinklabs-io/wombat/timelock"
)

// CreateProposalParams describes a new proposal. Targets, Values, and
// Payloads are parallel arrays of the actions carried out on passage.
type CreateProposalParams struct {
	Deposit            uint64
	Description        string
	Options            []string
	Targets            []principal.Address
	Values             []uint64
	Payloads           [][]byte
	RequiredSignatures uint32
}

// CreateProposal opens a new proposal for voting. The deposit is escrowed on
// the governor account; proposals with actions get a timelock operation
// queued immediately so it matures alongside the voting window. All of a
// proposal's actions are batched into a single operation targeting the
// governor itself, so the operation id is derived from the proposal id (as
// both payload and salt) and the summed action values rather than from any
// single action tuple. Scheduling, cancellation, and execution then stay
// atomic per proposal.
func (g *Governor) CreateProposal(
	caller principal.Address,
	params CreateProposalParams,
) (uint, error) {
	if err := g.enter(); err != nil {
		return 0, err
	}
	defer g.exit()
	if caller.IsZero() {
		return 0, principal.ErrInvalidPrincipal
	}
	if g.power.Power(caller) == 0 {
		return 0, ErrNotNFTHolder
	}
	network := g.Network()
	if params.Deposit < network.MinDeposit {
		return 0, fmt.Errorf(
			"%w: got %d, minimum %d",
			ErrDepositTooLow,
			params.Deposit,
			network.MinDeposit,
		)
	}
	if err := g.accountLedger.Transfer(
		caller, g.addr, params.Deposit,
	); err != nil {
		return 0, err
	}
	var proposalId uint
	err := g.db.Transaction(true).Do(func(txn *database.Txn) error {
		prop, err := g.proposals.Create(proposal.CreateParams{
			Proposer:           caller,
			Deposit:            params.Deposit,
			Description:        params.Description,
			Options:            params.Options,
			Targets:            params.Targets,
			Values:             params.Values,
			Payloads:           params.Payloads,
			RequiredSignatures: params.RequiredSignatures,
			VotingPeriod:       network.VotingPeriod,
		}, txn)
		if err != nil {
			return err
		}
		proposalId = prop.ID
		if len(params.Targets) == 0 {
			return nil
		}
		var totalValue uint64
		for _, value := range params.Values {
			totalValue += value
		}
		opId, err := g.queue.Schedule(
			g.addr,
			g.addr,
			totalValue,
			proposalOperationPayload(prop.ID),
			nil,
			proposalOperationPayload(prop.ID),
			network.TimelockDelay,
			txn,
		)
		if err != nil {
			return err
		}
		return g.proposals.BindOperation(prop.ID, opId, txn)
	})
	if err != nil {
		// back the escrowed deposit out again
		if refundErr := g.accountLedger.Transfer(
			g.addr, caller, params.Deposit,
		); refundErr != nil {
			return 0, errors.Join(err, refundErr)
		}
		return 0, err
	}
	return proposalId, nil
}

// ExecuteProposal resolves a proposal after its voting window closes. When
// quorum is met the deposit returns to the proposer and any queued actions
// execute through the timelock; otherwise the deposit forfeits to the
// treasury and the queued operation is cancelled.
func (g *Governor) ExecuteProposal(
	caller principal.Address,
	proposalId uint,
) (*proposal.ExecuteResult, error) {
	if err := g.enter(); err != nil {
		return nil, err
	}
	defer g.exit()
	if caller.IsZero() {
		return nil, principal.ErrInvalidPrincipal
	}
	var result *proposal.ExecuteResult
	err := g.db.Transaction(true).Do(func(txn *database.Txn) error {
		var err error
		result, err = g.proposals.Execute(proposalId, g.quorumWeight(), txn)
		if err != nil {
			return err
		}
		prop := result.Proposal
		proposer, err := principal.AddressFromBytes(prop.Proposer)
		if err != nil {
			return err
		}
		if result.Passed {
			prop.DepositReturned = true
			if err := g.db.SetProposal(prop, txn); err != nil {
				return err
			}
			if len(prop.OperationId) > 0 {
				if err := g.queue.Execute(
					g.addr, prop.OperationId, txn,
				); err != nil {
					return err
				}
			}
			return g.accountLedger.Transfer(g.addr, proposer, prop.Deposit)
		}
		// quorum missed: forfeit the deposit and withdraw the operation
		if len(prop.OperationId) > 0 {
			if err := g.queue.Cancel(
				g.addr, prop.OperationId, txn,
			); err != nil {
				return err
			}
		}
		return g.accountLedger.Transfer(g.addr, g.Treasury(), prop.Deposit)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelProposal lets the proposer withdraw an unresolved proposal before
// its voting window closes and reclaim the deposit
func (g *Governor) CancelProposal(
	caller principal.Address,
	proposalId uint,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if caller.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	return g.cancelProposal(caller, proposalId, false)
}

// VetoProposal lets the owner strike down an unresolved proposal before its
// voting window closes. The deposit returns to the proposer; a veto reflects
// on the proposal, not on the account that funded it.
func (g *Governor) VetoProposal(
	caller principal.Address,
	proposalId uint,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	return g.cancelProposal(caller, proposalId, true)
}

func (g *Governor) cancelProposal(
	caller principal.Address,
	proposalId uint,
	veto bool,
) error {
	return g.db.Transaction(true).Do(func(txn *database.Txn) error {
		prop, err := g.proposals.Cancel(caller, proposalId, veto, txn)
		if err != nil {
			return err
		}
		if len(prop.OperationId) > 0 {
			err := g.queue.Cancel(g.addr, prop.OperationId, txn)
			if err != nil && !errors.Is(err, timelock.ErrOperationCancelled) {
				return err
			}
		}
		proposer, err := principal.AddressFromBytes(prop.Proposer)
		if err != nil {
			return err
		}
		return g.accountLedger.Transfer(g.addr, proposer, prop.Deposit)
	})
}

// SignProposal records an endorsement signature against a proposal, either
// from the direct caller or from the verified signer of the proof
func (g *Governor) SignProposal(
	caller principal.Address,
	proposalId uint,
	proof *principal.SignatureProof,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	return g.db.Transaction(true).Do(func(txn *database.Txn) error {
		signer, err := g.resolveSigner(
			caller,
			proof,
			func(nonce uint64) [32]byte {
				return g.domain.ProposalSignHash(
					uint64(proposalId),
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
		return g.proposals.Sign(signer, proposalId, txn)
	})
}

// ProposalInfo returns a proposal with its options, signers, and status
func (g *Governor) ProposalInfo(proposalId uint) (*proposal.Info, error) {
	return g.proposals.GetInfo(proposalId)
}

func proofExpiry(proof *principal.SignatureProof) uint64 {
	if proof == nil {
		return 0
	}
	return proof.Expiry
}
