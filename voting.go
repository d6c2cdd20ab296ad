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
	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/database/models"
	"github.com/blinklabs-io/wombat/principal"
)

// CastVote records a vote on a proposal. The vote is attributed to the
// signer's delegate when a delegation is active, weighted by that effective
// voter's NFT holdings.
func (g *Governor) CastVote(
	caller principal.Address,
	proposalId uint,
	optionIndex uint32,
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
				return g.domain.VoteHash(
					uint64(proposalId),
					optionIndex,
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
		voter, err := g.delegations.Delegate(signer, txn)
		if err != nil {
			return err
		}
		weight := g.power.Power(voter)
		if weight == 0 {
			return ErrNotNFTHolder
		}
		return g.proposals.Vote(voter, proposalId, optionIndex, weight, txn)
	})
}

// CancelVote withdraws the caller's vote (or their delegate's, when a
// delegation redirects it) while voting is still open
func (g *Governor) CancelVote(
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
	return g.db.Transaction(true).Do(func(txn *database.Txn) error {
		voter, err := g.delegations.Delegate(caller, txn)
		if err != nil {
			return err
		}
		return g.proposals.CancelVote(voter, proposalId, txn)
	})
}

// GetVote returns the vote recorded for an account on a proposal
func (g *Governor) GetVote(
	account principal.Address,
	proposalId uint,
) (*models.ProposalVote, error) {
	return g.proposals.GetVote(account, proposalId)
}

// VotingPower returns an account's total voting weight
func (g *Governor) VotingPower(account principal.Address) uint64 {
	return g.power.Power(account)
}

// AvailablePower returns an account's voting weight net of any active lock
func (g *Governor) AvailablePower(
	account principal.Address,
) (uint64, error) {
	return g.power.Available(account, nil)
}

// LockPower locks part of the caller's voting power for the lock duration
func (g *Governor) LockPower(
	caller principal.Address,
	amount uint64,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if caller.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	return g.power.Lock(caller, amount)
}

// UnlockPower releases the caller's power lock once it matures
func (g *Governor) UnlockPower(caller principal.Address) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if caller.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	return g.power.Unlock(caller)
}

// PowerLockInfo returns an account's active power lock
func (g *Governor) PowerLockInfo(
	account principal.Address,
) (*models.PowerLock, error) {
	return g.power.LockInfo(account)
}
