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

package database

import (
	"fmt"

	"github.com/blinklabs-io/wombat/database/models"
)

// GetProposal returns a proposal by ID
func (d *Database) GetProposal(
	proposalId uint,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	proposal, err := d.metadata.GetProposal(proposalId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	if proposal == nil {
		return nil, models.ErrProposalNotFound
	}
	return proposal, nil
}

// SetProposal creates or updates a proposal
func (d *Database) SetProposal(
	proposal *models.Proposal,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.SetProposal(proposal, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set proposal: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// ProposalCount returns the total number of proposals ever created
func (d *Database) ProposalCount(txn *Txn) (int64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	count, err := d.metadata.ProposalCount(txn.Metadata())
	if err != nil {
		return 0, fmt.Errorf("failed to count proposals: %w", err)
	}
	return count, nil
}

// GetProposalOptions returns a proposal's options ordered by index
func (d *Database) GetProposalOptions(
	proposalId uint,
	txn *Txn,
) ([]models.ProposalOption, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	options, err := d.metadata.GetProposalOptions(proposalId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal options: %w", err)
	}
	return options, nil
}

// SetProposalOption creates or updates a proposal option
func (d *Database) SetProposalOption(
	option *models.ProposalOption,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.SetProposalOption(option, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set proposal option: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// GetProposalVote returns a voter's recorded vote on a proposal
func (d *Database) GetProposalVote(
	proposalId uint,
	voter []byte,
	txn *Txn,
) (*models.ProposalVote, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	vote, err := d.metadata.GetProposalVote(proposalId, voter, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal vote: %w", err)
	}
	if vote == nil {
		return nil, models.ErrProposalVoteNotFound
	}
	return vote, nil
}

// SetProposalVote creates or overwrites a voter's vote
func (d *Database) SetProposalVote(
	vote *models.ProposalVote,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.SetProposalVote(vote, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set proposal vote: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// DeleteProposalVote removes a voter's vote
func (d *Database) DeleteProposalVote(
	proposalId uint,
	voter []byte,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.DeleteProposalVote(proposalId, voter, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete proposal vote: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// GetProposalSigners returns the signers recorded against a proposal
func (d *Database) GetProposalSigners(
	proposalId uint,
	txn *Txn,
) ([]models.ProposalSigner, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	signers, err := d.metadata.GetProposalSigners(proposalId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal signers: %w", err)
	}
	return signers, nil
}

// AddProposalSigner records a signer against a proposal
func (d *Database) AddProposalSigner(
	signer *models.ProposalSigner,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.AddProposalSigner(signer, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to add proposal signer: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// GetProposalActions returns a proposal's actions ordered by index
func (d *Database) GetProposalActions(
	proposalId uint,
	txn *Txn,
) ([]models.ProposalAction, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	actions, err := d.metadata.GetProposalActions(proposalId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal actions: %w", err)
	}
	return actions, nil
}

// SetProposalAction creates or updates a proposal action
func (d *Database) SetProposalAction(
	action *models.ProposalAction,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.SetProposalAction(action, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set proposal action: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}
