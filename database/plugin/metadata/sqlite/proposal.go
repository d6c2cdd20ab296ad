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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/wombat/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetProposal retrieves a proposal by ID. Returns nil if not found.
func (d *MetadataStoreSqlite) GetProposal(
	proposalId uint,
	txn *gorm.DB,
) (*models.Proposal, error) {
	var proposal models.Proposal
	db := d.resolveDB(txn)
	if result := db.Where("id = ?", proposalId).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// SetProposal creates or updates a proposal
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Save(proposal); result.Error != nil {
		return result.Error
	}
	return nil
}

// ProposalCount returns the total number of proposals ever created
func (d *MetadataStoreSqlite) ProposalCount(txn *gorm.DB) (int64, error) {
	var count int64
	db := d.resolveDB(txn)
	if result := db.Model(&models.Proposal{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// GetProposalOptions retrieves a proposal's options ordered by index
func (d *MetadataStoreSqlite) GetProposalOptions(
	proposalId uint,
	txn *gorm.DB,
) ([]models.ProposalOption, error) {
	var options []models.ProposalOption
	db := d.resolveDB(txn)
	if result := db.Where("proposal_id = ?", proposalId).
		Order("`index`").
		Find(&options); result.Error != nil {
		return nil, result.Error
	}
	return options, nil
}

// SetProposalOption creates or updates a proposal option, keyed by proposal
// ID and option index
func (d *MetadataStoreSqlite) SetProposalOption(
	option *models.ProposalOption,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"tally",
		}),
	}
	if result := db.Clauses(onConflict).Create(option); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetProposalVote retrieves the vote cast by a voter on a proposal. Returns
// nil if the voter has no recorded vote.
func (d *MetadataStoreSqlite) GetProposalVote(
	proposalId uint,
	voter []byte,
	txn *gorm.DB,
) (*models.ProposalVote, error) {
	var vote models.ProposalVote
	db := d.resolveDB(txn)
	if result := db.Where(
		"proposal_id = ? AND voter = ?",
		proposalId,
		voter,
	).First(&vote); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &vote, nil
}

// SetProposalVote creates or overwrites a voter's vote on a proposal
func (d *MetadataStoreSqlite) SetProposalVote(
	vote *models.ProposalVote,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "voter"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"option_index",
			"weight",
		}),
	}
	if result := db.Clauses(onConflict).Create(vote); result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteProposalVote removes a voter's vote from a proposal
func (d *MetadataStoreSqlite) DeleteProposalVote(
	proposalId uint,
	voter []byte,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Where(
		"proposal_id = ? AND voter = ?",
		proposalId,
		voter,
	).Delete(&models.ProposalVote{}); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetProposalSigners retrieves the signers recorded against a proposal
func (d *MetadataStoreSqlite) GetProposalSigners(
	proposalId uint,
	txn *gorm.DB,
) ([]models.ProposalSigner, error) {
	var signers []models.ProposalSigner
	db := d.resolveDB(txn)
	if result := db.Where("proposal_id = ?", proposalId).
		Find(&signers); result.Error != nil {
		return nil, result.Error
	}
	return signers, nil
}

// AddProposalSigner records a signer against a proposal
func (d *MetadataStoreSqlite) AddProposalSigner(
	signer *models.ProposalSigner,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Create(signer); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetProposalActions retrieves a proposal's actions ordered by index
func (d *MetadataStoreSqlite) GetProposalActions(
	proposalId uint,
	txn *gorm.DB,
) ([]models.ProposalAction, error) {
	var actions []models.ProposalAction
	db := d.resolveDB(txn)
	if result := db.Where("proposal_id = ?", proposalId).
		Order("`index`").
		Find(&actions); result.Error != nil {
		return nil, result.Error
	}
	return actions, nil
}

// SetProposalAction creates or updates a proposal action
func (d *MetadataStoreSqlite) SetProposalAction(
	action *models.ProposalAction,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "proposal_id"},
			{Name: "index"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"target",
			"value",
		}),
	}
	if result := db.Clauses(onConflict).Create(action); result.Error != nil {
		return result.Error
	}
	return nil
}
