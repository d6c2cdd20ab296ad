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

package models

import "errors"

var (
	ErrProposalNotFound     = errors.New("proposal not found")
	ErrProposalVoteNotFound = errors.New("proposal vote not found")
)

// Proposal is a governance proposal. Proposal IDs are sequential and assigned
// at creation. The persisted layout is append-only across module upgrades:
// fields must never be reordered or removed.
type Proposal struct {
	ID          uint   `gorm:"primarykey"`
	Proposer    []byte `gorm:"index;size:28;not null"`
	Deposit     uint64 `gorm:"not null"`
	Description string `gorm:"size:1024"`
	StartTime   uint64 `gorm:"not null"` // unix seconds
	EndTime     uint64 `gorm:"index;not null"`
	// OperationId is empty until a timelock operation is bound; the column
	// stays nullable so a proposal without actions can be re-saved after
	// the empty value scans back as nil
	OperationId        []byte `gorm:"size:32"`
	RequiredSignatures uint32 `gorm:"not null"`
	Executed           bool   `gorm:"not null;default:false"`
	Cancelled          bool   `gorm:"not null;default:false"`
	Vetoed             bool   `gorm:"not null;default:false"`
	DepositReturned    bool   `gorm:"not null;default:false"`
	Passed             bool   `gorm:"not null;default:false"`
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}

// ProposalOption is a named voting option on a proposal. Each proposal has
// between 3 and 10 options; Tally accumulates the weight of votes cast for
// the option.
type ProposalOption struct {
	ID         uint   `gorm:"primarykey"`
	ProposalID uint   `gorm:"uniqueIndex:idx_option_proposal_index,priority:1;not null"`
	Index      uint32 `gorm:"uniqueIndex:idx_option_proposal_index,priority:2;not null"`
	Name       string `gorm:"size:256;not null"`
	Tally      uint64 `gorm:"not null;default:0"`
}

// TableName returns the table name
func (ProposalOption) TableName() string {
	return "proposal_option"
}

// ProposalVote records the latest vote cast by an effective voter on a
// proposal. Re-voting overwrites the row rather than adding a second one.
type ProposalVote struct {
	ID          uint   `gorm:"primarykey"`
	ProposalID  uint   `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:1;not null"`
	Voter       []byte `gorm:"uniqueIndex:idx_vote_proposal_voter,priority:2;size:28;not null"`
	OptionIndex uint32 `gorm:"not null"`
	Weight      uint64 `gorm:"not null"`
}

// TableName returns the table name
func (ProposalVote) TableName() string {
	return "proposal_vote"
}

// ProposalSigner records an endorsement of a proposal. The number of
// signers per proposal is capped by the proposal store.
type ProposalSigner struct {
	ID         uint   `gorm:"primarykey"`
	ProposalID uint   `gorm:"uniqueIndex:idx_signer_proposal_signer,priority:1;not null"`
	Signer     []byte `gorm:"uniqueIndex:idx_signer_proposal_signer,priority:2;size:28;not null"`
}

// TableName returns the table name
func (ProposalSigner) TableName() string {
	return "proposal_signer"
}

// ProposalAction is one target call of a proposal. The calldata payload is
// stored in the blob store keyed by proposal ID and action index.
type ProposalAction struct {
	ID         uint   `gorm:"primarykey"`
	ProposalID uint   `gorm:"uniqueIndex:idx_action_proposal_index,priority:1;not null"`
	Index      uint32 `gorm:"uniqueIndex:idx_action_proposal_index,priority:2;not null"`
	Target     []byte `gorm:"size:28;not null"`
	Value      uint64 `gorm:"not null"`
}

// TableName returns the table name
func (ProposalAction) TableName() string {
	return "proposal_action"
}
