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

package metadata

import (
	"log/slog"

	"github.com/blinklabs-io/wombat/database/models"
	"github.com/blinklabs-io/wombat/database/plugin/metadata/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// MetadataStore is the persistence interface for governance state. Query and
// mutation methods accept an optional *gorm.DB transaction handle; a nil
// handle runs the operation against the base connection.
type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	Transaction() *gorm.DB

	// Proposals
	GetProposal(uint, *gorm.DB) (*models.Proposal, error)
	SetProposal(*models.Proposal, *gorm.DB) error
	ProposalCount(*gorm.DB) (int64, error)
	GetProposalOptions(uint, *gorm.DB) ([]models.ProposalOption, error)
	SetProposalOption(*models.ProposalOption, *gorm.DB) error
	GetProposalVote(uint, []byte, *gorm.DB) (*models.ProposalVote, error)
	SetProposalVote(*models.ProposalVote, *gorm.DB) error
	DeleteProposalVote(uint, []byte, *gorm.DB) error
	GetProposalSigners(uint, *gorm.DB) ([]models.ProposalSigner, error)
	AddProposalSigner(*models.ProposalSigner, *gorm.DB) error
	GetProposalActions(uint, *gorm.DB) ([]models.ProposalAction, error)
	SetProposalAction(*models.ProposalAction, *gorm.DB) error

	// Delegations
	GetDelegation([]byte, *gorm.DB) (*models.Delegation, error)
	SetDelegation(*models.Delegation, *gorm.DB) error
	DeleteDelegation([]byte, *gorm.DB) error

	// Power locks
	GetPowerLock([]byte, *gorm.DB) (*models.PowerLock, error)
	SetPowerLock(*models.PowerLock, *gorm.DB) error
	DeletePowerLock([]byte, *gorm.DB) error

	// Timelock operations
	GetOperation([]byte, *gorm.DB) (*models.TimelockOperation, error)
	SetOperation(*models.TimelockOperation, *gorm.DB) error
	GetOperationSignatures([]byte, *gorm.DB) ([]models.OperationSignature, error)
	AddOperationSignature(*models.OperationSignature, *gorm.DB) error

	// Account nonces
	GetNonce([]byte, *gorm.DB) (uint64, error)
	SetNonce([]byte, uint64, *gorm.DB) error
}

// New creates a new sqlite-backed metadata store. Uses an in-memory database
// when dataDir is empty.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(dataDir, logger, promRegistry)
}
