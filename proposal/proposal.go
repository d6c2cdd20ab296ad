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

// Package proposal manages the proposal lifecycle: creation, voting,
// tallying, and terminal resolution.
package proposal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/database/models"
	"github.com/blinklabs-io/wombat/event"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MinOptions and MaxOptions bound the number of voting options
	MinOptions = 3
	MaxOptions = 10
	// MaxProposals caps the number of proposals ever created
	MaxProposals = 100
	// MaxSigners caps endorsement signatures per proposal
	MaxSigners = 10
)

const (
	CreatedEventType       event.EventType = "proposal.created"
	VoteCastEventType      event.EventType = "proposal.vote_cast"
	VoteCancelledEventType event.EventType = "proposal.vote_cancelled"
	ExecutedEventType      event.EventType = "proposal.executed"
	CancelledEventType     event.EventType = "proposal.cancelled"
)

// CreatedEvent is emitted when a proposal is created
type CreatedEvent struct {
	ProposalId uint
	Proposer   principal.Address
	EndTime    uint64
}

// VoteCastEvent is emitted when a vote is cast or changed
type VoteCastEvent struct {
	ProposalId  uint
	Voter       principal.Address
	OptionIndex uint32
	Weight      uint64
}

// VoteCancelledEvent is emitted when a vote is withdrawn
type VoteCancelledEvent struct {
	ProposalId uint
	Voter      principal.Address
}

// ExecutedEvent is emitted when a proposal is resolved after voting ends
type ExecutedEvent struct {
	ProposalId  uint
	TotalWeight uint64
	Passed      bool
}

// CancelledEvent is emitted when a proposal is cancelled or vetoed
type CancelledEvent struct {
	ProposalId uint
	Vetoed     bool
}

var (
	ErrProposalCapExceeded = errors.New("proposal cap reached")
	ErrInvalidOptionCount  = errors.New("invalid option count")
	ErrArrayLengthMismatch = errors.New("action array lengths differ")
	ErrTooManySigners      = errors.New("required signatures above cap")
	ErrTooFewSigners       = errors.New("required signatures below minimum")
	ErrInvalidOption       = errors.New("invalid option index")
	ErrNoVotingPower       = errors.New("voter has no voting power")
	ErrVotingClosed        = errors.New("voting window closed")
	ErrVotingNotEnded      = errors.New("voting window still open")
	ErrAlreadyExecuted     = errors.New("proposal already executed")
	ErrProposalCancelled   = errors.New("proposal cancelled")
	ErrNotProposer         = errors.New("caller is not the proposer")
	ErrAlreadySigned       = errors.New("proposal already signed by account")
	ErrMaxSignersReached   = errors.New("proposal signer cap reached")
	ErrVoteNotFound        = errors.New("no vote recorded for account")
)

// Status describes where a proposal is in its lifecycle
type Status string

const (
	// StatusActive means the voting window is open
	StatusActive Status = "active"
	// StatusClosed means voting has ended but the proposal is unresolved
	StatusClosed Status = "closed"
	// StatusExecuted means the proposal was resolved and met quorum
	StatusExecuted Status = "executed"
	// StatusDefeated means the proposal was resolved but missed quorum
	StatusDefeated  Status = "defeated"
	StatusCancelled Status = "cancelled"
	StatusVetoed    Status = "vetoed"
)

// CreateParams describes a new proposal. Targets, Values, and Payloads are
// parallel arrays describing the actions to queue on passage.
type CreateParams struct {
	Proposer           principal.Address
	Deposit            uint64
	Description        string
	Options            []string
	Targets            []principal.Address
	Values             []uint64
	Payloads           [][]byte
	RequiredSignatures uint32
	VotingPeriod       time.Duration
}

// ExecuteResult summarizes a resolved proposal
type ExecuteResult struct {
	Proposal    *models.Proposal
	TotalWeight uint64
	Passed      bool
}

// Info aggregates a proposal with its options and recorded signers
type Info struct {
	Proposal *models.Proposal
	Options  []models.ProposalOption
	Signers  []models.ProposalSigner
	Status   Status
}

type StoreConfig struct {
	Logger       *slog.Logger
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	DB           *database.Database
	Now          func() time.Time
}

// Store owns proposal state transitions and tally bookkeeping
type Store struct {
	logger   *slog.Logger
	eventBus *event.EventBus
	db       *database.Database
	now      func() time.Time
	metrics  struct {
		createdTotal  prometheus.Counter
		votesTotal    prometheus.Counter
		executedTotal prometheus.Counter
	}
}

func NewStore(cfg StoreConfig) *Store {
	s := &Store{
		logger:   cfg.Logger,
		eventBus: cfg.EventBus,
		db:       cfg.DB,
		now:      cfg.Now,
	}
	if s.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.now == nil {
		s.now = time.Now
	}
	if cfg.PromRegistry != nil {
		promFactory := promauto.With(cfg.PromRegistry)
		s.metrics.createdTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_proposals_created_total",
			Help: "total proposals created",
		})
		s.metrics.votesTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_proposal_votes_total",
			Help: "total votes cast",
		})
		s.metrics.executedTotal = promFactory.NewCounter(prometheus.CounterOpts{
			Name: "wombat_proposals_executed_total",
			Help: "total proposals resolved",
		})
	}
	return s
}

// Create inserts a new proposal with its options and actions and opens its
// voting window immediately
func (s *Store) Create(
	params CreateParams,
	txn *database.Txn,
) (*models.Proposal, error) {
	if len(params.Options) < MinOptions || len(params.Options) > MaxOptions {
		return nil, fmt.Errorf(
			"%w: got %d, want %d-%d",
			ErrInvalidOptionCount,
			len(params.Options),
			MinOptions,
			MaxOptions,
		)
	}
	if len(params.Targets) != len(params.Values) ||
		len(params.Targets) != len(params.Payloads) {
		return nil, ErrArrayLengthMismatch
	}
	if params.RequiredSignatures == 0 {
		return nil, ErrTooFewSigners
	}
	if params.RequiredSignatures > MaxSigners {
		return nil, fmt.Errorf(
			"%w: got %d, cap %d",
			ErrTooManySigners,
			params.RequiredSignatures,
			MaxSigners,
		)
	}
	count, err := s.db.ProposalCount(txn)
	if err != nil {
		return nil, err
	}
	if count >= MaxProposals {
		return nil, fmt.Errorf(
			"%w: cap %d",
			ErrProposalCapExceeded,
			MaxProposals,
		)
	}
	now := uint64(s.now().Unix()) // #nosec G115
	prop := &models.Proposal{
		Proposer:           params.Proposer.Bytes(),
		OperationId:        []byte{},
		Deposit:            params.Deposit,
		Description:        params.Description,
		StartTime:          now,
		EndTime:            now + uint64(params.VotingPeriod.Seconds()), // #nosec G115
		RequiredSignatures: params.RequiredSignatures,
	}
	if err := s.db.SetProposal(prop, txn); err != nil {
		return nil, err
	}
	for i, name := range params.Options {
		if err := s.db.SetProposalOption(&models.ProposalOption{
			ProposalID: prop.ID,
			Index:      uint32(i), // #nosec G115
			Name:       name,
		}, txn); err != nil {
			return nil, err
		}
	}
	for i, target := range params.Targets {
		idx := uint32(i) // #nosec G115
		if err := s.db.SetProposalAction(&models.ProposalAction{
			ProposalID: prop.ID,
			Index:      idx,
			Target:     target.Bytes(),
			Value:      params.Values[i],
		}, txn); err != nil {
			return nil, err
		}
		if err := s.db.SetActionPayload(
			prop.ID, idx, params.Payloads[i], txn,
		); err != nil {
			return nil, err
		}
	}
	if s.metrics.createdTotal != nil {
		s.metrics.createdTotal.Inc()
	}
	s.logger.Info(
		"proposal created",
		"component", "proposal",
		"proposal_id", prop.ID,
		"proposer", params.Proposer.String(),
		"end_time", prop.EndTime,
	)
	if s.eventBus != nil {
		s.eventBus.Publish(
			CreatedEventType,
			event.NewEvent(
				CreatedEventType,
				CreatedEvent{
					ProposalId: prop.ID,
					Proposer:   params.Proposer,
					EndTime:    prop.EndTime,
				},
			),
		)
	}
	return prop, nil
}

// BindOperation records the timelock operation ID queued for a proposal
func (s *Store) BindOperation(
	proposalId uint,
	opId []byte,
	txn *database.Txn,
) error {
	prop, err := s.db.GetProposal(proposalId, txn)
	if err != nil {
		return err
	}
	prop.OperationId = opId
	return s.db.SetProposal(prop, txn)
}

// Vote records or changes a vote. Changing a vote first backs the prior
// weight out of the previously chosen option's tally.
func (s *Store) Vote(
	voter principal.Address,
	proposalId uint,
	optionIndex uint32,
	weight uint64,
	txn *database.Txn,
) error {
	if weight == 0 {
		return ErrNoVotingPower
	}
	prop, err := s.activeProposal(proposalId, txn)
	if err != nil {
		return err
	}
	options, err := s.db.GetProposalOptions(proposalId, txn)
	if err != nil {
		return err
	}
	if optionIndex >= uint32(len(options)) { // #nosec G115
		return fmt.Errorf(
			"%w: index %d, options %d",
			ErrInvalidOption,
			optionIndex,
			len(options),
		)
	}
	prior, err := s.db.GetProposalVote(proposalId, voter.Bytes(), txn)
	if err != nil && !errors.Is(err, models.ErrProposalVoteNotFound) {
		return err
	}
	if prior != nil {
		priorOption := options[prior.OptionIndex]
		priorOption.Tally -= prior.Weight
		if err := s.db.SetProposalOption(&priorOption, txn); err != nil {
			return err
		}
		if prior.OptionIndex == optionIndex {
			options[optionIndex] = priorOption
		}
	}
	chosen := options[optionIndex]
	chosen.Tally += weight
	if err := s.db.SetProposalOption(&chosen, txn); err != nil {
		return err
	}
	if err := s.db.SetProposalVote(&models.ProposalVote{
		ProposalID:  proposalId,
		Voter:       voter.Bytes(),
		OptionIndex: optionIndex,
		Weight:      weight,
	}, txn); err != nil {
		return err
	}
	if s.metrics.votesTotal != nil {
		s.metrics.votesTotal.Inc()
	}
	s.logger.Info(
		"vote cast",
		"component", "proposal",
		"proposal_id", prop.ID,
		"voter", voter.String(),
		"option", optionIndex,
		"weight", weight,
	)
	if s.eventBus != nil {
		s.eventBus.Publish(
			VoteCastEventType,
			event.NewEvent(
				VoteCastEventType,
				VoteCastEvent{
					ProposalId:  prop.ID,
					Voter:       voter,
					OptionIndex: optionIndex,
					Weight:      weight,
				},
			),
		)
	}
	return nil
}

// CancelVote withdraws a vote while the voting window is still open and
// backs its weight out of the option it was cast for
func (s *Store) CancelVote(
	voter principal.Address,
	proposalId uint,
	txn *database.Txn,
) error {
	prop, err := s.activeProposal(proposalId, txn)
	if err != nil {
		return err
	}
	vote, err := s.db.GetProposalVote(proposalId, voter.Bytes(), txn)
	if err != nil {
		if errors.Is(err, models.ErrProposalVoteNotFound) {
			return ErrVoteNotFound
		}
		return err
	}
	options, err := s.db.GetProposalOptions(proposalId, txn)
	if err != nil {
		return err
	}
	option := options[vote.OptionIndex]
	option.Tally -= vote.Weight
	if err := s.db.SetProposalOption(&option, txn); err != nil {
		return err
	}
	if err := s.db.DeleteProposalVote(proposalId, voter.Bytes(), txn); err != nil {
		return err
	}
	s.logger.Info(
		"vote cancelled",
		"component", "proposal",
		"proposal_id", prop.ID,
		"voter", voter.String(),
	)
	if s.eventBus != nil {
		s.eventBus.Publish(
			VoteCancelledEventType,
			event.NewEvent(
				VoteCancelledEventType,
				VoteCancelledEvent{ProposalId: prop.ID, Voter: voter},
			),
		)
	}
	return nil
}

// Execute resolves a proposal after its voting window closes. The proposal
// passes when the summed tallies meet quorumWeight. Resolution is recorded
// either way so a proposal settles exactly once.
func (s *Store) Execute(
	proposalId uint,
	quorumWeight uint64,
	txn *database.Txn,
) (*ExecuteResult, error) {
	prop, err := s.db.GetProposal(proposalId, txn)
	if err != nil {
		return nil, err
	}
	if prop.Cancelled {
		return nil, ErrProposalCancelled
	}
	if prop.Executed {
		return nil, ErrAlreadyExecuted
	}
	now := uint64(s.now().Unix()) // #nosec G115
	if now <= prop.EndTime {
		return nil, fmt.Errorf(
			"%w: ends at %d, now %d",
			ErrVotingNotEnded,
			prop.EndTime,
			now,
		)
	}
	options, err := s.db.GetProposalOptions(proposalId, txn)
	if err != nil {
		return nil, err
	}
	var totalWeight uint64
	for _, option := range options {
		totalWeight += option.Tally
	}
	passed := totalWeight >= quorumWeight
	prop.Executed = true
	prop.Passed = passed
	if err := s.db.SetProposal(prop, txn); err != nil {
		return nil, err
	}
	if s.metrics.executedTotal != nil {
		s.metrics.executedTotal.Inc()
	}
	s.logger.Info(
		"proposal resolved",
		"component", "proposal",
		"proposal_id", prop.ID,
		"total_weight", totalWeight,
		"quorum_weight", quorumWeight,
		"passed", passed,
	)
	if s.eventBus != nil {
		s.eventBus.Publish(
			ExecutedEventType,
			event.NewEvent(
				ExecutedEventType,
				ExecutedEvent{
					ProposalId:  prop.ID,
					TotalWeight: totalWeight,
					Passed:      passed,
				},
			),
		)
	}
	return &ExecuteResult{
		Proposal:    prop,
		TotalWeight: totalWeight,
		Passed:      passed,
	}, nil
}

// Cancel withdraws an unresolved proposal while its voting window is still
// open. Only the proposer may cancel; veto marks an owner-initiated
// cancellation.
func (s *Store) Cancel(
	caller principal.Address,
	proposalId uint,
	veto bool,
	txn *database.Txn,
) (*models.Proposal, error) {
	prop, err := s.db.GetProposal(proposalId, txn)
	if err != nil {
		return nil, err
	}
	if prop.Executed {
		return nil, ErrAlreadyExecuted
	}
	if prop.Cancelled {
		return nil, ErrProposalCancelled
	}
	// Once voting ends the proposal can only be resolved through Execute;
	// allowing a late cancel would let a proposer dodge a quorum forfeit
	if uint64(s.now().Unix()) > prop.EndTime { // #nosec G115
		return nil, ErrVotingClosed
	}
	if !veto {
		proposer, err := principal.AddressFromBytes(prop.Proposer)
		if err != nil {
			return nil, err
		}
		if caller != proposer {
			return nil, ErrNotProposer
		}
	}
	prop.Cancelled = true
	prop.Vetoed = veto
	if err := s.db.SetProposal(prop, txn); err != nil {
		return nil, err
	}
	s.logger.Info(
		"proposal cancelled",
		"component", "proposal",
		"proposal_id", prop.ID,
		"vetoed", veto,
	)
	if s.eventBus != nil {
		s.eventBus.Publish(
			CancelledEventType,
			event.NewEvent(
				CancelledEventType,
				CancelledEvent{ProposalId: prop.ID, Vetoed: veto},
			),
		)
	}
	return prop, nil
}

// Sign records an endorsement signature against an unresolved proposal
func (s *Store) Sign(
	signer principal.Address,
	proposalId uint,
	txn *database.Txn,
) error {
	prop, err := s.db.GetProposal(proposalId, txn)
	if err != nil {
		return err
	}
	if prop.Executed {
		return ErrAlreadyExecuted
	}
	if prop.Cancelled {
		return ErrProposalCancelled
	}
	signers, err := s.db.GetProposalSigners(proposalId, txn)
	if err != nil {
		return err
	}
	if len(signers) >= MaxSigners {
		return fmt.Errorf("%w: cap %d", ErrMaxSignersReached, MaxSigners)
	}
	for _, existing := range signers {
		if string(existing.Signer) == string(signer.Bytes()) {
			return ErrAlreadySigned
		}
	}
	if err := s.db.AddProposalSigner(&models.ProposalSigner{
		ProposalID: proposalId,
		Signer:     signer.Bytes(),
	}, txn); err != nil {
		return err
	}
	s.logger.Info(
		"proposal signed",
		"component", "proposal",
		"proposal_id", prop.ID,
		"signer", signer.String(),
	)
	return nil
}

// GetInfo returns a proposal with its options, signers, and derived status
func (s *Store) GetInfo(proposalId uint) (*Info, error) {
	prop, err := s.db.GetProposal(proposalId, nil)
	if err != nil {
		return nil, err
	}
	options, err := s.db.GetProposalOptions(proposalId, nil)
	if err != nil {
		return nil, err
	}
	signers, err := s.db.GetProposalSigners(proposalId, nil)
	if err != nil {
		return nil, err
	}
	return &Info{
		Proposal: prop,
		Options:  options,
		Signers:  signers,
		Status:   s.status(prop),
	}, nil
}

// GetVote returns a voter's recorded vote on a proposal
func (s *Store) GetVote(
	voter principal.Address,
	proposalId uint,
) (*models.ProposalVote, error) {
	vote, err := s.db.GetProposalVote(proposalId, voter.Bytes(), nil)
	if err != nil {
		if errors.Is(err, models.ErrProposalVoteNotFound) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}
	return vote, nil
}

func (s *Store) status(prop *models.Proposal) Status {
	switch {
	case prop.Vetoed:
		return StatusVetoed
	case prop.Cancelled:
		return StatusCancelled
	case prop.Executed && prop.Passed:
		return StatusExecuted
	case prop.Executed:
		return StatusDefeated
	case uint64(s.now().Unix()) > prop.EndTime: // #nosec G115
		return StatusClosed
	default:
		return StatusActive
	}
}

// activeProposal loads a proposal and verifies its voting window is open
func (s *Store) activeProposal(
	proposalId uint,
	txn *database.Txn,
) (*models.Proposal, error) {
	prop, err := s.db.GetProposal(proposalId, txn)
	if err != nil {
		return nil, err
	}
	if prop.Cancelled {
		return nil, ErrProposalCancelled
	}
	if prop.Executed {
		return nil, ErrAlreadyExecuted
	}
	now := uint64(s.now().Unix()) // #nosec G115
	if now > prop.EndTime {
		return nil, fmt.Errorf(
			"%w: ended at %d, now %d",
			ErrVotingClosed,
			prop.EndTime,
			now,
		)
	}
	return prop, nil
}
