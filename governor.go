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

// Package wombat implements NFT-weighted governance: proposals with
// multi-option voting, vote delegation, voluntary power locks, and
// timelocked execution of passed proposals.
package wombat

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/wombat/database"
	"github.com/blinklabs-io/wombat/delegation"
	"github.com/blinklabs-io/wombat/event"
	"github.com/blinklabs-io/wombat/ledger"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/proposal"
	"github.com/blinklabs-io/wombat/timelock"
	"github.com/blinklabs-io/wombat/votes"
)

var (
	ErrReentrantCall  = errors.New("reentrant call")
	ErrNotOwner       = errors.New("caller is not the owner")
	ErrNoOwner        = errors.New("no owner configured")
	ErrUnknownNetwork = errors.New("unknown network name")
	ErrDepositTooLow  = errors.New("deposit below network minimum")
	ErrNotNFTHolder   = errors.New("account holds no governance NFTs")
	ErrInvalidQuorum  = errors.New("quorum percent above 100")
	ErrInvalidPeriod  = errors.New("voting period must be positive")
)

// Governor ties the governance components together behind a single facade.
// Deposits are escrowed on the governor's module account; forfeits and
// passed proposal actions settle against the treasury account.
type Governor struct {
	config        Config
	network       NetworkParams
	domain        principal.Domain
	eventBus      *event.EventBus
	db            *database.Database
	accountLedger ledger.AccountLedger
	power         *votes.PowerSource
	delegations   *delegation.Registry
	proposals     *proposal.Store
	queue         *timelock.Queue
	addr          principal.Address
	treasury      principal.Address
	owner         principal.Address
	ownerMutex    sync.RWMutex
	paramsMutex   sync.RWMutex
	busy          atomic.Bool
	shutdownFuncs []func(context.Context) error
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Governor, error) {
	network, ok := NetworkByName(cfg.network)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, cfg.network)
	}
	if cfg.owner.IsZero() {
		return nil, ErrNoOwner
	}
	if cfg.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		cfg.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	if cfg.accountLedger == nil {
		cfg.accountLedger = ledger.NewMemoryLedger()
	}
	if cfg.nftOracle == nil {
		cfg.nftOracle = ledger.NewMemoryNFTOracle()
	}
	g := &Governor{
		config:        cfg,
		network:       network,
		accountLedger: cfg.accountLedger,
		addr:          principal.ModuleAddress("governor"),
		treasury:      cfg.treasury,
		owner:         cfg.owner,
		domain: principal.Domain{
			Name:    "wombat-governance",
			Version: "1",
			Network: network.Name,
		},
	}
	if g.treasury.IsZero() {
		g.treasury = principal.ModuleAddress("treasury")
	}
	if cfg.tracing {
		if err := g.setupTracing(); err != nil {
			return nil, err
		}
	}
	g.eventBus = event.NewEventBus(cfg.promRegistry)
	db, err := database.New(&database.Config{
		Logger:       cfg.logger,
		PromRegistry: cfg.promRegistry,
		DataDir:      cfg.dataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	g.db = db
	g.power = votes.New(votes.PowerSourceConfig{
		Logger:       cfg.logger,
		EventBus:     g.eventBus,
		PromRegistry: cfg.promRegistry,
		DB:           db,
		Oracle:       cfg.nftOracle,
		Now:          cfg.now,
	})
	g.delegations = delegation.NewRegistry(delegation.RegistryConfig{
		Logger:       cfg.logger,
		EventBus:     g.eventBus,
		PromRegistry: cfg.promRegistry,
		DB:           db,
		Power:        g.power,
		Now:          cfg.now,
	})
	g.proposals = proposal.NewStore(proposal.StoreConfig{
		Logger:       cfg.logger,
		EventBus:     g.eventBus,
		PromRegistry: cfg.promRegistry,
		DB:           db,
		Now:          cfg.now,
	})
	access := timelock.NewAccessControl()
	access.Grant(timelock.RoleProposer, g.addr)
	access.Grant(timelock.RoleCanceller, g.addr)
	access.Grant(timelock.RoleAdmin, g.addr)
	access.Grant(timelock.RoleAdmin, g.owner)
	g.queue = timelock.NewQueue(timelock.QueueConfig{
		Logger:       cfg.logger,
		EventBus:     g.eventBus,
		PromRegistry: cfg.promRegistry,
		DB:           db,
		Access:       access,
		Invoker:      &actionInvoker{governor: g},
		Now:          cfg.now,
	})
	return g, nil
}

// Close releases the governor's resources
func (g *Governor) Close() error {
	var err error
	g.shutdownOnce.Do(func() {
		g.eventBus.Stop()
		ctx, cancel := context.WithTimeout(
			context.Background(),
			30*time.Second,
		)
		defer cancel()
		for _, fn := range g.shutdownFuncs {
			err = errors.Join(err, fn(ctx))
		}
		err = errors.Join(err, g.db.Close())
	})
	return err
}

// EventBus returns the governor's event bus
func (g *Governor) EventBus() *event.EventBus {
	return g.eventBus
}

// Database returns the underlying database
func (g *Governor) Database() *database.Database {
	return g.db
}

// PowerSource returns the voting power component
func (g *Governor) PowerSource() *votes.PowerSource {
	return g.power
}

// Delegations returns the delegation registry
func (g *Governor) Delegations() *delegation.Registry {
	return g.delegations
}

// Proposals returns the proposal store
func (g *Governor) Proposals() *proposal.Store {
	return g.proposals
}

// Timelock returns the operation queue
func (g *Governor) Timelock() *timelock.Queue {
	return g.queue
}

// Network returns the active network parameters
func (g *Governor) Network() NetworkParams {
	g.paramsMutex.RLock()
	defer g.paramsMutex.RUnlock()
	return g.network
}

// Address returns the governor's module account, where proposal deposits
// are escrowed
func (g *Governor) Address() principal.Address {
	return g.addr
}

// Treasury returns the treasury account
func (g *Governor) Treasury() principal.Address {
	g.paramsMutex.RLock()
	defer g.paramsMutex.RUnlock()
	return g.treasury
}

// Owner returns the current owner account
func (g *Governor) Owner() principal.Address {
	g.ownerMutex.RLock()
	defer g.ownerMutex.RUnlock()
	return g.owner
}

// Nonce returns an account's current signing nonce
func (g *Governor) Nonce(account principal.Address) (uint64, error) {
	return g.db.GetNonce(account.Bytes(), nil)
}

// Domain returns the typed-data domain signatures are bound to
func (g *Governor) Domain() principal.Domain {
	return g.domain
}

// enter takes the single-operation guard. Operations that mutate state are
// serialized; a call arriving while another is in flight is rejected rather
// than queued.
func (g *Governor) enter() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (g *Governor) exit() {
	g.busy.Store(false)
}

func (g *Governor) nowUnix() uint64 {
	return uint64(g.config.now().Unix()) // #nosec G115
}

// quorumWeight is the voting weight a proposal must attract to pass
func (g *Governor) quorumWeight() uint64 {
	return g.power.TotalPower() * g.Network().QuorumPercent / 100
}

func (g *Governor) requireOwner(caller principal.Address) error {
	if caller != g.Owner() {
		return ErrNotOwner
	}
	return nil
}

// resolveSigner returns the effective principal for an operation: the direct
// caller, or the verified signer of the supplied proof. hashFn builds the
// expected signed payload from the signer's current nonce; bump controls
// whether the nonce is consumed here or by the component downstream.
func (g *Governor) resolveSigner(
	caller principal.Address,
	proof *principal.SignatureProof,
	hashFn func(nonce uint64) [32]byte,
	bump bool,
	txn *database.Txn,
) (principal.Address, error) {
	if proof == nil {
		if caller.IsZero() {
			return principal.ZeroAddress, principal.ErrInvalidPrincipal
		}
		return caller, nil
	}
	signer, err := proof.Signer()
	if err != nil {
		return principal.ZeroAddress, err
	}
	nonce, err := g.db.GetNonce(signer.Bytes(), txn)
	if err != nil {
		return principal.ZeroAddress, err
	}
	if _, err := proof.Verify(hashFn(nonce), g.nowUnix()); err != nil {
		return principal.ZeroAddress, err
	}
	if bump {
		if err := g.db.SetNonce(signer.Bytes(), nonce+1, txn); err != nil {
			return principal.ZeroAddress, err
		}
	}
	return signer, nil
}

// actionInvoker carries out scheduled operations. Operations targeting the
// governor's own account execute the actions of the proposal named in the
// payload; anything else settles as a treasury transfer or is handed to the
// configured external invoker.
type actionInvoker struct {
	governor *Governor
}

func (i *actionInvoker) Invoke(
	target principal.Address,
	value uint64,
	payload []byte,
) error {
	g := i.governor
	if target == g.addr && len(payload) == 8 {
		proposalId := uint(binary.BigEndian.Uint64(payload))
		return g.invokeProposalActions(proposalId)
	}
	if g.config.invoker != nil {
		return g.config.invoker.Invoke(target, value, payload)
	}
	return g.accountLedger.Transfer(g.Treasury(), target, value)
}

func (g *Governor) invokeProposalActions(proposalId uint) error {
	actions, err := g.db.GetProposalActions(proposalId, nil)
	if err != nil {
		return err
	}
	if g.config.invoker == nil {
		// Every transfer draws on the treasury. Check the full amount up
		// front so a shortfall on a later action cannot leave earlier
		// transfers applied while the surrounding transaction rolls back.
		var total uint64
		for _, action := range actions {
			total += action.Value
		}
		treasury := g.Treasury()
		if g.accountLedger.BalanceOf(treasury) < total {
			return fmt.Errorf(
				"%w: treasury %s cannot fund %d across %d actions",
				ledger.ErrInsufficientBalance,
				treasury.String(),
				total,
				len(actions),
			)
		}
	}
	for _, action := range actions {
		target, err := principal.AddressFromBytes(action.Target)
		if err != nil {
			return err
		}
		payload, err := g.db.GetActionPayload(proposalId, action.Index, nil)
		if err != nil {
			return err
		}
		if g.config.invoker != nil {
			if err := g.config.invoker.Invoke(
				target, action.Value, payload,
			); err != nil {
				return err
			}
			continue
		}
		if err := g.accountLedger.Transfer(
			g.Treasury(), target, action.Value,
		); err != nil {
			return err
		}
	}
	return nil
}

// proposalOperationPayload encodes the proposal ID an internal operation
// executes actions for
func proposalOperationPayload(proposalId uint) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, uint64(proposalId))
	return payload
}
