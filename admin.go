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
	"fmt"
	"time"

	"github.com/blinklabs-io/wombat/ledger"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/timelock"
)

// Pause halts power locking, delegation changes, and timelock activity.
// Owner only.
func (g *Governor) Pause(caller principal.Address) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	g.power.Pause()
	g.delegations.Pause()
	if err := g.queue.Pause(g.addr); err != nil {
		return err
	}
	g.config.logger.Info("governance paused", "component", "governor")
	return nil
}

// Unpause resumes paused activity. Owner only.
func (g *Governor) Unpause(caller principal.Address) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	g.power.Unpause()
	g.delegations.Unpause()
	if err := g.queue.Unpause(g.addr); err != nil {
		return err
	}
	g.config.logger.Info("governance unpaused", "component", "governor")
	return nil
}

// SetNFTOracle swaps the NFT ownership oracle voting power derives from.
// Owner only.
func (g *Governor) SetNFTOracle(
	caller principal.Address,
	oracle ledger.NFTOracle,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	g.power.SetOracle(oracle)
	g.config.logger.Info("nft oracle replaced", "component", "governor")
	return nil
}

// SetVotingPeriod overrides the voting window for proposals created from now
// on. Existing proposals keep the window they were created with. Owner only.
func (g *Governor) SetVotingPeriod(
	caller principal.Address,
	period time.Duration,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if period <= 0 {
		return ErrInvalidPeriod
	}
	g.paramsMutex.Lock()
	g.network.VotingPeriod = period
	g.paramsMutex.Unlock()
	g.config.logger.Info(
		"voting period updated",
		"component", "governor",
		"period", period.String(),
	)
	return nil
}

// SetQuorum overrides the share of total voting power a proposal must
// attract to pass. Owner only.
func (g *Governor) SetQuorum(
	caller principal.Address,
	percent uint64,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if percent > 100 {
		return ErrInvalidQuorum
	}
	g.paramsMutex.Lock()
	g.network.QuorumPercent = percent
	g.paramsMutex.Unlock()
	g.config.logger.Info(
		"quorum updated",
		"component", "governor",
		"percent", percent,
	)
	return nil
}

// SetNetwork replaces the full parameter set with a named network's
// defaults, discarding any per-parameter overrides. The signing domain is
// fixed at construction and does not follow the network name. Owner only.
func (g *Governor) SetNetwork(
	caller principal.Address,
	name string,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	network, ok := NetworkByName(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
	g.paramsMutex.Lock()
	g.network = network
	g.paramsMutex.Unlock()
	g.config.logger.Info(
		"network parameters updated",
		"component", "governor",
		"network", name,
	)
	return nil
}

// SetTreasury redirects forfeited deposits and proposal action settlement
// to another account. Owner only.
func (g *Governor) SetTreasury(
	caller principal.Address,
	treasury principal.Address,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if treasury.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	g.paramsMutex.Lock()
	g.treasury = treasury
	g.paramsMutex.Unlock()
	g.config.logger.Info(
		"treasury updated",
		"component", "governor",
		"treasury", treasury.String(),
	)
	return nil
}

// TransferOwnership hands the owner role to another account. Owner only.
func (g *Governor) TransferOwnership(
	caller principal.Address,
	newOwner principal.Address,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if err := g.requireOwner(caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	g.ownerMutex.Lock()
	previous := g.owner
	g.owner = newOwner
	g.ownerMutex.Unlock()
	g.queue.Access().Revoke(timelock.RoleAdmin, previous)
	g.queue.Access().Grant(timelock.RoleAdmin, newOwner)
	g.config.logger.Info(
		"ownership transferred",
		"component", "governor",
		"previous", previous.String(),
		"owner", newOwner.String(),
	)
	return nil
}
