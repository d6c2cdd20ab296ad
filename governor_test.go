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

package wombat_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	wombat "github.com/blinklabs-io/wombat"
	"github.com/blinklabs-io/wombat/delegation"
	"github.com/blinklabs-io/wombat/ledger"
	"github.com/blinklabs-io/wombat/principal"
	"github.com/blinklabs-io/wombat/proposal"
	"github.com/blinklabs-io/wombat/timelock"
	"github.com/blinklabs-io/wombat/votes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	current time.Time
}

func (c *testClock) now() time.Time {
	return c.current
}

func (c *testClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

type testEnv struct {
	governor *wombat.Governor
	ledger   *ledger.MemoryLedger
	oracle   *ledger.MemoryNFTOracle
	clock    *testClock
	owner    principal.Address
	proposer principal.Address
	voter    principal.Address
}

func setupGovernor(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ledger:   ledger.NewMemoryLedger(),
		oracle:   ledger.NewMemoryNFTOracle(),
		clock:    &testClock{current: time.Unix(1_700_000_000, 0)},
		owner:    principal.ModuleAddress("test/owner"),
		proposer: principal.ModuleAddress("test/proposer"),
		voter:    principal.ModuleAddress("test/voter"),
	}
	governor, err := wombat.New(wombat.NewConfig(
		wombat.WithDataDir(t.TempDir()),
		wombat.WithNetwork("testnet"),
		wombat.WithOwner(env.owner),
		wombat.WithAccountLedger(env.ledger),
		wombat.WithNFTOracle(env.oracle),
		wombat.WithClock(env.clock.now),
	))
	require.NoError(t, err)
	t.Cleanup(func() {
		governor.Close() //nolint:errcheck
	})
	env.governor = governor
	env.oracle.SetBalance(env.proposer, 1)
	env.oracle.SetBalance(env.voter, 2)
	env.ledger.Mint(env.proposer, 1_000_000)
	return env
}

func (env *testEnv) createProposal(t *testing.T) uint {
	t.Helper()
	id, err := env.governor.CreateProposal(
		env.proposer,
		wombat.CreateProposalParams{
			Deposit:            100_000,
			Description:        "test proposal",
			Options:            []string{"yes", "no", "abstain"},
			RequiredSignatures: 1,
		},
	)
	require.NoError(t, err)
	return id
}

func TestProposalPassReturnsDeposit(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)
	assert.Equal(t, uint64(900_000), env.ledger.BalanceOf(env.proposer))

	require.NoError(t, env.governor.CastVote(env.voter, id, 0, nil))

	env.clock.advance(env.governor.Network().VotingPeriod + time.Second)
	result, err := env.governor.ExecuteProposal(env.voter, id)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 2*votes.WeightPerToken, result.TotalWeight)

	// deposit back with the proposer, nothing forfeited
	assert.Equal(t, uint64(1_000_000), env.ledger.BalanceOf(env.proposer))
	assert.Equal(
		t, uint64(0), env.ledger.BalanceOf(env.governor.Treasury()),
	)

	info, err := env.governor.ProposalInfo(id)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusExecuted, info.Status)
	assert.True(t, info.Proposal.DepositReturned)
}

func TestProposalQuorumMissForfeitsDeposit(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)

	// nobody votes
	env.clock.advance(env.governor.Network().VotingPeriod + time.Second)
	result, err := env.governor.ExecuteProposal(env.voter, id)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	// deposit forfeits to the treasury, proposal still settles
	assert.Equal(t, uint64(900_000), env.ledger.BalanceOf(env.proposer))
	assert.Equal(
		t, uint64(100_000), env.ledger.BalanceOf(env.governor.Treasury()),
	)

	info, err := env.governor.ProposalInfo(id)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusDefeated, info.Status)

	_, err = env.governor.ExecuteProposal(env.voter, id)
	require.ErrorIs(t, err, proposal.ErrAlreadyExecuted)
}

func TestProposalActionsExecuteOnPass(t *testing.T) {
	env := setupGovernor(t)
	recipient := principal.ModuleAddress("test/recipient")
	env.ledger.Mint(env.governor.Treasury(), 10_000)

	id, err := env.governor.CreateProposal(
		env.proposer,
		wombat.CreateProposalParams{
			Deposit:            100_000,
			Description:        "pay the recipient",
			Options:            []string{"yes", "no", "abstain"},
			Targets:            []principal.Address{recipient},
			Values:             []uint64{500},
			Payloads:           [][]byte{[]byte("memo")},
			RequiredSignatures: 1,
		},
	)
	require.NoError(t, err)

	info, err := env.governor.ProposalInfo(id)
	require.NoError(t, err)
	require.NotEmpty(t, info.Proposal.OperationId)
	status, err := env.governor.OperationStatus(info.Proposal.OperationId)
	require.NoError(t, err)
	assert.Equal(t, timelock.StatusPending, status)

	require.NoError(t, env.governor.CastVote(env.voter, id, 0, nil))
	env.clock.advance(env.governor.Network().VotingPeriod + time.Second)
	result, err := env.governor.ExecuteProposal(env.voter, id)
	require.NoError(t, err)
	require.True(t, result.Passed)

	// treasury funded the action once the timelock matured
	assert.Equal(t, uint64(500), env.ledger.BalanceOf(recipient))
	assert.Equal(
		t, uint64(9_500), env.ledger.BalanceOf(env.governor.Treasury()),
	)
	status, err = env.governor.OperationStatus(info.Proposal.OperationId)
	require.NoError(t, err)
	assert.Equal(t, timelock.StatusExecuted, status)
}

func TestCreateProposalRejections(t *testing.T) {
	env := setupGovernor(t)
	stranger := principal.ModuleAddress("test/stranger")
	env.ledger.Mint(stranger, 1_000_000)

	_, err := env.governor.CreateProposal(
		stranger,
		wombat.CreateProposalParams{
			Deposit: 100_000,
			Options: []string{"yes", "no", "abstain"},
		},
	)
	require.ErrorIs(t, err, wombat.ErrNotNFTHolder)

	_, err = env.governor.CreateProposal(
		env.proposer,
		wombat.CreateProposalParams{
			Deposit: 99_999,
			Options: []string{"yes", "no", "abstain"},
		},
	)
	require.ErrorIs(t, err, wombat.ErrDepositTooLow)

	_, err = env.governor.CreateProposal(
		env.proposer,
		wombat.CreateProposalParams{
			Deposit: 100_000,
			Options: []string{"yes", "no", "abstain"},
		},
	)
	require.ErrorIs(t, err, proposal.ErrTooFewSigners)

	// a failed create leaves the deposit untouched
	_, err = env.governor.CreateProposal(
		env.proposer,
		wombat.CreateProposalParams{
			Deposit: 100_000,
			Options: []string{"yes", "no"},
		},
	)
	require.ErrorIs(t, err, proposal.ErrInvalidOptionCount)
	assert.Equal(t, uint64(1_000_000), env.ledger.BalanceOf(env.proposer))
}

func TestCancelProposalRefundsDeposit(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)

	err := env.governor.CancelProposal(env.voter, id)
	require.ErrorIs(t, err, proposal.ErrNotProposer)

	require.NoError(t, env.governor.CancelProposal(env.proposer, id))
	assert.Equal(t, uint64(1_000_000), env.ledger.BalanceOf(env.proposer))

	info, err := env.governor.ProposalInfo(id)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusCancelled, info.Status)
}

func TestVetoRefundsDeposit(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)

	err := env.governor.VetoProposal(env.voter, id)
	require.ErrorIs(t, err, wombat.ErrNotOwner)

	// a veto strikes the proposal, not the proposer's deposit
	require.NoError(t, env.governor.VetoProposal(env.owner, id))
	assert.Equal(t, uint64(1_000_000), env.ledger.BalanceOf(env.proposer))
	assert.Equal(
		t, uint64(0), env.ledger.BalanceOf(env.governor.Treasury()),
	)

	info, err := env.governor.ProposalInfo(id)
	require.NoError(t, err)
	assert.Equal(t, proposal.StatusVetoed, info.Status)
}

func TestCancelAfterVotingEndsRejected(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)

	// once the window closes only Execute can settle the proposal, so a
	// proposer cannot dodge a quorum forfeit by cancelling late
	env.clock.advance(env.governor.Network().VotingPeriod + time.Second)
	err := env.governor.CancelProposal(env.proposer, id)
	require.ErrorIs(t, err, proposal.ErrVotingClosed)
	err = env.governor.VetoProposal(env.owner, id)
	require.ErrorIs(t, err, proposal.ErrVotingClosed)
	assert.Equal(t, uint64(900_000), env.ledger.BalanceOf(env.proposer))

	result, err := env.governor.ExecuteProposal(env.proposer, id)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(
		t, uint64(100_000), env.ledger.BalanceOf(env.governor.Treasury()),
	)
}

func TestProposalActionShortfallRollsBack(t *testing.T) {
	env := setupGovernor(t)
	first := principal.ModuleAddress("test/payee-one")
	second := principal.ModuleAddress("test/payee-two")
	env.ledger.Mint(env.governor.Treasury(), 500)

	id, err := env.governor.CreateProposal(
		env.proposer,
		wombat.CreateProposalParams{
			Deposit:            100_000,
			Description:        "pay both payees",
			Options:            []string{"yes", "no", "abstain"},
			Targets:            []principal.Address{first, second},
			Values:             []uint64{500, 500},
			Payloads:           [][]byte{nil, nil},
			RequiredSignatures: 1,
		},
	)
	require.NoError(t, err)
	require.NoError(t, env.governor.CastVote(env.voter, id, 0, nil))
	env.clock.advance(env.governor.Network().VotingPeriod + time.Second)

	// the treasury can only fund half the actions, so nothing settles
	_, err = env.governor.ExecuteProposal(env.voter, id)
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
	assert.Equal(t, uint64(0), env.ledger.BalanceOf(first))
	assert.Equal(t, uint64(0), env.ledger.BalanceOf(second))
	info, err := env.governor.ProposalInfo(id)
	require.NoError(t, err)
	assert.False(t, info.Proposal.Executed)

	// funding the treasury makes a retry settle both actions
	env.ledger.Mint(env.governor.Treasury(), 500)
	result, err := env.governor.ExecuteProposal(env.voter, id)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, uint64(500), env.ledger.BalanceOf(first))
	assert.Equal(t, uint64(500), env.ledger.BalanceOf(second))
}

func TestDelegatedVoteAttribution(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)
	delegate := principal.ModuleAddress("test/delegate")
	env.oracle.SetBalance(delegate, 3)

	require.NoError(
		t, env.governor.SetDelegation(env.voter, delegate, nil),
	)
	// the vote lands on the delegate, at the delegate's weight
	require.NoError(t, env.governor.CastVote(env.voter, id, 1, nil))

	_, err := env.governor.GetVote(env.voter, id)
	require.ErrorIs(t, err, proposal.ErrVoteNotFound)
	vote, err := env.governor.GetVote(delegate, id)
	require.NoError(t, err)
	assert.Equal(t, 3*votes.WeightPerToken, vote.Weight)

	// and the delegator can back it out again through the same redirection
	require.NoError(t, env.governor.CancelVote(env.voter, id))
	_, err = env.governor.GetVote(delegate, id)
	require.ErrorIs(t, err, proposal.ErrVoteNotFound)
}

func TestSignedVote(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer := principal.NewAddress(pub)
	env.oracle.SetBalance(signer, 1)

	nonce, err := env.governor.Nonce(signer)
	require.NoError(t, err)
	expiry := uint64(env.clock.current.Add(time.Hour).Unix())
	hash := env.governor.Domain().VoteHash(uint64(id), 0, nonce, expiry)
	proof := &principal.SignatureProof{
		PublicKey: pub,
		Signature: ed25519.Sign(priv, hash[:]),
		Expiry:    expiry,
	}

	require.NoError(
		t,
		env.governor.CastVote(principal.ZeroAddress, id, 0, proof),
	)
	vote, err := env.governor.GetVote(signer, id)
	require.NoError(t, err)
	assert.Equal(t, votes.WeightPerToken, vote.Weight)

	// the nonce was consumed, so the same proof does not replay
	err = env.governor.CastVote(principal.ZeroAddress, id, 0, proof)
	require.ErrorIs(t, err, principal.ErrInvalidSignature)

	updated, err := env.governor.Nonce(signer)
	require.NoError(t, err)
	assert.Equal(t, nonce+1, updated)
}

func TestSignedDelegation(t *testing.T) {
	env := setupGovernor(t)
	delegate := principal.ModuleAddress("test/signed-delegate")

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer := principal.NewAddress(pub)
	env.oracle.SetBalance(signer, 1)

	expiry := uint64(env.clock.current.Add(time.Hour).Unix())
	hash := env.governor.Domain().DelegationHash(delegate, 0, expiry)
	proof := &principal.SignatureProof{
		PublicKey: pub,
		Signature: ed25519.Sign(priv, hash[:]),
		Expiry:    expiry,
	}

	require.NoError(
		t,
		env.governor.SetDelegation(principal.ZeroAddress, delegate, proof),
	)
	record, err := env.governor.DelegationInfo(signer)
	require.NoError(t, err)
	assert.Equal(t, delegate.Bytes(), record.Delegate)

	nonce, err := env.governor.Nonce(signer)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nonce)
}

func TestRejectedOperationSignKeepsNonce(t *testing.T) {
	env := setupGovernor(t)
	access := env.governor.Timelock().Access()
	access.Grant(timelock.RoleProposer, env.owner)
	access.Grant(timelock.RoleCanceller, env.owner)
	opId, err := env.governor.ScheduleOperation(
		env.owner,
		principal.ModuleAddress("test/sign-target"),
		0, nil, nil, []byte{7},
		timelock.MinDelay,
	)
	require.NoError(t, err)
	require.NoError(t, env.governor.CancelOperation(env.owner, opId))

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer := principal.NewAddress(pub)
	nonce, err := env.governor.Nonce(signer)
	require.NoError(t, err)
	expiry := uint64(env.clock.current.Add(time.Hour).Unix())
	hash := env.governor.Domain().OperationSignHash(opId, nonce, expiry)
	proof := &principal.SignatureProof{
		PublicKey: pub,
		Signature: ed25519.Sign(priv, hash[:]),
		Expiry:    expiry,
	}

	err = env.governor.SignOperation(principal.ZeroAddress, opId, proof)
	require.ErrorIs(t, err, timelock.ErrOperationCancelled)

	// the rejected sign rolled back, so the proof is still spendable
	after, err := env.governor.Nonce(signer)
	require.NoError(t, err)
	assert.Equal(t, nonce, after)
}

func TestExpiredProof(t *testing.T) {
	env := setupGovernor(t)
	id := env.createProposal(t)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	env.oracle.SetBalance(principal.NewAddress(pub), 1)

	expiry := uint64(env.clock.current.Add(-time.Hour).Unix())
	hash := env.governor.Domain().VoteHash(uint64(id), 0, 0, expiry)
	proof := &principal.SignatureProof{
		PublicKey: pub,
		Signature: ed25519.Sign(priv, hash[:]),
		Expiry:    expiry,
	}
	err = env.governor.CastVote(principal.ZeroAddress, id, 0, proof)
	require.ErrorIs(t, err, principal.ErrSignatureExpired)
}

func TestPowerLockRoundTrip(t *testing.T) {
	env := setupGovernor(t)

	require.NoError(
		t, env.governor.LockPower(env.voter, votes.WeightPerToken),
	)
	available, err := env.governor.AvailablePower(env.voter)
	require.NoError(t, err)
	assert.Equal(t, votes.WeightPerToken, available)
	// total power is unaffected by locks
	assert.Equal(
		t, 2*votes.WeightPerToken, env.governor.VotingPower(env.voter),
	)

	err = env.governor.UnlockPower(env.voter)
	require.ErrorIs(t, err, votes.ErrStillLocked)
	env.clock.advance(votes.LockDuration)
	require.NoError(t, env.governor.UnlockPower(env.voter))
}

func TestPauseBlocksLocks(t *testing.T) {
	env := setupGovernor(t)

	err := env.governor.Pause(env.voter)
	require.ErrorIs(t, err, wombat.ErrNotOwner)
	require.NoError(t, env.governor.Pause(env.owner))

	err = env.governor.LockPower(env.voter, votes.WeightPerToken)
	require.ErrorIs(t, err, votes.ErrPaused)
	err = env.governor.SetDelegation(
		env.voter, principal.ModuleAddress("test/pause-delegate"), nil,
	)
	require.ErrorIs(t, err, delegation.ErrPaused)
	_, err = env.governor.ScheduleOperation(
		env.owner,
		principal.ModuleAddress("test/target"),
		0, nil, nil, []byte{1},
		timelock.MinDelay,
	)
	require.ErrorIs(t, err, timelock.ErrPaused)

	require.NoError(t, env.governor.Unpause(env.owner))
	require.NoError(
		t, env.governor.LockPower(env.voter, votes.WeightPerToken),
	)
}

func TestTransferOwnership(t *testing.T) {
	env := setupGovernor(t)
	newOwner := principal.ModuleAddress("test/new-owner")

	err := env.governor.TransferOwnership(env.voter, newOwner)
	require.ErrorIs(t, err, wombat.ErrNotOwner)

	require.NoError(t, env.governor.TransferOwnership(env.owner, newOwner))
	assert.Equal(t, newOwner, env.governor.Owner())

	err = env.governor.Pause(env.owner)
	require.ErrorIs(t, err, wombat.ErrNotOwner)
	require.NoError(t, env.governor.Pause(newOwner))
}

func TestDelegationLifecycleThroughGovernor(t *testing.T) {
	env := setupGovernor(t)
	delegate := principal.ModuleAddress("test/lifecycle-delegate")

	require.NoError(
		t, env.governor.SetDelegation(env.voter, delegate, nil),
	)
	err := env.governor.RemoveDelegation(env.voter)
	require.ErrorIs(t, err, delegation.ErrDelegationLocked)

	env.clock.advance(delegation.DefaultLockPeriod)
	require.NoError(t, env.governor.RemoveDelegation(env.voter))
	_, err = env.governor.DelegationInfo(env.voter)
	require.ErrorIs(t, err, delegation.ErrNoDelegation)
}

func TestAdminParameterSetters(t *testing.T) {
	env := setupGovernor(t)

	err := env.governor.SetQuorum(env.voter, 10)
	require.ErrorIs(t, err, wombat.ErrNotOwner)
	err = env.governor.SetQuorum(env.owner, 101)
	require.ErrorIs(t, err, wombat.ErrInvalidQuorum)
	require.NoError(t, env.governor.SetQuorum(env.owner, 10))
	assert.Equal(t, uint64(10), env.governor.Network().QuorumPercent)

	err = env.governor.SetVotingPeriod(env.owner, 0)
	require.ErrorIs(t, err, wombat.ErrInvalidPeriod)
	require.NoError(t, env.governor.SetVotingPeriod(env.owner, time.Hour))
	assert.Equal(t, time.Hour, env.governor.Network().VotingPeriod)

	err = env.governor.SetNetwork(env.owner, "moon")
	require.ErrorIs(t, err, wombat.ErrUnknownNetwork)
	// Switching networks discards the per-parameter overrides
	require.NoError(t, env.governor.SetNetwork(env.owner, "mainnet"))
	assert.Equal(
		t, 7*24*time.Hour, env.governor.Network().VotingPeriod,
	)
	assert.Equal(t, uint64(4), env.governor.Network().QuorumPercent)
}

func TestSetTreasuryRedirectsForfeit(t *testing.T) {
	env := setupGovernor(t)
	vault := principal.ModuleAddress("test/vault")

	err := env.governor.SetTreasury(env.voter, vault)
	require.ErrorIs(t, err, wombat.ErrNotOwner)
	err = env.governor.SetTreasury(env.owner, principal.ZeroAddress)
	require.ErrorIs(t, err, principal.ErrInvalidPrincipal)
	require.NoError(t, env.governor.SetTreasury(env.owner, vault))

	// Quorum miss now forfeits to the new treasury account
	env.oracle.SetTotalSupply(100)
	id := env.createProposal(t)
	env.clock.advance(env.governor.Network().VotingPeriod + time.Second)
	result, err := env.governor.ExecuteProposal(env.proposer, id)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Equal(t, uint64(100_000), env.ledger.BalanceOf(vault))
}

func TestUnknownNetwork(t *testing.T) {
	_, err := wombat.New(wombat.NewConfig(
		wombat.WithNetwork("moon"),
		wombat.WithOwner(principal.ModuleAddress("test/owner")),
	))
	require.ErrorIs(t, err, wombat.ErrUnknownNetwork)
}
