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

package principal

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub, priv
}

func TestAddressDerivation(t *testing.T) {
	pub, _ := genKey(t)
	addr := NewAddress(pub)
	assert.False(t, addr.IsZero())
	// Derivation is deterministic
	assert.Equal(t, addr, NewAddress(pub))
	// Round-trips through bytes and hex
	fromBytes, err := AddressFromBytes(addr.Bytes())
	require.NoError(t, err)
	assert.Equal(t, addr, fromBytes)
	fromHex, err := AddressFromHex(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, fromHex)
}

func TestAddressFromBytesWrongLength(t *testing.T) {
	_, err := AddressFromBytes([]byte{0x01, 0x02})
	require.ErrorIs(t, err, ErrInvalidAddressLength)
}

func TestModuleAddressDistinct(t *testing.T) {
	escrow := ModuleAddress("escrow")
	treasury := ModuleAddress("treasury")
	assert.NotEqual(t, escrow, treasury)
	assert.Equal(t, escrow, ModuleAddress("escrow"))
}

func TestDomainSeparation(t *testing.T) {
	d1 := Domain{Name: "wombat", Version: "1", Network: "testnet"}
	d2 := Domain{Name: "wombat", Version: "1", Network: "mainnet"}
	h1 := d1.VoteHash(1, 0, 0, 100)
	h2 := d2.VoteHash(1, 0, 0, 100)
	assert.NotEqual(t, h1, h2)
	// Different kinds never collide even with identical fields
	assert.NotEqual(
		t,
		d1.ProposalSignHash(1, 0, 100),
		d1.hash(KindVote, encodeUint64(1), encodeUint64(0), encodeUint64(100)),
	)
}

func TestResolveDirectCaller(t *testing.T) {
	pub, _ := genKey(t)
	caller := NewAddress(pub)
	var hash [32]byte
	got, err := Resolve(caller, nil, hash, 0)
	require.NoError(t, err)
	assert.Equal(t, caller, got)
}

func TestResolveZeroCaller(t *testing.T) {
	var hash [32]byte
	_, err := Resolve(ZeroAddress, nil, hash, 0)
	require.ErrorIs(t, err, ErrInvalidPrincipal)
}

func TestResolveSignatureProof(t *testing.T) {
	pub, priv := genKey(t)
	domain := Domain{Name: "wombat", Version: "1", Network: "testnet"}
	hash := domain.DelegationHash(ModuleAddress("delegate"), 0, 500)
	proof := &SignatureProof{
		PublicKey: pub,
		Signature: ed25519.Sign(priv, hash[:]),
		Expiry:    500,
	}
	// Caller is ignored when a proof is supplied
	got, err := Resolve(ModuleAddress("someone-else"), proof, hash, 100)
	require.NoError(t, err)
	assert.Equal(t, NewAddress(pub), got)
}

func TestResolveExpiredProof(t *testing.T) {
	pub, priv := genKey(t)
	var hash [32]byte
	proof := &SignatureProof{
		PublicKey: pub,
		Signature: ed25519.Sign(priv, hash[:]),
		Expiry:    100,
	}
	_, err := Resolve(ZeroAddress, proof, hash, 101)
	require.ErrorIs(t, err, ErrSignatureExpired)
}

func TestResolveBadSignature(t *testing.T) {
	pub, priv := genKey(t)
	var hash [32]byte
	sig := ed25519.Sign(priv, hash[:])
	sig[0] ^= 0xff
	proof := &SignatureProof{
		PublicKey: pub,
		Signature: sig,
		Expiry:    100,
	}
	_, err := Resolve(ZeroAddress, proof, hash, 50)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestResolveBadPublicKey(t *testing.T) {
	proof := &SignatureProof{
		PublicKey: []byte{0x01},
		Signature: make([]byte, ed25519.SignatureSize),
		Expiry:    100,
	}
	var hash [32]byte
	_, err := Resolve(ZeroAddress, proof, hash, 50)
	require.ErrorIs(t, err, ErrInvalidPublicKey)
}
