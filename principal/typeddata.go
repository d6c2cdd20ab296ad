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
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// MessageKind distinguishes the typed payloads that can be authorized by
// signature instead of a direct call
type MessageKind uint8

const (
	KindDelegation    MessageKind = 1
	KindVote          MessageKind = 2
	KindProposalSign  MessageKind = 3
	KindOperationSign MessageKind = 4
)

// Domain separates signable payloads between deployments. Two domains that
// differ in any field produce unrelated message hashes.
type Domain struct {
	Name    string
	Version string
	Network string
}

func (d Domain) separator() [32]byte {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	writeString := func(s string) {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s))) // #nosec G115
		hasher.Write(lenBuf[:])
		hasher.Write([]byte(s))
	}
	writeString(d.Name)
	writeString(d.Version)
	writeString(d.Network)
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

// hash computes the domain-separated message hash for the given kind and
// pre-encoded fields
func (d Domain) hash(kind MessageKind, fields ...[]byte) [32]byte {
	hasher, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	sep := d.separator()
	hasher.Write(sep[:])
	hasher.Write([]byte{byte(kind)})
	for _, field := range fields {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(field))) // #nosec G115
		hasher.Write(lenBuf[:])
		hasher.Write(field)
	}
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

func encodeUint64(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

// DelegationHash is the signable payload for setting a delegation
func (d Domain) DelegationHash(
	delegate Address,
	nonce uint64,
	expiry uint64,
) [32]byte {
	return d.hash(
		KindDelegation,
		delegate.Bytes(),
		encodeUint64(nonce),
		encodeUint64(expiry),
	)
}

// VoteHash is the signable payload for casting a vote
func (d Domain) VoteHash(
	proposalId uint64,
	optionIndex uint32,
	nonce uint64,
	expiry uint64,
) [32]byte {
	return d.hash(
		KindVote,
		encodeUint64(proposalId),
		encodeUint64(uint64(optionIndex)),
		encodeUint64(nonce),
		encodeUint64(expiry),
	)
}

// ProposalSignHash is the signable payload for endorsing a proposal
func (d Domain) ProposalSignHash(
	proposalId uint64,
	nonce uint64,
	expiry uint64,
) [32]byte {
	return d.hash(
		KindProposalSign,
		encodeUint64(proposalId),
		encodeUint64(nonce),
		encodeUint64(expiry),
	)
}

// OperationSignHash is the signable payload for approving a timelock operation
func (d Domain) OperationSignHash(
	operationId []byte,
	nonce uint64,
	expiry uint64,
) [32]byte {
	return d.hash(
		KindOperationSign,
		operationId,
		encodeUint64(nonce),
		encodeUint64(expiry),
	)
}
