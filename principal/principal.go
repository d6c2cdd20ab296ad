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

// Package principal resolves the acting account for governance entry points.
// Every mutating operation accepts either a direct caller or a signature
// proof; both paths collapse into a single effective principal that the rest
// of the system consumes uniformly.
package principal

import (
	"crypto/ed25519"
	"errors"
	"fmt"
)

var (
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrSignatureExpired = errors.New("signature expired")
	ErrInvalidPrincipal = errors.New("invalid principal")
)

// SignatureProof authorizes an operation on behalf of the key holder rather
// than the direct caller. Ed25519 offers no public key recovery, so the proof
// carries the public key alongside the signature; the signer address is
// derived from the key after verification.
type SignatureProof struct {
	PublicKey ed25519.PublicKey
	Signature []byte
	// Expiry is the unix time after which the proof is no longer valid
	Expiry uint64
}

// Signer derives the address of the proof's key holder without verifying
// the signature
func (p *SignatureProof) Signer() (Address, error) {
	if len(p.PublicKey) != ed25519.PublicKeySize {
		return ZeroAddress, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidPublicKey,
			ed25519.PublicKeySize,
			len(p.PublicKey),
		)
	}
	return NewAddress(p.PublicKey), nil
}

// Verify checks the proof against the given message hash at the given time
func (p *SignatureProof) Verify(hash [32]byte, now uint64) (Address, error) {
	signer, err := p.Signer()
	if err != nil {
		return ZeroAddress, err
	}
	if now > p.Expiry {
		return ZeroAddress, fmt.Errorf(
			"%w: expired at %d, now %d",
			ErrSignatureExpired,
			p.Expiry,
			now,
		)
	}
	if len(p.Signature) != ed25519.SignatureSize {
		return ZeroAddress, ErrInvalidSignature
	}
	if !ed25519.Verify(p.PublicKey, hash[:], p.Signature) {
		return ZeroAddress, ErrInvalidSignature
	}
	return signer, nil
}

// Resolve returns the effective principal for an operation: the direct caller
// when no proof is supplied, otherwise the verified signer of the proof.
func Resolve(
	caller Address,
	proof *SignatureProof,
	hash [32]byte,
	now uint64,
) (Address, error) {
	if proof == nil {
		if caller.IsZero() {
			return ZeroAddress, ErrInvalidPrincipal
		}
		return caller, nil
	}
	return proof.Verify(hash, now)
}
