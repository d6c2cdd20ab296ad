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
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// AddressSize is the length of an account address in bytes (blake2b-224)
const AddressSize = 28

// Address identifies an account. It is derived from the blake2b-224 hash of
// the account's ed25519 public key.
type Address [AddressSize]byte

// ZeroAddress is the empty address. It is not a valid principal.
var ZeroAddress = Address{}

var ErrInvalidAddressLength = errors.New("invalid address length")

// NewAddress derives an address from an ed25519 public key
func NewAddress(pubKey ed25519.PublicKey) Address {
	var addr Address
	hasher, err := blake2b.New(AddressSize, nil)
	if err != nil {
		// blake2b.New only fails on bad key/size arguments
		panic(err)
	}
	hasher.Write(pubKey)
	copy(addr[:], hasher.Sum(nil))
	return addr
}

// ModuleAddress derives a deterministic address for a named module account.
// Module accounts have no corresponding key pair.
func ModuleAddress(name string) Address {
	var addr Address
	hasher, err := blake2b.New(AddressSize, nil)
	if err != nil {
		panic(err)
	}
	hasher.Write([]byte("wombat.module|"))
	hasher.Write([]byte(name))
	copy(addr[:], hasher.Sum(nil))
	return addr
}

// AddressFromBytes converts a raw byte slice to an Address
func AddressFromBytes(data []byte) (Address, error) {
	var addr Address
	if len(data) != AddressSize {
		return addr, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidAddressLength,
			AddressSize,
			len(data),
		)
	}
	copy(addr[:], data)
	return addr, nil
}

// AddressFromHex parses a hex-encoded address
func AddressFromHex(s string) (Address, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return ZeroAddress, fmt.Errorf("decode address: %w", err)
	}
	return AddressFromBytes(data)
}

// Bytes returns the address as a byte slice
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero returns true for the empty address
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}
