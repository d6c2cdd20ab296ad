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
	"github.com/blinklabs-io/wombat/database/models"
	"github.com/blinklabs-io/wombat/principal"
)

// SetDelegation redirects the signer's future votes to the delegate. The
// signer's nonce is consumed by the registry, so signed delegations resolve
// against the nonce as it stands before the change.
func (g *Governor) SetDelegation(
	caller principal.Address,
	delegate principal.Address,
	proof *principal.SignatureProof,
) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	signer, err := g.resolveSigner(
		caller,
		proof,
		func(nonce uint64) [32]byte {
			return g.domain.DelegationHash(
				delegate,
				nonce,
				proofExpiry(proof),
			)
		},
		false,
		nil,
	)
	if err != nil {
		return err
	}
	return g.delegations.Set(signer, delegate)
}

// RemoveDelegation clears the caller's delegation once its lock expires
func (g *Governor) RemoveDelegation(caller principal.Address) error {
	if err := g.enter(); err != nil {
		return err
	}
	defer g.exit()
	if caller.IsZero() {
		return principal.ErrInvalidPrincipal
	}
	return g.delegations.Remove(caller)
}

// DelegationInfo returns an account's active delegation
func (g *Governor) DelegationInfo(
	account principal.Address,
) (*models.Delegation, error) {
	return g.delegations.Info(account)
}
