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

package database

import (
	"fmt"

	"github.com/blinklabs-io/wombat/database/models"
)

// GetDelegation returns a delegator's delegation record
func (d *Database) GetDelegation(
	delegator []byte,
	txn *Txn,
) (*models.Delegation, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	delegation, err := d.metadata.GetDelegation(delegator, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get delegation: %w", err)
	}
	if delegation == nil {
		return nil, models.ErrDelegationNotFound
	}
	return delegation, nil
}

// SetDelegation creates or overwrites a delegator's delegation record
func (d *Database) SetDelegation(
	delegation *models.Delegation,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.SetDelegation(delegation, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set delegation: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// DeleteDelegation removes a delegator's delegation record
func (d *Database) DeleteDelegation(
	delegator []byte,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.DeleteDelegation(delegator, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete delegation: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}
