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

// GetPowerLock returns an account's voting power lock
func (d *Database) GetPowerLock(
	account []byte,
	txn *Txn,
) (*models.PowerLock, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	lock, err := d.metadata.GetPowerLock(account, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get power lock: %w", err)
	}
	if lock == nil {
		return nil, models.ErrPowerLockNotFound
	}
	return lock, nil
}

// SetPowerLock creates or updates an account's voting power lock
func (d *Database) SetPowerLock(
	lock *models.PowerLock,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.SetPowerLock(lock, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set power lock: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// DeletePowerLock removes an account's voting power lock
func (d *Database) DeletePowerLock(
	account []byte,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.DeletePowerLock(account, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to delete power lock: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}
