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

// GetOperation returns a timelock operation by operation ID
func (d *Database) GetOperation(
	opId []byte,
	txn *Txn,
) (*models.TimelockOperation, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	op, err := d.metadata.GetOperation(opId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get operation: %w", err)
	}
	if op == nil {
		return nil, models.ErrOperationNotFound
	}
	return op, nil
}

// SetOperation creates or updates a timelock operation
func (d *Database) SetOperation(
	op *models.TimelockOperation,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.SetOperation(op, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set operation: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// GetOperationSignatures returns the signer approvals recorded against an operation
func (d *Database) GetOperationSignatures(
	opId []byte,
	txn *Txn,
) ([]models.OperationSignature, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	sigs, err := d.metadata.GetOperationSignatures(opId, txn.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to get operation signatures: %w", err)
	}
	return sigs, nil
}

// AddOperationSignature records a signer approval against an operation
func (d *Database) AddOperationSignature(
	sig *models.OperationSignature,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.metadata.AddOperationSignature(sig, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to add operation signature: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}
