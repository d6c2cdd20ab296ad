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

import "fmt"

// Action calldata payloads live in the blob store rather than the relational
// metadata store, keyed by proposal ID and action index.
func actionPayloadKey(proposalId uint, index uint32) []byte {
	return fmt.Appendf(nil, "payload/%d/%d", proposalId, index)
}

// GetActionPayload returns the calldata payload for a proposal action.
// Returns nil for actions with no payload.
func (d *Database) GetActionPayload(
	proposalId uint,
	index uint32,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	payload, err := d.blob.Get(txn.Blob(), actionPayloadKey(proposalId, index))
	if err != nil {
		return nil, fmt.Errorf("failed to get action payload: %w", err)
	}
	return payload, nil
}

// SetActionPayload stores the calldata payload for a proposal action
func (d *Database) SetActionPayload(
	proposalId uint,
	index uint32,
	payload []byte,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.blob.Put(txn.Blob(), actionPayloadKey(proposalId, index), payload); err != nil {
		return fmt.Errorf("failed to set action payload: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}

// Scheduled operation payloads are also blobs, keyed by operation ID
func operationPayloadKey(opId []byte) []byte {
	return fmt.Appendf(nil, "op/%x", opId)
}

// GetOperationPayload returns the call payload for a scheduled operation
func (d *Database) GetOperationPayload(
	opId []byte,
	txn *Txn,
) ([]byte, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Rollback() //nolint:errcheck
	}
	payload, err := d.blob.Get(txn.Blob(), operationPayloadKey(opId))
	if err != nil {
		return nil, fmt.Errorf("failed to get operation payload: %w", err)
	}
	return payload, nil
}

// SetOperationPayload stores the call payload for a scheduled operation
func (d *Database) SetOperationPayload(
	opId []byte,
	payload []byte,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Rollback() //nolint:errcheck
	}
	if err := d.blob.Put(txn.Blob(), operationPayloadKey(opId), payload); err != nil {
		return fmt.Errorf("failed to set operation payload: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
	}
	return nil
}
