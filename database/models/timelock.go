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

package models

import "errors"

var ErrOperationNotFound = errors.New("timelock operation not found")

// TimelockOperation is a scheduled external call. OpId is the blake2b-256
// hash of (target, value, payload, predecessor, salt); the payload itself
// lives in the blob store keyed by OpId. An operation executes at most once,
// and only at or after ReadyTime.
type TimelockOperation struct {
	ID                 uint   `gorm:"primarykey"`
	OpId               []byte `gorm:"uniqueIndex;size:32;not null"`
	Target             []byte `gorm:"size:28;not null"`
	Value              uint64 `gorm:"not null"`
	Predecessor        []byte `gorm:"size:32"`
	Salt               []byte `gorm:"size:32"`
	Delay              uint64 `gorm:"not null"` // seconds
	ReadyTime          uint64 `gorm:"index;not null"`
	RequiredSignatures uint32 `gorm:"not null;default:0"`
	Executed           bool   `gorm:"not null;default:false"`
	Cancelled          bool   `gorm:"not null;default:false"`
}

// TableName returns the table name
func (TimelockOperation) TableName() string {
	return "timelock_operation"
}

// OperationSignature is a per-signer approval of a scheduled operation,
// counted against the operation's required-signature threshold.
type OperationSignature struct {
	ID     uint   `gorm:"primarykey"`
	OpId   []byte `gorm:"uniqueIndex:idx_opsig_op_signer,priority:1;size:32;not null"`
	Signer []byte `gorm:"uniqueIndex:idx_opsig_op_signer,priority:2;size:28;not null"`
}

// TableName returns the table name
func (OperationSignature) TableName() string {
	return "operation_signature"
}
