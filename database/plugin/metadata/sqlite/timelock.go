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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/wombat/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOperation retrieves a timelock operation by operation ID. Returns nil if
// not found.
func (d *MetadataStoreSqlite) GetOperation(
	opId []byte,
	txn *gorm.DB,
) (*models.TimelockOperation, error) {
	var op models.TimelockOperation
	db := d.resolveDB(txn)
	if result := db.Where("op_id = ?", opId).First(&op); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &op, nil
}

// SetOperation creates or updates a timelock operation
func (d *MetadataStoreSqlite) SetOperation(
	op *models.TimelockOperation,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "op_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"delay",
			"ready_time",
			"required_signatures",
			"executed",
			"cancelled",
		}),
	}
	if result := db.Clauses(onConflict).Create(op); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetOperationSignatures retrieves the signer approvals recorded against an
// operation
func (d *MetadataStoreSqlite) GetOperationSignatures(
	opId []byte,
	txn *gorm.DB,
) ([]models.OperationSignature, error) {
	var sigs []models.OperationSignature
	db := d.resolveDB(txn)
	if result := db.Where("op_id = ?", opId).Find(&sigs); result.Error != nil {
		return nil, result.Error
	}
	return sigs, nil
}

// AddOperationSignature records a signer approval against an operation
func (d *MetadataStoreSqlite) AddOperationSignature(
	sig *models.OperationSignature,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Create(sig); result.Error != nil {
		return result.Error
	}
	return nil
}
