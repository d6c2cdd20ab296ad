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

// GetDelegation retrieves a delegator's delegation record. Returns nil if the
// delegator has no active delegation.
func (d *MetadataStoreSqlite) GetDelegation(
	delegator []byte,
	txn *gorm.DB,
) (*models.Delegation, error) {
	var delegation models.Delegation
	db := d.resolveDB(txn)
	if result := db.Where("delegator = ?", delegator).
		First(&delegation); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &delegation, nil
}

// SetDelegation creates or overwrites a delegator's delegation record
func (d *MetadataStoreSqlite) SetDelegation(
	delegation *models.Delegation,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "delegator"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"delegate",
			"timestamp",
			"change_count",
		}),
	}
	if result := db.Clauses(onConflict).Create(delegation); result.Error != nil {
		return result.Error
	}
	return nil
}

// DeleteDelegation removes a delegator's delegation record
func (d *MetadataStoreSqlite) DeleteDelegation(
	delegator []byte,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Where("delegator = ?", delegator).
		Delete(&models.Delegation{}); result.Error != nil {
		return result.Error
	}
	return nil
}
