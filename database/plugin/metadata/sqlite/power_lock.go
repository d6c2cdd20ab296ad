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

// GetPowerLock retrieves an account's voting power lock. Returns nil if the
// account has no active lock.
func (d *MetadataStoreSqlite) GetPowerLock(
	account []byte,
	txn *gorm.DB,
) (*models.PowerLock, error) {
	var lock models.PowerLock
	db := d.resolveDB(txn)
	if result := db.Where("account = ?", account).
		First(&lock); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &lock, nil
}

// SetPowerLock creates or updates an account's voting power lock
func (d *MetadataStoreSqlite) SetPowerLock(
	lock *models.PowerLock,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount",
			"unlock_time",
		}),
	}
	if result := db.Clauses(onConflict).Create(lock); result.Error != nil {
		return result.Error
	}
	return nil
}

// DeletePowerLock removes an account's voting power lock
func (d *MetadataStoreSqlite) DeletePowerLock(
	account []byte,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Where("account = ?", account).
		Delete(&models.PowerLock{}); result.Error != nil {
		return result.Error
	}
	return nil
}
