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

// GetNonce retrieves an account's signature nonce. Accounts with no recorded
// nonce start at zero.
func (d *MetadataStoreSqlite) GetNonce(
	account []byte,
	txn *gorm.DB,
) (uint64, error) {
	var nonce models.AccountNonce
	db := d.resolveDB(txn)
	if result := db.Where("account = ?", account).
		First(&nonce); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return nonce.Nonce, nil
}

// SetNonce stores an account's signature nonce
func (d *MetadataStoreSqlite) SetNonce(
	account []byte,
	nonce uint64,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"nonce",
		}),
	}
	record := &models.AccountNonce{
		Account: account,
		Nonce:   nonce,
	}
	if result := db.Clauses(onConflict).Create(record); result.Error != nil {
		return result.Error
	}
	return nil
}
