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

var ErrPowerLockNotFound = errors.New("power lock not found")

// PowerLock is a voluntary temporary lock of part of an account's voting
// power. Amount never exceeds the account's derived power at lock time;
// UnlockTime is the unix time from which the lock may be released.
type PowerLock struct {
	ID         uint   `gorm:"primarykey"`
	Account    []byte `gorm:"uniqueIndex;size:28;not null"`
	Amount     uint64 `gorm:"not null"`
	UnlockTime uint64 `gorm:"not null"`
}

// TableName returns the table name
func (PowerLock) TableName() string {
	return "power_lock"
}
