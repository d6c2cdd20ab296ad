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

var ErrDelegationNotFound = errors.New("delegation not found")

// Delegation assigns a delegator's voting weight to a delegate. ChangeCount
// tracks how many times the delegator has changed their delegation; Timestamp
// is the unix time of the last change and anchors the removal lock period.
type Delegation struct {
	ID          uint   `gorm:"primarykey"`
	Delegator   []byte `gorm:"uniqueIndex;size:28;not null"`
	Delegate    []byte `gorm:"index;size:28;not null"`
	Timestamp   uint64 `gorm:"not null"`
	ChangeCount uint32 `gorm:"not null;default:0"`
}

// TableName returns the table name
func (Delegation) TableName() string {
	return "delegation"
}
