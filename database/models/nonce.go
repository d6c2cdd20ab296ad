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

// AccountNonce is the replay-protection counter for by-signature entry
// points. Every accepted signature proof bumps the signer's nonce.
type AccountNonce struct {
	ID      uint   `gorm:"primarykey"`
	Account []byte `gorm:"uniqueIndex;size:28;not null"`
	Nonce   uint64 `gorm:"not null;default:0"`
}

// TableName returns the table name
func (AccountNonce) TableName() string {
	return "account_nonce"
}
