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

package blob

import (
	"log/slog"

	badgerplugin "github.com/blinklabs-io/wombat/database/plugin/blob/badger"
	badger "github.com/dgraph-io/badger/v4"
)

// BlobStore holds opaque payloads that do not belong in the relational
// metadata store, such as proposal action calldata.
type BlobStore interface {
	// matches badger.DB
	Close() error
	NewTransaction(bool) *badger.Txn

	// Our specific functions
	Get(*badger.Txn, []byte) ([]byte, error)
	Put(*badger.Txn, []byte, []byte) error
	Delete(*badger.Txn, []byte) error
}

// New creates a new badger-backed blob store. Uses an in-memory database when
// dataDir is empty.
func New(dataDir string, logger *slog.Logger) (BlobStore, error) {
	return badgerplugin.New(dataDir, logger)
}
