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

package badger

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

// BlobStoreBadger is a badger-backed blob store
type BlobStoreBadger struct {
	db      *badger.DB
	logger  *slog.Logger
	dataDir string
}

// New creates a badger blob store. Uses an in-memory database if dataDir is empty.
func New(dataDir string, logger *slog.Logger) (*BlobStoreBadger, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		blobDir := filepath.Join(dataDir, "blob")
		if _, err := os.Stat(blobDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read blob dir: %w", err)
			}
			if err := os.MkdirAll(blobDir, fs.ModePerm); err != nil {
				return nil, fmt.Errorf("failed to create blob dir: %w", err)
			}
		}
		opts = badger.DefaultOptions(blobDir)
	}
	opts = opts.WithLogger(newBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	return &BlobStoreBadger{
		db:      db,
		logger:  logger,
		dataDir: dataDir,
	}, nil
}

// Close closes the underlying badger database
func (b *BlobStoreBadger) Close() error {
	return b.db.Close()
}

// NewTransaction starts a new badger transaction
func (b *BlobStoreBadger) NewTransaction(readWrite bool) *badger.Txn {
	return b.db.NewTransaction(readWrite)
}

// Get retrieves the value for a key. Returns nil if the key does not exist.
// A nil transaction handle runs the lookup in a throwaway read transaction.
func (b *BlobStoreBadger) Get(txn *badger.Txn, key []byte) ([]byte, error) {
	if txn == nil {
		txn = b.db.NewTransaction(false)
		defer txn.Discard()
	}
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Put stores a value for a key. A nil transaction handle wraps the write in
// its own transaction.
func (b *BlobStoreBadger) Put(txn *badger.Txn, key []byte, value []byte) error {
	if txn == nil {
		return b.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key, value)
		})
	}
	return txn.Set(key, value)
}

// Delete removes a key. A nil transaction handle wraps the delete in its own
// transaction.
func (b *BlobStoreBadger) Delete(txn *badger.Txn, key []byte) error {
	if txn == nil {
		return b.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
	}
	return txn.Delete(key)
}
