// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	bstore "github.com/AleutianAI/sortbench/services/sortbench/storage/badger"
)

// ErrRunNotFound indicates no archived run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const runKeyPrefix = "run/"

// Record is one finished run as kept in the archive.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	Harness     string          `json:"harness"`
	Timing      string          `json:"timing"`
	Iterations  int             `json:"iterations"`
	StartSize   int             `json:"start_size"`
	Step        int             `json:"step"`
	EndSize     int             `json:"end_size"`
	Destination string          `json:"destination"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Result      json.RawMessage `json:"result"`
}

// Archive keeps finished runs in BadgerDB.
//
// Description:
//
//	One key per run, "run/<uuid>", holding the JSON-encoded Record. Only
//	complete runs are ever saved.
//
// Thread Safety: Safe for concurrent use.
type Archive struct {
	db *bstore.DB
}

// NewArchive wraps an open database. The caller keeps ownership of db.
func NewArchive(db *bstore.DB) *Archive {
	return &Archive{db: db}
}

// Save stores rec and returns its ID. A zero ID is replaced by a new UUID.
func (a *Archive) Save(ctx context.Context, rec Record) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode run %s: %w", rec.ID, err)
	}

	err = a.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return txn.Set(runKey(rec.ID), data)
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return rec.ID, nil
}

// Get returns the run with the given ID.
func (a *Archive) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	var rec Record
	err := a.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(runKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// List returns every archived run, oldest finish first.
func (a *Archive) List(ctx context.Context) ([]Record, error) {
	var out []Record
	err := a.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinishedAt.Before(out[j].FinishedAt)
	})
	return out, nil
}

func runKey(id uuid.UUID) []byte {
	return []byte(runKeyPrefix + id.String())
}
