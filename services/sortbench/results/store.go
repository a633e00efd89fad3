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
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/sortbench/pkg/validation"
)

var (
	// ErrEmptyDestination indicates Persist was called without a destination.
	ErrEmptyDestination = errors.New("destination must not be empty")

	// ErrNoObjectStore indicates a gs:// destination without a configured client.
	ErrNoObjectStore = errors.New("no object store configured for gs:// destination")
)

// Format is the serialization used for a destination.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the destination's extension.
// .yaml and .yml select YAML; everything else is JSON.
func FormatFor(dest string) Format {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Encode serializes v in the given format.
func Encode(format Format, v any) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(v)
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// Persister hands a finished result to durable storage.
type Persister interface {
	Persist(ctx context.Context, dest string, v any) error
}

// ObjectUploader writes one object to a bucket.
type ObjectUploader interface {
	Upload(ctx context.Context, bucket, object string, data []byte) error
}

// Store persists results to local files or, for gs:// destinations, to an
// object store.
type Store struct {
	// Objects handles gs:// destinations. May be nil if none are used.
	Objects ObjectUploader
}

// Persist serializes v and writes it to dest.
//
// Description:
//
//	Local files are written to a temporary file in the destination
//	directory and renamed into place, so a failed write never leaves a
//	truncated result behind. gs://bucket/object destinations are always
//	JSON unless the object name ends in .yaml or .yml.
//
// Inputs:
//   - ctx: Context for the object store upload.
//   - dest: File path or gs://bucket/object URL.
//   - v: The result, typically *Series or *ShapeSeries.
//
// Outputs:
//   - error: Encoding, filesystem or upload failure.
func (s *Store) Persist(ctx context.Context, dest string, v any) error {
	if dest == "" {
		return ErrEmptyDestination
	}

	data, err := Encode(FormatFor(dest), v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if bucket, object, ok := ParseGCSURL(dest); ok {
		if err := validation.ValidateBucketName(bucket); err != nil {
			return fmt.Errorf("destination %s: %w", dest, err)
		}
		if err := validation.ValidateObjectName(object); err != nil {
			return fmt.Errorf("destination %s: %w", dest, err)
		}
		if s.Objects == nil {
			return ErrNoObjectStore
		}
		if err := s.Objects.Upload(ctx, bucket, object, data); err != nil {
			return fmt.Errorf("upload %s: %w", dest, err)
		}
		return nil
	}
	return writeFileAtomic(dest, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// ParseGCSURL splits gs://bucket/object. ok is false for anything else,
// including a URL without an object name.
func ParseGCSURL(dest string) (bucket, object string, ok bool) {
	rest, found := strings.CutPrefix(dest, "gs://")
	if !found {
		return "", "", false
	}
	bucket, object, found = strings.Cut(rest, "/")
	if !found || bucket == "" || object == "" {
		return "", "", false
	}
	return bucket, object, true
}
