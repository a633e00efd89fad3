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
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSClient uploads results to Google Cloud Storage.
type GCSClient struct {
	storageClient *storage.Client
}

// NewGCSClient creates a storage client.
//
// If credentialsFile is empty, Application Default Credentials are used.
func NewGCSClient(ctx context.Context, credentialsFile string) (*GCSClient, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account key not found at path %s: %w", credentialsFile, err)
		}
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSClient{storageClient: storageClient}, nil
}

// Upload implements ObjectUploader.
func (c *GCSClient) Upload(ctx context.Context, bucket, object string, data []byte) error {
	writer := c.storageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if FormatFor(object) == FormatYAML {
		writer.ContentType = "application/yaml"
	}
	writer.CacheControl = "no-cache, no-store, must-revalidate"

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write GCS object gs://%s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer for gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// Close releases the underlying client.
func (c *GCSClient) Close() error {
	return c.storageClient.Close()
}
