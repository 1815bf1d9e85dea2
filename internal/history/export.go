// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/task-archiver/pkg/types"
)

// ExportYAML writes every record matching opts to w as a YAML list.
// A zero Limit exports everything.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions, w io.Writer) error {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes every record matching opts to w as a JSON array.
// A zero Limit exports everything.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions, w io.Writer) error {
	records, err := s.exportRecords(ctx, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (s *Store) exportRecords(ctx context.Context, opts QueryOptions) ([]types.ArchiveRecord, error) {
	if opts.Limit == 0 {
		opts.Limit = -1
	}
	records, err := s.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if records == nil {
		records = []types.ArchiveRecord{}
	}
	return records, nil
}
