// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ArchiveRecord is one committed move of tasks from a source file to a
// destination, as stored in the history ledger.
type ArchiveRecord struct {
	// ID identifies the record; RunID groups records of one invocation.
	ID    string `json:"id" yaml:"id"`
	RunID string `json:"run_id" yaml:"run_id"`

	Time time.Time `json:"time" yaml:"time"`

	// Source and Destination are vault-relative paths. Destination is empty
	// when tasks were deleted instead of archived.
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Rule is the index of the rule in Config.Rules, or -1 for the
	// implicit default rule.
	Rule int `json:"rule" yaml:"rule"`

	// Tasks is the number of top-level task blocks moved.
	Tasks int `json:"tasks" yaml:"tasks"`

	// Content is the archived text as written to the destination.
	Content string `json:"content" yaml:"content"`
}
