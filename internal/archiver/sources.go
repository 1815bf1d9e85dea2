// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archiver

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/pdiddy/task-archiver/internal/placeholder"
	"github.com/pdiddy/task-archiver/internal/rule"
	"github.com/pdiddy/task-archiver/internal/vault"
)

// archiveTemplate is the archive file name of r with placeholders intact.
func archiveTemplate(r *rule.Compiled) string {
	return path.Clean(strings.TrimSpace(r.Rule.ArchiveFileName))
}

// archiveFiles returns the notes that separate-file rules archive into. The
// vault is listed, together with extra paths that may not exist yet, and a
// note counts as an archive when a rule resolves the name of some other note
// it applies to, on any date, to that note. The decision depends only on
// file names, so every run agrees on it.
func (a *Archiver) archiveFiles(extra ...string) (map[string]bool, error) {
	archives := make(map[string]bool)
	if !slices.ContainsFunc(a.rules, func(r *rule.Compiled) bool { return r.Rule.ArchiveToSeparateFile }) {
		return archives, nil
	}

	files, err := a.vault.MarkdownFiles()
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	files = append(files, extra...)
	slices.Sort(files)
	files = slices.Compact(files)

	for _, r := range a.rules {
		if !r.Rule.ArchiveToSeparateFile {
			continue
		}
		if err := markArchives(archives, r, files); err != nil {
			return nil, fmt.Errorf("rule %d: archive file name: %w", r.Index, err)
		}
	}
	return archives, nil
}

func markArchives(archives map[string]bool, r *rule.Compiled, files []string) error {
	tmpl := archiveTemplate(r)
	anySource, err := placeholder.Pattern(tmpl, placeholder.Context{DateFormat: r.Rule.DateFormat})
	if err != nil {
		return err
	}
	perSource := strings.Contains(tmpl, placeholder.SourceFileName) ||
		strings.Contains(tmpl, placeholder.SourceFilePath) ||
		strings.Contains(tmpl, placeholder.Heading)

	var sources []string
	listed := false
	for _, name := range files {
		if archives[name] || !matchesArchive(anySource, name) {
			continue
		}
		if !perSource {
			archives[name] = true
			continue
		}

		if !listed {
			if sources, err = applicable(r, files); err != nil {
				return err
			}
			listed = true
		}
		for _, src := range sources {
			if src == name {
				continue
			}
			re, err := placeholder.Pattern(tmpl, placeholder.Context{
				DateFormat: r.Rule.DateFormat,
				SourcePath: src,
			})
			if err != nil {
				return err
			}
			if matchesArchive(re, name) {
				archives[name] = true
				break
			}
		}
	}
	return nil
}

func applicable(r *rule.Compiled, files []string) ([]string, error) {
	var out []string
	for _, f := range files {
		ok, err := r.AppliesTo(f)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// matchesArchive reports whether name is a file the pattern resolves to
// once the markdown extension is added.
func matchesArchive(re *regexp.Regexp, name string) bool {
	if re.MatchString(name) {
		return true
	}
	base, ok := strings.CutSuffix(name, vault.Ext)
	return ok && re.MatchString(base)
}
