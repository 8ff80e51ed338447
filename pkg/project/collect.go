// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package project collects a project's source files or a single
// distribution archive into the tagged union the packer embeds, and
// selects the manifest file that describes its dependencies.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/razorblade23/pycrucible/pkg/pyconfig"
)

// distributionExt is the case-insensitive extension identifying a
// distribution archive.
const distributionExt = ".whl"

// File is one collected source file: its absolute path on disk and its
// manifest-relative archive path (forward-slash separated).
type File struct {
	AbsPath     string
	ArchivePath string
}

// Mode tags which shape of archive a CollectedSources value describes.
type Mode int

const (
	ModeFiles Mode = iota
	ModeWheel
)

// CollectedSources is the tagged union CollectedSources ∈ {Wheel, Files}
// from the data model.
type CollectedSources struct {
	Mode Mode

	// Files is populated when Mode == ModeFiles: every matched source
	// file, deduplicated by canonical absolute path.
	Files []File

	// WheelPath and WheelEntrypoint are populated when Mode == ModeWheel.
	WheelPath       string
	WheelEntrypoint string
}

// Collect inspects sourcePath and returns the files to embed. If
// sourcePath is a single file with a case-insensitive .whl extension, it
// enters distribution mode; otherwise it walks the directory in files
// mode using patterns to decide inclusion.
func Collect(sourcePath string, patterns pyconfig.Patterns) (CollectedSources, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return CollectedSources{}, fmt.Errorf("project: stat %s: %w", sourcePath, err)
	}

	if !info.IsDir() && strings.EqualFold(filepath.Ext(sourcePath), distributionExt) {
		name, err := WheelPackageName(sourcePath)
		if err != nil {
			return CollectedSources{}, fmt.Errorf("project: reading wheel metadata: %w", err)
		}
		abs, err := filepath.Abs(sourcePath)
		if err != nil {
			return CollectedSources{}, fmt.Errorf("project: resolving %s: %w", sourcePath, err)
		}
		return CollectedSources{
			Mode:            ModeWheel,
			WheelPath:       abs,
			WheelEntrypoint: name,
		}, nil
	}

	return collectFiles(sourcePath, patterns)
}

func collectFiles(root string, patterns pyconfig.Patterns) (CollectedSources, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return CollectedSources{}, fmt.Errorf("project: resolving %s: %w", root, err)
	}
	root, err = filepath.EvalSymlinks(root)
	if err != nil {
		return CollectedSources{}, fmt.Errorf("project: resolving symlinks of %s: %w", root, err)
	}

	includes, err := compileGlobs(patterns.Include)
	if err != nil {
		return CollectedSources{}, err
	}
	excludes, err := compileGlobs(patterns.Exclude)
	if err != nil {
		return CollectedSources{}, err
	}

	// seen holds the canonical (symlink-resolved) path of every directory
	// already descended into and every file already collected, so that a
	// symlink cycle or a symlink-and-its-target both reachable from root
	// are each visited at most once. Walk (below) is written by hand,
	// rather than with filepath.Walk, because Walk Lstats each entry and
	// never descends into a symlink-to-directory; this walk follows
	// symlinks, per spec.
	seen := map[string]struct{}{root: {}}
	var files []File

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("project: reading directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				// Broken symlink: skip rather than fail the whole walk.
				continue
			}
			info, err := os.Stat(resolved)
			if err != nil {
				continue
			}

			if info.IsDir() {
				if _, ok := seen[resolved]; ok {
					continue // already descended; guards symlink cycles
				}
				seen[resolved] = struct{}{}
				if err := walk(path); err != nil {
					return err
				}
				continue
			}

			if _, ok := seen[resolved]; ok {
				continue
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return fmt.Errorf("project: computing relative path of %s: %w", path, err)
			}
			relSlash := filepath.ToSlash(rel)

			if !shouldInclude(relSlash, includes, excludes) {
				continue
			}

			seen[resolved] = struct{}{}
			files = append(files, File{AbsPath: resolved, ArchivePath: relSlash})
		}
		return nil
	}

	if err := walk(root); err != nil {
		return CollectedSources{}, fmt.Errorf("project: walking %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].ArchivePath < files[j].ArchivePath })

	return CollectedSources{Mode: ModeFiles, Files: files}, nil
}

// shouldInclude implements "a file is included iff no exclude pattern
// matches its relative path AND at least one include pattern matches."
func shouldInclude(relSlash string, includes, excludes []glob.Glob) bool {
	for _, ex := range excludes {
		if ex.Match(relSlash) {
			return false
		}
	}
	for _, in := range includes {
		if in.Match(relSlash) {
			return true
		}
	}
	return false
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("project: compiling pattern %q: %w", p, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}
