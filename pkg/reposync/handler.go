// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package reposync synchronizes an optional source repository into the
// runner's working directory, per the "source" configuration block.
package reposync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/razorblade23/pycrucible/pkg/pyconfig"
)

const defaultBranch = "main"

// Handler synchronizes a working directory against a configured source
// repository.
type Handler struct {
	WorkDir string
	Source  pyconfig.Source
}

// New returns a Handler for the given working directory and source
// configuration.
func New(workDir string, source pyconfig.Source) *Handler {
	return &Handler{WorkDir: workDir, Source: source}
}

// Sync opens the repository if already cloned, otherwise clones it
// (moving any already-extracted package-manager binary aside first so
// the clone doesn't overwrite it), applies the configured update
// strategy, and finally detaches HEAD to a tag or commit if one is set
// (tag wins on ambiguity).
func (h *Handler) Sync(ctx context.Context) error {
	gitDir := filepath.Join(h.WorkDir, ".git")

	var repo *git.Repository
	var err error

	if _, statErr := os.Stat(gitDir); statErr == nil {
		dlog.Debugf(ctx, "[reposync] opening existing repository at %s", h.WorkDir)
		repo, err = git.PlainOpen(h.WorkDir)
		if err != nil {
			return fmt.Errorf("reposync: opening %s: %w", h.WorkDir, err)
		}
	} else {
		repo, err = h.cloneIntoWorkDir(ctx)
		if err != nil {
			return err
		}
	}

	if err := h.update(ctx, repo); err != nil {
		return fmt.Errorf("reposync: updating %s: %w", h.Source.Repository, err)
	}

	if err := h.checkoutPinned(ctx, repo); err != nil {
		return fmt.Errorf("reposync: checking out pinned ref: %w", err)
	}
	return nil
}

// cloneIntoWorkDir performs the move-aside-and-restore dance: the
// already-extracted uv binary (if present) is moved out of the working
// directory, the directory is cleared, the repository is cloned, and the
// binary is moved back.
func (h *Handler) cloneIntoWorkDir(ctx context.Context) (*git.Repository, error) {
	dlog.Debugf(ctx, "[reposync] cloning %s into %s", h.Source.Repository, h.WorkDir)

	preserved, err := preserveUVBinaries(h.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("reposync: preserving uv binary: %w", err)
	}

	entries, err := os.ReadDir(h.WorkDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reposync: reading %s: %w", h.WorkDir, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(h.WorkDir, e.Name())); err != nil {
			return nil, fmt.Errorf("reposync: clearing %s: %w", h.WorkDir, err)
		}
	}

	if err := os.MkdirAll(h.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("reposync: creating %s: %w", h.WorkDir, err)
	}

	repo, err := git.PlainCloneContext(ctx, h.WorkDir, false, &git.CloneOptions{
		URL: h.Source.Repository,
	})
	if err != nil {
		return nil, fmt.Errorf("reposync: cloning %s: %w", h.Source.Repository, err)
	}

	if err := restoreUVBinaries(h.WorkDir, preserved); err != nil {
		return nil, fmt.Errorf("reposync: restoring uv binary: %w", err)
	}
	return repo, nil
}

// update applies the configured update strategy: "pull" fetches and
// fast-forwards HEAD to the tracked remote branch; "fetch" only fetches.
func (h *Handler) update(ctx context.Context, repo *git.Repository) error {
	remote, err := repo.Remote("origin")
	if err != nil {
		return fmt.Errorf("locating origin remote: %w", err)
	}

	err = remote.FetchContext(ctx, &git.FetchOptions{})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("fetching origin: %w", err)
	}

	if h.Source.UpdateStrategy == pyconfig.UpdateStrategyFetch {
		return nil
	}

	branch := h.Source.Branch
	if branch == "" {
		branch = defaultBranch
	}

	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return fmt.Errorf("resolving origin/%s: %w", branch, err)
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}

	ref := plumbing.NewHashReference(head.Name(), remoteRef.Hash())
	if err := repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("pull: fast-forward update: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: remoteRef.Hash(), Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", remoteRef.Hash(), err)
	}
	return nil
}

// checkoutPinned detaches HEAD to the configured tag or commit, tag
// winning on ambiguity. A no-op if neither is set.
func (h *Handler) checkoutPinned(ctx context.Context, repo *git.Repository) error {
	var hash plumbing.Hash

	switch {
	case h.Source.Tag != "":
		ref, err := repo.Reference(plumbing.NewTagReferenceName(h.Source.Tag), true)
		if err != nil {
			return fmt.Errorf("resolving tag %s: %w", h.Source.Tag, err)
		}
		hash = ref.Hash()
		dlog.Debugf(ctx, "[reposync] detaching HEAD to tag %s", h.Source.Tag)
	case h.Source.Commit != "":
		hash = plumbing.NewHash(h.Source.Commit)
		dlog.Debugf(ctx, "[reposync] detaching HEAD to commit %s", h.Source.Commit)
	default:
		return nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	return wt.Checkout(&git.CheckoutOptions{Hash: hash, Force: true})
}
