// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package rundriver

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"

	"github.com/razorblade23/pycrucible/pkg/acquirer"
	"github.com/razorblade23/pycrucible/pkg/archive"
	"github.com/razorblade23/pycrucible/pkg/debugflag"
	"github.com/razorblade23/pycrucible/pkg/payload"
	"github.com/razorblade23/pycrucible/pkg/pyconfig"
	"github.com/razorblade23/pycrucible/pkg/reposync"
)

// Run executes the nine-step runtime sequence against the currently
// running executable's own bundled archive, forwarding runtimeArgs to the
// entry point in source mode.
func Run(ctx context.Context, runtimeArgs []string) error {
	// Step 1: read and validate the trailer.
	dlog.Debugf(ctx, "[trailer] opening self archive")
	bundle, err := payload.OpenSelfArchive()
	if err != nil {
		return fmt.Errorf("no embedded project: %w", err)
	}
	defer bundle.Close()

	// Step 2: choose a working directory.
	dlog.Debugf(ctx, "[workdir] choosing working directory (extract_to_temp=%v)", bundle.Trailer.ExtractToTemp)
	workDir, isTemp, err := chooseWorkDir(bundle.Trailer.ExtractToTemp)
	if err != nil {
		return err
	}
	if isTemp {
		defer os.RemoveAll(workDir)
	}

	// Step 3: extract every archive entry.
	dlog.Debugf(ctx, "[extract] extracting to %s", workDir)
	zr, err := zip.NewReader(bundle.SectionReader, bundle.Size())
	if err != nil {
		return fmt.Errorf("rundriver: opening embedded archive: %w", err)
	}
	if err := archive.Extract(zr, workDir); err != nil {
		if isTemp {
			os.RemoveAll(workDir)
		}
		return fmt.Errorf("rundriver: extracting payload: %w", err)
	}

	// Step 4: load configuration; optionally sync a source repository.
	dlog.Debugf(ctx, "[config] loading configuration from %s", workDir)
	cfg := pyconfig.Load(ctx, workDir)

	debugflag.Set(cfg.Options.Debug)
	if debugflag.Enabled() {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		ctx = dlog.WithLogger(ctx, dlog.WrapLogrus(logger))
		dlog.Debugf(ctx, "[config] debug mode enabled by bundled configuration")
	}

	if cfg.Source != nil {
		dlog.Debugf(ctx, "[reposync] syncing %s", cfg.Source.Repository)
		if err := reposync.New(workDir, *cfg.Source).Sync(ctx); err != nil {
			return fmt.Errorf("rundriver: repository sync: %w", err)
		}
	}

	// Step 5: apply environment variables.
	dlog.Debugf(ctx, "[env] applying %d environment variables", len(cfg.Env.Variables))
	for k, v := range cfg.Env.Variables {
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("rundriver: setting env var %s: %w", k, err)
		}
	}

	// Step 6: resolve the package manager.
	dlog.Debugf(ctx, "[acquirer] resolving uv")
	uvPath, err := acquirer.Resolve(ctx, acquirer.Options{
		Version:     cfg.Options.UVVersion,
		OfflineMode: cfg.Options.OfflineMode,
	})
	if err != nil {
		return fmt.Errorf("rundriver: resolving uv: %w", err)
	}

	// Step 7: determine run mode.
	mode, wheelName, err := DetermineMode(workDir)
	if err != nil {
		return err
	}

	entrypoint := cfg.Package.Entrypoint
	if entrypoint == "" {
		return fmt.Errorf("rundriver: entry point not found")
	}

	var entryArgs []string
	switch mode {
	case ModeWheel:
		dlog.Debugf(ctx, "[mode] wheel mode (%s)", wheelName)
		entryArgs = []string{"--with", wheelName, entrypoint}
	case ModeSource:
		dlog.Debugf(ctx, "[mode] source mode (%s)", entrypoint)
		if _, statErr := os.Stat(filepath.Join(workDir, entrypoint)); statErr != nil {
			return fmt.Errorf("rundriver: entry point %s does not exist: %w", entrypoint, statErr)
		}
		entryArgs = append([]string{entrypoint}, NormalizeArgs(runtimeArgs)...)
	}

	// Step 8: pre-hook, entry point, post-hook.
	dlog.Debugf(ctx, "[hooks] running pre-run hook")
	if err := runHookLine(ctx, uvPath, workDir, cfg.Hooks.PreRun, cfg.Options.UVArgs); err != nil {
		return fmt.Errorf("rundriver: pre-run hook: %w", err)
	}

	dlog.Debugf(ctx, "[entrypoint] running %s", entrypoint)
	runArgs := append([]string{"run"}, entryArgs...)
	if err := runUV(ctx, uvPath, workDir, cfg.Options.UVArgs, runArgs...); err != nil {
		return fmt.Errorf("rundriver: entry point: %w", err)
	}

	dlog.Debugf(ctx, "[hooks] running post-run hook")
	if err := runHookLine(ctx, uvPath, workDir, cfg.Hooks.PostRun, cfg.Options.UVArgs); err != nil {
		return fmt.Errorf("rundriver: post-run hook: %w", err)
	}

	// Step 9: cleanup.
	if cfg.Options.DeleteAfterRun || bundle.Trailer.ExtractToTemp {
		dlog.Debugf(ctx, "[cleanup] removing %s", workDir)
		if err := os.RemoveAll(workDir); err != nil {
			return fmt.Errorf("rundriver: cleanup: %w", err)
		}
	}

	return nil
}

