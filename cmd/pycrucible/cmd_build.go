// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/razorblade23/pycrucible/pkg/acquirer"
	"github.com/razorblade23/pycrucible/pkg/archive"
	"github.com/razorblade23/pycrucible/pkg/debugflag"
	"github.com/razorblade23/pycrucible/pkg/payload"
	"github.com/razorblade23/pycrucible/pkg/project"
	"github.com/razorblade23/pycrucible/pkg/pyconfig"
	"github.com/razorblade23/pycrucible/pkg/runnerbin"
	"github.com/razorblade23/pycrucible/pkg/spin"
)

type buildFlags struct {
	embed           string
	output          string
	uvPath          string
	uvVersion       string
	noUVEmbed       bool
	extractToTemp   bool
	deleteAfterRun  bool
	forceUVDownload bool
	debug           bool
}

func init() {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Pack a Python project into a single executable",
		Args:  cliutilNoArgs(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.embed, "embed", "e", "", "source project to embed (required)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output binary path (default ./launcher[.exe])")
	cmd.Flags().StringVar(&flags.uvPath, "uv-path", "", "explicit uv binary location")
	cmd.Flags().StringVar(&flags.uvVersion, "uv-version", "latest", "uv release identifier to acquire when downloading")
	cmd.Flags().BoolVar(&flags.noUVEmbed, "no-uv-embed", false, "skip placing uv into the archive")
	cmd.Flags().BoolVar(&flags.extractToTemp, "extract-to-temp", false, "extract to a temporary directory at runtime")
	cmd.Flags().BoolVar(&flags.deleteAfterRun, "delete-after-run", false, "remove the working directory after a successful run")
	cmd.Flags().BoolVar(&flags.forceUVDownload, "force-uv-download", false, "force re-acquisition of uv even if already cached")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "enable debug tracing in both packer and runner")

	_ = cmd.MarkFlagRequired("embed")

	argparser.AddCommand(cmd)
}

func cliutilNoArgs() cobra.PositionalArgs {
	return cobra.NoArgs
}

func runBuild(ctx context.Context, flags *buildFlags) error {
	debugflag.Set(flags.debug)

	cfg := pyconfig.Load(ctx, flags.embed)
	cfg.Options.Debug = flags.debug
	cfg.Options.ExtractToTemp = flags.extractToTemp
	cfg.Options.DeleteAfterRun = flags.deleteAfterRun
	if flags.uvVersion != "" {
		cfg.Options.UVVersion = flags.uvVersion
	}

	dlog.Debugf(ctx, "[collect] collecting sources from %s", flags.embed)
	sources, err := project.Collect(flags.embed, cfg.Package.Patterns)
	if err != nil {
		return fmt.Errorf("pycrucible: collecting sources: %w", err)
	}

	var manifestPath, manifestName string
	if sources.Mode == project.ModeFiles {
		if len(sources.Files) == 0 {
			fmt.Fprintln(os.Stderr, "pycrucible: warning: no source files matched the configured patterns")
		}
		manifestPath, manifestName, err = project.FindManifest(flags.embed)
		if err != nil {
			return fmt.Errorf("pycrucible: %w", err)
		}
		if cfg.Package.Entrypoint == "" {
			return fmt.Errorf("pycrucible: entry point not found: specify package.entrypoint in pycrucible.toml")
		}
	} else {
		cfg.Package.Entrypoint = sources.WheelEntrypoint
	}

	spinner := spin.Start(os.Stderr, "packing archive")
	archiveBytes, err := buildArchive(ctx, flags, cfg, sources, manifestPath, manifestName)
	if err != nil {
		spinner.Stop("failed")
		return err
	}
	spinner.Stop("archive packed")

	output := flags.output
	if output == "" {
		output = "launcher"
		if runtime.GOOS == "windows" {
			output = "launcher.exe"
		}
	}

	dlog.Debugf(ctx, "[bundle] writing %s", output)
	if err := payload.BuildBundle(output, runnerbin.Bin, bytesReader(archiveBytes), flags.extractToTemp); err != nil {
		return fmt.Errorf("pycrucible: %w", err)
	}

	printSuccess(os.Stdout, "wrote %s", output)
	return nil
}

func buildArchive(ctx context.Context, flags *buildFlags, cfg pyconfig.ProjectConfig, sources project.CollectedSources, manifestPath, manifestName string) ([]byte, error) {
	w := archive.NewWriter()

	switch sources.Mode {
	case project.ModeFiles:
		for _, f := range sources.Files {
			if err := w.AddFileFromDisk(f.ArchivePath, f.AbsPath); err != nil {
				return nil, fmt.Errorf("pycrucible: %w", err)
			}
		}
		if err := w.AddFileFromDisk(manifestName, manifestPath); err != nil {
			return nil, fmt.Errorf("pycrucible: adding manifest: %w", err)
		}
	case project.ModeWheel:
		if err := w.AddFileFromDisk(wheelArchiveName(sources.WheelPath), sources.WheelPath); err != nil {
			return nil, fmt.Errorf("pycrucible: adding distribution file: %w", err)
		}
	}

	data, err := pyconfig.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("pycrucible: %w", err)
	}
	if err := w.AddFile(pyconfig.FileName, data, 0o644); err != nil {
		return nil, fmt.Errorf("pycrucible: %w", err)
	}

	if !flags.noUVEmbed {
		uvBytes, err := resolveUVForEmbedding(ctx, flags, cfg)
		if err != nil {
			return nil, fmt.Errorf("pycrucible: resolving uv for embedding: %w", err)
		}
		if err := w.AddUV(acquirer.ExeName(), uvBytes); err != nil {
			return nil, fmt.Errorf("pycrucible: %w", err)
		}
	}

	return w.Bytes()
}

func resolveUVForEmbedding(ctx context.Context, flags *buildFlags, cfg pyconfig.ProjectConfig) ([]byte, error) {
	uvPath, err := acquirer.Resolve(ctx, acquirer.Options{
		OverridePath:  flags.uvPath,
		Version:       cfg.Options.UVVersion,
		OfflineMode:   cfg.Options.OfflineMode,
		ForceDownload: flags.forceUVDownload,
	})
	if err != nil {
		return nil, err
	}
	return os.ReadFile(uvPath)
}
