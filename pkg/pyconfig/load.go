// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package pyconfig

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/datawire/dlib/dlog"
	"github.com/pelletier/go-toml/v2"
)

// FileName is the name the normalized configuration is stored under,
// inside both the source tree at pack time and the extracted archive at
// run time.
const FileName = "pycrucible.toml"

// pyprojectDoc picks pycrucible's own [tool.pycrucible] table out of a
// pyproject.toml document; every other table of the document is ignored.
type pyprojectDoc struct {
	Tool struct {
		Pycrucible map[string]interface{} `toml:"pycrucible"`
	} `toml:"tool"`
}

// Load performs the three-tier lookup documented in the data model:
// pycrucible.toml, then pyproject.toml's [tool.pycrucible] table, then
// built-in defaults. It never returns an error: a malformed or absent
// configuration always falls back to defaults with a logged warning, per
// the resolved Open Question on parse-error handling.
func Load(ctx context.Context, dir string) ProjectConfig {
	direct := filepath.Join(dir, FileName)
	if data, err := os.ReadFile(direct); err == nil {
		cfg, decodeErr := decodeStrict(data)
		if decodeErr == nil {
			return cfg
		}
		dlog.Warnf(ctx, "pyconfig: %s: %v; falling back to defaults", direct, decodeErr)
		return Default()
	}

	pyproject := filepath.Join(dir, "pyproject.toml")
	if data, err := os.ReadFile(pyproject); err == nil {
		var doc pyprojectDoc
		if err := toml.Unmarshal(data, &doc); err != nil {
			dlog.Warnf(ctx, "pyconfig: %s: %v; falling back to defaults", pyproject, err)
			return Default()
		}
		if doc.Tool.Pycrucible == nil {
			return Default()
		}
		// Re-parse the extracted table as a full document, so it gets the
		// same defaults seeding and unknown-key rejection as pycrucible.toml.
		table, err := toml.Marshal(doc.Tool.Pycrucible)
		if err != nil {
			dlog.Warnf(ctx, "pyconfig: %s: %v; falling back to defaults", pyproject, err)
			return Default()
		}
		cfg, decodeErr := decodeStrict(table)
		if decodeErr != nil {
			dlog.Warnf(ctx, "pyconfig: %s: %v; falling back to defaults", pyproject, decodeErr)
			return Default()
		}
		return cfg
	}

	return Default()
}

// decodeStrict parses data as a full ProjectConfig document, rejecting
// unknown keys as the data model requires.
func decodeStrict(data []byte) (ProjectConfig, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return ProjectConfig{}, fmt.Errorf("decoding %s: %w", FileName, err)
	}
	return cfg, nil
}

// Marshal serializes cfg as the canonical pycrucible.toml document.
func Marshal(cfg ProjectConfig) ([]byte, error) {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("pyconfig: marshaling: %w", err)
	}
	return buf, nil
}
