// Copyright (C) 2021-2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package project

import (
	"archive/zip"
	"bufio"
	"fmt"
	"path"
	"sort"
	"strings"
)

// WheelPackageName opens the wheel at wheelPath and returns the package
// name recorded in the Name: field of its *.dist-info/METADATA entry.
//
// This mirrors pip's own dist-info resolution: the wheel must contain
// exactly one top-level directory named "*.dist-info"; zero or multiple
// such directories is an error.
func WheelPackageName(wheelPath string) (string, error) {
	r, err := zip.OpenReader(wheelPath)
	if err != nil {
		return "", fmt.Errorf("project: opening wheel %s: %w", wheelPath, err)
	}
	defer r.Close()

	metadataFile, err := findMetadataEntry(r.File)
	if err != nil {
		return "", err
	}

	rc, err := metadataFile.Open()
	if err != nil {
		return "", fmt.Errorf("project: opening %s: %w", metadataFile.Name, err)
	}
	defer rc.Close()

	name, err := readNameField(rc)
	if err != nil {
		return "", fmt.Errorf("project: %s: %w", metadataFile.Name, err)
	}
	return name, nil
}

// findMetadataEntry locates the single "*.dist-info/METADATA" entry.
// Based on pip/_internal/utils/wheel.py:wheel_dist_info_dir(), since PEP
// 427 doesn't actually have much to say about resolving ambiguity.
func findMetadataEntry(files []*zip.File) (*zip.File, error) {
	infoDirs := make(map[string]struct{})
	for _, f := range files {
		dirname := strings.Split(path.Clean(f.Name), "/")[0]
		if strings.HasSuffix(dirname, ".dist-info") {
			infoDirs[dirname] = struct{}{}
		}
	}

	switch len(infoDirs) {
	case 0:
		return nil, fmt.Errorf("project: .dist-info directory not found")
	case 1:
		var dir string
		for d := range infoDirs {
			dir = d
		}
		want := dir + "/METADATA"
		for _, f := range files {
			if path.Clean(f.Name) == want {
				return f, nil
			}
		}
		return nil, fmt.Errorf("project: %s/METADATA not found", dir)
	default:
		list := make([]string, 0, len(infoDirs))
		for d := range infoDirs {
			list = append(list, d)
		}
		sort.Strings(list)
		return nil, fmt.Errorf("project: multiple .dist-info directories found: %v", list)
	}
}

// readNameField returns the value of the first "Name:" header line in an
// RFC822-style METADATA file.
func readNameField(r interface{ Read([]byte) (int, error) }) (string, error) {
	scanner := bufio.NewScanner(bufio.NewReader(r))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "Name:") {
			name := strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			if name == "" {
				return "", fmt.Errorf("empty Name field")
			}
			return name, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scanning metadata: %w", err)
	}
	return "", fmt.Errorf("no Name field found")
}
