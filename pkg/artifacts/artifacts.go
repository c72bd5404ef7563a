// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package artifacts resolves contract factories out of the compiler output
// directory. Artifacts follow the hardhat layout:
// <artifacts>/<source path>/<contract name>.json
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/libevm/accounts/abi"
	"github.com/ava-labs/libevm/common"
	"github.com/spf13/afero"
)

const buildInfoDir = "build-info"

// Artifact is the json document the compiler emits per contract
type Artifact struct {
	Format           string                     `json:"_format"`
	ContractName     string                     `json:"contractName"`
	SourceName       string                     `json:"sourceName"`
	ABI              json.RawMessage            `json:"abi"`
	Bytecode         string                     `json:"bytecode"`
	DeployedBytecode string                     `json:"deployedBytecode"`
	LinkReferences   map[string]json.RawMessage `json:"linkReferences"`
}

// Factory is a compiled contract template, able to produce a deployment transaction
type Factory struct {
	ContractName string
	SourceName   string
	ABI          abi.ABI
	Bytecode     []byte
}

// FullyQualifiedName returns <source name>:<contract name>
func (f *Factory) FullyQualifiedName() string {
	return f.SourceName + ":" + f.ContractName
}

type Resolver struct {
	fs  afero.Fs
	dir string
}

func NewResolver(fs afero.Fs, dir string) *Resolver {
	return &Resolver{
		fs:  fs,
		dir: dir,
	}
}

func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve finds the factory for [name]. [name] is either a bare contract
// name, or a fully qualified one (contracts/Foo.sol:Foo) when the bare name
// is ambiguous.
func (r *Resolver) Resolve(name string) (*Factory, error) {
	artifactPath, err := r.findArtifact(name)
	if err != nil {
		return nil, err
	}
	artifactBytes, err := afero.ReadFile(r.fs, artifactPath)
	if err != nil {
		return nil, fmt.Errorf("failed reading artifact %s: %w", artifactPath, err)
	}
	return NewFactory(artifactBytes)
}

// NewFactory parses an artifact document into a deployable factory
func NewFactory(artifactBytes []byte) (*Factory, error) {
	var artifact Artifact
	if err := json.Unmarshal(artifactBytes, &artifact); err != nil {
		return nil, fmt.Errorf("failed parsing artifact: %w", err)
	}
	if artifact.ContractName == "" {
		return nil, fmt.Errorf("artifact has no contract name")
	}
	if len(artifact.ABI) == 0 {
		return nil, fmt.Errorf("artifact for %s has no abi", artifact.ContractName)
	}
	contractABI, err := abi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed parsing abi of %s: %w", artifact.ContractName, err)
	}
	bytecode := common.FromHex(artifact.Bytecode)
	if len(bytecode) == 0 {
		return nil, fmt.Errorf("%s: %w", artifact.ContractName, constants.ErrNotCompiled)
	}
	if len(artifact.LinkReferences) > 0 {
		libraries := make([]string, 0, len(artifact.LinkReferences))
		for source := range artifact.LinkReferences {
			libraries = append(libraries, source)
		}
		sort.Strings(libraries)
		return nil, fmt.Errorf("%s needs libraries to be linked before deploy: %s", artifact.ContractName, strings.Join(libraries, ", "))
	}
	return &Factory{
		ContractName: artifact.ContractName,
		SourceName:   artifact.SourceName,
		ABI:          contractABI,
		Bytecode:     bytecode,
	}, nil
}

func (r *Resolver) findArtifact(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty contract name")
	}
	if sourceName, contractName, ok := strings.Cut(name, ":"); ok {
		artifactPath := filepath.Join(r.dir, filepath.FromSlash(sourceName), contractName+constants.ArtifactSuffix)
		if exists, err := afero.Exists(r.fs, artifactPath); err != nil {
			return "", err
		} else if !exists {
			return "", fmt.Errorf("%s: %w", name, constants.ErrArtifactNotFound)
		}
		return artifactPath, nil
	}
	matches := []string{}
	err := afero.Walk(r.fs, r.dir, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == buildInfoDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(info.Name(), constants.DebugFileSuffix) {
			return nil
		}
		if info.Name() == name+constants.ArtifactSuffix {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%s (artifacts dir %s missing): %w", name, r.dir, constants.ErrArtifactNotFound)
		}
		return "", fmt.Errorf("failed looking up artifacts at %s: %w", r.dir, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", name, constants.ErrArtifactNotFound)
	case 1:
		return matches[0], nil
	}
	sort.Strings(matches)
	qualified := make([]string, len(matches))
	for i, m := range matches {
		rel, err := filepath.Rel(r.dir, filepath.Dir(m))
		if err != nil {
			rel = filepath.Dir(m)
		}
		qualified[i] = filepath.ToSlash(rel) + ":" + name
	}
	return "", fmt.Errorf("multiple artifacts for contract %s, use one of the fully qualified names: %s", name, strings.Join(qualified, ", "))
}
