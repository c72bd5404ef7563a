// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/contract-deployer/pkg/config"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/spf13/afero"
)

// Deployer holds what every command needs: logger, configuration sources
// and the filesystem the artifacts are read from
type Deployer struct {
	Log    logging.Logger
	Loader *config.Loader
	Fs     afero.Fs

	baseDir string
}

func New() *Deployer {
	return &Deployer{}
}

func (app *Deployer) Setup(baseDir string, log logging.Logger, loader *config.Loader, fs afero.Fs) {
	app.baseDir = baseDir
	app.Log = log
	app.Loader = loader
	app.Fs = fs
}

func (app *Deployer) GetLogDir() string {
	return filepath.Join(app.baseDir, constants.LogDir)
}

// LoadConfig assembles the toolchain configuration from every source the
// loader was given
func (app *Deployer) LoadConfig() *config.Config {
	return app.Loader.Load()
}
