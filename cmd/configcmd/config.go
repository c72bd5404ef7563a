// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configcmd

import (
	"github.com/ava-labs/contract-deployer/pkg/application"
	"github.com/ava-labs/contract-deployer/pkg/cobrautils"
	"github.com/spf13/cobra"
)

var app *application.Deployer

// deployer config
func NewCmd(injectedApp *application.Deployer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the toolchain configuration",
		Long:  `Inspect the toolchain configuration assembled from the environment, the .env file and the config file`,
		RunE:  cobrautils.CommandSuiteUsage,
	}
	app = injectedApp
	cmd.AddCommand(newShowCmd())
	return cmd
}
