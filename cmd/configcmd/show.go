// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configcmd

import (
	"fmt"
	"strings"

	"github.com/ava-labs/contract-deployer/pkg/cobrautils"
	"github.com/ava-labs/contract-deployer/pkg/ux"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	tableFormat = "table"
	yamlFormat  = "yaml"
)

var (
	outputFormat string
	validate     bool
)

// deployer config show
func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		Long: `Print the configuration handed to the deployment: compiler version,
networks and block explorer. Secrets are always redacted.`,
		RunE: showConfig,
		Args: cobrautils.ExactArgs(0),
	}
	cmd.Flags().StringVar(&outputFormat, "output", tableFormat, "output format, table or yaml")
	cmd.Flags().BoolVar(&validate, "validate", false, "also check the configuration of the default network")
	return cmd
}

func showConfig(_ *cobra.Command, _ []string) error {
	cfg := app.LoadConfig()
	redacted := cfg.Redacted()
	switch outputFormat {
	case yamlFormat:
		out, err := yaml.Marshal(redacted)
		if err != nil {
			return err
		}
		ux.Logger.PrintToUser("%s", strings.TrimSuffix(string(out), "\n"))
	case tableFormat:
		rows := [][2]string{
			{"Solidity", redacted.Solidity},
			{"Default Network", redacted.DefaultNetwork},
		}
		for _, name := range redacted.NetworkNames() {
			network := redacted.Networks[name]
			rows = append(rows,
				[2]string{fmt.Sprintf("Network %s URL", name), network.URL},
				[2]string{fmt.Sprintf("Network %s Accounts", name), strings.Join(network.Accounts, ", ")},
			)
			if network.ChainID != 0 {
				rows = append(rows, [2]string{fmt.Sprintf("Network %s Chain ID", name), fmt.Sprint(network.ChainID)})
			}
		}
		rows = append(rows,
			[2]string{"Explorer API URL", redacted.Etherscan.APIURL},
			[2]string{"Explorer API Key", redacted.Etherscan.APIKey},
			[2]string{"Artifacts", redacted.Paths.Artifacts},
		)
		ux.Logger.PrintToUser("%s", ux.KeyValueTable("Configuration", rows).Render())
	default:
		return fmt.Errorf("unknown output format %q, expected %s or %s", outputFormat, tableFormat, yamlFormat)
	}
	if validate {
		if err := cfg.Validate(cfg.DefaultNetwork); err != nil {
			return err
		}
		ux.Logger.GreenCheckmarkToUser("Configuration for network %s is valid", cfg.DefaultNetwork)
	}
	return nil
}
