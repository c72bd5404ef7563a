// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/contract-deployer/pkg/cobrautils"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/contract-deployer/pkg/explorer"
	"github.com/ava-labs/contract-deployer/pkg/ux"
	"github.com/ava-labs/libevm/common"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type VerifyFlags struct {
	source          string
	contractName    string
	compilerVersion string
	optimize        bool
	runs            int
}

var (
	verifyFlags VerifyFlags

	// status polling of the explorer, shortened on tests
	verifyPollInterval = constants.ExplorerPollInterval
	verifyMaxPolls     = constants.ExplorerMaxStatusQueries
)

// deployer verify
func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [address]",
		Short: "Verify the source of a deployed contract on the block explorer",
		Long: `The verify command publishes the flattened source of an already deployed
contract to the Etherscan compatible block explorer configured by
POLYGONSCAN_API_KEY, and waits for the explorer to accept it.

Deploying never verifies: run this command after deploy.`,
		RunE: verifyContract,
		Args: cobrautils.ExactArgs(1),
	}
	cmd.Flags().StringVar(&verifyFlags.source, "source", "", "flattened solidity source file of the contract")
	cmd.Flags().StringVar(&verifyFlags.contractName, "contract", constants.DefaultContract, "name of the contract inside the source file")
	cmd.Flags().StringVar(&verifyFlags.compilerVersion, "compiler-version", "", "solc version used to compile (defaults to the configured one)")
	cmd.Flags().BoolVar(&verifyFlags.optimize, "optimize", false, "the contract was compiled with the optimizer enabled")
	cmd.Flags().IntVar(&verifyFlags.runs, "runs", 200, "optimizer runs used to compile")
	return cmd
}

func verifyContract(cmd *cobra.Command, args []string) error {
	if !common.IsHexAddress(args[0]) {
		return cobrautils.NewUsageError(cmd, fmt.Errorf("invalid contract address %q", args[0]))
	}
	address := common.HexToAddress(args[0])
	if verifyFlags.source == "" {
		return cobrautils.NewUsageError(cmd, errors.New("--source is required"))
	}
	cfg := app.LoadConfig()
	if err := cfg.ValidateExplorer(); err != nil {
		return err
	}
	sourceCode, err := afero.ReadFile(app.Fs, verifyFlags.source)
	if err != nil {
		return fmt.Errorf("failed reading source %s: %w", verifyFlags.source, err)
	}
	compilerVersion := verifyFlags.compilerVersion
	if compilerVersion == "" {
		compilerVersion = cfg.Solidity
	}
	client := explorer.NewClient(app.Log, cfg.Etherscan.APIURL, cfg.Etherscan.APIKey)
	client.SetPolling(verifyPollInterval, verifyMaxPolls)

	ctx := cmd.Context()
	verified, err := client.IsVerified(ctx, address)
	if err != nil {
		return err
	}
	if verified {
		ux.Logger.PrintToUser("Contract %s is already verified", address.Hex())
		return nil
	}
	start := time.Now()
	err = client.Verify(ctx, explorer.VerifyRequest{
		Address:         address,
		ContractName:    verifyFlags.contractName,
		SourceCode:      string(sourceCode),
		CompilerVersion: compilerVersion,
		Optimized:       verifyFlags.optimize,
		Runs:            verifyFlags.runs,
	})
	switch {
	case errors.Is(err, explorer.ErrAlreadyVerified):
		ux.Logger.PrintToUser("Contract %s is already verified", address.Hex())
		return nil
	case err != nil:
		return err
	}
	ux.Logger.GreenCheckmarkToUser("Successfully verified contract %s at %s in %s",
		verifyFlags.contractName,
		address.Hex(),
		ux.FormatElapsed(time.Since(start)),
	)
	return nil
}
