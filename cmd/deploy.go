// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ava-labs/contract-deployer/pkg/artifacts"
	"github.com/ava-labs/contract-deployer/pkg/cobrautils"
	"github.com/ava-labs/contract-deployer/pkg/config"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/contract-deployer/pkg/contract"
	"github.com/ava-labs/contract-deployer/pkg/evm"
	"github.com/ava-labs/contract-deployer/pkg/ux"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type DeployFlags struct {
	network   string
	artifacts string
	timeout   time.Duration
}

var (
	deployFlags DeployFlags

	// used to mock the connection to the network
	dialClient = evm.GetClient
)

// deployer deploy
func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [contractName]",
		Short: "Deploy a compiled contract",
		Long: `The deploy command deploys a compiled contract into the configured network,
waits for the deployment transaction to be confirmed and prints the address of
the new contract.

The contract name defaults to ` + constants.DefaultContract + `. Use a fully qualified name
(contracts/Foo.sol:Foo) if more than one artifact has the same contract name.

Each run creates a new contract instance at a new address.`,
		RunE: deployContract,
		Args: cobrautils.MaximumNArgs(1),
	}
	cmd.Flags().StringVar(&deployFlags.network, networkFlag, constants.DefaultNetwork, "configured network to deploy into")
	cmd.Flags().StringVar(&deployFlags.artifacts, artifactsFlag, constants.ArtifactsDir, "compiler artifacts directory")
	cmd.Flags().DurationVar(&deployFlags.timeout, timeoutFlag, 0, "give up waiting for confirmation after this duration (0 waits forever)")
	return cmd
}

func deployContract(cmd *cobra.Command, args []string) error {
	contractName := constants.DefaultContract
	if len(args) == 1 {
		contractName = args[0]
	}
	cfg := app.LoadConfig()
	if err := cfg.Validate(cfg.DefaultNetwork); err != nil {
		return &contract.DeployError{Kind: contract.KindConfiguration, Err: err}
	}
	network, err := cfg.Network(cfg.DefaultNetwork)
	if err != nil {
		return &contract.DeployError{Kind: contract.KindConfiguration, Err: err}
	}
	privateKey, err := evm.ParsePrivateKey(network.SigningKey())
	if err != nil {
		return &contract.DeployError{
			Kind: contract.KindConfiguration,
			Err:  &config.ConfigurationError{Field: constants.PrivateKeyEnvVar, Reason: err.Error()},
		}
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if deployFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deployFlags.timeout)
		defer cancel()
	}
	client, err := dialClient(ctx, network.URL)
	if err != nil {
		ux.Logger.Error("failed connecting to network %s: %s", cfg.DefaultNetwork, err)
		return &contract.DeployError{Kind: contract.KindNetwork, Err: err}
	}
	defer client.Close()

	resolver := artifacts.NewResolver(app.Fs, cfg.Paths.Artifacts)
	deployer := contract.NewDeployer(
		app.Log,
		resolver,
		client,
		privateKey,
		network.ChainID,
	)
	fields := []zap.Field{
		zap.String("contract", contractName),
		zap.String("network", cfg.DefaultNetwork),
		zap.String("artifacts", resolver.Dir()),
		zap.Stringer("deployer", deployer.Address()),
	}
	// the balance is informative only, a failed lookup does not stop the deployment
	if balance, err := client.GetAddressBalance(ctx, deployer.Address()); err != nil {
		app.Log.Warn("failed obtaining deployer balance", zap.Error(err))
	} else {
		fields = append(fields, zap.Stringer("balance", balance))
	}
	app.Log.Info("deploying", fields...)
	start := time.Now()
	result, err := deployWithSpinner(ctx, deployer, contractName)
	if err != nil {
		return err
	}
	ux.Logger.Info("%s confirmed in %s, gas used %s",
		result.TxHash.Hex(),
		ux.FormatElapsed(time.Since(start)),
		ux.ConvertToStringWithThousandSeparator(result.Receipt.GasUsed),
	)
	if cfg.DefaultNetwork == constants.DefaultNetwork {
		app.Log.Info("explorer link",
			zap.String("url", fmt.Sprintf("%s/address/%s", constants.MumbaiExplorerURL, result.Address.Hex())),
		)
	}
	ux.Logger.PrintToUser("%s %s", constants.DeployedLabel, result.Address.Hex())
	return nil
}

// the spinner is only drawn on an interactive terminal
func deployWithSpinner(ctx context.Context, deployer *contract.Deployer, contractName string) (contract.Result, error) {
	if userWriter != os.Stdout || !term.IsTerminal(int(os.Stdout.Fd())) {
		return deployer.Deploy(ctx, contractName)
	}
	spinner := ux.NewUserSpinner(os.Stdout)
	sp := spinner.SpinToUser("Deploying %s", contractName)
	result, err := deployer.Deploy(ctx, contractName)
	if err != nil {
		ux.SpinFailWithError(sp, err)
	} else {
		ux.SpinComplete(sp)
	}
	spinner.Stop()
	return result, err
}
