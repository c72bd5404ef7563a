// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/ava-labs/contract-deployer/cmd/configcmd"
	"github.com/ava-labs/contract-deployer/pkg/application"
	"github.com/ava-labs/contract-deployer/pkg/cobrautils"
	"github.com/ava-labs/contract-deployer/pkg/config"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/contract-deployer/pkg/utils"
	"github.com/ava-labs/contract-deployer/pkg/ux"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	app *application.Deployer

	logLevel   string
	envFile    string
	configFile string

	Version = ""

	userWriter io.Writer = os.Stdout
	logFactory logging.Factory

	// used to mock the filesystem artifacts are read from
	newFs = afero.NewOsFs

	// flags bound into the configuration loader when the running command has them
	boundFlags = map[string]string{
		config.LogLevelKey:  logLevelFlag,
		config.NetworkKey:   networkFlag,
		config.ArtifactsKey: artifactsFlag,
	}
)

// NewRootCmd builds the command tree. User output goes to [out].
func NewRootCmd(out io.Writer) *cobra.Command {
	userWriter = out
	rootCmd := &cobra.Command{
		Use: "deployer",
		Long: `Contract Deployer deploys a compiled smart contract to the configured
network and prints the address it was deployed to.

The target network is read from the environment (or a .env file):
  API_URL              rpc endpoint of the network
  PRIVATE_KEY          key of the account paying for the deployment
  POLYGONSCAN_API_KEY  block explorer api key, used to verify sources

To get started, compile your contracts and run deployer deploy.`,
		PersistentPreRunE: createApp,
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}
	app = application.New()

	// Disable printing the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	rootCmd.PersistentFlags().StringVar(&logLevel, logLevelFlag, constants.DefaultLogLevel, "log level for the application")
	rootCmd.PersistentFlags().StringVar(&envFile, envFileFlag, constants.EnvFileName, "env file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&configFile, configFileFlag, "", "json or yaml config file with additional settings")

	// add sub commands
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(configcmd.NewCmd(app))

	cobrautils.ConfigureRootCmd(rootCmd)
	return rootCmd
}

func createApp(cmd *cobra.Command, _ []string) error {
	baseDir, err := setupEnv()
	if err != nil {
		return err
	}
	loader := config.NewLoader(logging.NoLog{})
	if err := loader.LoadEnvFile(utils.ExpandHome(envFile), cmd.Flags().Changed(envFileFlag)); err != nil {
		return err
	}
	if configFile != "" {
		configPath := utils.ExpandHome(configFile)
		if !utils.FileExists(configPath) {
			return fmt.Errorf("config file %s not found", configPath)
		}
		if err := loader.SetConfigFile(configPath); err != nil {
			return err
		}
	}
	for key, flagName := range boundFlags {
		if flag := cmd.Flags().Lookup(flagName); flag != nil {
			if err := loader.BindFlag(key, flag); err != nil {
				return err
			}
		}
	}
	log, err := setupLogging(baseDir, loader.GetString(config.LogLevelKey))
	if err != nil {
		return err
	}
	loader.SetLogger(log)
	// create the user facing logger as a global var
	ux.NewUserLog(log, userWriter)
	app.Setup(baseDir, log, loader, newFs())
	log.Info("command started",
		zap.String("command", cmd.CommandPath()),
		zap.String("env-file", envFile),
		zap.String("config-file", configFile),
		zap.String("log-dir", app.GetLogDir()),
	)
	return nil
}

func setupEnv() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to get system user home dir: %w", err)
	}
	baseDir := filepath.Join(home, constants.BaseDirName)
	if err := os.MkdirAll(baseDir, constants.DefaultPerms755); err != nil {
		return "", fmt.Errorf("failed creating the basedir %s: %w", baseDir, err)
	}
	return baseDir, nil
}

func setupLogging(baseDir string, displayLevel string) (logging.Logger, error) {
	var err error

	logConfig := logging.Config{}
	logConfig.LogLevel = logging.Info
	logConfig.DisplayLevel, err = logging.ToLevel(displayLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level configured: %s", displayLevel)
	}
	logConfig.Directory = filepath.Join(baseDir, constants.LogDir)
	if err := os.MkdirAll(logConfig.Directory, perms.ReadWriteExecute); err != nil {
		return nil, fmt.Errorf("failed creating log directory: %w", err)
	}

	// some logging config params
	logConfig.LogFormat = logging.Colors
	logConfig.MaxSize = constants.MaxLogFileSize
	logConfig.MaxFiles = constants.MaxNumOfLogFiles
	logConfig.MaxAge = constants.RetainOldFiles

	factory := logging.NewFactory(logConfig)
	log, err := factory.Make(constants.LogName)
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed setting up logging, exiting: %w", err)
	}
	logFactory = factory
	return log, nil
}

// Run executes the command line [args] and returns the process exit code.
// Deployment errors of any kind map to the same failure code.
func Run(ctx context.Context, args []string, out io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCmd := NewRootCmd(out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	code := cobrautils.HandleErrors(out, err)
	if logFactory != nil {
		logFactory.Close()
		logFactory = nil
	}
	ux.Logger = nil
	return code
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout))
}
