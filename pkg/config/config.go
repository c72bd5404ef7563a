// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	EndpointURLKey    = "api_url"
	PrivateKeyKey     = "private_key"
	ExplorerKeyKey    = "polygonscan_api_key"
	NetworkKey        = "network"
	ArtifactsKey      = "artifacts"
	ChainIDKey        = "chain_id"
	ExplorerAPIURLKey = "explorer_api_url"
	LogLevelKey       = "log_level"
)

// NetworkConfig describes one target network the way the toolchain consumes it.
type NetworkConfig struct {
	URL      string   `json:"url" yaml:"url"`
	Accounts []string `json:"accounts" yaml:"accounts"`
	// ChainID is optional, 0 means the node is asked for it
	ChainID uint64 `json:"chainId,omitempty" yaml:"chainId,omitempty"`
}

// SigningKey returns the single account key configured for the network.
func (n NetworkConfig) SigningKey() string {
	if len(n.Accounts) == 0 {
		return ""
	}
	return n.Accounts[0]
}

// Redacted returns a copy safe to print or log.
func (n NetworkConfig) Redacted() NetworkConfig {
	accounts := make([]string, len(n.Accounts))
	for i, account := range n.Accounts {
		accounts[i] = RedactSecret(account)
	}
	n.Accounts = accounts
	return n
}

type EtherscanConfig struct {
	APIKey string `json:"apiKey" yaml:"apiKey"`
	APIURL string `json:"apiURL" yaml:"apiURL"`
}

type PathsConfig struct {
	Artifacts string `json:"artifacts" yaml:"artifacts"`
}

// Config is the static toolchain configuration: one compiler version,
// the known networks and the block explorer settings.
type Config struct {
	Solidity       string                   `json:"solidity" yaml:"solidity"`
	DefaultNetwork string                   `json:"defaultNetwork" yaml:"defaultNetwork"`
	Networks       map[string]NetworkConfig `json:"networks" yaml:"networks"`
	Etherscan      EtherscanConfig          `json:"etherscan" yaml:"etherscan"`
	Paths          PathsConfig              `json:"paths" yaml:"paths"`
}

// Network returns the settings for [name], or for the default network if [name] is empty
func (c *Config) Network(name string) (NetworkConfig, error) {
	if name == "" {
		name = c.DefaultNetwork
	}
	network, ok := c.Networks[name]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("%w: %q (known networks: %s)", constants.ErrUnknownNetwork, name, strings.Join(c.NetworkNames(), ", "))
	}
	return network, nil
}

func (c *Config) NetworkNames() []string {
	names := make([]string, 0, len(c.Networks))
	for name := range c.Networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Redacted returns a copy of the configuration with every secret masked
func (c *Config) Redacted() *Config {
	redacted := *c
	redacted.Networks = make(map[string]NetworkConfig, len(c.Networks))
	for name, network := range c.Networks {
		redacted.Networks[name] = network.Redacted()
	}
	redacted.Etherscan.APIKey = RedactSecret(c.Etherscan.APIKey)
	return &redacted
}

func RedactSecret(s string) string {
	if s == "" {
		return ""
	}
	return "<redacted>"
}

// Loader assembles a Config out of environment variables, an optional
// .env file, an optional config file and command line flags.
type Loader struct {
	v   *viper.Viper
	log logging.Logger
}

func NewLoader(log logging.Logger) *Loader {
	v := viper.New()
	v.SetDefault(NetworkKey, constants.DefaultNetwork)
	v.SetDefault(ArtifactsKey, constants.ArtifactsDir)
	v.SetDefault(ExplorerAPIURLKey, constants.MumbaiExplorerAPIURL)
	v.SetDefault(LogLevelKey, constants.DefaultLogLevel)
	// the toolchain variables are read without prefix
	_ = v.BindEnv(EndpointURLKey, constants.EndpointURLEnvVar)
	_ = v.BindEnv(PrivateKeyKey, constants.PrivateKeyEnvVar)
	_ = v.BindEnv(ExplorerKeyKey, constants.ExplorerKeyEnvVar)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &Loader{v: v, log: log}
}

// SetLogger replaces the logger given at construction, once logging is set up
func (l *Loader) SetLogger(log logging.Logger) {
	l.log = log
}

// LoadEnvFile loads [path] into the process environment. Variables already
// set are not overridden. A missing file is only an error if [required].
func (l *Loader) LoadEnvFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			l.log.Debug("No env file found", zap.String("env-file", path))
			return nil
		}
		return fmt.Errorf("failed reading env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed loading env file %s: %w", path, err)
	}
	l.log.Info("Using env file", zap.String("env-file", path))
	return nil
}

// SetConfigFile merges a json or yaml config file into the loader
func (l *Loader) SetConfigFile(path string) error {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch ext {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("unsupported config file extension %q, expected json or yaml", ext)
	}
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed reading config file %s: %w", path, err)
	}
	l.log.Info("Using config file", zap.String("config-file", path))
	return nil
}

// BindFlag makes a command line flag take precedence over the other sources of [key]
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("nil flag bound to %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// Load assembles the configuration. Values are not checked here, see Validate.
func (l *Loader) Load() *Config {
	network := NetworkConfig{
		URL:      l.v.GetString(EndpointURLKey),
		Accounts: []string{l.v.GetString(PrivateKeyKey)},
		ChainID:  l.v.GetUint64(ChainIDKey),
	}
	return &Config{
		Solidity:       constants.SolidityVersion,
		DefaultNetwork: l.v.GetString(NetworkKey),
		Networks: map[string]NetworkConfig{
			constants.DefaultNetwork: network,
		},
		Etherscan: EtherscanConfig{
			APIKey: l.v.GetString(ExplorerKeyKey),
			APIURL: l.v.GetString(ExplorerAPIURLKey),
		},
		Paths: PathsConfig{
			Artifacts: l.v.GetString(ArtifactsKey),
		},
	}
}
