// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"net/url"

	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/contract-deployer/pkg/evm"
)

var supportedSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ws":    {},
	"wss":   {},
}

// Validate checks everything a deployment to [networkName] needs, before any
// network call is made. All problems found are joined into the returned error.
func (c *Config) Validate(networkName string) error {
	if c.Solidity == "" {
		return newConfigurationError("solidity", "compiler version is not set")
	}
	network, err := c.Network(networkName)
	if err != nil {
		return newConfigurationError(constants.NetworkKeyName, "%s", err)
	}
	errs := []error{}
	if err := validateEndpoint(network.URL); err != nil {
		errs = append(errs, err)
	}
	if err := validateAccounts(network.Accounts); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateExplorer checks the block explorer settings used by verification
func (c *Config) ValidateExplorer() error {
	errs := []error{}
	if c.Etherscan.APIKey == "" {
		errs = append(errs, newConfigurationError(constants.ExplorerKeyEnvVar, "is not set"))
	}
	if c.Etherscan.APIURL == "" {
		errs = append(errs, newConfigurationError("explorer api url", "is not set"))
	} else if u, err := url.Parse(c.Etherscan.APIURL); err != nil || u.Host == "" {
		errs = append(errs, newConfigurationError("explorer api url", "%q is not a valid url", c.Etherscan.APIURL))
	}
	return errors.Join(errs...)
}

func validateEndpoint(endpoint string) error {
	if endpoint == "" {
		return newConfigurationError(constants.EndpointURLEnvVar, "is not set")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return newConfigurationError(constants.EndpointURLEnvVar, "is not a valid url: %s", err)
	}
	if _, ok := supportedSchemes[u.Scheme]; !ok {
		return newConfigurationError(constants.EndpointURLEnvVar, "has unsupported scheme %q, expected http, https, ws or wss", u.Scheme)
	}
	if u.Host == "" {
		return newConfigurationError(constants.EndpointURLEnvVar, "has no host")
	}
	return nil
}

// the key itself never makes it into the error message
func validateAccounts(accounts []string) error {
	if len(accounts) != 1 {
		return newConfigurationError(constants.PrivateKeyEnvVar, "expected exactly one account, got %d", len(accounts))
	}
	if accounts[0] == "" {
		return newConfigurationError(constants.PrivateKeyEnvVar, "is not set")
	}
	if _, err := evm.ParsePrivateKey(accounts[0]); err != nil {
		return newConfigurationError(constants.PrivateKeyEnvVar, "is not a valid hex encoded secp256k1 key")
	}
	return nil
}
