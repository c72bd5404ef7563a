// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/ava-labs/libevm/accounts/abi/bind"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/ethclient"
)

// Backend is the subset of an evm node used to deploy and confirm contracts.
// *ethclient.Client implements it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	Close()
}

// used to mock the connection function
var ethclientDialContext = func(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// wraps over an evm backend for the calls used by the deployer. featues:
// - logs rpc url in case of failure
// - no retries: a failed call is reported as is
type Client struct {
	Backend Backend
	URL     string
}

// indicates if the given rpc url has schema or not
func HasScheme(rpcURL string) (bool, error) {
	if parsedURL, err := url.Parse(rpcURL); err != nil {
		if !strings.Contains(err.Error(), "first path segment in URL cannot contain colon") {
			return false, err
		}
		return false, nil
	} else {
		return strings.Contains(rpcURL, "://") && parsedURL.Scheme != "", nil
	}
}

// connects an evm client to the given [rpcURL]
func GetClient(ctx context.Context, rpcURL string) (Client, error) {
	client := Client{
		URL: rpcURL,
	}
	hasScheme, err := HasScheme(rpcURL)
	if err != nil {
		return client, fmt.Errorf("failure determining the scheme of url %s: %w", rpcURL, err)
	}
	if !hasScheme {
		return client, fmt.Errorf("url %s has no scheme", rpcURL)
	}
	client.Backend, err = ethclientDialContext(ctx, rpcURL)
	if err != nil {
		return client, fmt.Errorf("failure connecting to %s: %w", rpcURL, err)
	}
	return client, nil
}

// wraps an already connected [backend]
func NewClient(backend Backend, rpcURL string) Client {
	return Client{
		Backend: backend,
		URL:     rpcURL,
	}
}

// closes underlying connection
func (client Client) Close() {
	if client.Backend != nil {
		client.Backend.Close()
	}
}

// returns the chain ID
func (client Client) GetChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := client.Backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failure getting chain id from %s: %w", client.URL, err)
	}
	return chainID, nil
}

// returns the balance for [address]
func (client Client) GetAddressBalance(
	ctx context.Context,
	address common.Address,
) (*big.Int, error) {
	balance, err := client.Backend.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failure obtaining balance for %s on %s: %w", address.Hex(), client.URL, err)
	}
	return balance, nil
}

// returns tx options that include signer for [privateKey]
// if [chainID] is zero, it is asked to the node
func (client Client) GetTxOptsWithSigner(
	ctx context.Context,
	privateKey *ecdsa.PrivateKey,
	chainID uint64,
) (*bind.TransactOpts, error) {
	id := new(big.Int).SetUint64(chainID)
	if chainID == 0 {
		var err error
		id, err = client.GetChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failure generating signer: %w", err)
		}
	}
	txOpts, err := bind.NewKeyedTransactorWithChainID(privateKey, id)
	if err != nil {
		return nil, fmt.Errorf("failure generating signer: %w", err)
	}
	txOpts.Context = ctx
	return txOpts, nil
}

// waits for [tx]'s receipt and indicates if it has successful state.
// blocks until the tx is mined or [ctx] is done
func (client Client) WaitForTransaction(
	ctx context.Context,
	tx *types.Transaction,
) (*types.Receipt, bool, error) {
	receipt, err := bind.WaitMined(ctx, client.Backend, tx)
	if err != nil {
		return nil, false, fmt.Errorf("failure waiting for receipt on %s: %w", client.URL, err)
	}
	return receipt, receipt.Status == types.ReceiptStatusSuccessful, nil
}
