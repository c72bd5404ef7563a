// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package contract

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/contract-deployer/pkg/artifacts"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/contract-deployer/pkg/evm"
	"github.com/ava-labs/libevm/accounts/abi/bind"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"
	"go.uber.org/zap"
)

// FactoryResolver returns the compiled factory for a contract name
type FactoryResolver interface {
	Resolve(name string) (*artifacts.Factory, error)
}

// Result is the success side of a deployment
type Result struct {
	ContractName string
	Address      common.Address
	TxHash       common.Hash
	Receipt      *types.Receipt
}

// Deployer deploys a single contract per call. It never exits the process:
// the command layer maps its result to an exit status.
type Deployer struct {
	log        logging.Logger
	resolver   FactoryResolver
	client     evm.Client
	privateKey *ecdsa.PrivateKey
	chainID    uint64
}

// NewDeployer builds a deployer that signs with [privateKey]. if [chainID]
// is zero it is asked to the node at submission time.
func NewDeployer(
	log logging.Logger,
	resolver FactoryResolver,
	client evm.Client,
	privateKey *ecdsa.PrivateKey,
	chainID uint64,
) *Deployer {
	return &Deployer{
		log:        log,
		resolver:   resolver,
		client:     client,
		privateKey: privateKey,
		chainID:    chainID,
	}
}

// Address returns the account paying for the deployment
func (d *Deployer) Address() common.Address {
	return crypto.PubkeyToAddress(d.privateKey.PublicKey)
}

// Deploy resolves [contractName], submits its deployment transaction and
// waits for the network to confirm it. Waiting has no local timeout, only
// [ctx] can interrupt it. A submitted transaction is never withdrawn.
func (d *Deployer) Deploy(ctx context.Context, contractName string) (Result, error) {
	factory, err := d.resolver.Resolve(contractName)
	if err != nil {
		return Result{}, newDeployError(KindArtifact, err)
	}
	if n := len(factory.ABI.Constructor.Inputs); n != 0 {
		return Result{}, newDeployError(
			KindArtifact,
			fmt.Errorf("constructor of %s expects %d arguments, only argument-less constructors can be deployed", factory.ContractName, n),
		)
	}
	tx, address, err := d.submit(ctx, factory)
	if err != nil {
		return Result{}, newDeployError(KindNetwork, err)
	}
	receipt, err := d.confirm(ctx, factory, tx)
	if err != nil {
		return Result{}, newDeployError(KindConfirmation, err)
	}
	if receipt.ContractAddress != (common.Address{}) {
		address = receipt.ContractAddress
	}
	d.log.Info("contract deployed",
		zap.String("contract", factory.ContractName),
		zap.Stringer("address", address),
		zap.Stringer("txHash", tx.Hash()),
		zap.Uint64("gasUsed", receipt.GasUsed),
	)
	return Result{
		ContractName: factory.ContractName,
		Address:      address,
		TxHash:       tx.Hash(),
		Receipt:      receipt,
	}, nil
}

func (d *Deployer) submit(ctx context.Context, factory *artifacts.Factory) (*types.Transaction, common.Address, error) {
	txOpts, err := d.client.GetTxOptsWithSigner(ctx, d.privateKey, d.chainID)
	if err != nil {
		return nil, common.Address{}, err
	}
	d.log.Info("submitting deployment",
		zap.String("contract", factory.FullyQualifiedName()),
		zap.Stringer("deployer", txOpts.From),
		zap.String("rpc", d.client.URL),
	)
	address, tx, _, err := bind.DeployContract(txOpts, factory.ABI, factory.Bytecode, d.client.Backend)
	if err != nil {
		return nil, common.Address{}, evm.TransactionError(tx, err, "failure deploying %s", factory.ContractName)
	}
	d.log.Info("deployment submitted",
		zap.String("contract", factory.ContractName),
		zap.Stringer("txHash", tx.Hash()),
		zap.Uint64("nonce", tx.Nonce()),
	)
	return tx, address, nil
}

func (d *Deployer) confirm(ctx context.Context, factory *artifacts.Factory, tx *types.Transaction) (*types.Receipt, error) {
	receipt, success, err := d.client.WaitForTransaction(ctx, tx)
	if err != nil {
		return nil, evm.TransactionError(tx, err, "failure confirming deployment of %s", factory.ContractName)
	}
	if !success {
		return nil, evm.TransactionError(tx, constants.ErrReceiptStatus, "%s", factory.ContractName)
	}
	return receipt, nil
}
