// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ava-labs/contract-deployer/internal/mocks"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "56289e99c94b6912bfc12adc093c9b51124f0dc54ac7a766b2bc5ccf558d8027"

// address of testPrivateKey
var testAddress = common.HexToAddress("0x8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52FC")

func TestHasScheme(t *testing.T) {
	tests := []struct {
		url       string
		hasScheme bool
	}{
		{"https://example-rpc.test", true},
		{"ws://127.0.0.1:9650/ext/bc/C/ws", true},
		{"example-rpc.test", false},
		{"127.0.0.1:9650", false},
	}
	for _, tt := range tests {
		hasScheme, err := HasScheme(tt.url)
		require.NoError(t, err)
		require.Equal(t, tt.hasScheme, hasScheme, tt.url)
	}
}

func TestGetClientWithoutScheme(t *testing.T) {
	_, err := GetClient(context.Background(), "example-rpc.test")
	require.ErrorContains(t, err, "has no scheme")
}

func TestGetClient(t *testing.T) {
	require := require.New(t)
	backend := mocks.NewBackend(t)
	dialErr := errors.New("connection refused")
	defer func(f func(context.Context, string) (Backend, error)) {
		ethclientDialContext = f
	}(ethclientDialContext)

	ethclientDialContext = func(context.Context, string) (Backend, error) {
		return nil, dialErr
	}
	_, err := GetClient(context.Background(), "https://example-rpc.test")
	require.ErrorIs(err, dialErr)
	require.ErrorContains(err, "https://example-rpc.test")

	ethclientDialContext = func(context.Context, string) (Backend, error) {
		return backend, nil
	}
	backend.On("Close").Return().Once()
	client, err := GetClient(context.Background(), "https://example-rpc.test")
	require.NoError(err)
	require.Equal("https://example-rpc.test", client.URL)
	client.Close()
}

func TestParsePrivateKey(t *testing.T) {
	require := require.New(t)
	for _, key := range []string{
		testPrivateKey,
		"0x" + testPrivateKey,
		"  " + testPrivateKey + "\n",
	} {
		pk, err := ParsePrivateKey(key)
		require.NoError(err)
		require.Equal(testAddress, crypto.PubkeyToAddress(pk.PublicKey))
	}
	for _, key := range []string{
		"",
		testPrivateKey[:62],
		"0x" + testPrivateKey + "00",
		"z" + testPrivateKey[1:],
	} {
		_, err := ParsePrivateKey(key)
		require.ErrorIs(err, errInvalidPrivateKey)
		if key != "" {
			require.NotContains(err.Error(), key)
		}
	}
}

func TestTransactionError(t *testing.T) {
	require := require.New(t)
	cause := errors.New("insufficient funds")

	err := TransactionError(nil, cause, "failure deploying %s", "ChainBattles")
	require.ErrorIs(err, cause)
	require.EqualError(err, "failure deploying ChainBattles: insufficient funds (tx failed to be submitted)")

	tx := types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000})
	err = TransactionError(tx, cause, "failure deploying %s", "ChainBattles")
	require.ErrorIs(err, cause)
	require.ErrorContains(err, tx.Hash().String())
}

func TestGetTxOptsWithSigner(t *testing.T) {
	require := require.New(t)
	pk, err := ParsePrivateKey(testPrivateKey)
	require.NoError(err)
	backend := mocks.NewBackend(t)
	client := NewClient(backend, "https://example-rpc.test")

	// given chain id, the node is not asked
	txOpts, err := client.GetTxOptsWithSigner(context.Background(), pk, 80001)
	require.NoError(err)
	require.Equal(testAddress, txOpts.From)

	backend.On("ChainID", mock.Anything).Return(big.NewInt(80001), nil).Once()
	txOpts, err = client.GetTxOptsWithSigner(context.Background(), pk, 0)
	require.NoError(err)
	require.Equal(testAddress, txOpts.From)

	chainErr := errors.New("rpc down")
	backend.On("ChainID", mock.Anything).Return(nil, chainErr).Once()
	_, err = client.GetTxOptsWithSigner(context.Background(), pk, 0)
	require.ErrorIs(err, chainErr)
}

func TestGetAddressBalance(t *testing.T) {
	require := require.New(t)
	backend := mocks.NewBackend(t)
	client := NewClient(backend, "https://example-rpc.test")

	backend.On("BalanceAt", mock.Anything, testAddress, (*big.Int)(nil)).Return(big.NewInt(42), nil).Once()
	balance, err := client.GetAddressBalance(context.Background(), testAddress)
	require.NoError(err)
	require.Equal(int64(42), balance.Int64())
}

func TestWaitForTransaction(t *testing.T) {
	require := require.New(t)
	backend := mocks.NewBackend(t)
	client := NewClient(backend, "https://example-rpc.test")
	tx := types.NewTx(&types.LegacyTx{Nonce: 1, GasPrice: big.NewInt(1), Gas: 21000})

	backend.On("TransactionReceipt", mock.Anything, tx.Hash()).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil).Once()
	receipt, success, err := client.WaitForTransaction(context.Background(), tx)
	require.NoError(err)
	require.True(success)
	require.NotNil(receipt)

	backend.On("TransactionReceipt", mock.Anything, tx.Hash()).Return(&types.Receipt{Status: types.ReceiptStatusFailed}, nil).Once()
	_, success, err = client.WaitForTransaction(context.Background(), tx)
	require.NoError(err)
	require.False(success)

	// never mined: only the context ends the wait
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend.On("TransactionReceipt", mock.Anything, tx.Hash()).Return(nil, errors.New("not found")).Maybe()
	_, _, err = client.WaitForTransaction(ctx, tx)
	require.ErrorIs(err, context.Canceled)
}
