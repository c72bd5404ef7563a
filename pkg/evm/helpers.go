// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"
)

var errInvalidPrivateKey = errors.New("invalid private key")

// transform a tx operation error into an error that contains:
// - the [err] itself
// - the [tx] hash (or information on the tx not being submitted)
// - another descriptive [msg], together with formated [args]
func TransactionError(tx *types.Transaction, err error, msg string, args ...interface{}) error {
	msgSuffix := ": %w"
	if tx != nil {
		msgSuffix += fmt.Sprintf(" (txHash=%s)", tx.Hash().String())
	} else {
		msgSuffix += " (tx failed to be submitted)"
	}
	args = append(args, err)
	return fmt.Errorf(msg+msgSuffix, args...)
}

// parses an hex encoded [privateKey], with or without 0x prefix.
// the returned error never contains the key
func ParsePrivateKey(privateKey string) (*ecdsa.PrivateKey, error) {
	privateKey = strings.TrimSpace(privateKey)
	privateKey = strings.TrimPrefix(strings.TrimPrefix(privateKey, "0x"), "0X")
	pk, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return nil, errInvalidPrivateKey
	}
	return pk, nil
}
