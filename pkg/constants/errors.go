// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import "errors"

var (
	ErrArtifactNotFound   = errors.New("artifact not found, has the contract been compiled?")
	ErrNotCompiled        = errors.New("artifact has no deployment bytecode, is the contract abstract or an interface?")
	ErrUnknownNetwork     = errors.New("network is not configured")
	ErrReceiptStatus      = errors.New("failed receipt status deploying contract")
	ErrVerificationFailed = errors.New("explorer rejected the verification request")
)
