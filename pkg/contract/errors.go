// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package contract

import "fmt"

// ErrorKind classifies at which step a deployment failed
type ErrorKind int

const (
	KindConfiguration ErrorKind = iota + 1
	KindArtifact
	KindNetwork
	KindConfirmation
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindArtifact:
		return "artifact"
	case KindNetwork:
		return "network"
	case KindConfirmation:
		return "confirmation"
	}
	return "unknown"
}

// DeployError is the failure side of a deployment result
type DeployError struct {
	Kind ErrorKind
	Err  error
}

func newDeployError(kind ErrorKind, err error) *DeployError {
	return &DeployError{
		Kind: kind,
		Err:  err,
	}
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Err)
}

func (e *DeployError) Unwrap() error {
	return e.Err
}
