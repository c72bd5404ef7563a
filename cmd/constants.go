// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmd

const (
	logLevelFlag   = "log-level"
	envFileFlag    = "env-file"
	configFileFlag = "config"
	networkFlag    = "network"
	artifactsFlag  = "artifacts"
	timeoutFlag    = "timeout"
)
