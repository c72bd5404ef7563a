// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import "time"

const (
	DefaultPerms755        = 0o755
	WriteReadReadPerms     = 0o644
	WriteReadUserOnlyPerms = 0o600

	BaseDirName = ".contract-deployer"
	LogDir      = "logs"
	LogName     = "deployer"

	// rotating log settings
	MaxLogFileSize   = 4
	MaxNumOfLogFiles = 5
	RetainOldFiles   = 0 // retain all old log files

	DefaultLogLevel = "ERROR"
	EnvFileName     = ".env"
	EnvPrefix       = "DEPLOYER"

	// toolchain defaults
	SolidityVersion = "0.8.9"
	DefaultNetwork  = "mumbai"
	DefaultContract = "ChainBattles"
	ArtifactsDir    = "artifacts"
	ArtifactSuffix  = ".json"
	DebugFileSuffix = ".dbg.json"

	// environment variables consumed by the toolchain configuration
	NetworkKeyName    = "network"
	EndpointURLEnvVar = "API_URL"
	PrivateKeyEnvVar  = "PRIVATE_KEY"
	ExplorerKeyEnvVar = "POLYGONSCAN_API_KEY"

	MumbaiChainID        = 80001
	MumbaiExplorerAPIURL = "https://api-testnet.polygonscan.com/api"
	MumbaiExplorerURL    = "https://mumbai.polygonscan.com"

	DeployedLabel = "contract deployed to :"

	ExplorerRequestTimeout   = 30 * time.Second
	ExplorerPollInterval     = 5 * time.Second
	ExplorerMaxStatusQueries = 24
)
