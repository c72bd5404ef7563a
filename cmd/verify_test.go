// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testSource = "// SPDX-License-Identifier: MIT\npragma solidity ^0.8.0;\ncontract ChainBattles {}\n"

func setupExplorer(t *testing.T, verified bool) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		switch r.Form.Get("action") {
		case "getsourcecode":
			source := ""
			if verified {
				source = testSource
			}
			fmt.Fprintf(w, `{"status":"1","message":"OK","result":[{"SourceCode":%q}]}`, source)
		case "verifysourcecode":
			if r.PostForm.Get("sourceCode") != testSource || r.PostForm.Get("compilerversion") != "v0.8.9+commit.e5eed63a" {
				fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":"Unexpected submission"}`)
				return
			}
			fmt.Fprint(w, `{"status":"1","message":"OK","result":"guid-1"}`)
		case "checkverifystatus":
			fmt.Fprint(w, `{"status":"1","message":"OK","result":"Pass - Verified"}`)
		}
	}))
	t.Cleanup(server.Close)
	t.Setenv("DEPLOYER_EXPLORER_API_URL", server.URL)

	prevInterval := verifyPollInterval
	t.Cleanup(func() { verifyPollInterval = prevInterval })
	verifyPollInterval = time.Millisecond
}

func TestVerify(t *testing.T) {
	require := require.New(t)
	fs, _ := setupTest(t, testPrivateKey)
	setupExplorer(t, false)
	require.NoError(afero.WriteFile(fs, "ChainBattles.flat.sol", []byte(testSource), constants.WriteReadReadPerms))

	var out bytes.Buffer
	code := Run(context.Background(), []string{"verify", testContractAddress.Hex(), "--source", "ChainBattles.flat.sol"}, &out)
	require.Equal(0, code, out.String())
	require.Contains(out.String(), "Successfully verified contract ChainBattles at "+testContractAddress.Hex())
}

func TestVerifyAlreadyVerified(t *testing.T) {
	require := require.New(t)
	fs, _ := setupTest(t, testPrivateKey)
	setupExplorer(t, true)
	require.NoError(afero.WriteFile(fs, "ChainBattles.flat.sol", []byte(testSource), constants.WriteReadReadPerms))

	var out bytes.Buffer
	code := Run(context.Background(), []string{"verify", testContractAddress.Hex(), "--source", "ChainBattles.flat.sol"}, &out)
	require.Equal(0, code, out.String())
	require.Contains(out.String(), "already verified")
}

func TestVerifyErrors(t *testing.T) {
	require := require.New(t)
	setupTest(t, testPrivateKey)
	setupExplorer(t, false)

	var out bytes.Buffer
	require.Equal(1, Run(context.Background(), []string{"verify", "0x1234", "--source", "ChainBattles.flat.sol"}, &out))
	require.Contains(out.String(), "invalid contract address")

	out.Reset()
	require.Equal(1, Run(context.Background(), []string{"verify", testContractAddress.Hex()}, &out))
	require.Contains(out.String(), "--source is required")

	out.Reset()
	require.Equal(1, Run(context.Background(), []string{"verify", testContractAddress.Hex(), "--source", "missing.sol"}, &out))
	require.Contains(out.String(), "failed reading source missing.sol")

	t.Setenv(constants.ExplorerKeyEnvVar, "")
	out.Reset()
	require.Equal(1, Run(context.Background(), []string{"verify", testContractAddress.Hex(), "--source", "ChainBattles.flat.sol"}, &out))
	require.Contains(out.String(), "invalid configuration: "+constants.ExplorerKeyEnvVar)
}
