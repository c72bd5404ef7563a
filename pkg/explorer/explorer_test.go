// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package explorer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/contract-deployer/pkg/utils"
	"github.com/ava-labs/libevm/common"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "XYZ"

var testAddress = common.HexToAddress("0x1234567890123456789012345678901234567890")

// fakeExplorer answers like an etherscan api. statuses are returned in order
// by checkverifystatus, the last one is repeated
type fakeExplorer struct {
	mu           sync.Mutex
	sourceCode   string
	submitResult string
	submitStatus string
	statuses     []string
	submitted    map[string]string
	statusCalls  int
}

func (f *fakeExplorer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.Form.Get("apikey") != testAPIKey {
		fmt.Fprint(w, `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`)
		return
	}
	switch r.Form.Get("action") {
	case "getsourcecode":
		fmt.Fprintf(w, `{"status":"1","message":"OK","result":[{"SourceCode":%q,"ContractName":"ChainBattles"}]}`, f.sourceCode)
	case "verifysourcecode":
		if r.Method != http.MethodPost {
			http.Error(w, "verifysourcecode expects a post", http.StatusMethodNotAllowed)
			return
		}
		f.submitted = map[string]string{}
		for k := range r.PostForm {
			f.submitted[k] = r.PostForm.Get(k)
		}
		fmt.Fprintf(w, `{"status":%q,"message":"OK","result":%q}`, f.submitStatus, f.submitResult)
	case "checkverifystatus":
		status := f.statuses[min(f.statusCalls, len(f.statuses)-1)]
		f.statusCalls++
		code := "0"
		if status == "Pass - Verified" {
			code = "1"
		}
		fmt.Fprintf(w, `{"status":%q,"message":"OK","result":%q}`, code, status)
	default:
		http.Error(w, "unknown action", http.StatusNotFound)
	}
}

func (f *fakeExplorer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls
}

func (f *fakeExplorer) form(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted[key]
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(logging.NoLog{}, server.URL, testAPIKey)
	client.SetPolling(time.Millisecond, 5)
	return client
}

func testRequest() VerifyRequest {
	return VerifyRequest{
		Address:         testAddress,
		ContractName:    "ChainBattles",
		SourceCode:      "pragma solidity ^0.8.0; contract ChainBattles {}",
		CompilerVersion: constants.SolidityVersion,
	}
}

func TestLongCompilerVersion(t *testing.T) {
	require := require.New(t)
	version, err := LongCompilerVersion("0.8.9")
	require.NoError(err)
	require.Equal("v0.8.9+commit.e5eed63a", version)

	version, err = LongCompilerVersion("0.8.9+commit.e5eed63a")
	require.NoError(err)
	require.Equal("v0.8.9+commit.e5eed63a", version)

	_, err = LongCompilerVersion("0.4.0")
	require.Error(err)
}

func TestIsVerified(t *testing.T) {
	require := require.New(t)
	fake := &fakeExplorer{}
	client := newTestClient(t, fake)

	verified, err := client.IsVerified(context.Background(), testAddress)
	require.NoError(err)
	require.False(verified)

	fake.mu.Lock()
	fake.sourceCode = "contract ChainBattles {}"
	fake.mu.Unlock()
	verified, err = client.IsVerified(context.Background(), testAddress)
	require.NoError(err)
	require.True(verified)

	client.apiKey = "wrong"
	_, err = client.IsVerified(context.Background(), testAddress)
	require.ErrorContains(err, "Invalid API Key")
}

func TestVerify(t *testing.T) {
	require := require.New(t)
	fake := &fakeExplorer{
		submitStatus: "1",
		submitResult: "guid-1",
		statuses:     []string{"Pending in queue", "Pending in queue", "Pass - Verified"},
	}
	client := newTestClient(t, fake)

	require.NoError(client.Verify(context.Background(), testRequest()))
	require.Equal(3, fake.calls())
	require.Equal(testAddress.Hex(), fake.form("contractaddress"))
	require.Equal("v0.8.9+commit.e5eed63a", fake.form("compilerversion"))
	require.Equal("ChainBattles", fake.form("contractname"))
	require.Equal("0", fake.form("optimizationUsed"))
	require.Equal("200", fake.form("runs"))
	require.Equal("solidity-single-file", fake.form("codeformat"))
}

func TestVerifyFailure(t *testing.T) {
	require := require.New(t)
	fake := &fakeExplorer{
		submitStatus: "1",
		submitResult: "guid-1",
		statuses:     []string{"Fail - Unable to verify"},
	}
	err := newTestClient(t, fake).Verify(context.Background(), testRequest())
	require.ErrorIs(err, constants.ErrVerificationFailed)
	require.ErrorContains(err, "Unable to verify")
}

func TestVerifyStillPending(t *testing.T) {
	fake := &fakeExplorer{
		submitStatus: "1",
		submitResult: "guid-1",
		statuses:     []string{"Pending in queue"},
	}
	err := newTestClient(t, fake).Verify(context.Background(), testRequest())
	require.ErrorIs(t, err, ErrPending)
	require.Equal(t, 5, fake.calls())
}

func TestSubmitRejected(t *testing.T) {
	require := require.New(t)
	fake := &fakeExplorer{
		submitStatus: "0",
		submitResult: "Contract source code already verified",
	}
	client := newTestClient(t, fake)
	_, err := client.Submit(context.Background(), testRequest())
	require.ErrorIs(err, ErrAlreadyVerified)

	fake.mu.Lock()
	fake.submitResult = "Invalid constructor arguments"
	fake.mu.Unlock()
	_, err = client.Submit(context.Background(), testRequest())
	require.ErrorIs(err, constants.ErrVerificationFailed)

	req := testRequest()
	req.CompilerVersion = "0.1.0"
	_, err = client.Submit(context.Background(), req)
	require.ErrorContains(err, "unknown solc version")
}

func TestHTTPErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	_, err := client.IsVerified(context.Background(), testAddress)
	var statusErr *utils.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
