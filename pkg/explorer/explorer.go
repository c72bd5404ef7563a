// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package explorer talks to Etherscan compatible block explorer APIs to
// publish the source of a deployed contract.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/contract-deployer/pkg/constants"
	"github.com/ava-labs/contract-deployer/pkg/utils"
	"github.com/ava-labs/libevm/common"
	"go.uber.org/zap"
)

const (
	statusOK           = "1"
	pendingPrefix      = "Pending"
	passPrefix         = "Pass"
	alreadyVerifiedMsg = "already verified"
	defaultRuns        = 200
	singleFileFormat   = "solidity-single-file"
	defaultLicense     = "1" // no license
)

// long solc version strings, as the explorers want them
var solcLongVersions = map[string]string{
	"0.8.4":  "v0.8.4+commit.c7e474f2",
	"0.8.7":  "v0.8.7+commit.e28d00a7",
	"0.8.9":  "v0.8.9+commit.e5eed63a",
	"0.8.17": "v0.8.17+commit.8df45f5f",
	"0.8.20": "v0.8.20+commit.a1b79de6",
}

var (
	ErrPending         = errors.New("verification still pending")
	ErrAlreadyVerified = errors.New("contract source code already verified")
)

// LongCompilerVersion maps a short solc version into the form explorers expect.
// Already long versions are returned as is.
func LongCompilerVersion(version string) (string, error) {
	if strings.Contains(version, "+commit.") {
		if !strings.HasPrefix(version, "v") {
			version = "v" + version
		}
		return version, nil
	}
	long, ok := solcLongVersions[strings.TrimPrefix(version, "v")]
	if !ok {
		return "", fmt.Errorf("unknown solc version %s, provide the full version (v<version>+commit.<hash>)", version)
	}
	return long, nil
}

type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func (r response) resultString() string {
	var s string
	if err := json.Unmarshal(r.Result, &s); err != nil {
		return string(r.Result)
	}
	return s
}

type sourceCodeEntry struct {
	SourceCode   string `json:"SourceCode"`
	ContractName string `json:"ContractName"`
}

// VerifyRequest describes the source to publish for an address
type VerifyRequest struct {
	Address         common.Address
	ContractName    string
	SourceCode      string
	CompilerVersion string
	Optimized       bool
	Runs            int
}

type Client struct {
	log          logging.Logger
	httpClient   *http.Client
	apiURL       string
	apiKey       string
	pollInterval time.Duration
	maxPolls     int
}

func NewClient(log logging.Logger, apiURL string, apiKey string) *Client {
	return &Client{
		log:          log,
		httpClient:   &http.Client{Timeout: constants.ExplorerRequestTimeout},
		apiURL:       apiURL,
		apiKey:       apiKey,
		pollInterval: constants.ExplorerPollInterval,
		maxPolls:     constants.ExplorerMaxStatusQueries,
	}
}

// SetPolling changes how often, and how many times, verification status is queried
func (c *Client) SetPolling(interval time.Duration, maxPolls int) {
	c.pollInterval = interval
	c.maxPolls = maxPolls
}

func (c *Client) get(ctx context.Context, query url.Values) (response, error) {
	query.Set("apikey", c.apiKey)
	body, err := utils.MakeGetRequest(ctx, c.httpClient, c.apiURL, query)
	if err != nil {
		return response{}, fmt.Errorf("failure querying explorer %s: %w", c.apiURL, err)
	}
	return decode(body)
}

func (c *Client) post(ctx context.Context, form url.Values) (response, error) {
	form.Set("apikey", c.apiKey)
	body, err := utils.MakePostFormRequest(ctx, c.httpClient, c.apiURL, form)
	if err != nil {
		return response{}, fmt.Errorf("failure posting to explorer %s: %w", c.apiURL, err)
	}
	return decode(body)
}

func decode(body []byte) (response, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return response{}, fmt.Errorf("unexpected explorer response: %w", err)
	}
	return resp, nil
}

// IsVerified indicates if the explorer already has source code for [address]
func (c *Client) IsVerified(ctx context.Context, address common.Address) (bool, error) {
	resp, err := c.get(ctx, url.Values{
		"module":  {"contract"},
		"action":  {"getsourcecode"},
		"address": {address.Hex()},
	})
	if err != nil {
		return false, err
	}
	if resp.Status != statusOK {
		return false, fmt.Errorf("explorer error: %s: %s", resp.Message, resp.resultString())
	}
	var entries []sourceCodeEntry
	if err := json.Unmarshal(resp.Result, &entries); err != nil {
		return false, fmt.Errorf("unexpected getsourcecode result: %w", err)
	}
	return len(entries) > 0 && entries[0].SourceCode != "", nil
}

// Submit sends [req] to the explorer and returns the guid to poll
func (c *Client) Submit(ctx context.Context, req VerifyRequest) (string, error) {
	compilerVersion, err := LongCompilerVersion(req.CompilerVersion)
	if err != nil {
		return "", err
	}
	runs := req.Runs
	if runs == 0 {
		runs = defaultRuns
	}
	optimizationUsed := "0"
	if req.Optimized {
		optimizationUsed = "1"
	}
	resp, err := c.post(ctx, url.Values{
		"module":           {"contract"},
		"action":           {"verifysourcecode"},
		"contractaddress":  {req.Address.Hex()},
		"sourceCode":       {req.SourceCode},
		"codeformat":       {singleFileFormat},
		"contractname":     {req.ContractName},
		"compilerversion":  {compilerVersion},
		"optimizationUsed": {optimizationUsed},
		"runs":             {fmt.Sprint(runs)},
		"licenseType":      {defaultLicense},
	})
	if err != nil {
		return "", err
	}
	result := resp.resultString()
	if resp.Status != statusOK {
		if strings.Contains(strings.ToLower(result), alreadyVerifiedMsg) {
			return "", ErrAlreadyVerified
		}
		return "", fmt.Errorf("%w: %s: %s", constants.ErrVerificationFailed, resp.Message, result)
	}
	c.log.Info("verification submitted", zap.Stringer("address", req.Address), zap.String("guid", result))
	return result, nil
}

// Status returns nil once the explorer verified [guid], ErrPending while it
// is still queued, and an error wrapping ErrVerificationFailed if it was rejected
func (c *Client) Status(ctx context.Context, guid string) error {
	resp, err := c.get(ctx, url.Values{
		"module": {"contract"},
		"action": {"checkverifystatus"},
		"guid":   {guid},
	})
	if err != nil {
		return err
	}
	result := resp.resultString()
	switch {
	case strings.HasPrefix(result, pendingPrefix):
		return ErrPending
	case strings.Contains(strings.ToLower(result), alreadyVerifiedMsg):
		return ErrAlreadyVerified
	case resp.Status == statusOK && strings.HasPrefix(result, passPrefix):
		return nil
	}
	return fmt.Errorf("%w: %s", constants.ErrVerificationFailed, result)
}

// Verify submits [req] and polls its status until it is decided
func (c *Client) Verify(ctx context.Context, req VerifyRequest) error {
	guid, err := c.Submit(ctx, req)
	if err != nil {
		return err
	}
	for i := 0; i < c.maxPolls; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
		err := c.Status(ctx, guid)
		if !errors.Is(err, ErrPending) {
			return err
		}
		c.log.Debug("verification pending", zap.String("guid", guid), zap.Int("query", i+1))
	}
	return fmt.Errorf("verification %s still pending after %d status queries: %w", guid, c.maxPolls, ErrPending)
}
