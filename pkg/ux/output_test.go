// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package ux

import (
	"bytes"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

func TestPrintToUser(t *testing.T) {
	require := require.New(t)
	var out bytes.Buffer
	NewUserLog(logging.NoLog{}, &out)

	Logger.PrintToUser("contract deployed to : %s", "0x1234")
	Logger.Info("not shown")
	require.Equal("contract deployed to : 0x1234\n", out.String())
}

func TestConvertToStringWithThousandSeparator(t *testing.T) {
	require.Equal(t, "1_234_567", ConvertToStringWithThousandSeparator(1_234_567))
	require.Equal(t, "999", ConvertToStringWithThousandSeparator(999))
}

func TestFormatElapsed(t *testing.T) {
	require.Equal(t, "0s", FormatElapsed(200*time.Millisecond))
	require.Equal(t, "1m3s", FormatElapsed(62600*time.Millisecond))
}

func TestKeyValueTable(t *testing.T) {
	rendered := KeyValueTable("Configuration", [][2]string{
		{"Solidity", "0.8.9"},
		{"Default Network", "mumbai"},
	}).Render()
	require.Contains(t, rendered, "CONFIGURATION")
	require.Contains(t, rendered, "Default Network")
	require.Contains(t, rendered, "mumbai")
}
