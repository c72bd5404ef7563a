// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cobrautils

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ava-labs/contract-deployer/pkg/ux"

	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

type UsageError struct {
	cmd *cobra.Command
	err error
}

func (e UsageError) Error() string {
	return fmt.Sprintf("Usage error: %s", e.err)
}

func (e UsageError) Unwrap() error {
	return e.err
}

func NewUsageError(cmd *cobra.Command, err error) UsageError {
	return UsageError{
		cmd: cmd,
		err: err,
	}
}

func MaximumNArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := cobra.MaximumNArgs(n)(cmd, args)
		if err != nil {
			err = NewUsageError(cmd, err)
		}
		return err
	}
}

func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := cobra.ExactArgs(n)(cmd, args)
		if err != nil {
			err = NewUsageError(cmd, err)
		}
		return err
	}
}

// HandleErrors prints [err] to [out] and maps it to the process exit
// code. Every error kind exits with the same code.
func HandleErrors(out io.Writer, err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usageErr UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprintln(out, usageErr.cmd.UsageString())
		fmt.Fprintln(out, usageErr)
	} else {
		fmt.Fprintf(out, "Error: %s\n", err)
	}
	if ux.Logger != nil {
		ux.Logger.Info("command failed: %s", err)
	}
	return ExitFailure
}

func CommandSuiteUsage(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return NewUsageError(
			cmd,
			fmt.Errorf("invalid subcommand %q", strings.Join(args, " ")),
		)
	}
	return cmd.Help()
}

func ConfigureRootCmd(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return NewUsageError(cmd, err)
	})
}
