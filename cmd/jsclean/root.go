// Copyright 2024 The Jsclean Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rogpeppe/go-internal/diff"
	"github.com/spf13/cobra"

	"github.com/jsclean/jsclean/internal/config"
	"github.com/jsclean/jsclean/internal/deobfuscate"
)

var (
	flagDiff             bool
	flagEvalTimeout      time.Duration
	flagMaxCallStackSize int
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jsclean <file.js>",
		Short: "de-obfuscate a JavaScript source file",
		Long: `jsclean runs a single .js file through decoder detection, rewriting,
beautification and cleanup, and writes the result alongside the input as
<name>-cleaned.js.`,
		Args: cobra.ExactArgs(1),
		RunE: runClean,
	}
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "print a unified diff of the rewrite to stderr")
	cmd.Flags().DurationVar(&flagEvalTimeout, "eval-timeout", 0, "sandbox evaluation timeout (default: internal default)")
	cmd.Flags().IntVar(&flagMaxCallStackSize, "max-call-stack", 0, "sandbox call stack depth (default: internal default)")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	path := args[0]
	if ext := filepath.Ext(path); ext != ".js" {
		return fmt.Errorf("jsclean: unsupported file extension %q, want .js", ext)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
	o := &deobfuscate.Optimizer{
		Logger: logger,
		Limits: limitsFromFlags(),
	}

	cleaned, err := o.Optimize(string(source))
	if err != nil {
		return fmt.Errorf("jsclean: %w", err)
	}

	outPath := outputPath(path)
	if err := os.WriteFile(outPath, []byte(cleaned), 0o644); err != nil {
		return err
	}

	if flagDiff {
		d := diff.Diff(path, source, outPath, []byte(cleaned))
		cmd.ErrOrStderr().Write(d)
	}

	return nil
}

func limitsFromFlags() config.SandboxLimits {
	limits := config.DefaultSandboxLimits()
	if flagEvalTimeout > 0 {
		limits.EvalTimeout = flagEvalTimeout
	}
	if flagMaxCallStackSize > 0 {
		limits.MaxCallStackSize = flagMaxCallStackSize
	}
	return limits
}

func outputPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return base + "-cleaned" + ext
}
