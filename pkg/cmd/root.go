// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the shapecheck command-line surface (spec ยง9):
// read a decoded constraint document, classify every path, and render the
// outcome.
package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/shapecheck/backend/pkg/classify"
	"github.com/shapecheck/backend/pkg/decode"
	"github.com/shapecheck/backend/pkg/report"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// rootCmd has no subcommands: shapecheck exposes exactly one verb, taking
// the path to a decoded constraint document (spec ยง9).
var rootCmd = &cobra.Command{
	Use:   "shapecheck [flags] path",
	Short: "Statically classify shape-and-constraint paths via SMT.",
	Long: `shapecheck reads a decoded path document (the output of a frontend's
shape-and-constraint distillation), asks an SMT solver whether each path is
reachable and whether its soft constraints can ever fail, and reports the
result for every path.`,
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			printVersion()
			return
		}
		// Configure log level (teacher's convention: each command reads its
		// own verbose flag and sets the level itself, rather than a single
		// shared PersistentPreRun).
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		silent := GetFlag(cmd, "silent")
		timeoutSecs := GetUint(cmd, "timeout")

		data := readInputFile(args[0])

		sets, err := decode.Decode(data)
		if err != nil {
			fmt.Println(err)
			os.Exit(4)
		}

		log.Debugf("decoded %d path(s)", len(sets))

		reports := classify.ClassifyAll(context.Background(), sets, time.Duration(timeoutSecs)*time.Second)

		report.Render(os.Stdout, reports, silent)
	},
}

func printVersion() {
	fmt.Print("shapecheck ")
	if Version != "" {
		fmt.Printf("%s", Version)
	} else if info, ok := debug.ReadBuildInfo(); ok {
		fmt.Printf("%s", info.Main.Version)
	} else {
		fmt.Printf("(unknown version)")
	}
	fmt.Println()
}

// Execute runs the root command (which has no child commands), exiting with
// status 1 if cobra reports an error. This is called by main.main(). It only
// needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.Flags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.Flags().Bool("silent", false, "suppress the per-path narrative, printing only the summary")
	rootCmd.Flags().Uint("timeout", 5, "per-path solver timeout, in seconds")
}
