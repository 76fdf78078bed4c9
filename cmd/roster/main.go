// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/go-arcade/roster/internal/roster/conf"
	"github.com/go-arcade/roster/pkg/version"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "conf.d/config.toml"

var configFile string

var rootCmd = &cobra.Command{
	Use:           "roster",
	Short:         "roster manages organization invitations and memberships",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", defaultConfigFile, "config file path, e.g. -c ./conf.d/config.toml")
	rootCmd.AddCommand(serveCmd, cleanupCmd, migrateCmd, rolesCmd, configCmd, version.VersionCmd)
}

// resolveConfigFile falls back to built in defaults when the default file is absent.
func resolveConfigFile(cmd *cobra.Command) string {
	if !cmd.Flags().Changed("conf") && !conf.Exists(configFile) {
		return ""
	}
	return configFile
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
