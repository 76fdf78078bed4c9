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
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/caarlos0/tablewriter"
	"github.com/go-arcade/roster/internal/roster/bootstrap"
	"github.com/go-arcade/roster/internal/roster/conf"
	"github.com/go-arcade/roster/internal/roster/role"
	"github.com/spf13/cobra"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the invitation sweeper and the metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, loader, cleanup, err := bootstrap.Bootstrap(resolveConfigFile(cmd), initApp)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		defer stop()

		if autoMigrate {
			if err := app.Migrate(ctx); err != nil {
				return err
			}
		}
		return bootstrap.Serve(ctx, app, loader)
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Expire every lapsed pending invitation once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, cleanup, err := bootstrap.Bootstrap(resolveConfigFile(cmd), initApp)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := app.Sweeper.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "expired %d invitation(s)\n", n)
		return err
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, cleanup, err := bootstrap.Bootstrap(resolveConfigFile(cmd), initApp)
		if err != nil {
			return err
		}
		defer cleanup()
		return app.Migrate(cmd.Context())
	},
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the organization role hierarchy and its permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printRoles(cmd.OutOrStdout())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := conf.Load(resolveConfigFile(cmd))
		if err != nil {
			return err
		}
		out, err := conf.Dump(loader.Config())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "auto-migrate", true, "migrate the database before serving")
}

func printRoles(w io.Writer) error {
	return tablewriter.Render(
		w,
		role.OrgRoles(),
		[]string{"Level", "Role", "Can Assign", "Permissions"},
		func(r role.OrgRole) ([]string, error) {
			level, err := role.HierarchyLevel(r)
			if err != nil {
				return nil, err
			}
			perms, err := role.PermissionsFor(r)
			if err != nil {
				return nil, err
			}
			return []string{
				strconv.Itoa(level),
				r.String(),
				joinRoles(role.AvailableRolesForAssignment(r)),
				joinPermissions(perms.Slice()),
			}, nil
		},
	)
}

func joinRoles(roles []role.OrgRole) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.String()
	}
	return strings.Join(names, ",")
}

func joinPermissions(perms []role.Permission) string {
	names := make([]string, len(perms))
	for i, p := range perms {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}
