// commands.go
//
// Rental marketplace backend for the jam-build stack
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-rentals.
// jam-build-rentals is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-rentals is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-rentals.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package commands holds the rentalsctl subcommands
package commands

import (
	"fmt"
	"log/slog"

	"github.com/localnerve/jam-build-rentals/internal/config"
	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/logging"
	"github.com/localnerve/jam-build-rentals/internal/models"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// operator is the actor for commands run against the database directly
var operator = &models.SessionUser{
	ID:    "rentalsctl",
	Email: "rentalsctl@localhost",
	Role:  models.RoleSuperAdmin,
}

// Env is what a database command runs against
type Env struct {
	DB  *gorm.DB
	Log *slog.Logger
}

// Opener connects a command to the database. The returned func releases it.
type Opener func() (*Env, func(), error)

// Open loads the service configuration and connects to its database
func Open() (*Env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logging.Default(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Env{DB: db, Log: log}, func() { database.Close(db) }, nil
}

// NewRootCmd assembles rentalsctl
func NewRootCmd(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rentalsctl",
		Short:         "Administer the rentals service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		MigrateCmd(open),
		SeedCmd(open),
		RoleCmd(open),
		ApplicationCmd(),
	)
	return rootCmd
}
