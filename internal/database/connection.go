// connection.go
//
// A Go person directory data service with built-in connectivity diagnostics
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of persondb.
// persondb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// persondb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with persondb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/localnerve/persondb/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect builds the connection pool for the configured DB_TYPE.
// No connection is opened here; the first query or the diagnostics run
// is what reaches the server.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBType {
	case "postgres", "postgresql":
		// Through database/sql the target is parsed on first connect, so a
		// malformed one surfaces as a query error instead of failing here
		dialector = postgres.New(postgres.Config{
			DriverName: "pgx",
			DSN:        cfg.ConnectionString(),
		})

	case "sqlite":
		// For SQLite, PGDATABASE is the file path
		dialector = sqlite.Open(cfg.DBDatabase)

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Info),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if cfg.DBType == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
		}
		// every sqlite connection to ":memory:" is its own database
		sqlDB.SetMaxOpenConns(1)
	}

	log.Printf("Created %s database pool: %s", cfg.DBType, cfg.DBDatabase)

	return db, nil
}

// LivenessQuery returns the dialect's "current server time" query.
// The column is always aliased to "now".
func LivenessQuery(db *gorm.DB) string {
	if strings.HasPrefix(db.Dialector.Name(), "sqlite") {
		return "SELECT CURRENT_TIMESTAMP AS now"
	}
	return "SELECT NOW() AS now"
}

// Close drains and closes the connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
