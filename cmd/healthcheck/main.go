// main.go
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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/localnerve/persondb/internal/config"
	"github.com/localnerve/persondb/internal/database"
	"github.com/localnerve/persondb/internal/services"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}

	// The report on stdout is the output; step logs are noise here
	diagnostics := services.NewDiagnostics(cfg, db, log.New(io.Discard, "", 0))
	report := diagnostics.Run(context.Background())

	if err := database.Close(db); err != nil {
		log.Printf("Failed to close database pool: %v", err)
	}

	// Output result as JSON
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal diagnostics report: %v", err)
	}

	fmt.Println(string(output))

	// Exit with appropriate code
	if !report.Healthy() {
		os.Exit(1)
	}
	os.Exit(0)
}
