// diagnostics.go
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

package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/persondb/internal/services"
)

// DiagnosticsAck is the fixed body of GET /run-diagnostics
const DiagnosticsAck = "Diagnostics completed. Check server logs for details."

// DiagnosticsHandler handles the on-demand diagnostics route
type DiagnosticsHandler struct {
	Diagnostics *services.Diagnostics
}

// RunDiagnostics handles GET /run-diagnostics
// @Summary Run connectivity diagnostics
// @Description Resolve the database host, probe it over TCP and run a liveness query. Results are written to the server log only.
// @Tags Diagnostics
// @Produce plain
// @Success 200 {string} string "Diagnostics completed. Check server logs for details."
// @Router /run-diagnostics [get]
func (h *DiagnosticsHandler) RunDiagnostics(c *fiber.Ctx) error {
	log.Println("Running diagnostics from endpoint")

	h.Diagnostics.Run(c.UserContext())

	return c.Status(fiber.StatusOK).SendString(DiagnosticsAck)
}
