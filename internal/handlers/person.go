// person.go
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
	"github.com/localnerve/persondb/internal/utils"
	"gorm.io/gorm"
)

// PersonHandler handles the person data route
type PersonHandler struct {
	DB *gorm.DB
	// ExposeErrorStack adds the stack trace to 500 bodies
	ExposeErrorStack bool
}

// ListPersons handles GET /person
// @Summary List person records
// @Description Get every row of the person table, passed through as stored
// @Tags Person
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 500 {object} utils.ServerErrorStruct
// @Router /person [get]
func (h *PersonHandler) ListPersons(c *fiber.Ctx) error {
	log.Println("Called /person endpoint")

	rows, err := services.ListPersons(c.UserContext(), h.DB)
	if err != nil {
		log.Printf("Error in /person endpoint: %+v", err)
		return utils.ServerErrorResponse(c, err, h.ExposeErrorStack)
	}

	log.Printf("Query executed successfully, row count: %d", len(rows))
	return c.Status(fiber.StatusOK).JSON(rows)
}
