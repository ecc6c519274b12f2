package services

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PersonRecord is a row of the person table, passed through as-is
type PersonRecord = map[string]interface{}

// ListPersonsQuery is the only query the list route runs
const ListPersonsQuery = "SELECT * FROM person"

// ListPersons returns every row of the person table.
// The table is owned outside this service, so no schema is assumed.
func ListPersons(ctx context.Context, db *gorm.DB) ([]PersonRecord, error) {
	var rows []PersonRecord
	if err := db.WithContext(ctx).Raw(ListPersonsQuery).Scan(&rows).Error; err != nil {
		return nil, errors.WithStack(err)
	}

	if rows == nil {
		rows = []PersonRecord{}
	}

	return rows, nil
}
