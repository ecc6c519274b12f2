package data

import (
	_ "embed"
)

// PersonSeedRows is the number of rows InitdbPostgresPerson inserts
const PersonSeedRows = 4

//go:embed initdb/postgres-person.sql
var InitdbPostgresPerson string
