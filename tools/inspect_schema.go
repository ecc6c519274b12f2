package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/localnerve/persondb/internal/config"
	"github.com/localnerve/persondb/internal/database"
)

// Prints the column layout of the person table the service reads from.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)

	if !db.Migrator().HasTable("person") {
		log.Fatalf("table person not found in %s", cfg.RedactedConnectionString())
	}

	columns, err := db.Migrator().ColumnTypes("person")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("\n=== Table: person ===\n")
	for _, column := range columns {
		nullable, _ := column.Nullable()
		primaryKey, _ := column.PrimaryKey()
		fmt.Printf("%-20s %-20s nullable=%-5t primary=%t\n", column.Name(), column.DatabaseTypeName(), nullable, primaryKey)
	}
}
