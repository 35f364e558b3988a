// Prints the DDL GORM generates for the rentals models, using SQLite.
package main

import (
	"fmt"
	"log"

	"github.com/localnerve/jam-build-rentals/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var objects []struct {
		Type string
		Name string
		SQL  string
	}
	db.Raw("SELECT type, name, sql FROM sqlite_master WHERE sql IS NOT NULL ORDER BY tbl_name, type DESC").Scan(&objects)

	for _, obj := range objects {
		fmt.Printf("\n=== %s: %s ===\n%s\n", obj.Type, obj.Name, obj.SQL)
	}
}
