package main

import (
	"log"

	"service-marketplace/config"
	"service-marketplace/migration"
)

func main() {
	config.InitConfig()

	if err := migration.RunMigrations(); err != nil {
		log.Fatalf("Migration error: %v", err)
	}
}
