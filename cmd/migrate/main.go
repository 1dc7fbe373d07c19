package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/productvariant/internal/config"
	"github.com/jafarshop/productvariant/internal/repository/postgres"
)

func main() {
	dbCfg, err := config.LoadDatabase()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// First, connect to postgres database to create the target database if needed
	adminCfg := dbCfg
	adminCfg.DBName = "postgres"
	postgresDB, err := sql.Open("postgres", postgres.DSN(adminCfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to postgres database: %v\n", err)
		os.Exit(1)
	}
	defer postgresDB.Close()

	// Check if database exists, create if not
	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbCfg.DBName,
	).Scan(&exists)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to check database existence: %v\n", err)
		os.Exit(1)
	}

	if !exists {
		fmt.Printf("Database '%s' does not exist. Creating...\n", dbCfg.DBName)
		quoted := `"` + strings.ReplaceAll(dbCfg.DBName, `"`, `""`) + `"`
		if _, err := postgresDB.Exec("CREATE DATABASE " + quoted); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create database: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Database '%s' created successfully.\n", dbCfg.DBName)
	}

	// Now connect to the target database
	db, err := postgres.NewConnection(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(context.Background(), db, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully!")
}
