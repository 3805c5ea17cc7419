package main

import (
	"context"
	"flag"
	"fmt"

	"trader-portfolio-api/internal/config"
	"trader-portfolio-api/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	var (
		action  = flag.String("action", "up", "Migration action: up, down, status, validate")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if cfg.Warehouse.Driver == config.DriverSnowflake {
		logger.Fatal("Snowflake schema is managed by the data pipeline. Set WAREHOUSE_DRIVER to postgres or sqlite3")
	}

	logger.WithFields(logrus.Fields{
		"driver": cfg.Warehouse.Driver,
		"action": *action,
	}).Info("Starting migration tool")

	connector := database.NewConnector(&cfg.Warehouse, logger)
	defer connector.Close()

	db, err := connector.DB(context.Background())
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to warehouse")
	}

	migrationManager := database.NewMigrationManager(db, cfg.Warehouse.Driver, logger)

	switch *action {
	case "up":
		err = migrationManager.RunMigrations()
	case "down":
		err = migrationManager.RollbackMigration()
	case "status":
		err = showMigrationStatus(migrationManager)
	case "validate":
		if err = migrationManager.ValidateSchema(); err == nil {
			fmt.Println("Schema validation passed successfully")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}
	if err != nil {
		logger.WithError(err).Fatalf("Migration %s failed", *action)
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(m *database.MigrationManager) error {
	status, err := m.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}
