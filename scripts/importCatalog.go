package main

import (
	"flag"
	"os"

	"innerspark/catalog"
	"innerspark/config"
	"innerspark/database"
	"innerspark/logger"
)

func main() {
	path := flag.String("file", "catalog.csv", "CSV file to import")
	flag.Parse()

	config.LoadConfig()
	if err := logger.Init(config.AppConfig.AppEnv); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()

	if err := database.ConnectDb(); err != nil {
		logger.Log.Fatal("database connection failed", "error", err)
	}

	file, err := os.Open(*path)
	if err != nil {
		logger.Log.Fatal("failed to open CSV file", "file", *path, "error", err)
	}
	defer file.Close()

	res, err := catalog.Import(database.Database.Db, file)
	if err != nil {
		logger.Log.Fatal("import failed", "error", err)
	}
	for _, e := range res.Errors {
		logger.Log.Warn("row not imported", "detail", e)
	}
	logger.Log.Info("import complete",
		"inserted", res.Inserted, "updated", res.Updated, "skipped", res.Skipped, "total", res.Total())
}
