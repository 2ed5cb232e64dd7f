package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"os"
	"strings"

	"techlearn/config"
	"techlearn/database"
	"techlearn/identity"
	applogger "techlearn/logger"
)

// Imports accounts from a CSV file with "email" and "password" columns.
func main() {
	path := flag.String("file", "accounts.csv", "CSV file to import")
	flag.Parse()

	// Load config and connect to storage
	config.LoadConfig()
	log, err := applogger.New(config.AppConfig.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := database.ConnectDb(config.AppConfig, log); err != nil {
		log.Fatal("Failed to connect to storage", "error", err)
	}

	var repo identity.AccountRepository = identity.NewKVAccounts(database.Database.KV)
	if database.Database.Db != nil {
		repo = identity.NewGormAccounts(database.Database.Db)
	}
	accounts := identity.NewAccounts(repo, config.AppConfig.SaltRound)

	// Open CSV file
	file, err := os.Open(*path)
	if err != nil {
		log.Fatal("Failed to open CSV file", "file", *path, "error", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatal("Failed to read CSV", "error", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := headerIndex["email"]; !ok {
		log.Fatal("CSV header has no email column")
	}
	if _, ok := headerIndex["password"]; !ok {
		log.Fatal("CSV header has no password column")
	}
	log.Info("Importing accounts", "rows", len(records)-1)

	inserted, skipped, failed := 0, 0, 0
	ctx := context.Background()
	for i, row := range records[1:] {
		email := getField(row, headerIndex, "email")
		password := getField(row, headerIndex, "password")
		if email == "" || len(password) < 8 {
			log.Warn("Skipping invalid row", "row", i+2)
			skipped++
			continue
		}

		_, err := accounts.Register(ctx, email, password)
		switch {
		case errors.Is(err, identity.ErrAccountExists):
			skipped++
		case err != nil:
			log.Error("Failed to import account", "row", i+2, "email", email, "error", err)
			failed++
		default:
			inserted++
		}
	}

	log.Info("Import completed", "inserted", inserted, "skipped", skipped, "failed", failed)
}

func getField(row []string, headerIndex map[string]int, key string) string {
	if idx, ok := headerIndex[key]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
