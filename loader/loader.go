package loader

import (
	"fmt"
	"log"
	"os"

	"shizai/database"
	"shizai/parsers"

	"github.com/jmoiron/sqlx"
)

// マスターCSVの配置場所 (SOUフォルダはアプリ直下に置く想定)
const (
	supplyCatalogPath = "SOU/SHIZAI.CSV"
	storeMasterPath   = "SOU/TENPO.CSV"
)

// InitDatabase はデータベーススキーマを適用し、マスターCSVをロードします。
func InitDatabase(db *sqlx.DB) error {
	log.Println("Applying database schema...")
	if err := applySchema(db); err != nil {
		return fmt.Errorf("failed to apply schema.sql: %w", err)
	}
	log.Println("Schema applied successfully.")

	if _, err := os.Stat(supplyCatalogPath); os.IsNotExist(err) {
		log.Printf("WARN: %s not found, skipping supply catalog load.", supplyCatalogPath)
	} else {
		log.Printf("Loading %s...", supplyCatalogPath)
		if err := LoadSupplyCatalogCSV(db, supplyCatalogPath); err != nil {
			return fmt.Errorf("failed to load %s: %w", supplyCatalogPath, err)
		}
		log.Printf("Loaded %s successfully.", supplyCatalogPath)
	}

	if _, err := os.Stat(storeMasterPath); os.IsNotExist(err) {
		log.Printf("WARN: %s not found, skipping store master load.", storeMasterPath)
	} else {
		log.Printf("Loading %s...", storeMasterPath)
		if err := LoadStoreMasterCSV(db, storeMasterPath); err != nil {
			return fmt.Errorf("failed to load %s: %w", storeMasterPath, err)
		}
		log.Printf("Loaded %s successfully.", storeMasterPath)
	}

	return nil
}

// applySchema は schema.sql ファイルを読み込んで実行します。
func applySchema(db *sqlx.DB) error {
	schemaBytes, err := os.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("could not read schema.sql: %w", err)
	}
	_, err = db.Exec(string(schemaBytes))
	return err
}

// LoadSupplyCatalogCSV は資材品目マスターCSVを取り込みます。
func LoadSupplyCatalogCSV(db *sqlx.DB, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	items, err := parsers.ParseSupplyCatalogCSV(file)
	if err != nil {
		return fmt.Errorf("failed to parse supply catalog: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if err := database.UpsertSupplyItemInTx(tx, item); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit supply catalog: %w", err)
	}
	log.Printf("Supply catalog loaded: %d items", len(items))
	return nil
}

// LoadStoreMasterCSV は店舗・区画マスターCSVを取り込みます。
func LoadStoreMasterCSV(db *sqlx.DB, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer file.Close()

	stores, zones, err := parsers.ParseStoreMasterCSV(file)
	if err != nil {
		return fmt.Errorf("failed to parse store master: %w", err)
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, store := range stores {
		if err := database.UpsertStoreInTx(tx, store); err != nil {
			return err
		}
	}
	for _, zone := range zones {
		if err := database.UpsertZoneInTx(tx, zone); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit store master: %w", err)
	}
	log.Printf("Store master loaded: %d stores, %d zones", len(stores), len(zones))
	return nil
}
