package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/SlavaKlkv/foodgram/internal/config"
	"github.com/SlavaKlkv/foodgram/internal/db"
	"github.com/SlavaKlkv/foodgram/models"
)

// Offline bulk loader for ingredient reference data. The feed is a
// two-column CSV of (name, measurement unit); rows are upserted by that
// pair, so re-running the import is safe.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_ingredients <ingredients.csv>")
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(csvPath string) error {
	if strings.TrimSpace(csvPath) == "" {
		return fmt.Errorf("csv path must not be empty")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCSV(csvPath)
	if err != nil {
		return fmt.Errorf("read csv: %w", err)
	}

	imported, err := importIngredients(database, records)
	if err != nil {
		return err
	}

	fmt.Printf("imported %d ingredients from %s\n", imported, csvPath)
	return nil
}

func readCSV(csvPath string) ([][2]string, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var records [][2]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 2 {
			continue
		}
		name := strings.TrimSpace(row[0])
		unit := strings.TrimSpace(row[1])
		if name == "" || unit == "" {
			continue
		}
		records = append(records, [2]string{name, unit})
	}
	return records, nil
}

func importIngredients(database *gorm.DB, records [][2]string) (int, error) {
	imported := 0
	for _, record := range records {
		ingredient := models.Ingredient{Name: record[0], MeasurementUnit: record[1]}
		err := database.
			Where("name = ? AND measurement_unit = ?", record[0], record[1]).
			FirstOrCreate(&ingredient).Error
		if err != nil {
			return imported, fmt.Errorf("upsert ingredient %q (%s): %w", record[0], record[1], err)
		}
		imported++
	}
	return imported, nil
}
