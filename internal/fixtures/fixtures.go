// Package fixtures loads seed rows from JSON or YAML files. The file stem names
// the table: user.json, account.yaml, transaction.json.
package fixtures

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type table struct {
	primaryKey string
	timeFields []string
}

var tables = map[string]table{
	"user":        {primaryKey: "user_id"},
	"account":     {primaryKey: "account_id", timeFields: []string{"account_date"}},
	"transaction": {primaryKey: "id", timeFields: []string{"timestamp"}},
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// LoadFiles loads each file in its own database transaction, in order.
func LoadFiles(ctx context.Context, db *gorm.DB, paths ...string) error {
	for _, path := range paths {
		n, err := LoadFile(ctx, db, path)
		if err != nil {
			return err
		}
		slog.Info("Fixture loaded", "file", path, "rows", n)
	}
	return nil
}

// LoadFile inserts every row of one fixture file and returns the row count.
func LoadFile(ctx context.Context, db *gorm.DB, path string) (int, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tbl, ok := tables[name]
	if !ok {
		return 0, fmt.Errorf("fixture %s: unknown table %q", path, name)
	}

	rows, err := readRows(path)
	if err != nil {
		return 0, fmt.Errorf("fixture %s: %w", path, err)
	}

	now := time.Now().UTC()
	for _, row := range rows {
		if err := normalizeRow(row, tbl, now); err != nil {
			return 0, fmt.Errorf("fixture %s: %w", path, err)
		}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if err := tx.Table(name).Create(row).Error; err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return resetSequence(tx, name, tbl.primaryKey)
	})
	if err != nil {
		return 0, fmt.Errorf("fixture %s: %w", path, err)
	}
	return len(rows), nil
}

func readRows(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&rows)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rows)
	default:
		return nil, fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// normalizeRow converts decoded values into types the SQL drivers accept.
// Missing time fields get now, since rows bypass the model hooks.
func normalizeRow(row map[string]any, tbl table, now time.Time) error {
	for k, v := range row {
		switch val := v.(type) {
		case json.Number:
			if i, err := val.Int64(); err == nil {
				row[k] = i
				continue
			}
			d, err := decimal.NewFromString(val.String())
			if err != nil {
				return fmt.Errorf("column %s: %w", k, err)
			}
			row[k] = d
		case float64:
			row[k] = decimal.NewFromFloat(val)
		case int:
			row[k] = int64(val)
		}
	}

	for _, f := range tbl.timeFields {
		switch val := row[f].(type) {
		case nil:
			row[f] = now
		case string:
			t, err := parseTime(val)
			if err != nil {
				return fmt.Errorf("column %s: %w", f, err)
			}
			row[f] = t
		}
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as ISO time", s)
}

// resetSequence moves a postgres serial past the loaded ids so later inserts
// without an explicit id do not collide with fixture rows.
func resetSequence(tx *gorm.DB, name, pk string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	sql := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%[1]q', '%[2]s'), COALESCE(MAX(%[2]s), 0) + 1, false) FROM %[1]q`,
		name, pk)
	return tx.Exec(sql).Error
}
