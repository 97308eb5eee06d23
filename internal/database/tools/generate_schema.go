package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"attend-go/internal/database"
	"attend-go/internal/database/migrations"
)

// Regenerates internal/database/schema.go from the migration files so tests
// can apply the full schema in one Exec instead of running the chain.
func main() {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	schema, err := extractSchema(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to extract schema: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join("internal", "database", "schema.go")
	src := fmt.Sprintf("%s\n\npackage database\n\n%s\nconst Schema = `%s`\n",
		"// Code generated by internal/database/tools/generate_schema.go; DO NOT EDIT.",
		"// Schema is the complete current schema as produced by running all\n// migrations against an empty database. Tests apply it directly to\n// in-memory databases instead of running the migration chain.",
		schema)

	if err := os.WriteFile(outPath, []byte(src), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write schema file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s from migrations\n", outPath)
}

// extractSchema pulls all CREATE statements from sqlite_master, excluding
// SQLite internals and the migration tracking table.
func extractSchema(db *sql.DB) (string, error) {
	query := `
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND name != 'schema_migrations'
		  AND tbl_name != 'schema_migrations'
		ORDER BY
		  CASE type
		    WHEN 'table' THEN 1
		    WHEN 'index' THEN 2
		  END,
		  name
	`

	rows, err := db.Query(query)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var schema string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("scan failed: %w", err)
		}
		schema += stmt + "\n"
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("rows error: %w", err)
	}
	return schema, nil
}
