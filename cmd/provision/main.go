package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/avoronov/miniogate/internal/config"
	"github.com/avoronov/miniogate/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS file_metadata (
	id           BIGSERIAL PRIMARY KEY,
	file_name    TEXT NOT NULL,
	content_type TEXT,
	size         BIGINT,
	upload_time  TIMESTAMPTZ NOT NULL,
	folder_path  TEXT
);
CREATE INDEX IF NOT EXISTS idx_file_metadata_file_name ON file_metadata (file_name);
CREATE INDEX IF NOT EXISTS idx_file_metadata_folder_path ON file_metadata (folder_path);
`

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func runSchema(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(c.Context, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("file_metadata schema is in place")
	return nil
}

func runBucket(c *cli.Context) error {
	cfg := config.Load()

	store, err := storage.NewMinioClient(cfg.Minio)
	if err != nil {
		return fmt.Errorf("failed to build object store client: %w", err)
	}

	if err := store.EnsureBucket(c.Context); err != nil {
		return err
	}

	log.Printf("bucket %q is in place", cfg.Minio.Bucket)
	return nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "provision",
		Usage: "Provision the metadata schema and the object store bucket",
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Create the file_metadata table and its indexes",
				Flags: []cli.Flag{
					newDBURLFlag(),
				},
				Action: runSchema,
			},
			{
				Name:   "bucket",
				Usage:  "Create the configured bucket when it does not exist",
				Action: runBucket,
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
