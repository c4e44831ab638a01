package main

import (
	"essencialform/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var initDBCommand = &cli.Command{
	Name:   "initdb",
	Usage:  "Create the submissions and documents tables",
	Action: initDB,
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS submissions (
		id BIGSERIAL PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL,
		cpf VARCHAR(11) UNIQUE,
		cnpj VARCHAR(14),
		account_category VARCHAR(20),
		phone VARCHAR(20) NOT NULL,
		email VARCHAR(255),
		birth_date VARCHAR(20),
		cep VARCHAR(8),
		street TEXT,
		number VARCHAR(10),
		complement TEXT,
		neighborhood VARCHAR(100),
		city VARCHAR(100),
		state VARCHAR(2),
		bank_name VARCHAR(255) NOT NULL,
		account_type VARCHAR(20) NOT NULL,
		agency VARCHAR(4) NOT NULL,
		account VARCHAR(20) NOT NULL,
		pix_key VARCHAR(255),
		available_limit VARCHAR(50),
		loan_amount VARCHAR(50),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		submission_id BIGINT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
		document_type VARCHAR(50) NOT NULL,
		file_name VARCHAR(255) NOT NULL,
		content_type VARCHAR(100) NOT NULL,
		file_size BIGINT NOT NULL,
		storage_key TEXT,
		file_url TEXT,
		drive_file_id VARCHAR(255),
		drive_view_url TEXT,
		drive_download_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_phone ON submissions(phone)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_submission_id ON documents(submission_id)`,
}

func initDB(cCtx *cli.Context) error {
	ctx := cCtx.Context

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	logger.Info("database schema created")
	return nil
}
