package repository

import (
	"database/sql"
)

// CreateTableIfNotExists bootstraps the schema. Uniqueness of username, email
// and the reset-token secret lives here, in the storage layer, so concurrent
// duplicate registrations race on the constraint and not on application code.
func CreateTableIfNotExists(db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS accounts (
    id VARCHAR(36) PRIMARY KEY,
    username VARCHAR(20) NOT NULL UNIQUE,
    email VARCHAR(255) NOT NULL UNIQUE,
    password VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
    id VARCHAR(36) PRIMARY KEY,
    account_id VARCHAR(36) NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
    task TEXT NOT NULL,
    priority VARCHAR(20) NOT NULL DEFAULT 'medium',
    status VARCHAR(50) NOT NULL DEFAULT 'To Do',
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    due_date TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS password_reset_tokens (
    id VARCHAR(36) PRIMARY KEY,
    account_id VARCHAR(36) NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
    token VARCHAR(128) NOT NULL UNIQUE,
    expires_at TIMESTAMP NOT NULL,
    used BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(query)
	return err
}

// DropAllTables tears the schema down, child tables first.
func DropAllTables(db *sql.DB) error {
	query := `
DROP TABLE IF EXISTS password_reset_tokens;
DROP TABLE IF EXISTS tasks;
DROP TABLE IF EXISTS accounts;
`
	_, err := db.Exec(query)
	return err
}
