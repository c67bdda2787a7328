package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id         TEXT PRIMARY KEY,
		owner_id   TEXT NOT NULL,
		title      TEXT NOT NULL,
		category   TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS influencers (
		id           TEXT PRIMARY KEY,
		email        TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS campaign_applications (
		id            TEXT PRIMARY KEY,
		campaign_id   TEXT NOT NULL REFERENCES campaigns(id),
		influencer_id TEXT NOT NULL,
		status        TEXT NOT NULL CHECK (status IN ('pending', 'selected', 'rejected', 'completed')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (campaign_id, influencer_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_campaign_applications_influencer ON campaign_applications (influencer_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS mission_submissions (
		id             TEXT PRIMARY KEY,
		application_id TEXT NOT NULL UNIQUE REFERENCES campaign_applications(id),
		content_url    TEXT NOT NULL,
		platform       TEXT NOT NULL,
		note           TEXT NOT NULL DEFAULT '',
		review_status  TEXT NOT NULL CHECK (review_status IN ('pending', 'approved', 'revision_requested')),
		feedback       TEXT NOT NULL DEFAULT '',
		revision_count INTEGER NOT NULL DEFAULT 0,
		submitted_at   TIMESTAMPTZ NOT NULL,
		reviewed_at    TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS revision_requests (
		id              TEXT PRIMARY KEY,
		submission_id   TEXT NOT NULL REFERENCES mission_submissions(id),
		revision_number INTEGER NOT NULL CHECK (revision_number > 0),
		requested_by    TEXT NOT NULL,
		reason          TEXT NOT NULL,
		requested_at    TIMESTAMPTZ NOT NULL,
		revised_url     TEXT NOT NULL DEFAULT '',
		completion_note TEXT NOT NULL DEFAULT '',
		completed_at    TIMESTAMPTZ,
		UNIQUE (submission_id, revision_number)
	)`,
	`CREATE TABLE IF NOT EXISTS portfolio_entries (
		id                TEXT PRIMARY KEY,
		application_id    TEXT NOT NULL UNIQUE REFERENCES campaign_applications(id),
		influencer_id     TEXT NOT NULL,
		campaign_id       TEXT NOT NULL,
		campaign_title    TEXT NOT NULL,
		campaign_category TEXT NOT NULL DEFAULT '',
		platform          TEXT NOT NULL,
		content_url       TEXT NOT NULL,
		completed_at      TIMESTAMPTZ NOT NULL,
		rating            INTEGER CHECK (rating BETWEEN 1 AND 5),
		review_text       TEXT NOT NULL DEFAULT '',
		is_public         BOOLEAN NOT NULL DEFAULT TRUE,
		is_featured       BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolio_entries_influencer ON portfolio_entries (influencer_id, completed_at DESC)`,
}

// Migrate creates the mission tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
