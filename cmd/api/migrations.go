// cmd/api/migrations.go
// Schema setup for the matching service. Date keys are stored as
// YYYY-MM-DD strings resolved in the match timezone, not as DATE
// columns, so a pool row's calendar day never shifts with the
// database's timezone setting.

package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id UUID PRIMARY KEY,
			display_name VARCHAR(100) NOT NULL,
			date_of_birth DATE,
			gender VARCHAR(20),
			location VARCHAR(255),
			bio TEXT,
			interests TEXT[] DEFAULT '{}',
			interested_in VARCHAR(20) DEFAULT 'all',
			min_age INTEGER DEFAULT 18,
			max_age INTEGER DEFAULT 100,
			onboarding_completed BOOLEAN DEFAULT FALSE,
			onboarding_completed_at TIMESTAMPTZ,
			subscription_tier VARCHAR(20) DEFAULT 'free',
			is_active BOOLEAN DEFAULT TRUE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS personality_results (
			user_id UUID PRIMARY KEY REFERENCES profiles(user_id) ON DELETE CASCADE,
			archetype VARCHAR(10) NOT NULL,
			category VARCHAR(20),
			scores JSONB NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS profile_photos (
			id SERIAL PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			storage_path TEXT NOT NULL,
			display_order INTEGER DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS blocks (
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			blocked_user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, blocked_user_id)
		)`,

		`CREATE TABLE IF NOT EXISTS user_daily_match_pools (
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			pool_date VARCHAR(10) NOT NULL,
			batch_id UUID NOT NULL,
			pool_data JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, pool_date)
		)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			matched_user_id UUID NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			match_type VARCHAR(20) NOT NULL,
			match_score INTEGER NOT NULL,
			match_date VARCHAR(10) NOT NULL,
			status VARCHAR(20) DEFAULT 'pending',
			dimension_scores JSONB,
			dimension_breakdown JSONB,
			archetype_score INTEGER DEFAULT 0,
			anxiety_reduction_score INTEGER DEFAULT 0,
			icebreakers TEXT[] DEFAULT '{}',
			personality_insight TEXT,
			match_reason VARCHAR(100),
			match_display_name VARCHAR(100),
			match_age INTEGER,
			match_archetype VARCHAR(10),
			photo_urls TEXT[] DEFAULT '{}',
			bio_preview TEXT,
			common_interests TEXT[] DEFAULT '{}',
			is_first_day_match BOOLEAN DEFAULT FALSE,
			special_effects TEXT[] DEFAULT '{}',
			expires_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (user_id, matched_user_id, match_date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_pools_expires_at ON user_daily_match_pools(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_date ON matches(user_id, match_date)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user_created ON matches(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_photos_user ON profile_photos(user_id, display_order)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
