// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"xmasbingo/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.Group{},
		&models.User{},
		&models.Submission{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates indexes beyond what AutoMigrate derives from
// the struct tags. The unique indexes carry the app's invariants:
// one group per name, one username per group, one submission per
// (user, square).
func createIndexes() {
	db := GetDB()

	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_groups_name ON groups(name)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_group_username ON users(group_id, username)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_user_square ON bingo_submissions(user_id, square_index)")

	db.Exec("CREATE INDEX IF NOT EXISTS idx_users_group ON users(group_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_submissions_user ON bingo_submissions(user_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_submissions_status ON bingo_submissions(approval_status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_submissions_challenge ON bingo_submissions(is_challenge)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_submissions_created ON bingo_submissions(created_at DESC)")
}
