package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, a course and an article for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if err := seed(cmd.Context(), db, clearData); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
	},
}

type seedUser struct {
	Email        string
	Name         string
	IsTeacher    bool
	IsSupervisor bool
}

var seedUsers = []seedUser{
	{Email: "student@mail.com", Name: "Sam Student"},
	{Email: "teacher@mail.com", Name: "Tara Teacher", IsTeacher: true},
	{Email: "supervisor@mail.com", Name: "Sol Supervisor", IsTeacher: true, IsSupervisor: true},
}

func seed(ctx context.Context, db *sqlx.DB, clear bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if clear {
		for _, table := range []string{"transactions", "comments", "lessons", "units", "courses", "articles", "teachers", "users"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		fmt.Println("Cleared existing data")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ids := make(map[string]int64, len(seedUsers))
	teacherIDs := make(map[string]int64)
	for _, u := range seedUsers {
		userID, err := ensureUser(ctx, tx, u, string(hash))
		if err != nil {
			return err
		}
		ids[u.Email] = userID

		if !u.IsTeacher {
			continue
		}
		var teacherID int64
		err = tx.GetContext(ctx, &teacherID, tx.Rebind(`
			INSERT INTO teachers (user_id, is_teacher, is_supervisor, created_at)
			VALUES (?, ?, ?, now())
			ON CONFLICT (user_id) DO UPDATE SET is_teacher = EXCLUDED.is_teacher, is_supervisor = EXCLUDED.is_supervisor
			RETURNING id`), userID, u.IsTeacher, u.IsSupervisor)
		if err != nil {
			return fmt.Errorf("failed to seed teacher %s: %w", u.Email, err)
		}
		teacherIDs[u.Email] = teacherID
	}

	var courseID int64
	err = tx.GetContext(ctx, &courseID, tx.Rebind("SELECT id FROM courses WHERE title = ?"), "Practical Go")
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.GetContext(ctx, &courseID, tx.Rebind(`
			INSERT INTO courses (title, description, price, teacher_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, now(), now()) RETURNING id`),
			"Practical Go", "Services, concurrency and testing in Go.", "49.50", teacherIDs["teacher@mail.com"])
		if err != nil {
			return fmt.Errorf("failed to seed course: %w", err)
		}

		var unitID int64
		if err := tx.GetContext(ctx, &unitID, tx.Rebind(`
			INSERT INTO units (course_id, title, description, created_at, updated_at)
			VALUES (?, ?, ?, now(), now()) RETURNING id`), courseID, "Getting started", "Tooling and modules"); err != nil {
			return fmt.Errorf("failed to seed unit: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO lessons (unit_id, title, content, created_at, updated_at)
			VALUES (?, ?, ?, now(), now())`), unitID, "Hello, modules", "go mod init and friends"); err != nil {
			return fmt.Errorf("failed to seed lesson: %w", err)
		}
		fmt.Println("Seeded course: Practical Go")
	} else if err != nil {
		return err
	}

	var articles int
	if err := tx.GetContext(ctx, &articles, "SELECT COUNT(*) FROM articles"); err != nil {
		return err
	}
	if articles == 0 {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO articles (title, content, student_id, created_at, updated_at)
			VALUES (?, ?, ?, now(), now())`), "Welcome", "First post on the school board.", ids["student@mail.com"]); err != nil {
			return fmt.Errorf("failed to seed article: %w", err)
		}
		fmt.Println("Seeded welcome article")
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	fmt.Println("Seed data ready; every account uses the password \"password\"")
	return nil
}

func ensureUser(ctx context.Context, tx *sqlx.Tx, u seedUser, hash string) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, tx.Rebind("SELECT id FROM users WHERE email = ?"), u.Email)
	if err == nil {
		fmt.Println("user already exists:", u.Email)
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	err = tx.GetContext(ctx, &id, tx.Rebind(`
		INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, true, now(), now()) RETURNING id`), u.Email, u.Name, hash)
	if err != nil {
		return 0, fmt.Errorf("failed to insert user %s: %w", u.Email, err)
	}
	fmt.Println("Seeded user:", u.Email)
	return id, nil
}
