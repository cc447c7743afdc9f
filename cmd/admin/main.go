// Package main provides admin management utilities for Yatube.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create-group <slug> <title> [description]  - Create a community group")
	fmt.Println("  go run ./cmd/admin list-groups                                - List all groups")
	fmt.Println("  go run ./cmd/admin delete-group <slug>                        - Delete a group (its posts stay, ungrouped)")
	fmt.Println("  go run ./cmd/admin list-users [limit]                         - List users")
	fmt.Println("  go run ./cmd/admin delete-user <username>                     - Delete a user (posts stay, authorless)")
	fmt.Println("  go run ./cmd/admin migrate [sql|auto]                         - Apply the schema (default: DB_SCHEMA_MODE)")
	fmt.Println("  go run ./cmd/admin schema-status                              - Show applied and pending migrations")
	fmt.Println("  go run ./cmd/admin rollback <version>                         - Roll back one SQL migration")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "migrate", "schema-status", "rollback":
		db, err := database.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := runSchemaCommand(ctx, db, cfg, os.Args[1], os.Args[2:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	groups := repository.NewGroupRepository(db)
	users := repository.NewUserRepository(db)

	switch os.Args[1] {
	case "create-group":
		if len(os.Args) < 4 {
			usage()
			os.Exit(1)
		}
		createGroup(ctx, groups, os.Args[2], os.Args[3], strings.Join(os.Args[4:], " "))
	case "list-groups":
		listGroups(ctx, groups)
	case "delete-group":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		deleteGroup(ctx, groups, os.Args[2])
	case "list-users":
		limit := 50
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				limit = n
			}
		}
		listUsers(ctx, users, limit)
	case "delete-user":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		deleteUser(ctx, users, os.Args[2])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func createGroup(ctx context.Context, repo repository.GroupRepository, slug, title, description string) {
	if err := validation.ValidateGroupSlug(slug); err != nil {
		log.Fatalf("Invalid slug %q: %v", slug, err)
	}
	group := &models.Group{Slug: slug, Title: title, Description: description}
	if err := repo.Create(ctx, group); err != nil {
		log.Fatalf("Failed to create group: %v", err)
	}
	fmt.Printf("Created group %s (ID: %d)\n", group.Slug, group.ID)
}

func listGroups(ctx context.Context, repo repository.GroupRepository) {
	groups, err := repo.List(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch groups: %v", err)
	}
	if len(groups) == 0 {
		fmt.Println("No groups found")
		return
	}
	for _, g := range groups {
		fmt.Printf("ID: %d | Slug: %s | Title: %s\n", g.ID, g.Slug, g.Title)
	}
}

func deleteGroup(ctx context.Context, repo repository.GroupRepository, slug string) {
	group, err := repo.GetBySlug(ctx, slug)
	if err != nil {
		if models.IsNotFound(err) {
			fmt.Printf("Group %s not found\n", slug)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}
	if err := repo.Delete(ctx, group.ID); err != nil {
		log.Fatalf("Failed to delete group: %v", err)
	}
	fmt.Printf("Deleted group %s\n", slug)
}

func listUsers(ctx context.Context, repo repository.UserRepository, limit int) {
	users, err := repo.List(ctx, limit, 0)
	if err != nil {
		log.Fatalf("Failed to fetch users: %v", err)
	}
	for _, u := range users {
		fmt.Printf("ID: %d | Username: %s | Joined: %s\n", u.ID, u.Username, u.CreatedAt.Format("2006-01-02"))
	}
}

func deleteUser(ctx context.Context, repo repository.UserRepository, username string) {
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if models.IsNotFound(err) {
			fmt.Printf("User %s not found\n", username)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}
	if err := repo.Delete(ctx, user.ID); err != nil {
		log.Fatalf("Failed to delete user: %v", err)
	}
	fmt.Printf("Deleted user %s (ID: %d)\n", user.Username, user.ID)
}

func runSchemaCommand(ctx context.Context, db *gorm.DB, cfg *config.Config, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		if len(args) > 0 {
			cfg.DBSchemaMode = strings.ToLower(strings.TrimSpace(args[0]))
		}
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("schema apply failed: %w", err)
		}
		fmt.Printf("Schema applied (mode=%s)\n", cfg.DBSchemaMode)
	case "schema-status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		fmt.Printf("mode=%s env=%s run_sql=%t run_auto=%t applied=%d pending=%d\n",
			status.Mode, status.Environment, status.WillRunSQL, status.WillRunAutoMigrate,
			len(status.AppliedVersions), len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			fmt.Printf("pending: %06d_%s\n", m.Version, m.Name)
		}
	case "rollback":
		if len(args) < 1 {
			usage()
			os.Exit(1)
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Printf("Rolled back migration %d\n", version)
	}
	return nil
}
