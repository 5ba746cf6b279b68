package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
	"github.com/Arisudan/Varshini-Industrries/internal/auth"
	"github.com/Arisudan/Varshini-Industrries/internal/config"
	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/Arisudan/Varshini-Industrries/internal/store"
	"github.com/joho/godotenv"
)

const usage = "expected 'add-user', 'hash-passwords' or 'migrate' subcommand"

func main() {
	_ = godotenv.Load()

	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := addUserCmd.String("username", "", "Username for the new user")
	password := addUserCmd.String("password", "", "Password for the new user")
	name := addUserCmd.String("name", "", "Display name")
	role := addUserCmd.String("role", "Admin", "Role label shown in the dashboard")

	hashCmd := flag.NewFlagSet("hash-passwords", flag.ExitOnError)

	migrateCmd := flag.NewFlagSet("migrate", flag.ExitOnError)
	from := migrateCmd.String("from", "file", "Source store driver (file, sqlite, postgres)")
	to := migrateCmd.String("to", "sqlite", "Destination store driver (file, sqlite, postgres)")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" {
			fmt.Println("username and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		st := openStore(ctx, cfg, cfg.StoreDriver)
		defer st.Close()
		if err := addUser(ctx, st, models.User{Username: *username, Password: *password, Name: *name, Role: *role}); err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Printf("User '%s' created successfully.\n", *username)

	case "hash-passwords":
		hashCmd.Parse(os.Args[2:])
		st := openStore(ctx, cfg, cfg.StoreDriver)
		defer st.Close()
		n, err := hashPasswords(ctx, st)
		if err != nil {
			log.Fatalf("Failed to hash passwords: %v", err)
		}
		fmt.Printf("Hashed %d plaintext password(s).\n", n)

	case "migrate":
		migrateCmd.Parse(os.Args[2:])
		if strings.EqualFold(*from, *to) {
			log.Fatalf("source and destination are both %q", *from)
		}
		src := openStore(ctx, cfg, *from)
		defer src.Close()
		dst := openStore(ctx, cfg, *to)
		defer dst.Close()
		if err := store.Copy(ctx, src, dst); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Printf("Copied document from %s to %s.\n", *from, *to)

	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config, driver string) store.DocumentStore {
	st, err := store.Open(ctx, store.Options{
		Driver:      driver,
		FilePath:    cfg.DBFile,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", driver, err)
	}
	return st
}

// addUser stores u with a bcrypt hash of its plaintext password.
func addUser(ctx context.Context, st store.DocumentStore, u models.User) error {
	hashed, err := auth.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	if u.Name == "" {
		u.Name = u.Username
	}
	return st.Update(ctx, func(doc *models.Document) error {
		if _, exists := doc.FindUser(u.Username); exists {
			return fmt.Errorf("user %q already exists: %w", u.Username, apperr.ErrConflict)
		}
		doc.Users = append(doc.Users, u)
		return nil
	})
}

// hashPasswords replaces legacy plaintext passwords with bcrypt hashes.
func hashPasswords(ctx context.Context, st store.DocumentStore) (int, error) {
	var n int
	err := st.Update(ctx, func(doc *models.Document) error {
		var err error
		n, err = auth.HashLegacyPasswords(doc)
		return err
	})
	return n, err
}
