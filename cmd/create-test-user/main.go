package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"legalassist-backend/config"
	"legalassist-backend/models"
	"legalassist-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFilePath, email, password, name string

	cmd := &cobra.Command{
		Use:          "create-test-user",
		Short:        "Create a user that can sign in to the research pages",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv()
			cfg, err := config.Load(configFilePath)
			if err != nil {
				return err
			}
			return createUser(context.Background(), cfg.Database.URL, email, password, name)
		},
	}

	cmd.Flags().StringVarP(&configFilePath, "config", "c", "", "optional config file")
	cmd.Flags().StringVar(&email, "email", "test@example.com", "user email")
	cmd.Flags().StringVar(&password, "password", "testpassword123", "user password")
	cmd.Flags().StringVar(&name, "name", "Test User", "display name")
	return cmd
}

func createUser(ctx context.Context, connString, email, password, name string) error {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	email = strings.ToLower(strings.TrimSpace(email))

	// Check if user already exists
	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		log.Printf("User with email %s already exists (ID: %s)", email, existing.ID)
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("✅ Test user created successfully!\n")
	fmt.Printf("   ID: %s\n", user.ID)
	fmt.Printf("   Email: %s\n", email)
	fmt.Printf("   Password: %s\n", password)
	fmt.Printf("   Name: %s\n", name)
	return nil
}
