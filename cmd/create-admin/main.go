package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/sritlabs/sat-backend/internal/config"
	"github.com/sritlabs/sat-backend/internal/database"
	"github.com/sritlabs/sat-backend/internal/logger"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
	"github.com/sritlabs/sat-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	name := prompt(reader, "Enter Name: ")
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	employeeID := prompt(reader, "Enter Employee ID: ")
	if employeeID == "" {
		fmt.Println("Error: Employee ID is required")
		return
	}

	email := prompt(reader, "Enter Email: ")
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	branch := prompt(reader, "Enter Branch (e.g. CSE): ")
	if branch == "" {
		fmt.Println("Error: Branch is required")
		return
	}

	superAdmin := strings.EqualFold(prompt(reader, "Super admin? (y/N): "), "y")

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if err := service.ValidatePasswordPolicy(password); err != nil {
		fmt.Println("Error: password needs at least 8 characters with upper, lower and digit")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newAdmin := &model.Admin{
		EmployeeID:   employeeID,
		Name:         name,
		Email:        email,
		Branch:       branch,
		SuperAdmin:   superAdmin,
		PasswordHash: string(hashedPassword),
	}

	if err := adminRepo.Create(ctx, newAdmin); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", newAdmin.Name, newAdmin.Email, newAdmin.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	value, _ := reader.ReadString('\n')
	return strings.TrimSpace(value)
}
