// Command seed provisions the administrator account. It is safe to re-run:
// any existing user with the seed email is removed first.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/ahmetcoskunkizilkaya/auth-user/internal/config"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/database"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/logging"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/repository"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/services"
	"github.com/ahmetcoskunkizilkaya/auth-user/internal/validation"
)

type seedConfig struct {
	Email    string `env:"SEED_ADMIN_EMAIL" envDefault:"admin@exemplo.com"`
	Password string `env:"SEED_ADMIN_PASSWORD" envDefault:"Admin123@"`
	Name     string `env:"SEED_ADMIN_NAME" envDefault:"Administrador"`
	Zipcode  string `env:"SEED_ADMIN_ZIPCODE" envDefault:"00000000"`
	City     string `env:"SEED_ADMIN_CITY" envDefault:"Belo Horizonte"`
	State    string `env:"SEED_ADMIN_STATE" envDefault:"MG"`
}

func main() {
	_ = godotenv.Load()
	logging.Setup(os.Getenv("APP_ENV"))

	if err := run(os.Args[1:]); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var seed seedConfig
	if err := env.Parse(&seed); err != nil {
		return fmt.Errorf("failed to parse seed config: %w", err)
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.StringVar(&seed.Email, "email", seed.Email, "administrator email")
	fs.StringVar(&seed.Password, "password", seed.Password, "administrator password")
	fs.StringVar(&seed.Name, "name", seed.Name, "administrator name")
	fs.StringVar(&seed.Zipcode, "zipcode", seed.Zipcode, "administrator postal code")
	fs.StringVar(&seed.City, "city", seed.City, "administrator city")
	fs.StringVar(&seed.State, "state", seed.State, "administrator state")
	prompt := fs.Bool("prompt", false, "read the password from the terminal")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *prompt {
		password, err := readPassword()
		if err != nil {
			return err
		}
		seed.Password = password
	}

	seed.Email = validation.NormalizeEmail(seed.Email)
	if !validation.IsEmail(seed.Email) {
		return fmt.Errorf("invalid admin email %q", seed.Email)
	}
	if strings.TrimSpace(seed.Password) == "" {
		return errors.New("admin password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()
	if err := database.Migrate(db); err != nil {
		return err
	}

	users := repository.NewGormUserRepository(db)
	sessions := repository.NewGormSessionRepository(db)
	auth := services.NewAuthService(users, sessions, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return provision(ctx, users, auth, seed)
}

// provision replaces any user holding the seed email with a fresh
// administrator created through the regular sign-up path.
func provision(ctx context.Context, users repository.UserRepository, identity services.Identity, seed seedConfig) error {
	if err := users.DeleteByEmail(ctx, seed.Email); err != nil {
		return fmt.Errorf("failed to remove previous admin: %w", err)
	}

	issued, err := identity.SignUpEmail(ctx, services.SignUpInput{
		Name:     seed.Name,
		Email:    seed.Email,
		Password: seed.Password,
		Zipcode:  validation.NormalizePostalCode(seed.Zipcode),
		City:     seed.City,
		State:    strings.ToUpper(seed.State),
	}, services.ClientMeta{UserAgent: "seed"})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	if err := users.Promote(ctx, issued.Session.UserID); err != nil {
		return fmt.Errorf("failed to promote admin: %w", err)
	}

	slog.Info("admin provisioned", "email", seed.Email, "user_id", issued.Session.UserID.String())
	return nil
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("-prompt needs an interactive terminal")
	}
	fmt.Fprint(os.Stderr, "Admin password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
