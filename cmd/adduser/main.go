// Command adduser creates an account directly in the database. It is the
// only way besides seeding to create an ADMIN.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Bateyjosue/xenfi-systems/internal/config"
	"github.com/Bateyjosue/xenfi-systems/internal/database"
	"github.com/Bateyjosue/xenfi-systems/internal/logging"
	"github.com/Bateyjosue/xenfi-systems/internal/models"
	"github.com/Bateyjosue/xenfi-systems/internal/service"
	"github.com/Bateyjosue/xenfi-systems/internal/store"

	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	email := fs.String("email", "", "Email address (login)")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	name := fs.String("name", "", "Display name")
	role := fs.String("role", string(models.RoleStaff), "Role: ADMIN or STAFF")
	configPath := fs.String("config", "", "Path to config.yaml")
	dbPath := fs.String("db", "", "SQLite database path (overrides config)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -email <email> [-password <password>] [-name <name>] [-role ADMIN|STAFF] [-config <path>] [-db <path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: email")
	}
	r := models.Role(strings.ToUpper(*role))
	if !r.Valid() {
		return fmt.Errorf("role must be %s or %s", models.RoleAdmin, models.RoleStaff)
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}
	if len(strings.TrimSpace(password)) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dbPath != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = *dbPath
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	auth := service.NewAuthService(store.New(db), service.AuthConfig{
		BcryptCost: cfg.Security.BcryptCost,
	}, service.Options{QueryTimeout: cfg.Database.QueryTimeout}, logging.Discard())

	var displayName *string
	if n := strings.TrimSpace(*name); n != "" {
		displayName = &n
	}
	u, err := auth.CreateUser(context.Background(), *email, password, displayName, r)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s (%s) created successfully with ID %d\n", u.Email, u.Role, u.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
