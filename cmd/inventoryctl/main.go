// Command inventoryctl runs database maintenance and account tasks outside the API.
package main

import (
	"fmt"
	"os"

	"naratani-inventory/internal/config"
	"naratani-inventory/internal/model"
	"naratani-inventory/internal/permission"
	"naratani-inventory/internal/repository"
	"naratani-inventory/internal/service"
	"naratani-inventory/pkg/database"
	"naratani-inventory/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:  "inventoryctl",
		Usage: "inventory database and account maintenance",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "create or update every table",
				Action: withDB(migrate),
			},
			{
				Name:   "seed",
				Usage:  "seed privileges, roles and the admin account from config",
				Action: withDB(seed),
			},
			{
				Name:  "create-user",
				Usage: "create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "role", Value: model.RoleSales, Usage: "admin, user or sales"},
				},
				Action: withDB(createUser),
			},
			{
				Name:  "reset-password",
				Usage: "set a new password and sign the account out everywhere",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: withDB(resetPassword),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *logrus.Logger
}

// withDB loads config and opens the database around a command.
func withDB(run func(*cli.Context, env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := database.Connect(database.Options{
			DSN:      cfg.DatabaseURL,
			Host:     cfg.DBHost,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Name:     cfg.DBName,
			Port:     cfg.DBPort,
			TimeZone: cfg.Timezone,
		})
		if err != nil {
			return err
		}
		defer database.Close(db)
		return run(c, env{cfg: cfg, db: db, log: logger.New(cfg.LogLevel, "text")})
	}
}

func migrate(_ *cli.Context, e env) error {
	if err := repository.Migrate(e.db); err != nil {
		return err
	}
	e.log.Info("migration complete")
	return nil
}

func seed(c *cli.Context, e env) error {
	grants := make(map[string][]string, len(permission.Defaults))
	for role, statements := range permission.Defaults {
		grants[role] = statements.Codes()
	}
	res, err := repository.Seed(c.Context, e.db, repository.SeedOptions{
		Grants:        grants,
		AdminEmail:    e.cfg.AdminEmail,
		AdminPassword: e.cfg.AdminPassword,
	})
	if err != nil {
		return err
	}
	e.log.WithField("adminCreated", res.AdminCreated).Info("seed complete")
	return nil
}

func createUser(c *cli.Context, e env) error {
	users := service.NewUserService(repository.NewUserRepo(e.db), repository.NewRoleRepo(e.db), repository.NewPrivilegeRepo(e.db), nil, e.log)
	user, err := users.Create(c.Context, &service.CreateUserRequest{
		Name:     c.String("name"),
		Email:    c.String("email"),
		Password: c.String("password"),
		Role:     c.String("role"),
	})
	if err != nil {
		return err
	}
	e.log.WithFields(logrus.Fields{"id": user.ID, "email": user.Email, "role": user.Role}).Info("user created")
	return nil
}

func resetPassword(c *cli.Context, e env) error {
	users := repository.NewUserRepo(e.db)

	// 1. Find user
	user, err := users.FindByEmail(c.Context, c.String("email"))
	if err != nil {
		return fmt.Errorf("find %s: %w", c.String("email"), err)
	}

	// 2. Hash new password
	if err := user.SetPassword(c.String("password")); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// 3. Update and revoke open sessions
	if err := users.UpdatePassword(c.Context, user.ID, user.Password); err != nil {
		return err
	}
	if err := users.UpdateTokenVersion(c.Context, user.ID, uuid.New().String()); err != nil {
		return err
	}

	e.log.WithField("email", user.Email).Info("password reset")
	return nil
}
