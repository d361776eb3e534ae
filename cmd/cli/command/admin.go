package command

// Commands in this file bypass the API and work on the database directly,
// with the same .env / environment the server reads.

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reviewhub/database"
	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/logger"
	"reviewhub/internal/microservices/http-api/permissions"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/microservices/http-api/validators"
)

func loadServerConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	l, err := logger.New(false, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, l, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadServerConfig()
		if err != nil {
			return err
		}
		if err := database.MigrateUp(cfg.DatabaseURL, l); err != nil {
			return err
		}
		success("Migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		cfg, l, err := loadServerConfig()
		if err != nil {
			return err
		}
		if err := database.MigrateDown(cfg.DatabaseURL, steps, l); err != nil {
			return err
		}
		success("Rolled back %d migration(s)", steps)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts directly in the database",
	Long:  `Create accounts and change roles without going through the API. Use it to bootstrap the first admin.`,
}

// withUserService opens the database and cache the server uses and hands a
// UserService to fn, so role changes also evict cached users.
func withUserService(fn func(service.UserService) error) error {
	cfg, l, err := loadServerConfig()
	if err != nil {
		return err
	}
	if err := validators.SetUsernamePattern(cfg.UsernamePattern); err != nil {
		return err
	}

	db, err := database.ConnectDB(cfg, l)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, l)
	defer userCache.Close()

	return fn(service.NewUserService(repository.NewUserRepository(db), userCache, cfg.UserCacheTTL, l))
}

var createUserCmd = &cobra.Command{
	Use:   "create [username] [email]",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		roleFlag, _ := cmd.Flags().GetString("role")
		role, err := permissions.ParseRole(roleFlag)
		if err != nil {
			return err
		}

		return withUserService(func(users service.UserService) error {
			u, err := users.Create(cmd.Context(), service.UserInput{
				Username: args[0],
				Email:    args[1],
				Role:     role,
			})
			if err != nil {
				return err
			}
			success("Created %s (%s)", u.Username, u.Role)
			fmt.Println("The user obtains a token through 'reviewhub auth signup' with the same username and email.")
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role [username] [role]",
	Short: "Change the role of an account (user, moderator, admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := permissions.ParseRole(args[1])
		if err != nil {
			return err
		}

		return withUserService(func(users service.UserService) error {
			u, err := users.Update(cmd.Context(), args[0], service.UserUpdate{Role: &role})
			if err != nil {
				return err
			}
			success("%s is now %s", u.Username, u.Role)
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	migrateDownCmd.Flags().Int("steps", 1, "number of migrations to roll back")

	userCmd.AddCommand(createUserCmd, setRoleCmd)
	createUserCmd.Flags().String("role", string(permissions.RoleUser), "role of the new account")
}
