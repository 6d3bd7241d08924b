package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spec-kit/workforce-service/internal/auth"
	"github.com/spec-kit/workforce-service/internal/bootstrap"
	"github.com/spec-kit/workforce-service/internal/config"
	"github.com/spec-kit/workforce-service/internal/domain"
	"github.com/spec-kit/workforce-service/internal/observability"
	"github.com/spec-kit/workforce-service/internal/repository"
	"github.com/spec-kit/workforce-service/internal/service"
)

var rootCmd = &cobra.Command{
	Use:   "wfmctl",
	Short: "Workforce service operator CLI",
	Long: `wfmctl runs maintenance tasks against the storage backend selected by
STORAGE_DRIVER: schema migrations, admin provisioning and user listings.
It reads the same environment and .env file as the API server.`,
	SilenceUsage: true,
}

func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(usersCmd())
}

// withBackend loads configuration, opens storage and closes it after fn.
func withBackend(ctx context.Context, migrate bool, fn func(context.Context, *config.Config, *zap.Logger, *bootstrap.Backend) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	backend, err := bootstrap.Open(ctx, cfg, logger, migrate)
	if err != nil {
		return err
	}
	defer backend.Close(context.Background()) //nolint:errcheck
	return fn(ctx, cfg, logger, backend)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations (postgres) or ensure indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), true, func(_ context.Context, cfg *config.Config, _ *zap.Logger, _ *bootstrap.Backend) error {
				fmt.Printf("storage %s is up to date\n", cfg.Storage.Driver)
				return nil
			})
		},
	}
}

func createAdminCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Provision a verified admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var missing []string
			if strings.TrimSpace(name) == "" {
				missing = append(missing, "--name")
			}
			if strings.TrimSpace(email) == "" {
				missing = append(missing, "--email")
			}
			if len(password) < 6 || len(password) > auth.MaxPasswordBytes {
				missing = append(missing, "--password (6 to 72 characters)")
			}
			if len(missing) > 0 {
				return fmt.Errorf("required: %s", strings.Join(missing, ", "))
			}
			return withBackend(cmd.Context(), false, func(ctx context.Context, cfg *config.Config, logger *zap.Logger, b *bootstrap.Backend) error {
				authService := service.NewAuthService(*cfg, service.AuthDependencies{
					UserRepo: b.Stores.Users,
					Logger:   logger,
				})
				user, err := authService.CreateAdmin(ctx, name, email, password)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]string{"id": user.ID, "email": user.Email})
				}
				fmt.Printf("admin %s created with id %s\n", user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	return cmd
}

func usersCmd() *cobra.Command {
	users := &cobra.Command{Use: "users", Short: "Inspect accounts"}
	users.AddCommand(usersListCmd())
	return users
}

func usersListCmd() *cobra.Command {
	var role, managerID string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.UserFilter{ManagerID: managerID, Limit: limit}
			if role != "" {
				parsed, err := domain.ParseRole(role)
				if err != nil {
					return err
				}
				filter.Role = parsed
			}
			return withBackend(cmd.Context(), false, func(ctx context.Context, _ *config.Config, _ *zap.Logger, b *bootstrap.Backend) error {
				items, err := b.Stores.Users.List(ctx, filter)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(summarize(items))
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role", "Manager", "Verified"})
				for _, u := range items {
					manager := ""
					if u.ManagerID != nil {
						manager = *u.ManagerID
					}
					tw.AppendRow(table.Row{u.ID, u.Name, u.Email, u.Role, manager, u.IsVerified})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role filter")
	cmd.Flags().StringVar(&managerID, "manager-id", "", "manager filter")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows")
	return cmd
}

type userRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	ManagerID  *string `json:"managerId"`
	IsVerified bool    `json:"isVerified"`
}

// summarize drops credentials and token hashes from listings.
func summarize(users []domain.User) []userRow {
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, userRow{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String(), ManagerID: u.ManagerID, IsVerified: u.IsVerified})
	}
	return rows
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
