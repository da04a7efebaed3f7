package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"kasuwa.GO/config"
)

var (
	migrationsPath string
	migrateDown    bool
	migrateSteps   int
)

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply database migrations from the migrations directory",
	Run: func(cmd *cobra.Command, args []string) {
		dsn := os.Getenv("MYSQL_DSN")
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?multiStatements=true",
				config.GetEnv("MYSQL_USER", "root"),
				config.GetEnv("MYSQL_PASS", ""),
				config.GetEnv("MYSQL_HOST", "127.0.0.1"),
				config.GetEnv("MYSQL_PORT", "3306"),
				config.GetEnv("MYSQL_DB", "kasuwa"),
			)
		}

		m, err := migrate.New("file://"+migrationsPath, "mysql://"+dsn)
		if err != nil {
			fmt.Printf("migrate init failed: %v\n", err)
			os.Exit(1)
		}
		defer m.Close()

		switch {
		case migrateDown:
			err = m.Down()
		case migrateSteps != 0:
			err = m.Steps(migrateSteps)
		default:
			err = m.Up()
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fmt.Printf("migrate failed: %v\n", err)
			os.Exit(1)
		}

		version, dirty, _ := m.Version()
		fmt.Printf("migrations done: version=%d dirty=%v\n", version, dirty)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back all migrations")
	migrateCmd.Flags().IntVar(&migrateSteps, "steps", 0, "Apply N migrations (negative rolls back)")
	rootCmd.AddCommand(migrateCmd)
}
