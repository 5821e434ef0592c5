/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/config"
	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/database"
	_ "github.com/GoogleCloudPlatform/nl-trip-analytics/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/nl-trip-analytics/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/nl-trip-analytics/internal/database/sqlserver"
)

var v *viper.Viper

var rootCmd = &cobra.Command{
	Use:   "nl_trip_analytics",
	Short: "Answer natural-language questions about trip data with SQL",
	Long: `nl_trip_analytics compiles plain-English questions about trips,
stations and weather into parameterized SQL and executes them against
the configured database.`,
	PersistentPreRunE: validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	return validateDialect(v.GetString("db.dialect"))
}

func validateDialect(dialect string) error {
	supportedDialects := []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlsqlserver"}
	isValidDialect := false
	for _, supportedDialect := range supportedDialects {
		if dialect == supportedDialect {
			isValidDialect = true
			break
		}
	}
	if !isValidDialect {
		return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supportedDialects, ", "))
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func setupDatabase(cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	v = config.NewViper()

	pf := rootCmd.PersistentFlags()
	pf.String("dialect", "postgres", fmt.Sprintf("Database dialect (%s)", strings.Join([]string{"postgres", "mysql", "sqlserver", "cloudsqlpostgres", "cloudsqlmysql", "cloudsqlsqlserver"}, ", ")))
	pf.String("host", "localhost", "Database host")
	pf.Int("port", 5432, "Database port")
	pf.String("username", "", "Database username")
	pf.String("password", "", "Database password")
	pf.String("database", "", "Database name")
	pf.String("sslmode", "disable", "PostgreSQL SSL mode")
	pf.String("cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	pf.Bool("cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")
	pf.Int("reference-year", 2025, "Year assumed for date phrases that name no year")
	pf.Bool("debug", false, "Enable debug logging")

	v.BindPFlag("db.dialect", pf.Lookup("dialect"))
	v.BindPFlag("db.host", pf.Lookup("host"))
	v.BindPFlag("db.port", pf.Lookup("port"))
	v.BindPFlag("db.user", pf.Lookup("username"))
	v.BindPFlag("db.password", pf.Lookup("password"))
	v.BindPFlag("db.name", pf.Lookup("database"))
	v.BindPFlag("db.sslmode", pf.Lookup("sslmode"))
	v.BindPFlag("db.cloudsql_instance", pf.Lookup("cloudsql-instance-connection-name"))
	v.BindPFlag("db.cloudsql_private_ip", pf.Lookup("cloudsql-use-private-ip"))
	v.BindPFlag("reference_year", pf.Lookup("reference-year"))
	v.BindPFlag("debug", pf.Lookup("debug"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
}
