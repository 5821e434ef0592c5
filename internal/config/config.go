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
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Database   DatabaseConfig
	ListenAddr string
	// ReferenceYear anchors date phrases that name no year ("the first
	// week of June"). It must be configured explicitly rather than
	// guessed inside the date extractor.
	ReferenceYear int
	Debug         bool
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
}

// NewViper returns a viper instance with defaults registered and
// NLTRIP_* environment overrides enabled. Flag bindings are added by
// the command layer on top of this.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("db.dialect", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
	v.SetDefault("reference_year", 2025)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("NLTRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper materializes the Config from resolved viper state.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect:                        v.GetString("db.dialect"),
			Host:                           v.GetString("db.host"),
			Port:                           v.GetInt("db.port"),
			User:                           v.GetString("db.user"),
			Password:                       v.GetString("db.password"),
			DBName:                         v.GetString("db.name"),
			SSLMode:                        v.GetString("db.sslmode"),
			CloudSQLInstanceConnectionName: v.GetString("db.cloudsql_instance"),
			UsePrivateIP:                   v.GetBool("db.cloudsql_private_ip"),
		},
		ListenAddr:    v.GetString("listen_addr"),
		ReferenceYear: v.GetInt("reference_year"),
		Debug:         v.GetBool("debug"),
	}
}
