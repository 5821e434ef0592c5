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
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/answer"
	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/config"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper(v)

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	service := answer.NewService(db, db, db.Dialect(), cfg.ReferenceYear, logger)
	if err := service.Initialize(cmd.Context()); err != nil {
		return err
	}

	question := strings.Join(args, " ")
	resp := service.Answer(cmd.Context(), question)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return answerErr(cmd, resp)
}

// answerErr turns a structured answer failure into a command error so
// the process exits nonzero after the deferred cleanup runs. The JSON
// on stdout already carries the message, so cobra's own reporting is
// silenced.
func answerErr(cmd *cobra.Command, resp answer.Response) error {
	if resp.Error == nil {
		return nil
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return errors.New(*resp.Error)
}
