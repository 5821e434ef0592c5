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
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/answer"
)

func TestAnswerErrNilOnSuccess(t *testing.T) {
	c := &cobra.Command{}

	require.NoError(t, answerErr(c, answer.Response{Result: int64(42)}))
	assert.False(t, c.SilenceUsage)
}

// A failed answer surfaces as a returned error rather than a direct
// process exit, so the command's deferred cleanup still runs before
// main decides the exit code.
func TestAnswerErrSurfacesFailure(t *testing.T) {
	c := &cobra.Command{}
	msg := "schema unavailable: connection refused"

	err := answerErr(c, answer.Response{Error: &msg})

	require.EqualError(t, err, msg)
	assert.True(t, c.SilenceUsage)
	assert.True(t, c.SilenceErrors)
}
