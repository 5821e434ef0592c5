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
package answer

import "fmt"

// ErrEmptyQuestion is returned for blank or whitespace-only questions.
type ErrEmptyQuestion struct{}

func (e *ErrEmptyQuestion) Error() string {
	return "question must not be empty"
}

// ErrUncompilable is returned when the compiler produced an empty
// query text. The compiler degrades gracefully, so this guard should
// never fire in practice.
type ErrUncompilable struct {
	Question string
}

func (e *ErrUncompilable) Error() string {
	return fmt.Sprintf("could not generate a query for %q", e.Question)
}

// ErrExecution wraps a query-execution failure from the store.
type ErrExecution struct {
	Msg string
	Err error
}

func (e *ErrExecution) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("query execution error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("query execution error: %s", e.Msg)
}

func (e *ErrExecution) Unwrap() error {
	return e.Err
}

// ErrSchemaUnavailable means initialization could not obtain a schema
// snapshot. During startup this is fatal: the process cannot serve any
// request without a schema.
type ErrSchemaUnavailable struct {
	Err error
}

func (e *ErrSchemaUnavailable) Error() string {
	return fmt.Sprintf("schema unavailable: %v", e.Err)
}

func (e *ErrSchemaUnavailable) Unwrap() error {
	return e.Err
}
