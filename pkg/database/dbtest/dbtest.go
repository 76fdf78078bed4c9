// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dbtest opens throwaway in-memory sqlite databases for tests.
package dbtest

import (
	"testing"

	"github.com/go-arcade/roster/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Open returns a migrated in-memory database that is closed when t finishes.
// Each call gets its own database.
func Open(t testing.TB, models ...any) database.IDatabase {
	t.Helper()
	db, err := database.NewDatabase(database.Database{
		Type: database.TypeSQLite,
		Path: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	return database.NewGormDB(db)
}
