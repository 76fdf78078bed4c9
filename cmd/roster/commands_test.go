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

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintRoles(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRoles(&out))

	table := out.String()
	assert.Contains(t, strings.ToLower(table), "permissions")
	for _, want := range []string{"owner", "admin", "moderator", "comment,view", "member,moderator,admin", "transfer_ownership"} {
		assert.Contains(t, table, want)
	}
	assert.Less(t, strings.Index(table, "comment,view"), strings.Index(table, "transfer_ownership"))
}

func TestConfigCmd_MasksSecrets(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"config", "--conf", ""})
	t.Setenv("ROSTER_DATABASE_PASSWORD", "hunter2")
	require.NoError(t, rootCmd.Execute())

	assert.NotContains(t, out.String(), "hunter2")
	assert.Contains(t, out.String(), "sqlite")
}
