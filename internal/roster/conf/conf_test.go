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

package conf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[log]
level = "debug"

[database]
type = "mysql"
host = "db.internal"
user = "roster"
password = "s3cret"
db = "roster"

[invitation]
ttl = "3d"
acceptUrl = "https://app.example.com/invite"

[mail]
driver = "smtp"
from = "team@example.com"

[mail.smtp]
host = "smtp.example.com"
port = 2525

[sweeper]
spec = "0 */10 * * * *"
lockTtl = "2m"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	l, err := Load("")
	require.NoError(t, err)
	cfg := l.Config()

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, model.DefaultInvitationTTL, cfg.Invitation.TTL)
	assert.Equal(t, 64, cfg.Invitation.TokenLength)
	assert.Equal(t, "log", cfg.Mail.Driver)
	assert.True(t, cfg.Sweeper.Enable)
	assert.Equal(t, "@every 1h", cfg.Sweeper.Spec)
	assert.Equal(t, 5*time.Minute, cfg.Sweeper.LockTTL)
	assert.False(t, cfg.Metrics.Enable)
	assert.Empty(t, l.Path())
}

func TestLoad_File(t *testing.T) {
	l, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	cfg := l.Config()

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "mysql", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "3306", cfg.Database.Port)
	assert.Equal(t, 72*time.Hour, cfg.Invitation.TTL)
	assert.Equal(t, "https://app.example.com/invite", cfg.Invitation.AcceptURL)
	assert.Equal(t, "smtp", cfg.Mail.Driver)
	assert.Equal(t, "smtp.example.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, 2525, cfg.Mail.SMTP.Port)
	assert.Equal(t, "0 */10 * * * *", cfg.Sweeper.Spec)
	assert.Equal(t, 2*time.Minute, cfg.Sweeper.LockTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROSTER_DATABASE_HOST", "db.override")
	t.Setenv("ROSTER_MAIL_DRIVER", "http")

	l, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.Equal(t, "db.override", l.Config().Database.Host)
	assert.Equal(t, "http", l.Config().Mail.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[database]\ntype = \"oracle\"\n[mail]\ndriver = \"pigeon\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.type")
	assert.Contains(t, err.Error(), "mail.driver")

	_, err = Load(writeConfig(t, "[invitation]\nttl = \"-1h\"\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[invitation]\ntokenLength = 129\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invitation.tokenLength")
	_, err = Load(writeConfig(t, "[invitation]\ntokenLength = 128\n"))
	assert.NoError(t, err)
}

func TestLoader_Reload(t *testing.T) {
	path := writeConfig(t, sample)
	l, err := Load(path)
	require.NoError(t, err)

	var got []time.Duration
	l.OnChange(func(c AppConfig) { got = append(got, c.Invitation.TTL) })

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(sample, `ttl = "3d"`, `ttl = "1d"`, 1)), 0o600))
	require.NoError(t, l.v.ReadInConfig())
	l.reload()
	assert.Equal(t, []time.Duration{24 * time.Hour}, got)
	assert.Equal(t, 24*time.Hour, l.Config().Invitation.TTL)

	// a broken edit keeps the last good values
	require.NoError(t, os.WriteFile(path, []byte(`[invitation]
ttl = "0s"
`), 0o600))
	require.NoError(t, l.v.ReadInConfig())
	l.reload()
	assert.Len(t, got, 1)
	assert.Equal(t, 24*time.Hour, l.Config().Invitation.TTL)
}

func TestDump_MasksSecrets(t *testing.T) {
	l, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	out, err := Dump(l.Config())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "s3cret")
	assert.Contains(t, string(out), "******")
	assert.Contains(t, string(out), "db.internal")
}
