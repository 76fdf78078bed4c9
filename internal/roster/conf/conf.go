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
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/roster/internal/roster/notify"
	"github.com/go-arcade/roster/internal/roster/service"
	"github.com/go-arcade/roster/internal/roster/sweeper"
	"github.com/go-arcade/roster/pkg/cache"
	"github.com/go-arcade/roster/pkg/database"
	"github.com/go-arcade/roster/pkg/duration"
	"github.com/go-arcade/roster/pkg/id"
	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/metrics"
	"github.com/go-arcade/roster/pkg/trace"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ROSTER_DATABASE_HOST.
const EnvPrefix = "ROSTER"

type AppConfig struct {
	Log        log.Conf               `mapstructure:"log" toml:"log"`
	Database   database.Database      `mapstructure:"database" toml:"database"`
	Redis      cache.Redis            `mapstructure:"redis" toml:"redis"`
	Invitation service.InvitationConf `mapstructure:"invitation" toml:"invitation"`
	Mail       notify.Conf            `mapstructure:"mail" toml:"mail"`
	Sweeper    sweeper.Conf           `mapstructure:"sweeper" toml:"sweeper"`
	Metrics    metrics.MetricsConfig  `mapstructure:"metrics" toml:"metrics"`
	Trace      trace.Conf             `mapstructure:"trace" toml:"trace"`
}

// Loader owns the viper instance behind an AppConfig and reloads it on file change.
type Loader struct {
	v    *viper.Viper
	path string

	mu       sync.RWMutex
	cfg      AppConfig
	onChange []func(AppConfig)
}

// Load reads the TOML file at path. An empty path yields the defaults plus environment overrides.
func Load(path string) (*Loader, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	l := &Loader{v: v, path: path}
	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return l, nil
}

// MustLoad is Load for command entry points.
func MustLoad(path string) *Loader {
	l, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("load config file error: %s", err))
	}
	return l
}

func (l *Loader) decode() (AppConfig, error) {
	var cfg AppConfig
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		duration.DecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.v.Unmarshal(&cfg, hook); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Config returns the current configuration.
func (l *Loader) Config() AppConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Path is the file the configuration was read from, empty when none.
func (l *Loader) Path() string {
	return l.path
}

// OnChange registers fn to run with every successfully reloaded configuration.
func (l *Loader) OnChange(fn func(AppConfig)) {
	l.mu.Lock()
	l.onChange = append(l.onChange, fn)
	l.mu.Unlock()
}

// Watch starts reloading on file change. A file that no longer decodes keeps the previous values.
func (l *Loader) Watch() {
	if l.path == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration changed, reloading", "file", e.Name, "op", e.Op.String())
		l.reload()
	})
	l.v.WatchConfig()
}

func (l *Loader) reload() {
	cfg, err := l.decode()
	if err != nil {
		log.Errorw("configuration reload rejected", "error", err)
		return
	}
	l.mu.Lock()
	l.cfg = cfg
	hooks := append([]func(AppConfig){}, l.onChange...)
	l.mu.Unlock()
	for _, fn := range hooks {
		fn(cfg)
	}
}

func validate(cfg *AppConfig) error {
	var errs []error
	switch cfg.Database.Type {
	case database.TypeMySQL, database.TypeSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.type must be %q or %q, got %q", database.TypeMySQL, database.TypeSQLite, cfg.Database.Type))
	}
	switch cfg.Mail.Driver {
	case notify.DriverSMTP, notify.DriverHTTP, notify.DriverLog:
	default:
		errs = append(errs, fmt.Errorf("mail.driver must be smtp, http or log, got %q", cfg.Mail.Driver))
	}
	if cfg.Invitation.TTL <= 0 {
		errs = append(errs, fmt.Errorf("invitation.ttl must be positive, got %s", cfg.Invitation.TTL))
	}
	if cfg.Invitation.TokenLength > id.MaxTokenLength {
		errs = append(errs, fmt.Errorf("invitation.tokenLength must be at most %d, got %d", id.MaxTokenLength, cfg.Invitation.TokenLength))
	}
	if err := cfg.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Dump writes cfg as TOML with secrets masked.
func Dump(cfg AppConfig) ([]byte, error) {
	masked := cfg
	masked.Database.Password = mask(masked.Database.Password)
	masked.Redis.Password = mask(masked.Redis.Password)
	masked.Redis.SentinelPassword = mask(masked.Redis.SentinelPassword)
	masked.Mail.SMTP.Password = mask(masked.Mail.SMTP.Password)
	masked.Mail.HTTP.APIKey = mask(masked.Mail.HTTP.APIKey)
	if len(masked.Trace.Headers) > 0 {
		headers := make(map[string]string, len(masked.Trace.Headers))
		for k, v := range masked.Trace.Headers {
			headers[k] = mask(v)
		}
		masked.Trace.Headers = headers
	}
	return toml.Marshal(masked)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "******"
}

// Exists reports whether path names a readable file.
func Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
