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

// Package notify delivers organization invitation emails.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/internal/roster/role"
)

const (
	DriverSMTP = "smtp"
	DriverHTTP = "http"
	DriverLog  = "log"
)

// Invite is everything an invitation email needs.
type Invite struct {
	Email        string
	Token        string
	Role         role.OrgRole
	Message      string
	ExpiresAt    time.Time
	Organization *model.Organization
	InvitedBy    *model.User
}

// Dispatcher sends the invitation email. A non nil error means the email was not accepted
// for delivery and the caller must not keep the invitation.
type Dispatcher interface {
	SendOrganizationInvite(ctx context.Context, invite Invite) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, invite Invite) error

func (f DispatcherFunc) SendOrganizationInvite(ctx context.Context, invite Invite) error {
	return f(ctx, invite)
}

// SMTPConf is the [mail.smtp] section
type SMTPConf struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// HTTPConf is the [mail.http] section, a SendGrid v3 compatible endpoint
type HTTPConf struct {
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"apiKey"`
	Timeout  int    `mapstructure:"timeout"` // 秒
	Retries  int    `mapstructure:"retries"`
}

// Conf is the [mail] section
type Conf struct {
	Driver   string   `mapstructure:"driver"`
	From     string   `mapstructure:"from"`
	FromName string   `mapstructure:"fromName"`
	SMTP     SMTPConf `mapstructure:"smtp"`
	HTTP     HTTPConf `mapstructure:"http"`
}

// New builds the dispatcher selected by conf.Driver. acceptURL is the page that takes ?token=.
func New(conf Conf, acceptURL string) (Dispatcher, error) {
	renderer, err := NewRenderer(acceptURL)
	if err != nil {
		return nil, err
	}
	switch conf.Driver {
	case DriverSMTP:
		return NewSMTPDispatcher(conf, renderer)
	case DriverHTTP:
		return NewHTTPDispatcher(conf, renderer)
	case DriverLog, "":
		return NewLogDispatcher(renderer), nil
	default:
		return nil, fmt.Errorf("unsupported mail driver: %s", conf.Driver)
	}
}
