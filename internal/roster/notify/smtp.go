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

package notify

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPDispatcher delivers through an SMTP relay.
type SMTPDispatcher struct {
	addr     string
	auth     smtp.Auth
	from     mail.Address
	renderer *Renderer
	sendMail sendMailFunc
}

func NewSMTPDispatcher(conf Conf, renderer *Renderer) (*SMTPDispatcher, error) {
	if conf.SMTP.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if conf.SMTP.Port <= 0 {
		return nil, fmt.Errorf("smtp port is required")
	}
	from, err := mail.ParseAddress(conf.From)
	if err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", conf.From, err)
	}
	if conf.FromName != "" {
		from.Name = conf.FromName
	}

	d := &SMTPDispatcher{
		addr:     net.JoinHostPort(conf.SMTP.Host, strconv.Itoa(conf.SMTP.Port)),
		from:     *from,
		renderer: renderer,
		sendMail: smtp.SendMail,
	}
	if conf.SMTP.Username != "" {
		d.auth = smtp.PlainAuth("", conf.SMTP.Username, conf.SMTP.Password, conf.SMTP.Host)
	}
	return d, nil
}

func (d *SMTPDispatcher) SendOrganizationInvite(ctx context.Context, invite Invite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, err := mail.ParseAddress(invite.Email)
	if err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg, err := d.renderer.Render(invite)
	if err != nil {
		return err
	}

	raw := buildMessage(d.from, *to, msg, time.Now())
	if err := d.sendMail(d.addr, d.auth, d.from.Address, []string{to.Address}, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to mail.Address, msg Rendered, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + to.String() + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}
