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
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const subjectTemplate = `{{ .Inviter }} invited you to join {{ .Organization }}`

const bodyTemplate = `Hello,

{{ .Inviter }} has invited you to join {{ .Organization }} as {{ title .Role }}.
{{- with .Message }}

"{{ trim . }}"
{{- end }}

Accept the invitation:
{{ .AcceptURL }}

This invitation expires on {{ .ExpiresAt }}. If you do not want to join, you can ignore this email.
`

// Rendered is a ready to send message.
type Rendered struct {
	Subject string
	Body    string
}

// Renderer turns an Invite into text with text/template.
type Renderer struct {
	acceptURL *url.URL
	subject   *template.Template
	body      *template.Template
}

func NewRenderer(acceptURL string) (*Renderer, error) {
	u, err := url.Parse(acceptURL)
	if err != nil {
		return nil, fmt.Errorf("parse accept url: %w", err)
	}
	titleCaser := cases.Title(language.English)
	funcs := template.FuncMap{
		"title": func(s fmt.Stringer) string { return titleCaser.String(s.String()) },
		"trim":  strings.TrimSpace,
	}
	subject, err := template.New("subject").Funcs(funcs).Parse(subjectTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	body, err := template.New("body").Funcs(funcs).Parse(bodyTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Renderer{acceptURL: u, subject: subject, body: body}, nil
}

// AcceptURL returns the accept link carrying token.
func (r *Renderer) AcceptURL(token string) string {
	u := *r.acceptURL
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (r *Renderer) Render(invite Invite) (Rendered, error) {
	data := map[string]any{
		"Organization": organizationName(invite),
		"Inviter":      inviterName(invite),
		"Role":         invite.Role,
		"Message":      invite.Message,
		"AcceptURL":    r.AcceptURL(invite.Token),
		"ExpiresAt":    invite.ExpiresAt.UTC().Format(time.RFC1123),
	}

	var subject, body bytes.Buffer
	if err := r.subject.Execute(&subject, data); err != nil {
		return Rendered{}, fmt.Errorf("failed to execute template: %w", err)
	}
	if err := r.body.Execute(&body, data); err != nil {
		return Rendered{}, fmt.Errorf("failed to execute template: %w", err)
	}
	return Rendered{Subject: subject.String(), Body: body.String()}, nil
}

func organizationName(invite Invite) string {
	if invite.Organization == nil {
		return "an organization"
	}
	return invite.Organization.Label()
}

func inviterName(invite Invite) string {
	if invite.InvitedBy == nil {
		return "Someone"
	}
	if invite.InvitedBy.Username != "" {
		return invite.InvitedBy.Username
	}
	return invite.InvitedBy.Email
}
