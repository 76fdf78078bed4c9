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
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/roster/pkg/log"
	"github.com/go-arcade/roster/pkg/retry"
	"github.com/go-resty/resty/v2"
)

const defaultHTTPEndpoint = "https://api.sendgrid.com/v3/mail/send"

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

// mailRequest is the SendGrid v3 mail/send body
type mailRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

// HTTPDispatcher posts to a mail API. 5xx and transport errors are retried, 4xx are not.
type HTTPDispatcher struct {
	endpoint string
	from     mailAddress
	client   *resty.Client
	renderer *Renderer
	retries  int
	backoff  retry.Backoff
}

func NewHTTPDispatcher(conf Conf, renderer *Renderer) (*HTTPDispatcher, error) {
	if conf.HTTP.APIKey == "" {
		return nil, fmt.Errorf("mail api key is required")
	}
	if conf.From == "" {
		return nil, fmt.Errorf("from email is required")
	}
	endpoint := conf.HTTP.Endpoint
	if endpoint == "" {
		endpoint = defaultHTTPEndpoint
	}
	timeout := time.Duration(conf.HTTP.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := conf.HTTP.Retries
	if retries <= 0 {
		retries = 3
	}

	client := resty.New().
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTimeout(timeout).
		SetAuthToken(conf.HTTP.APIKey).
		SetHeader("Content-Type", "application/json")

	return &HTTPDispatcher{
		endpoint: endpoint,
		from:     mailAddress{Email: conf.From, Name: conf.FromName},
		client:   client,
		renderer: renderer,
		retries:  retries,
		backoff:  retry.Exponential(500*time.Millisecond, 5*time.Second),
	}, nil
}

func (d *HTTPDispatcher) SendOrganizationInvite(ctx context.Context, invite Invite) error {
	msg, err := d.renderer.Render(invite)
	if err != nil {
		return err
	}
	body := mailRequest{
		Personalizations: []mailPersonalization{{To: []mailAddress{{Email: invite.Email}}}},
		From:             d.from,
		Subject:          msg.Subject,
		Content:          []mailContent{{Type: "text/plain", Value: msg.Body}},
	}

	return retry.Do(ctx, func(ctx context.Context) error {
		resp, err := d.client.R().SetContext(ctx).SetBody(body).Post(d.endpoint)
		if err != nil {
			log.Warnw("mail api request failed", "error", err)
			return fmt.Errorf("failed to send request: %w", err)
		}
		status := resp.StatusCode()
		switch {
		case status >= 200 && status < 300:
			return nil
		case status >= http.StatusInternalServerError || status == http.StatusTooManyRequests:
			log.Warnw("mail api unavailable", "statusCode", status)
			return fmt.Errorf("mail api request failed with status %d", status)
		default:
			log.Errorw("mail api rejected request", "statusCode", status, "response", resp.String())
			return retry.Permanent(fmt.Errorf("mail api request failed with status %d", status))
		}
	}, retry.WithMaxAttempts(d.retries), retry.WithBackoff(d.backoff), retry.WithJitter())
}
