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

	"github.com/go-arcade/roster/pkg/log"
)

// LogDispatcher writes the rendered email to the log instead of sending it.
type LogDispatcher struct {
	renderer *Renderer
}

func NewLogDispatcher(renderer *Renderer) *LogDispatcher {
	return &LogDispatcher{renderer: renderer}
}

func (d *LogDispatcher) SendOrganizationInvite(ctx context.Context, invite Invite) error {
	msg, err := d.renderer.Render(invite)
	if err != nil {
		return err
	}
	log.WithContext(ctx).Infow("invitation email",
		"to", invite.Email,
		"subject", msg.Subject,
		"acceptUrl", d.renderer.AcceptURL(invite.Token),
	)
	return nil
}
