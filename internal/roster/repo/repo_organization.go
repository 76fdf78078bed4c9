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

package repo

import (
	"context"
	"fmt"

	"github.com/go-arcade/roster/internal/roster/model"
	"github.com/go-arcade/roster/pkg/database"
)

type IOrganizationRepository interface {
	CreateOrganization(ctx context.Context, org *model.Organization) error
	GetOrganization(ctx context.Context, orgId string) (*model.Organization, error)
}

type OrganizationRepo struct {
	baseRepo
}

func NewOrganizationRepo(db database.IDatabase) IOrganizationRepository {
	return &OrganizationRepo{baseRepo{IDatabase: db}}
}

// CreateOrganization 创建组织
func (r *OrganizationRepo) CreateOrganization(ctx context.Context, org *model.Organization) error {
	if err := r.conn(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("create organization %s: %w", org.OrgId, err)
	}
	return nil
}

// GetOrganization 获取组织, wraps gorm.ErrRecordNotFound when absent
func (r *OrganizationRepo) GetOrganization(ctx context.Context, orgId string) (*model.Organization, error) {
	var org model.Organization
	if err := r.conn(ctx).Where("org_id = ?", orgId).First(&org).Error; err != nil {
		return nil, fmt.Errorf("get organization %s: %w", orgId, err)
	}
	return &org, nil
}
