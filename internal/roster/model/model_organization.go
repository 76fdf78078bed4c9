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

package model

// Organization 组织表
type Organization struct {
	BaseModel
	OrgId       string `gorm:"column:org_id;size:64;uniqueIndex" json:"orgId"`
	Name        string `gorm:"column:name;size:128" json:"name"`
	DisplayName string `gorm:"column:display_name;size:255" json:"displayName"`
}

func (Organization) TableName() string {
	return "t_organization"
}

// Label returns the display name, falling back to the name.
func (o *Organization) Label() string {
	if o.DisplayName != "" {
		return o.DisplayName
	}
	return o.Name
}
