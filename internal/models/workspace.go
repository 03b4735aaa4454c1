package models

import "gorm.io/gorm"

// Workspace is the tenancy boundary: monitors and alert configs belong to
// exactly one workspace, and every lookup except the alerting scan is scoped
// by it. The owner is fixed at creation.
type Workspace struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	OwnerID     uint   `gorm:"not null;index"`
	APIKey      string `gorm:"uniqueIndex;not null"` // Credential for the job-reporting endpoints

	// Relationships
	Owner        User          `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Monitors     []Monitor     `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AlertConfigs []AlertConfig `gorm:"foreignKey:WorkspaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
