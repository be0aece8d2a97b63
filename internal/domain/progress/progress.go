package progress

import (
	"time"

	"gorm.io/datatypes"
)

// CurrentSchemaVersion is stamped on every write so stored client payloads
// can be migrated when their shape changes.
const CurrentSchemaVersion = 1

// RoadmapProgress is one user's saved roadmap. RoadmapConfig and RoadmapData
// are opaque client JSON.
type RoadmapProgress struct {
	UserID        string         `gorm:"column:user_id;primaryKey;type:varchar(255)" json:"userId"`
	RoadmapConfig datatypes.JSON `gorm:"column:roadmap_config;not null" json:"roadmapConfig"`
	RoadmapData   datatypes.JSON `gorm:"column:roadmap_data;not null" json:"roadmapData"`
	SchemaVersion int            `gorm:"column:schema_version;not null;default:1" json:"schemaVersion"`
	// Version counts writes; it starts at 1 on insert.
	Version   int64     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updatedAt"`
}

func (RoadmapProgress) TableName() string { return "roadmap_progress" }
