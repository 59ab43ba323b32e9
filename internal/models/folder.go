package models

import "github.com/google/uuid"

// Folder is a node in a user's desktop tree. ParentID is nil for folders
// placed directly on the desktop root.
type Folder struct {
	BaseModel
	OwnerID  uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index;uniqueIndex:idx_folder_owner_parent_name"`
	Name     string     `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_folder_owner_parent_name"`
	ParentID *uuid.UUID `json:"parentID,omitempty" gorm:"type:uuid;index;uniqueIndex:idx_folder_owner_parent_name"`
	X        int        `json:"x" gorm:"not null;default:0"`
	Y        int        `json:"y" gorm:"not null;default:0"`

	Parent     *Folder  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Subfolders []Folder `json:"-" gorm:"foreignKey:ParentID"`
	Files      []File   `json:"-" gorm:"foreignKey:FolderID"`
	Owner      User     `json:"-" gorm:"foreignKey:OwnerID"`
}
