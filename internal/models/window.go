package models

import "github.com/google/uuid"

// Window is one open view onto a file or folder. ZIndex is a per-owner
// total order, higher means more in front.
type Window struct {
	BaseModel
	OwnerID     uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index"`
	FileID      *uuid.UUID `json:"fileID,omitempty" gorm:"type:uuid;index"`
	FolderID    *uuid.UUID `json:"folderID,omitempty" gorm:"type:uuid;index"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Width       int        `json:"width" gorm:"not null;default:600"`
	Height      int        `json:"height" gorm:"not null;default:400"`
	X           int        `json:"x" gorm:"not null;default:100"`
	Y           int        `json:"y" gorm:"not null;default:100"`
	IsMaximized bool       `json:"isMaximized" gorm:"not null;default:false"`
	IsMinimized bool       `json:"isMinimized" gorm:"not null;default:false"`
	ZIndex      int        `json:"zIndex" gorm:"not null;default:0;index"`

	File   *File   `json:"file,omitempty" gorm:"foreignKey:FileID"`
	Folder *Folder `json:"folder,omitempty" gorm:"foreignKey:FolderID"`
	Owner  User    `json:"-" gorm:"foreignKey:OwnerID"`
}
