package models

import (
	"time"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypeText     FileType = "text"
	FileTypeImage    FileType = "image"
	FileTypeDocument FileType = "document"
	FileTypeVideo    FileType = "video"
	FileTypeAudio    FileType = "audio"
	FileTypeArchive  FileType = "archive"
	FileTypeOther    FileType = "other"
)

func IsValidFileType(value string) bool {
	switch FileType(value) {
	case FileTypeText, FileTypeImage, FileTypeDocument, FileTypeVideo, FileTypeAudio, FileTypeArchive, FileTypeOther:
		return true
	default:
		return false
	}
}

// File holds its content inline as text. Size and ModifiedAt are derived
// from the content on every write and are never client-writable.
type File struct {
	BaseModel
	OwnerID    uuid.UUID  `json:"ownerID" gorm:"type:uuid;not null;index;uniqueIndex:idx_file_owner_folder_name"`
	FolderID   *uuid.UUID `json:"folderID,omitempty" gorm:"type:uuid;index;uniqueIndex:idx_file_owner_folder_name"`
	Name       string     `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:idx_file_owner_folder_name"`
	FileType   FileType   `json:"fileType" gorm:"type:varchar(20);not null;default:'other'"`
	Content    string     `json:"content" gorm:"type:text"`
	Size       int64      `json:"size" gorm:"not null;default:0"`
	X          int        `json:"x" gorm:"not null;default:0"`
	Y          int        `json:"y" gorm:"not null;default:0"`
	IconColor  string     `json:"iconColor" gorm:"type:varchar(7);not null;default:'#4CAF50'"`
	ModifiedAt time.Time  `json:"modifiedAt" gorm:"not null"`

	Folder *Folder `json:"folder,omitempty" gorm:"foreignKey:FolderID"`
	Owner  User    `json:"-" gorm:"foreignKey:OwnerID"`
}
