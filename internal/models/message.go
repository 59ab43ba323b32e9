package models

import "github.com/google/uuid"

// Message is immutable after creation except IsRead. IsRead is a single
// flag shared by all recipients: the first recipient to mark a message
// read marks it for everyone.
type Message struct {
	BaseModel
	SenderID uuid.UUID `json:"senderID" gorm:"type:uuid;not null;index"`
	Subject  string    `json:"subject" gorm:"type:varchar(255);not null"`
	Body     string    `json:"body" gorm:"type:text;not null"`
	IsRead   bool      `json:"isRead" gorm:"not null;default:false"`

	Sender      User         `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Recipients  []User       `json:"recipients,omitempty" gorm:"many2many:message_recipients"`
	Attachments []Attachment `json:"attachments,omitempty" gorm:"foreignKey:MessageID"`
}

type AttachmentKind string

const (
	AttachmentKindFile   AttachmentKind = "file"
	AttachmentKindFolder AttachmentKind = "folder"
)

// Attachment is a tagged reference from a message to one of the sender's
// files or folders: exactly the reference matching Kind is set. It points
// at the sender's original entity, never a copy, and the reference is not
// protected if the original is deleted later.
type Attachment struct {
	BaseModel
	MessageID uuid.UUID      `json:"messageID" gorm:"type:uuid;not null;index"`
	Kind      AttachmentKind `json:"kind" gorm:"type:varchar(10);not null"`
	FileID    *uuid.UUID     `json:"fileID,omitempty" gorm:"type:uuid"`
	FolderID  *uuid.UUID     `json:"folderID,omitempty" gorm:"type:uuid"`

	File   *File   `json:"file,omitempty" gorm:"foreignKey:FileID"`
	Folder *Folder `json:"folder,omitempty" gorm:"foreignKey:FolderID"`
}
