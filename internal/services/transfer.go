package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/webdesk/backend/internal/models"
	"gorm.io/gorm"
)

// ErrSourceMissing means the file or folder an attachment references was
// deleted after the message was sent.
var ErrSourceMissing = errors.New("attachment source no longer exists")

// TransferService copies attachment originals into a recipient's desktop.
// Each copy is a pure addition: the message, the attachment and the
// sender's entities are never mutated.
type TransferService struct {
	DB     *gorm.DB
	Naming *NamingService
}

func NewTransferService(db *gorm.DB, naming *NamingService) *TransferService {
	return &TransferService{DB: db, Naming: naming}
}

// CopyFile duplicates the sender's file onto the recipient's desktop root
// at (x, y). The copy is named "{base} (od {sender}){ext}", renumbered
// against the recipient's desktop root if that collides.
func (s *TransferService) CopyFile(recipientID uuid.UUID, senderUsername string, fileID uuid.UUID, x, y int) (*models.File, error) {
	var original models.File
	if err := s.DB.First(&original, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSourceMissing
		}
		return nil, err
	}

	base, ext := SplitName(original.Name, NameKindFile)
	desired := fmt.Sprintf("%s (od %s)%s", base, senderUsername, ext)

	name, err := s.Naming.Resolve(recipientID, ScopeRootBase, nil, desired, NameKindFile)
	if err != nil {
		return nil, err
	}

	copied := models.File{
		OwnerID:    recipientID,
		Name:       name,
		FileType:   original.FileType,
		Content:    original.Content,
		Size:       original.Size,
		X:          x,
		Y:          y,
		IconColor:  original.IconColor,
		ModifiedAt: time.Now().UTC(),
	}
	if err := s.DB.Create(&copied).Error; err != nil {
		return nil, err
	}

	return &copied, nil
}

// CopyFolder duplicates the sender's folder onto the recipient's desktop
// root at (x, y), then copies every direct child file into the new folder.
// Child names are resolved against the recipient's entire file set, not
// just the new folder, so the copy never shadows a name anywhere on the
// recipient's desktop.
func (s *TransferService) CopyFolder(recipientID uuid.UUID, senderUsername string, folderID uuid.UUID, x, y int) (*models.Folder, error) {
	var original models.Folder
	if err := s.DB.First(&original, "id = ?", folderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSourceMissing
		}
		return nil, err
	}

	desired := fmt.Sprintf("%s (od %s)", original.Name, senderUsername)
	name, err := s.Naming.Resolve(recipientID, ScopeRootBase, nil, desired, NameKindFolder)
	if err != nil {
		return nil, err
	}

	copied := models.Folder{
		OwnerID: recipientID,
		Name:    name,
		X:       x,
		Y:       y,
	}
	if err := s.DB.Create(&copied).Error; err != nil {
		return nil, err
	}

	var children []models.File
	if err := s.DB.Where("folder_id = ?", original.ID).Find(&children).Error; err != nil {
		return nil, err
	}

	for _, child := range children {
		childName, err := s.Naming.Resolve(recipientID, ScopeGlobal, nil, child.Name, NameKindFile)
		if err != nil {
			return nil, err
		}

		childCopy := models.File{
			OwnerID:    recipientID,
			FolderID:   &copied.ID,
			Name:       childName,
			FileType:   child.FileType,
			Content:    child.Content,
			Size:       child.Size,
			X:          child.X,
			Y:          child.Y,
			IconColor:  child.IconColor,
			ModifiedAt: time.Now().UTC(),
		}
		if err := s.DB.Create(&childCopy).Error; err != nil {
			return nil, err
		}
	}

	return &copied, nil
}
