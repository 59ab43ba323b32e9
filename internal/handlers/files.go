package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/webdesk/backend/internal/middleware"
	"github.com/webdesk/backend/internal/models"
	"github.com/webdesk/backend/internal/services"
	"github.com/webdesk/backend/pkg/logger"
	"github.com/webdesk/backend/pkg/utils"
	"gorm.io/gorm"
)

type FilesHandler struct {
	DB     *gorm.DB
	Naming *services.NamingService
}

func NewFilesHandler(db *gorm.DB, naming *services.NamingService) *FilesHandler {
	return &FilesHandler{DB: db, Naming: naming}
}

type createFileRequest struct {
	Name      string  `json:"name"`
	FolderID  *string `json:"folderID"`
	FileType  string  `json:"fileType"`
	Content   string  `json:"content"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	IconColor string  `json:"iconColor"`
}

func (h *FilesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	fileType := models.FileTypeOther
	if req.FileType != "" {
		if !models.IsValidFileType(req.FileType) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid fileType")
		}
		fileType = models.FileType(req.FileType)
	}

	var folderID *uuid.UUID
	if req.FolderID != nil && strings.TrimSpace(*req.FolderID) != "" {
		parsed, err := parseUUID(*req.FolderID)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid folderID")
		}
		folderID = &parsed

		var folder models.Folder
		if err := h.DB.First(&folder, "id = ? AND owner_id = ?", parsed, currentUser.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Error(c, fiber.StatusNotFound, "folder not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading folder")
		}
	}

	resolved, err := h.Naming.Resolve(currentUser.ID, services.ScopeSibling, folderID, name, services.NameKindFile)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving file name")
	}

	iconColor := strings.TrimSpace(req.IconColor)
	if iconColor == "" {
		iconColor = "#4CAF50"
	}

	file := models.File{
		OwnerID:    currentUser.ID,
		FolderID:   folderID,
		Name:       resolved,
		FileType:   fileType,
		Content:    req.Content,
		Size:       int64(len(req.Content)),
		X:          req.X,
		Y:          req.Y,
		IconColor:  iconColor,
		ModifiedAt: time.Now().UTC(),
	}

	if err := h.DB.Create(&file).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Error(c, fiber.StatusBadRequest, "file name already exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating file")
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_created", map[string]interface{}{
		"file_id":    file.ID.String(),
		"file_name":  file.Name,
		"file_type":  string(file.FileType),
		"folder_id":  folderID,
		"request_id": getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, file)
}

func (h *FilesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var files []models.File
	if err := h.DB.Where("owner_id = ?", currentUser.ID).Order("created_at ASC").Find(&files).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing files")
	}

	return utils.Success(c, fiber.StatusOK, files)
}

// ListDesktop returns files placed directly on the desktop root.
func (h *FilesHandler) ListDesktop(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var files []models.File
	if err := h.DB.Where("owner_id = ? AND folder_id IS NULL", currentUser.ID).Order("created_at ASC").Find(&files).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing desktop files")
	}

	return utils.Success(c, fiber.StatusOK, files)
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var file models.File
	if err := h.DB.First(&file, "id = ? AND owner_id = ?", fileID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "file not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading file")
	}

	return utils.Success(c, fiber.StatusOK, file)
}

type updateFileRequest struct {
	FolderID  *string `json:"folderID"`
	FileType  *string `json:"fileType"`
	Content   *string `json:"content"`
	IconColor *string `json:"iconColor"`
}

func (h *FilesHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var file models.File
	if err := h.DB.First(&file, "id = ? AND owner_id = ?", fileID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "file not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading file")
	}

	var req updateFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}

	if req.Content != nil {
		// Size and modification time always track the content.
		updates["content"] = *req.Content
		updates["size"] = int64(len(*req.Content))
		updates["modified_at"] = time.Now().UTC()
	}

	if req.FileType != nil {
		if !models.IsValidFileType(*req.FileType) {
			return utils.Error(c, fiber.StatusBadRequest, "invalid fileType")
		}
		updates["file_type"] = *req.FileType
	}

	if req.IconColor != nil {
		trimmed := strings.TrimSpace(*req.IconColor)
		if trimmed == "" {
			return utils.Error(c, fiber.StatusBadRequest, "iconColor cannot be empty")
		}
		updates["icon_color"] = trimmed
	}

	if req.FolderID != nil {
		trimmed := strings.TrimSpace(*req.FolderID)
		if trimmed == "" {
			updates["folder_id"] = nil
		} else {
			folderID, parseErr := parseUUID(trimmed)
			if parseErr != nil {
				return utils.Error(c, fiber.StatusBadRequest, "invalid folderID")
			}

			var folder models.Folder
			if err := h.DB.First(&folder, "id = ? AND owner_id = ?", folderID, currentUser.ID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return utils.Error(c, fiber.StatusNotFound, "folder not found")
				}
				return utils.Error(c, fiber.StatusInternalServerError, "failed loading folder")
			}
			updates["folder_id"] = folderID
		}
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	if err := h.DB.Model(&models.File{}).Where("id = ?", file.ID).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Error(c, fiber.StatusBadRequest, "file name already exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating file")
	}

	var updated models.File
	if err := h.DB.First(&updated, "id = ?", file.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated file")
	}

	return utils.Success(c, fiber.StatusOK, updated)
}

type renameFileRequest struct {
	Name string `json:"name"`
}

// Rename writes the requested name as-is without running it through the
// name resolver. The composite unique index rejects duplicates.
func (h *FilesHandler) Rename(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var file models.File
	if err := h.DB.First(&file, "id = ? AND owner_id = ?", fileID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "file not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading file")
	}

	var req renameFileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	if err := h.DB.Model(&models.File{}).Where("id = ?", file.ID).Update("name", name).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Error(c, fiber.StatusBadRequest, "file name already exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed renaming file")
	}

	var updated models.File
	if err := h.DB.First(&updated, "id = ?", file.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading renamed file")
	}

	return utils.Success(c, fiber.StatusOK, updated)
}

type updatePositionRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func (h *FilesHandler) UpdatePosition(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var file models.File
	if err := h.DB.First(&file, "id = ? AND owner_id = ?", fileID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "file not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading file")
	}

	var req updatePositionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.X != nil {
		updates["x"] = *req.X
	}
	if req.Y != nil {
		updates["y"] = *req.Y
	}
	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "x or y is required")
	}

	if err := h.DB.Model(&models.File{}).Where("id = ?", file.ID).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating position")
	}

	var updated models.File
	if err := h.DB.First(&updated, "id = ?", file.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated file")
	}

	return utils.Success(c, fiber.StatusOK, updated)
}

func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var file models.File
	if err := h.DB.First(&file, "id = ? AND owner_id = ?", fileID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "file not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading file")
	}

	if err := h.DB.Where("file_id = ?", file.ID).Delete(&models.Window{}).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting file windows")
	}
	if err := h.DB.Delete(&models.File{}, "id = ?", file.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting file")
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_deleted", map[string]interface{}{
		"file_id":    file.ID.String(),
		"file_name":  file.Name,
		"request_id": getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "file deleted"})
}
