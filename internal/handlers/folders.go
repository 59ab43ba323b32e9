package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/webdesk/backend/internal/middleware"
	"github.com/webdesk/backend/internal/models"
	"github.com/webdesk/backend/internal/services"
	"github.com/webdesk/backend/pkg/logger"
	"github.com/webdesk/backend/pkg/utils"
	"gorm.io/gorm"
)

type FoldersHandler struct {
	DB     *gorm.DB
	Naming *services.NamingService
}

func NewFoldersHandler(db *gorm.DB, naming *services.NamingService) *FoldersHandler {
	return &FoldersHandler{DB: db, Naming: naming}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentID"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
}

func (h *FoldersHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return utils.Error(c, fiber.StatusBadRequest, "name is required")
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		parsed, err := parseUUID(*req.ParentID)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
		}
		parentID = &parsed

		var parent models.Folder
		if err := h.DB.First(&parent, "id = ? AND owner_id = ?", parsed, currentUser.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Error(c, fiber.StatusNotFound, "parent folder not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading parent folder")
		}
	}

	resolved, err := h.Naming.Resolve(currentUser.ID, services.ScopeSibling, parentID, name, services.NameKindFolder)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed resolving folder name")
	}

	folder := models.Folder{
		OwnerID:  currentUser.ID,
		Name:     resolved,
		ParentID: parentID,
		X:        req.X,
		Y:        req.Y,
	}

	if err := h.DB.Create(&folder).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Error(c, fiber.StatusBadRequest, "folder name already exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating folder")
	}

	logger.InfoWithUser(currentUser.ID.String(), "folder_created", map[string]interface{}{
		"folder_id":   folder.ID.String(),
		"folder_name": folder.Name,
		"parent_id":   parentID,
		"request_id":  getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, folder)
}

func (h *FoldersHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var folders []models.Folder
	if err := h.DB.Where("owner_id = ?", currentUser.ID).Order("created_at ASC").Find(&folders).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing folders")
	}

	return utils.Success(c, fiber.StatusOK, folders)
}

// ListRoot returns folders placed directly on the desktop.
func (h *FoldersHandler) ListRoot(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var folders []models.Folder
	if err := h.DB.Where("owner_id = ? AND parent_id IS NULL", currentUser.ID).Order("created_at ASC").Find(&folders).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing root folders")
	}

	return utils.Success(c, fiber.StatusOK, folders)
}

func (h *FoldersHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	var folder models.Folder
	if err := h.DB.First(&folder, "id = ? AND owner_id = ?", folderID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "folder not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading folder")
	}

	return utils.Success(c, fiber.StatusOK, folder)
}

// Contents returns the direct subfolders and files of a folder.
func (h *FoldersHandler) Contents(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	var folder models.Folder
	if err := h.DB.First(&folder, "id = ? AND owner_id = ?", folderID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "folder not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading folder")
	}

	var subfolders []models.Folder
	if err := h.DB.Where("parent_id = ?", folder.ID).Order("name ASC").Find(&subfolders).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing subfolders")
	}

	var files []models.File
	if err := h.DB.Where("folder_id = ?", folder.ID).Order("name ASC").Find(&files).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing files")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"folders": subfolders,
		"files":   files,
	})
}

type updateFolderRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentID"`
	X        *int    `json:"x"`
	Y        *int    `json:"y"`
}

func (h *FoldersHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	var folder models.Folder
	if err := h.DB.First(&folder, "id = ? AND owner_id = ?", folderID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "folder not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading folder")
	}

	var req updateFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.Error(c, fiber.StatusBadRequest, "name cannot be empty")
		}
		updates["name"] = name
	}

	if req.ParentID != nil {
		trimmed := strings.TrimSpace(*req.ParentID)
		if trimmed == "" {
			updates["parent_id"] = nil
		} else {
			newParentID, parseErr := parseUUID(trimmed)
			if parseErr != nil {
				return utils.Error(c, fiber.StatusBadRequest, "invalid parentID")
			}
			if newParentID == folder.ID {
				return utils.Error(c, fiber.StatusBadRequest, "folder cannot be parent of itself")
			}

			var newParent models.Folder
			if err := h.DB.First(&newParent, "id = ? AND owner_id = ?", newParentID, currentUser.ID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return utils.Error(c, fiber.StatusNotFound, "new parent not found")
				}
				return utils.Error(c, fiber.StatusInternalServerError, "failed loading new parent")
			}

			isChild, checkErr := h.isDescendant(folder.ID, newParent.ID)
			if checkErr != nil {
				return utils.Error(c, fiber.StatusInternalServerError, "failed validating move")
			}
			if isChild {
				return utils.Error(c, fiber.StatusBadRequest, "cannot move folder inside itself")
			}

			updates["parent_id"] = newParentID
		}
	}

	if req.X != nil {
		updates["x"] = *req.X
	}
	if req.Y != nil {
		updates["y"] = *req.Y
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	if err := h.DB.Model(&models.Folder{}).Where("id = ?", folder.ID).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			return utils.Error(c, fiber.StatusBadRequest, "folder name already exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating folder")
	}

	var updated models.Folder
	if err := h.DB.First(&updated, "id = ?", folder.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated folder")
	}

	return utils.Success(c, fiber.StatusOK, updated)
}

func (h *FoldersHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	var folder models.Folder
	if err := h.DB.First(&folder, "id = ? AND owner_id = ?", folderID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "folder not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading folder")
	}

	if err := h.deleteRecursive(folder.ID); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting folder")
	}

	logger.InfoWithUser(currentUser.ID.String(), "folder_deleted", map[string]interface{}{
		"folder_id":   folder.ID.String(),
		"folder_name": folder.Name,
		"request_id":  getRequestID(c),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "folder deleted"})
}

// deleteRecursive removes a folder, its descendant folders, the files they
// contain and any windows opened on those entities.
func (h *FoldersHandler) deleteRecursive(folderID uuid.UUID) error {
	var subfolders []models.Folder
	if err := h.DB.Where("parent_id = ?", folderID).Find(&subfolders).Error; err != nil {
		return err
	}
	for _, sub := range subfolders {
		if err := h.deleteRecursive(sub.ID); err != nil {
			return err
		}
	}

	var files []models.File
	if err := h.DB.Where("folder_id = ?", folderID).Find(&files).Error; err != nil {
		return err
	}
	for _, file := range files {
		if err := h.DB.Where("file_id = ?", file.ID).Delete(&models.Window{}).Error; err != nil {
			return err
		}
		if err := h.DB.Delete(&models.File{}, "id = ?", file.ID).Error; err != nil {
			return err
		}
	}

	if err := h.DB.Where("folder_id = ?", folderID).Delete(&models.Window{}).Error; err != nil {
		return err
	}

	return h.DB.Delete(&models.Folder{}, "id = ?", folderID).Error
}

func (h *FoldersHandler) isDescendant(ancestorID, candidateChildID uuid.UUID) (bool, error) {
	current := candidateChildID
	for {
		if current == ancestorID {
			return true, nil
		}

		var folder models.Folder
		err := h.DB.Select("id", "parent_id").First(&folder, "id = ?", current).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return false, nil
			}
			return false, err
		}
		if folder.ParentID == nil {
			return false, nil
		}
		current = *folder.ParentID
	}
}
