package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/webdesk/backend/internal/middleware"
	"github.com/webdesk/backend/internal/models"
	"github.com/webdesk/backend/pkg/utils"
	"gorm.io/gorm"
)

type WindowsHandler struct {
	DB *gorm.DB
}

func NewWindowsHandler(db *gorm.DB) *WindowsHandler {
	return &WindowsHandler{DB: db}
}

// nextZIndex returns 1 + the owner's highest z_index, 1 when no windows
// exist. Concurrent creations can observe the same maximum and produce a
// duplicate z_index; that is accepted and broken by secondary sort when
// listing.
func (h *WindowsHandler) nextZIndex(ownerID uuid.UUID) (int, error) {
	var maxZ *int
	err := h.DB.Model(&models.Window{}).
		Where("owner_id = ?", ownerID).
		Select("MAX(z_index)").
		Scan(&maxZ).Error
	if err != nil {
		return 0, err
	}
	if maxZ == nil {
		return 1, nil
	}
	return *maxZ + 1, nil
}

type createWindowRequest struct {
	Title    string  `json:"title"`
	FileID   *string `json:"fileID"`
	FolderID *string `json:"folderID"`
	Width    *int    `json:"width"`
	Height   *int    `json:"height"`
	X        *int    `json:"x"`
	Y        *int    `json:"y"`
}

func (h *WindowsHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createWindowRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}

	window := models.Window{
		OwnerID: currentUser.ID,
		Title:   title,
		Width:   600,
		Height:  400,
		X:       100,
		Y:       100,
	}

	if req.FileID != nil && strings.TrimSpace(*req.FileID) != "" {
		fileID, err := parseUUID(*req.FileID)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid fileID")
		}
		var file models.File
		if err := h.DB.First(&file, "id = ? AND owner_id = ?", fileID, currentUser.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Error(c, fiber.StatusNotFound, "file not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading file")
		}
		window.FileID = &fileID
	}

	if req.FolderID != nil && strings.TrimSpace(*req.FolderID) != "" {
		folderID, err := parseUUID(*req.FolderID)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid folderID")
		}
		var folder models.Folder
		if err := h.DB.First(&folder, "id = ? AND owner_id = ?", folderID, currentUser.ID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.Error(c, fiber.StatusNotFound, "folder not found")
			}
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading folder")
		}
		window.FolderID = &folderID
	}

	if req.Width != nil {
		window.Width = *req.Width
	}
	if req.Height != nil {
		window.Height = *req.Height
	}
	if req.X != nil {
		window.X = *req.X
	}
	if req.Y != nil {
		window.Y = *req.Y
	}

	zIndex, err := h.nextZIndex(currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed computing stacking order")
	}
	window.ZIndex = zIndex

	if err := h.DB.Create(&window).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating window")
	}

	return utils.Success(c, fiber.StatusCreated, window)
}

// List returns windows back-to-front: ascending z_index, the last entry
// being the topmost. created_at breaks z_index ties.
func (h *WindowsHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var windows []models.Window
	if err := h.DB.Where("owner_id = ?", currentUser.ID).Order("z_index ASC, created_at ASC").Find(&windows).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing windows")
	}

	return utils.Success(c, fiber.StatusOK, windows)
}

type updateWindowRequest struct {
	Title *string `json:"title"`
}

func (h *WindowsHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	windowID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid window id")
	}

	var window models.Window
	if err := h.DB.First(&window, "id = ? AND owner_id = ?", windowID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "window not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading window")
	}

	var req updateWindowRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return utils.Error(c, fiber.StatusBadRequest, "title is required")
	}

	if err := h.DB.Model(&models.Window{}).Where("id = ?", window.ID).Update("title", strings.TrimSpace(*req.Title)).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating window")
	}

	var updated models.Window
	if err := h.DB.First(&updated, "id = ?", window.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated window")
	}

	return utils.Success(c, fiber.StatusOK, updated)
}

type updateWindowPositionRequest struct {
	X           *int  `json:"x"`
	Y           *int  `json:"y"`
	Width       *int  `json:"width"`
	Height      *int  `json:"height"`
	IsMaximized *bool `json:"isMaximized"`
	IsMinimized *bool `json:"isMinimized"`
}

// UpdatePosition moves and resizes a window. Minimizing or maximizing
// never touches z_index.
func (h *WindowsHandler) UpdatePosition(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	windowID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid window id")
	}

	var window models.Window
	if err := h.DB.First(&window, "id = ? AND owner_id = ?", windowID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "window not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading window")
	}

	var req updateWindowPositionRequest
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
	if req.Width != nil {
		updates["width"] = *req.Width
	}
	if req.Height != nil {
		updates["height"] = *req.Height
	}
	if req.IsMaximized != nil {
		updates["is_maximized"] = *req.IsMaximized
	}
	if req.IsMinimized != nil {
		updates["is_minimized"] = *req.IsMinimized
	}

	if len(updates) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "no valid fields to update")
	}

	if err := h.DB.Model(&models.Window{}).Where("id = ?", window.ID).Updates(updates).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating window")
	}

	var updated models.Window
	if err := h.DB.First(&updated, "id = ?", window.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated window")
	}

	return utils.Success(c, fiber.StatusOK, updated)
}

// BringToFront re-applies the creation rule: the window's z_index becomes
// 1 + the owner's current maximum.
func (h *WindowsHandler) BringToFront(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	windowID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid window id")
	}

	var window models.Window
	if err := h.DB.First(&window, "id = ? AND owner_id = ?", windowID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "window not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading window")
	}

	zIndex, err := h.nextZIndex(currentUser.ID)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed computing stacking order")
	}

	if err := h.DB.Model(&models.Window{}).Where("id = ?", window.ID).Update("z_index", zIndex).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed raising window")
	}

	var updated models.Window
	if err := h.DB.First(&updated, "id = ?", window.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading updated window")
	}

	return utils.Success(c, fiber.StatusOK, updated)
}

func (h *WindowsHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	windowID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid window id")
	}

	var window models.Window
	if err := h.DB.First(&window, "id = ? AND owner_id = ?", windowID, currentUser.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.Error(c, fiber.StatusNotFound, "window not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading window")
	}

	if err := h.DB.Delete(&models.Window{}, "id = ?", window.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting window")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "window closed"})
}
