package handlers

import (
	"errors"
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

type MessagesHandler struct {
	DB       *gorm.DB
	Transfer *services.TransferService
}

func NewMessagesHandler(db *gorm.DB, transfer *services.TransferService) *MessagesHandler {
	return &MessagesHandler{DB: db, Transfer: transfer}
}

var errRecipientNotFound = errors.New("recipient not found")

type attachmentRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type createMessageRequest struct {
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
	Recipients  []string        `json:"recipients"`
	Attachments []attachmentRef `json:"attachments"`
}

// Create composes a message. Any unresolvable recipient username aborts
// the whole send; unresolvable attachment references are silently
// skipped. The asymmetry is deliberate: a wrong recipient means the
// message would not reach who it was written for, a stale attachment
// reference only loses an extra.
func (h *MessagesHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	subject := strings.TrimSpace(req.Subject)
	body := strings.TrimSpace(req.Body)
	if subject == "" {
		return utils.Error(c, fiber.StatusBadRequest, "subject is required")
	}
	if body == "" {
		return utils.Error(c, fiber.StatusBadRequest, "body is required")
	}
	if len(req.Recipients) == 0 {
		return utils.Error(c, fiber.StatusBadRequest, "at least one recipient is required")
	}

	var message models.Message
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		recipients, err := resolveRecipients(tx, req.Recipients)
		if err != nil {
			return err
		}

		message = models.Message{
			SenderID: currentUser.ID,
			Subject:  subject,
			Body:     body,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		if err := tx.Model(&message).Association("Recipients").Append(recipients); err != nil {
			return err
		}

		for _, ref := range req.Attachments {
			attachment, ok := h.resolveAttachment(tx, currentUser.ID, ref)
			if !ok {
				continue
			}
			attachment.MessageID = message.ID
			if err := tx.Create(attachment).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, errRecipientNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "recipient not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating message")
	}

	var created models.Message
	if err := h.DB.Preload("Sender").Preload("Recipients").Preload("Attachments").First(&created, "id = ?", message.ID).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading created message")
	}

	logger.InfoWithUser(currentUser.ID.String(), "message_sent", map[string]interface{}{
		"message_id":  created.ID.String(),
		"recipients":  len(created.Recipients),
		"attachments": len(created.Attachments),
		"request_id":  getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, created)
}

func resolveRecipients(tx *gorm.DB, usernames []string) ([]models.User, error) {
	seen := map[string]bool{}
	recipients := make([]models.User, 0, len(usernames))

	for _, raw := range usernames {
		username := strings.ToLower(strings.TrimSpace(raw))
		if username == "" || seen[username] {
			continue
		}
		seen[username] = true

		var user models.User
		if err := tx.First(&user, "username = ?", username).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errRecipientNotFound
			}
			return nil, err
		}
		recipients = append(recipients, user)
	}

	if len(recipients) == 0 {
		return nil, errRecipientNotFound
	}
	return recipients, nil
}

// resolveAttachment turns a {type, id} pair into an attachment row
// referencing the sender's original. Anything unresolvable, including an
// entity the sender does not own, reports not ok and is skipped.
func (h *MessagesHandler) resolveAttachment(tx *gorm.DB, senderID uuid.UUID, ref attachmentRef) (*models.Attachment, bool) {
	id, err := parseUUID(ref.ID)
	if err != nil {
		return nil, false
	}

	switch models.AttachmentKind(strings.TrimSpace(ref.Type)) {
	case models.AttachmentKindFile:
		var file models.File
		if err := tx.First(&file, "id = ? AND owner_id = ?", id, senderID).Error; err != nil {
			return nil, false
		}
		return &models.Attachment{Kind: models.AttachmentKindFile, FileID: &file.ID}, true
	case models.AttachmentKindFolder:
		var folder models.Folder
		if err := tx.First(&folder, "id = ? AND owner_id = ?", id, senderID).Error; err != nil {
			return nil, false
		}
		return &models.Attachment{Kind: models.AttachmentKindFolder, FolderID: &folder.ID}, true
	default:
		return nil, false
	}
}

func (h *MessagesHandler) participantScope(userID uuid.UUID) *gorm.DB {
	return h.DB.Model(&models.Message{}).
		Joins("LEFT JOIN message_recipients mr ON mr.message_id = messages.id").
		Where("messages.sender_id = ? OR mr.user_id = ?", userID, userID).
		Distinct("messages.*")
}

func (h *MessagesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var messages []models.Message
	if err := h.participantScope(currentUser.ID).
		Preload("Sender").Preload("Recipients").Preload("Attachments").
		Order("messages.created_at DESC").
		Find(&messages).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing messages")
	}

	return utils.Success(c, fiber.StatusOK, messages)
}

func (h *MessagesHandler) Inbox(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	p := utils.ParsePagination(c)

	query := h.DB.Model(&models.Message{}).
		Joins("JOIN message_recipients mr ON mr.message_id = messages.id").
		Where("mr.user_id = ?", currentUser.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting inbox")
	}

	var messages []models.Message
	if err := utils.ApplyPagination(query.Preload("Sender").Preload("Attachments").Order("messages.created_at DESC"), p).
		Find(&messages).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing inbox")
	}

	return utils.Paginated(c, messages, p.Page, p.Limit, total)
}

func (h *MessagesHandler) Sent(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	p := utils.ParsePagination(c)

	query := h.DB.Model(&models.Message{}).Where("sender_id = ?", currentUser.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting sent messages")
	}

	var messages []models.Message
	if err := utils.ApplyPagination(query.Preload("Recipients").Preload("Attachments").Order("created_at DESC"), p).
		Find(&messages).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing sent messages")
	}

	return utils.Paginated(c, messages, p.Page, p.Limit, total)
}

// loadMessage fetches a message regardless of ownership; the caller
// decides participant access. A 404 means the message does not exist at
// all, a 403 that it exists but the caller is no participant.
func (h *MessagesHandler) loadMessage(messageID uuid.UUID) (*models.Message, error) {
	var message models.Message
	err := h.DB.Preload("Sender").Preload("Recipients").Preload("Attachments").
		First(&message, "id = ?", messageID).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func isParticipant(message *models.Message, userID uuid.UUID) bool {
	if message.SenderID == userID {
		return true
	}
	for _, recipient := range message.Recipients {
		if recipient.ID == userID {
			return true
		}
	}
	return false
}

func isRecipient(message *models.Message, userID uuid.UUID) bool {
	for _, recipient := range message.Recipients {
		if recipient.ID == userID {
			return true
		}
	}
	return false
}

func (h *MessagesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	messageID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid message id")
	}

	message, err := h.loadMessage(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "message not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading message")
	}

	if !isParticipant(message, currentUser.ID) {
		return utils.Error(c, fiber.StatusForbidden, "access denied")
	}

	return utils.Success(c, fiber.StatusOK, message)
}

// MarkRead flips the message's single read flag. Only a recipient may do
// it, and the first one marks the message read for everyone.
func (h *MessagesHandler) MarkRead(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	messageID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid message id")
	}

	message, err := h.loadMessage(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "message not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading message")
	}

	if !isRecipient(message, currentUser.ID) {
		return utils.Error(c, fiber.StatusForbidden, "access denied")
	}

	if err := h.DB.Model(&models.Message{}).Where("id = ?", message.ID).Update("is_read", true).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed marking message read")
	}

	message.IsRead = true
	return utils.Success(c, fiber.StatusOK, message)
}

type copyAttachmentRequest struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// CopyAttachment copies the referenced original onto the caller's desktop
// root at the drop coordinates. Any message participant may copy any of
// its attachments: visibility was already granted by inclusion in a
// message they can read.
func (h *MessagesHandler) CopyAttachment(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	messageID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid message id")
	}
	attachmentID, err := parseUUID(c.Params("attachmentId"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid attachment id")
	}

	var req copyAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	kind := models.AttachmentKind(strings.TrimSpace(req.Type))
	if kind != models.AttachmentKindFile && kind != models.AttachmentKindFolder {
		return utils.Error(c, fiber.StatusBadRequest, "unsupported attachment type")
	}

	message, err := h.loadMessage(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "message not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading message")
	}

	if !isParticipant(message, currentUser.ID) {
		return utils.Error(c, fiber.StatusForbidden, "access denied")
	}

	var attachment *models.Attachment
	for i := range message.Attachments {
		if message.Attachments[i].ID == attachmentID {
			attachment = &message.Attachments[i]
			break
		}
	}
	if attachment == nil {
		return utils.Error(c, fiber.StatusNotFound, "attachment not found")
	}
	if attachment.Kind != kind {
		return utils.Error(c, fiber.StatusBadRequest, "attachment type mismatch")
	}

	var copied interface{}
	switch attachment.Kind {
	case models.AttachmentKindFile:
		copied, err = h.Transfer.CopyFile(currentUser.ID, message.Sender.Username, *attachment.FileID, req.X, req.Y)
	case models.AttachmentKindFolder:
		copied, err = h.Transfer.CopyFolder(currentUser.ID, message.Sender.Username, *attachment.FolderID, req.X, req.Y)
	}
	if err != nil {
		if errors.Is(err, services.ErrSourceMissing) {
			return utils.Error(c, fiber.StatusNotFound, "attachment source no longer exists")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed copying attachment")
	}

	logger.InfoWithUser(currentUser.ID.String(), "attachment_copied", map[string]interface{}{
		"message_id":    message.ID.String(),
		"attachment_id": attachment.ID.String(),
		"kind":          string(attachment.Kind),
		"request_id":    getRequestID(c),
	})

	return utils.Success(c, fiber.StatusCreated, copied)
}
