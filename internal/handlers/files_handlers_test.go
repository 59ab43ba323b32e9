package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/webdesk/backend/internal/models"
)

func TestFileCreate(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "alice", "password123")

	t.Run("creates a desktop file with derived size", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/", map[string]any{
			"name":     "notes.txt",
			"fileType": "text",
			"content":  "hello world",
			"x":        30,
			"y":        40,
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusCreated)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["name"] != "notes.txt" {
			t.Fatalf("expected name %q, got %v", "notes.txt", data["name"])
		}
		if data["size"] != float64(len("hello world")) {
			t.Fatalf("expected size %d, got %v", len("hello world"), data["size"])
		}
		if data["iconColor"] != "#4CAF50" {
			t.Fatalf("expected default icon color, got %v", data["iconColor"])
		}
		if data["modifiedAt"] == nil {
			t.Fatalf("expected modifiedAt to be set")
		}
	})

	t.Run("auto-numbers a duplicate name keeping the extension", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/", map[string]any{
			"name":     "notes.txt",
			"fileType": "text",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusCreated)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["name"] != "notes (1).txt" {
			t.Fatalf("expected name %q, got %v", "notes (1).txt", data["name"])
		}
	})

	t.Run("rejects unknown file type", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/", map[string]any{
			"name":     "weird.bin",
			"fileType": "binary",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "invalid fileType")
	})

	t.Run("defaults missing file type to other", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/", map[string]any{
			"name": "mystery",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusCreated)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["fileType"] != "other" {
			t.Fatalf("expected file type %q, got %v", "other", data["fileType"])
		}
	})

	t.Run("404 for another user's folder", func(t *testing.T) {
		other, _ := createTestUser(t, env.db, "bob", "password123")
		foreign := &models.Folder{OwnerID: other.ID, Name: "Private"}
		if err := env.db.Create(foreign).Error; err != nil {
			t.Fatalf("failed creating foreign folder: %v", err)
		}

		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/", map[string]any{
			"name":     "sneaky.txt",
			"folderID": foreign.ID.String(),
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusNotFound)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "folder not found")
	})

	t.Run("same name is free inside a folder", func(t *testing.T) {
		folder := &models.Folder{OwnerID: user.ID, Name: "Work"}
		if err := env.db.Create(folder).Error; err != nil {
			t.Fatalf("failed creating folder: %v", err)
		}

		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/", map[string]any{
			"name":     "notes.txt",
			"folderID": folder.ID.String(),
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusCreated)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["name"] != "notes.txt" {
			t.Fatalf("expected nested file to keep name %q, got %v", "notes.txt", data["name"])
		}
	})
}

func TestFileUpdate(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "alice", "password123")

	file := &models.File{OwnerID: user.ID, Name: "draft.txt", FileType: models.FileTypeText, Content: "v1", Size: 2}
	if err := env.db.Create(file).Error; err != nil {
		t.Fatalf("failed creating file: %v", err)
	}

	t.Run("content write tracks size and modification time", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPut, "/api/files/"+file.ID.String(), map[string]any{
			"content": "a much longer second version",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["content"] != "a much longer second version" {
			t.Fatalf("expected updated content, got %v", data["content"])
		}
		if data["size"] != float64(len("a much longer second version")) {
			t.Fatalf("expected size %d, got %v", len("a much longer second version"), data["size"])
		}
	})

	t.Run("moves into a folder", func(t *testing.T) {
		folder := &models.Folder{OwnerID: user.ID, Name: "Drafts"}
		if err := env.db.Create(folder).Error; err != nil {
			t.Fatalf("failed creating folder: %v", err)
		}

		resp := performJSONRequest(t, env.app, fiber.MethodPut, "/api/files/"+file.ID.String(), map[string]any{
			"folderID": folder.ID.String(),
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["folderID"] != folder.ID.String() {
			t.Fatalf("expected folderID %s, got %v", folder.ID, data["folderID"])
		}
	})

	t.Run("moves back to the desktop root", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPut, "/api/files/"+file.ID.String(), map[string]any{
			"folderID": "",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		data := dataMap(t, decodeJSONMap(t, resp))
		if _, hasFolder := data["folderID"]; hasFolder {
			t.Fatalf("expected file at desktop root, got folderID %v", data["folderID"])
		}
	})

	t.Run("no fields is an error", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPut, "/api/files/"+file.ID.String(), map[string]any{}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "no valid fields to update")
	})
}

func TestFileRename(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "alice", "password123")

	folder := &models.Folder{OwnerID: user.ID, Name: "Docs"}
	if err := env.db.Create(folder).Error; err != nil {
		t.Fatalf("failed creating folder: %v", err)
	}
	first := &models.File{OwnerID: user.ID, FolderID: &folder.ID, Name: "a.txt"}
	second := &models.File{OwnerID: user.ID, FolderID: &folder.ID, Name: "b.txt"}
	for _, f := range []*models.File{first, second} {
		if err := env.db.Create(f).Error; err != nil {
			t.Fatalf("failed creating file: %v", err)
		}
	}

	t.Run("writes the requested name as-is", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/"+first.ID.String()+"/rename", map[string]any{
			"name": "renamed.txt",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["name"] != "renamed.txt" {
			t.Fatalf("expected name %q, got %v", "renamed.txt", data["name"])
		}
	})

	t.Run("duplicate sibling name rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/"+second.ID.String()+"/rename", map[string]any{
			"name": "renamed.txt",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "file name already exists")
	})

	t.Run("empty name rejected", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/"+second.ID.String()+"/rename", map[string]any{
			"name": "  ",
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "name is required")
	})
}

func TestFilePositionAndListing(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "alice", "password123")

	folder := &models.Folder{OwnerID: user.ID, Name: "Stuff"}
	if err := env.db.Create(folder).Error; err != nil {
		t.Fatalf("failed creating folder: %v", err)
	}
	desktop := &models.File{OwnerID: user.ID, Name: "desktop.txt"}
	nested := &models.File{OwnerID: user.ID, FolderID: &folder.ID, Name: "nested.txt"}
	for _, f := range []*models.File{desktop, nested} {
		if err := env.db.Create(f).Error; err != nil {
			t.Fatalf("failed creating file: %v", err)
		}
	}

	t.Run("position update", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/"+desktop.ID.String()+"/position", map[string]any{
			"x": 250,
			"y": 125,
		}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		data := dataMap(t, decodeJSONMap(t, resp))
		if data["x"] != float64(250) || data["y"] != float64(125) {
			t.Fatalf("expected position (250, 125), got (%v, %v)", data["x"], data["y"])
		}
	})

	t.Run("position requires a coordinate", func(t *testing.T) {
		resp := performJSONRequest(t, env.app, fiber.MethodPost, "/api/files/"+desktop.ID.String()+"/position", map[string]any{}, authHeaders(token))
		assertStatus(t, resp, fiber.StatusBadRequest)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "x or y is required")
	})

	t.Run("desktop listing excludes nested files", func(t *testing.T) {
		resp := performRequest(t, env.app, fiber.MethodGet, "/api/files/desktop", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		files := dataList(t, decodeJSONMap(t, resp))
		if len(files) != 1 {
			t.Fatalf("expected 1 desktop file, got %d", len(files))
		}
		first, _ := files[0].(map[string]any)
		if first["name"] != "desktop.txt" {
			t.Fatalf("expected %q, got %v", "desktop.txt", first["name"])
		}
	})

	t.Run("full listing includes everything", func(t *testing.T) {
		resp := performRequest(t, env.app, fiber.MethodGet, "/api/files/", nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		files := dataList(t, decodeJSONMap(t, resp))
		if len(files) != 2 {
			t.Fatalf("expected 2 files, got %d", len(files))
		}
	})
}

func TestFileDelete(t *testing.T) {
	env := setupTestEnv(t)
	user, token := createTestUser(t, env.db, "alice", "password123")

	file := &models.File{OwnerID: user.ID, Name: "gone.txt"}
	if err := env.db.Create(file).Error; err != nil {
		t.Fatalf("failed creating file: %v", err)
	}
	window := &models.Window{OwnerID: user.ID, FileID: &file.ID, Title: "gone.txt", ZIndex: 1}
	if err := env.db.Create(window).Error; err != nil {
		t.Fatalf("failed creating window: %v", err)
	}

	t.Run("delete removes the file and its windows", func(t *testing.T) {
		resp := performRequest(t, env.app, fiber.MethodDelete, "/api/files/"+file.ID.String(), nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusOK)

		var fileCount, windowCount int64
		env.db.Model(&models.File{}).Where("owner_id = ?", user.ID).Count(&fileCount)
		env.db.Model(&models.Window{}).Where("owner_id = ?", user.ID).Count(&windowCount)
		if fileCount != 0 || windowCount != 0 {
			t.Fatalf("expected file and windows gone, got %d files and %d windows", fileCount, windowCount)
		}
	})

	t.Run("404 for another user's file", func(t *testing.T) {
		other, _ := createTestUser(t, env.db, "bob", "password123")
		foreign := &models.File{OwnerID: other.ID, Name: "private.txt"}
		if err := env.db.Create(foreign).Error; err != nil {
			t.Fatalf("failed creating foreign file: %v", err)
		}

		resp := performRequest(t, env.app, fiber.MethodDelete, "/api/files/"+foreign.ID.String(), nil, authHeaders(token))
		assertStatus(t, resp, fiber.StatusNotFound)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "file not found")
	})
}
