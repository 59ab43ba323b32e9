package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/webdesk/backend/internal/models"
	"gorm.io/gorm"
)

type NameKind string

const (
	NameKindFile   NameKind = "file"
	NameKindFolder NameKind = "folder"
)

// NameScope selects the set of existing names a desired name is checked
// against.
type NameScope int

const (
	// ScopeSibling checks only items sharing the same direct parent
	// (folder or desktop root).
	ScopeSibling NameScope = iota
	// ScopeRootBase checks desktop-root placements whose names share the
	// desired base name, so numbered variants are seen too.
	ScopeRootBase
	// ScopeGlobal checks every item of the kind the owner has, regardless
	// of placement.
	ScopeGlobal
)

// SplitName separates a file name into base and extension at the last dot.
// Folders have no extension concept, and a leading dot is part of the base.
func SplitName(name string, kind NameKind) (string, string) {
	if kind == NameKindFolder {
		return name, ""
	}
	idx := strings.LastIndex(name, ".")
	if idx <= 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

// ResolveName returns desired unchanged when it is free, otherwise the
// lowest-numbered "{base} ({n}){ext}" variant not in taken. Deterministic;
// terminates because taken is finite.
func ResolveName(taken map[string]bool, desired string, kind NameKind) string {
	if !taken[desired] {
		return desired
	}

	base, ext := SplitName(desired, kind)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if !taken[candidate] {
			return candidate
		}
	}
}

// NamingService feeds ResolveName with the existing names of a scope read
// from the store. Resolution is check-then-act: two concurrent requests can
// both see a name as free, and the composite unique indexes are the backstop.
type NamingService struct {
	DB *gorm.DB
}

func NewNamingService(db *gorm.DB) *NamingService {
	return &NamingService{DB: db}
}

// Resolve returns a collision-free variant of desired for the owner within
// the given scope. parentID is only consulted for ScopeSibling and means
// the containing folder, nil being the desktop root.
func (s *NamingService) Resolve(ownerID uuid.UUID, scope NameScope, parentID *uuid.UUID, desired string, kind NameKind) (string, error) {
	names, err := s.existingNames(ownerID, scope, parentID, desired, kind)
	if err != nil {
		return "", err
	}

	taken := make(map[string]bool, len(names))
	for _, name := range names {
		taken[name] = true
	}

	return ResolveName(taken, desired, kind), nil
}

func (s *NamingService) existingNames(ownerID uuid.UUID, scope NameScope, parentID *uuid.UUID, desired string, kind NameKind) ([]string, error) {
	query := s.DB.Model(s.modelFor(kind)).Where("owner_id = ?", ownerID)

	switch scope {
	case ScopeSibling:
		if parentID == nil {
			query = query.Where(s.parentColumn(kind) + " IS NULL")
		} else {
			query = query.Where(s.parentColumn(kind)+" = ?", *parentID)
		}
	case ScopeRootBase:
		base, _ := SplitName(desired, kind)
		query = query.Where(s.parentColumn(kind)+" IS NULL").Where(`name LIKE ? ESCAPE '\'`, likePrefix(base))
	case ScopeGlobal:
		// no placement filter
	}

	var names []string
	if err := query.Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

func (s *NamingService) modelFor(kind NameKind) interface{} {
	if kind == NameKindFolder {
		return &models.Folder{}
	}
	return &models.File{}
}

func (s *NamingService) parentColumn(kind NameKind) string {
	if kind == NameKindFolder {
		return "parent_id"
	}
	return "folder_id"
}

func likePrefix(base string) string {
	escaped := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(base)
	return escaped + "%"
}
