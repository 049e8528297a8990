package id

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	projectIDPattern  = regexp.MustCompile(`^PRJ-\d{5}$`)
	revisionIDPattern = regexp.MustCompile(`^REV-\d{5}$`)
	packageIDPattern  = regexp.MustCompile(`^PKG-\d{5}$`)
	uuidPattern       = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// Type represents the type of resource
type Type string

const (
	TypeProject  Type = "project"
	TypeRevision Type = "revision"
	TypePackage  Type = "package"
)

// New generates a fresh entity id. Every node, item, definition, and
// revision gets its own id at creation; ids are never shared across
// copies.
func New() string {
	return uuid.NewString()
}

// FormatProject formats a project friendly ID
func FormatProject(seq int) string {
	return fmt.Sprintf("PRJ-%05d", seq)
}

// FormatRevision formats a revision friendly ID
func FormatRevision(seq int) string {
	return fmt.Sprintf("REV-%05d", seq)
}

// FormatPackage formats a package friendly ID
func FormatPackage(seq int) string {
	return fmt.Sprintf("PKG-%05d", seq)
}

// Parse parses a friendly ID string and returns the type and sequence number
func Parse(s string) (Type, int, error) {
	s = strings.TrimSpace(s)

	switch {
	case projectIDPattern.MatchString(s):
		seq, _ := strconv.Atoi(s[4:])
		return TypeProject, seq, nil
	case revisionIDPattern.MatchString(s):
		seq, _ := strconv.Atoi(s[4:])
		return TypeRevision, seq, nil
	case packageIDPattern.MatchString(s):
		seq, _ := strconv.Atoi(s[4:])
		return TypePackage, seq, nil
	default:
		return "", 0, fmt.Errorf("invalid friendly ID format: %s", s)
	}
}

// IsUUID checks if a string is a valid UUID
func IsUUID(s string) bool {
	return uuidPattern.MatchString(strings.ToLower(s))
}

// IsFriendlyID checks if a string is a valid friendly ID
func IsFriendlyID(s string) bool {
	_, _, err := Parse(s)
	return err == nil
}
