package domain

import (
	"fmt"
	"time"
)

// ValidateStatus validates a project status
func ValidateStatus(status string) error {
	switch ProjectStatus(status) {
	case StatusDraft, StatusEstimating, StatusProposalSubmitted, StatusActive, StatusCompleted:
		return nil
	default:
		return fmt.Errorf("invalid status: must be one of: draft, estimating, proposal-submitted, active, completed")
	}
}

// ValidateScope validates a package definition scope
func ValidateScope(scope string) error {
	switch PackageScope(scope) {
	case ScopeCatalog, ScopeProject:
		return nil
	default:
		return fmt.Errorf("invalid scope: must be one of: catalog, project")
	}
}

// ValidateItemType validates a line item type
func ValidateItemType(t string) error {
	switch ItemType(t) {
	case "", ItemTypeComponent, ItemTypePackage:
		return nil
	default:
		return fmt.Errorf("invalid item type: must be one of: component, package")
	}
}

// ValidateResourceType validates an event resource type
func ValidateResourceType(resourceType string) error {
	switch resourceType {
	case "project", "catalog", "customization", "package", "revision", "settings", "system":
		return nil
	default:
		return fmt.Errorf("invalid resource type: must be one of: project, catalog, customization, package, revision, settings, system")
	}
}

// ValidateTimestamp validates and parses an ISO8601 timestamp
func ValidateTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: expected ISO8601/RFC3339")
	}
	return t, nil
}
