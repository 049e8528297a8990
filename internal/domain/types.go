package domain

import (
	"time"
)

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	StatusDraft             ProjectStatus = "draft"
	StatusEstimating        ProjectStatus = "estimating"
	StatusProposalSubmitted ProjectStatus = "proposal-submitted"
	StatusActive            ProjectStatus = "active"
	StatusCompleted         ProjectStatus = "completed"
)

// PostSubmissionStatuses are the statuses that place a project under
// revision control. A project in one of these statuses with no open
// revision must be snapshotted before further edits.
var PostSubmissionStatuses = []ProjectStatus{
	StatusProposalSubmitted,
	StatusActive,
	StatusCompleted,
}

// IsPostSubmission reports whether the status gates edits behind revisions.
func (s ProjectStatus) IsPostSubmission() bool {
	for _, ps := range PostSubmissionStatuses {
		if s == ps {
			return true
		}
	}
	return false
}

// PackageScope represents the visibility of a package definition
type PackageScope string

const (
	ScopeCatalog PackageScope = "catalog"
	ScopeProject PackageScope = "project"
)

// ItemType discriminates line items in a location tree
type ItemType string

const (
	// ItemTypeComponent is a concrete line item. The zero value of an
	// item's Type field is treated as a component for legacy data.
	ItemTypeComponent ItemType = "component"
	// ItemTypePackage is a reference to a package definition plus a
	// quantity, resolved at read time.
	ItemTypePackage ItemType = "package"
)

// Project is the root estimating document for one job.
type Project struct {
	ID string `json:"id"`

	// FriendlyID is the human-facing display id (PRJ-00001), assigned
	// by the store on first save.
	FriendlyID string `json:"friendly_id,omitempty"`

	Name      string        `json:"name"`
	Owner     string        `json:"owner,omitempty"`
	Team      string        `json:"team,omitempty"`
	Status    ProjectStatus `json:"status"`
	Client    string        `json:"client,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Locations is the root level of the location tree.
	Locations []*LocationNode `json:"locations"`

	// Packages holds project-scope package definitions. Catalog-scope
	// definitions live in shared settings, not on the project.
	Packages []*PackageDefinition `json:"packages,omitempty"`

	// Revisions is the append-only revision log. Entries are immutable
	// once created.
	Revisions []*Revision `json:"revisions,omitempty"`

	// CurrentRevision is the id of the open revision, or empty when the
	// project is unlocked.
	CurrentRevision string `json:"current_revision,omitempty"`

	// CheckedOutBy is the actor currently holding the project for
	// writing, enforced by the external check-out protocol.
	CheckedOutBy string `json:"checked_out_by,omitempty"`

	// PackageMigrationVersion guards the one-shot legacy grouping
	// migration. >= 1 means already migrated.
	PackageMigrationVersion int `json:"package_migration_version,omitempty"`
}

// LocationNode is one node of the location tree. Children are owned
// exclusively by their parent; duplication always deep-copies.
type LocationNode struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Children []*LocationNode `json:"children,omitempty"`
	Items    []Item          `json:"items,omitempty"`
}

// PackageDefinition is a named, versioned, reusable bundle of components.
type PackageDefinition struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Scope     PackageScope  `json:"scope"`
	Version   int           `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Items     []PackageItem `json:"items"`
}

// PackageItem is a component line inside a package definition.
type PackageItem struct {
	Item
	QtyPerPackage float64 `json:"qty_per_package"`
}

// CatalogItem is one entry of the shared component catalog.
type CatalogItem struct {
	ID              string    `json:"id"`
	Manufacturer    string    `json:"manufacturer"`
	Model           string    `json:"model"`
	PartNumber      string    `json:"part_number,omitempty"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	Subcategory     string    `json:"subcategory,omitempty"`
	UnitCost        float64   `json:"unit_cost"`
	LaborHrsPerUnit float64   `json:"labor_hrs_per_unit"`
	UOM             string    `json:"uom,omitempty"`
	Vendor          string    `json:"vendor,omitempty"`
	Discontinued    bool      `json:"discontinued,omitempty"`
	Phase           string    `json:"phase,omitempty"`
	Favorite        bool      `json:"favorite,omitempty"`
	CatalogNote     string    `json:"catalog_note,omitempty"`
	Deleted         bool      `json:"deleted,omitempty"`
	ModifiedAt      time.Time `json:"modified_at,omitempty"`
}

// CatalogCustomization is the per-team sparse overlay on a base catalog
// item, keyed by (team_id, catalog_item_id). Deleted is a soft-delete
// flag; CustomFields overlays only the fields it carries.
type CatalogCustomization struct {
	TeamID        string      `json:"team_id" db:"team_id"`
	CatalogItemID string      `json:"catalog_item_id" db:"catalog_item_id"`
	Favorite      bool        `json:"favorite" db:"favorite"`
	CatalogNote   string      `json:"catalog_note,omitempty" db:"catalog_note"`
	Deleted       bool        `json:"deleted,omitempty" db:"deleted"`
	CustomFields  *FieldPatch `json:"custom_fields,omitempty" db:"custom_fields"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// Revision is an immutable point-in-time copy of a project's locations
// and project-scope packages.
type Revision struct {
	ID        string           `json:"id"`
	Label     string           `json:"label"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	CreatedBy string           `json:"created_by,omitempty"`
	Snapshot  RevisionSnapshot `json:"snapshot"`
}

// RevisionSnapshot holds the captured state of a revision.
type RevisionSnapshot struct {
	Locations []*LocationNode      `json:"locations"`
	Packages  []*PackageDefinition `json:"packages,omitempty"`
}

// Settings is the per-team (or per-owner) shared configuration blob:
// catalog-scope package definitions and project templates.
type Settings struct {
	Packages  []*PackageDefinition `json:"packages,omitempty"`
	Templates []*Project           `json:"templates,omitempty"`
}

// Event represents an entry in the local event log
type Event struct {
	ID           int64     `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Actor        string    `json:"actor,omitempty" db:"actor"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty" db:"resource_id"`
	EventType    string    `json:"event_type" db:"event_type"`
	Payload      *string   `json:"payload,omitempty" db:"payload"` // JSON
}
