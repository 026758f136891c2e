package types

import "time"

// Suggested employee roles. Role is free text; these are what the
// registration form offers.
const (
	RoleDirector    = "Director"
	RoleManager     = "Manager"
	RoleCoordinator = "Coordinator"
	RoleAnalyst     = "Analyst"
	RoleAssistant   = "Assistant"
	RoleOther       = "Other"
)

var SuggestedRoles = []string{
	RoleDirector, RoleManager, RoleCoordinator, RoleAnalyst, RoleAssistant, RoleOther,
}

type VehicleCategory string

const (
	CategoryDirector VehicleCategory = "Director"
	CategoryManager  VehicleCategory = "Manager"
	CategoryEmployee VehicleCategory = "Employee"
	CategoryVisitor  VehicleCategory = "Visitor"
)

var VehicleCategories = []VehicleCategory{
	CategoryDirector, CategoryManager, CategoryEmployee, CategoryVisitor,
}

func (c VehicleCategory) Valid() bool {
	for _, v := range VehicleCategories {
		if c == v {
			return true
		}
	}
	return false
}

type Employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	TagID     *string   `json:"tag_id,omitempty"`
	Photo     []byte    `json:"-"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type Vehicle struct {
	ID        int64           `json:"id"`
	Plate     string          `json:"plate"`
	Model     string          `json:"model"`
	Brand     string          `json:"brand"`
	Color     string          `json:"color"`
	Category  VehicleCategory `json:"category"`
	OwnerID   *int64          `json:"owner_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// VehicleRecord is a vehicle together with its owner. Owner is nil when the
// vehicle has no owner or the owner row cannot be resolved.
type VehicleRecord struct {
	Vehicle Vehicle   `json:"vehicle"`
	Owner   *Employee `json:"owner,omitempty"`
}
