package types

import (
	"image"
	"time"
)

// AccessSource records how the plate reached the decision.
type AccessSource string

const (
	SourceManual AccessSource = "manual"
	SourceTyped  AccessSource = "typed"
	SourceImage  AccessSource = "image"
)

// AccessEvent is one immutable row of the access log. VehicleID is nil when
// the plate did not resolve to a registered vehicle.
type AccessEvent struct {
	ID         int64        `json:"id"`
	VehicleID  *int64       `json:"vehicle_id,omitempty"`
	Plate      string       `json:"plate"`
	OccurredAt time.Time    `json:"occurred_at"`
	Allowed    bool         `json:"allowed"`
	Source     AccessSource `json:"source"`
	Notes      string       `json:"notes,omitempty"`
}

// AccessReportRow is an access event joined with whatever vehicle and owner
// data still resolves.
type AccessReportRow struct {
	Event        AccessEvent `json:"event"`
	VehicleModel string      `json:"vehicle_model,omitempty"`
	VehicleBrand string      `json:"vehicle_brand,omitempty"`
	OwnerName    string      `json:"owner_name,omitempty"`
	OwnerRole    string      `json:"owner_role,omitempty"`
}

// Candidate is one text fragment returned by an OCR engine, in engine order.
type Candidate struct {
	Text       string           `json:"text"`
	Confidence *float64         `json:"confidence,omitempty"` // 0..1
	Box        *image.Rectangle `json:"box,omitempty"`
}

type CheckStatus string

const (
	StatusAllowed       CheckStatus = "allowed"
	StatusDenied        CheckStatus = "denied"
	StatusInvalidFormat CheckStatus = "invalid_format"
	StatusNoPlateFound  CheckStatus = "no_plate_found"
)

// CheckResult is what the access pipeline returns to its caller. Record is
// set only for StatusAllowed; Event only when a row was appended.
type CheckResult struct {
	Status     CheckStatus    `json:"status"`
	Plate      string         `json:"plate,omitempty"`
	Record     *VehicleRecord `json:"record,omitempty"`
	Event      *AccessEvent   `json:"event,omitempty"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	DecidedAt  time.Time      `json:"decided_at"`
}

func (r CheckResult) Allowed() bool { return r.Status == StatusAllowed }
