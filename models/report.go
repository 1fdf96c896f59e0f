package models

import "time"

// ReportKind is the explicit discriminant of the report variant. Handlers
// dispatch on it exhaustively instead of sniffing payload fields.
type ReportKind string

const (
	ReportResultDispute     ReportKind = "disputa_resultado"
	ReportFederationRequest ReportKind = "federation_request"
	ReportBug               ReportKind = "bug_report"
)

type ReportStatus string

const (
	ReportOpen   ReportStatus = "open"
	ReportClosed ReportStatus = "closed"
)

// Report is an administrative ticket. Kind-specific fields are nullable;
// which ones are required depends on the kind and is enforced by the
// report service.
type Report struct {
	ID            int          `json:"id" db:"id"`
	Kind          ReportKind   `json:"kind" db:"kind"`
	Status        ReportStatus `json:"status" db:"status"`
	ReporterEmail string       `json:"reporter_email" db:"reporter_email"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	ClosedAt      *time.Time   `json:"closed_at,omitempty" db:"closed_at"`

	// disputa_resultado payload.
	MatchID       *int    `json:"match_id,omitempty" db:"match_id"`
	Motive        *string `json:"motive,omitempty" db:"motive"`
	Justification *string `json:"justification,omitempty" db:"justification"`

	// federation_request / bug_report payload.
	Body *string `json:"body,omitempty" db:"body"`
}
