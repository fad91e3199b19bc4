package models

import "time"

// RequestDetailReport is the full derived view of one request at an instant.
// DaysUntilDue is signed: negative once the deadline has passed. Resolved
// requests keep it at zero and describe the outcome in Timeline instead.
type RequestDetailReport struct {
	Request      Request   `json:"request"`
	Overdue      bool      `json:"overdue"`
	DaysUntilDue int       `json:"days_until_due"`
	Timeline     string    `json:"timeline"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// ExemptionCount pairs an exemption code with its citation frequency.
type ExemptionCount struct {
	Code  int `json:"code"`
	Count int `json:"count"`
}

// AgencyStatistics aggregates registry-wide numbers at an instant.
// Rates are fractions in [0,1]; AverageResponseDays covers requests that
// carry a resolution timestamp.
type AgencyStatistics struct {
	TotalRequests       int                   `json:"total_requests"`
	CountsByStatus      map[RequestStatus]int `json:"counts_by_status"`
	OverdueCount        int                   `json:"overdue_count"`
	AverageResponseDays float64               `json:"average_response_days"`
	MostCitedExemptions []ExemptionCount      `json:"most_cited_exemptions"`
	AppealRate          float64               `json:"appeal_rate"`
	FulfillmentRate     float64               `json:"fulfillment_rate"`
	DenialRate          float64               `json:"denial_rate"`
	GeneratedAt         time.Time             `json:"generated_at"`
}
