package dto

// SubmitRequestRequest captures POST /requests payload.
type SubmitRequestRequest struct {
	Requester   string `json:"requester"`
	Description string `json:"description"`
}

// AssignRequestRequest routes a request to a named officer.
type AssignRequestRequest struct {
	Officer string `json:"officer"`
}

// DocumentPayload describes one released record package.
type DocumentPayload struct {
	Ref                string `json:"ref"`
	Description        string `json:"description,omitempty"`
	Redacted           bool   `json:"redacted"`
	RedactionRationale string `json:"redactionRationale,omitempty"`
}

// FulfillRequestRequest releases documents and closes the request.
type FulfillRequestRequest struct {
	Documents []DocumentPayload `json:"documents"`
}

// DenyRequestRequest closes the request citing statutory exemptions.
type DenyRequestRequest struct {
	Exemptions []int  `json:"exemptions"`
	Reason     string `json:"reason"`
}

// AppealRequestRequest contests a denial.
type AppealRequestRequest struct {
	Grounds string `json:"grounds"`
}

// AddNoteRequest appends an internal case note.
type AddNoteRequest struct {
	Text string `json:"text"`
}
