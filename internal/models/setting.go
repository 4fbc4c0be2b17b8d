package models

// Setting is the singleton application setting row.
// AutoApprove controls whether new registrations activate immediately.
type Setting struct {
	ID          int64 `json:"id"`
	AutoApprove bool  `json:"auto_approve"`
}
