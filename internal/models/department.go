package models

// Department is a named grouping of users. Managers are scoped to one.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
