package view

import (
	"fmt"

	"usermgmt/internal/model"
)

// ListState selects which of the three list renderings is shown.
type ListState string

const (
	ListLoading ListState = "loading"
	ListEmpty   ListState = "empty"
	ListRows    ListState = "rows"
)

// SkeletonRows is the number of placeholder rows shown while loading.
const SkeletonRows = 3

const (
	EmptyTitle = "No users"
	EmptyHint  = "Get started by creating a new user."
)

// Row is one user line with its edit and delete controls.
type Row struct {
	ID       uint
	Name     string
	Email    string
	Deleting bool
	// Confirm is the prompt the browser shows before submitting the delete.
	Confirm string
}

// ListView is the list component for one render.
type ListView struct {
	State    ListState
	Rows     []Row
	Skeleton []int
}

// BuildList derives the list rendering from the records, the loading flag and
// the row currently being deleted.
func BuildList(users []model.User, loading bool, deletingID *uint) ListView {
	switch {
	case loading:
		return ListView{State: ListLoading, Skeleton: make([]int, SkeletonRows)}
	case len(users) == 0:
		return ListView{State: ListEmpty}
	}

	rows := make([]Row, 0, len(users))
	for _, u := range users {
		rows = append(rows, Row{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			Deleting: deletingID != nil && *deletingID == u.ID,
			Confirm:  fmt.Sprintf("Are you sure you want to delete %s?", u.Name),
		})
	}
	return ListView{State: ListRows, Rows: rows}
}
