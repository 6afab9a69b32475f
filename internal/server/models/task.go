package models

import "time"

type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskPage is one page of a user's task list.
type TaskPage struct {
	Tasks       []Task `json:"tasks"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalTasks  int    `json:"totalTasks"`
}
