// Package models defines the resources the client exchanges with the server.
package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TaskPage struct {
	Tasks       []Task `json:"tasks"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalTasks  int    `json:"totalTasks"`
}

// TaskUpdate is a partial update; nil fields are left unchanged.
type TaskUpdate struct {
	Title  *string `json:"title,omitempty"`
	Status *string `json:"status,omitempty"`
}
