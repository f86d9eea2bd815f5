package domain

import "time"

type ID string

type Notepad struct {
	ID        ID
	UserID    string
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
