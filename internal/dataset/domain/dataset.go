package domain

import "time"

type ID string

type Dataset struct {
	ID          ID
	Title       string
	Description string
	Category    string
	License     string
	Tags        []string
	Author      string
	CreatedAt   time.Time
}

// Wire is the JSON shape returned by the explore endpoint.
type Wire struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	License     string    `json:"license"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d Dataset) ToWire() Wire {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return Wire{
		ID:          string(d.ID),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		License:     d.License,
		Tags:        tags,
		Author:      d.Author,
		CreatedAt:   d.CreatedAt,
	}
}
