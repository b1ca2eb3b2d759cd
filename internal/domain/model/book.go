package model

import "time"

type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	PdfURL      string    `json:"pdf_url"`
	CreatedAt   time.Time `json:"created_at"`
}
