package models

// Chapter is one section of the book. Chapters are seeded once at startup
// and never mutated afterwards.
type Chapter struct {
	ID      int    `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"` // HTML body
}
