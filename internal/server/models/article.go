package models

import "time"

// Article tags used by the public listings.
const (
	TagAutomotive = "Automotive"
	TagReview     = "Review"
	TagComparison = "Comparison"
	TagExhibition = "Exhibition"
)

type Article struct {
	ID          int64
	Title       string
	Summary     string
	Content     string
	Image       string
	Author      string
	Tag         string
	PublishedOn time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
