package domain

import (
	"fmt"
	"time"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxReviewComment = 2000
)

// Review is one tenant's rating of a listing. A user edits or removes only
// their own reviews.
type Review struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (r Review) Validate() error {
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", ErrInvalid, MinRating, MaxRating)
	}
	return checkText("comment", r.Comment, MaxReviewComment)
}

// ReviewSummary is the aggregate shown above a listing's reviews.
type ReviewSummary struct {
	Count   int         `json:"count"`
	Average float64     `json:"average"`
	ByStars map[int]int `json:"byStars"`
}

func Summarize(rs []Review) ReviewSummary {
	s := ReviewSummary{ByStars: map[int]int{}}
	if len(rs) == 0 {
		return s
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
		s.ByStars[r.Rating]++
	}
	s.Count = len(rs)
	s.Average = float64(sum) / float64(len(rs))
	return s
}
