package domain

import "time"

type UserContact struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type Favorite struct {
	UserID     string    `json:"userId"`
	PropertyID string    `json:"propertyId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ViewingStatus string

const (
	ViewingPending   ViewingStatus = "pending"
	ViewingConfirmed ViewingStatus = "confirmed"
	ViewingCancelled ViewingStatus = "cancelled"
)

func (s ViewingStatus) Valid() bool {
	return s == ViewingPending || s == ViewingConfirmed || s == ViewingCancelled
}

type Viewing struct {
	ID            string        `json:"id"`
	PropertyID    string        `json:"propertyId"`
	PropertyTitle string        `json:"propertyTitle"`
	LandlordID    string        `json:"landlordId"`
	UserID        string        `json:"userId"`
	UserEmail     string        `json:"userEmail"`
	UserName      string        `json:"userName"`
	Date          string        `json:"date"` // YYYY-MM-DD
	Time          string        `json:"time"` // HH:MM
	Notes         *string       `json:"notes,omitempty"`
	Status        ViewingStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
