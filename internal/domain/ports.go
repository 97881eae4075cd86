package domain

import (
	"context"
	"time"
)

type PropertyRepository interface {
	// Write paths
	CreateProperty(ctx context.Context, p Property) error
	UpdateProperty(ctx context.Context, p Property) error
	SoftDeleteProperty(ctx context.Context, id string, at time.Time) error

	// Read paths; deleted listings are never returned.
	GetProperty(ctx context.Context, id string) (Property, error)
	ListProperties(ctx context.Context, q PropertyQuery) ([]Property, error)
	// ListRecentProperties returns at most q.Limit listings, newest first.
	ListRecentProperties(ctx context.Context, q PropertyQuery) ([]Property, error)
}

type SavedSearchRepository interface {
	CreateSavedSearch(ctx context.Context, s SavedSearch) error
	UpdateSavedSearch(ctx context.Context, s SavedSearch) error
	DeleteSavedSearch(ctx context.Context, id string) error
	GetSavedSearch(ctx context.Context, id string) (SavedSearch, error)
	ListSavedSearches(ctx context.Context, userID string) ([]SavedSearch, error)

	// ListActiveSavedSearches returns only searches with email notifications
	// enabled. Malformed documents are skipped by the store.
	ListActiveSavedSearches(ctx context.Context) ([]SavedSearch, error)
	SetLastNotified(ctx context.Context, id string, at time.Time) error
}

type UserRepository interface {
	UpsertUser(ctx context.Context, u UserContact) error
	GetUserContact(ctx context.Context, id string) (UserContact, error)
}

type FavoriteRepository interface {
	AddFavorite(ctx context.Context, f Favorite) error
	RemoveFavorite(ctx context.Context, userID, propertyID string) error
	IsFavorite(ctx context.Context, userID, propertyID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]Favorite, error)
}

type ViewingRepository interface {
	CreateViewing(ctx context.Context, v Viewing) error
	GetViewing(ctx context.Context, id string) (Viewing, error)
	ListViewingsByUser(ctx context.Context, userID string) ([]Viewing, error)
	ListViewingsByLandlord(ctx context.Context, landlordID string) ([]Viewing, error)
	SetViewingStatus(ctx context.Context, id string, st ViewingStatus, at time.Time) error
}

type ReviewRepository interface {
	CreateReview(ctx context.Context, r Review) error
	// UpdateReview rewrites rating, comment and updated_at only.
	UpdateReview(ctx context.Context, r Review) error
	DeleteReview(ctx context.Context, id string) error
	GetReview(ctx context.Context, id string) (Review, error)
	// ListReviews returns a listing's reviews newest first.
	ListReviews(ctx context.Context, propertyID string) ([]Review, error)
}

type InquiryRepository interface {
	CreateInquiry(ctx context.Context, q Inquiry) error
	GetInquiry(ctx context.Context, id string) (Inquiry, error)
	ListInquiriesByTenant(ctx context.Context, tenantID string) ([]Inquiry, error)
	// ListInquiriesByLandlord filters by status unless st is empty.
	ListInquiriesByLandlord(ctx context.Context, landlordID string, st InquiryStatus) ([]Inquiry, error)
	// UpdateInquiry rewrites status, response, response_at and updated_at.
	UpdateInquiry(ctx context.Context, q Inquiry) error
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, m Message) error
	GetMessage(ctx context.Context, id string) (Message, error)
	// ListConversation returns messages between a and b about one listing,
	// oldest first.
	ListConversation(ctx context.Context, propertyID, a, b string) ([]Message, error)
	// ListMessagesForUser returns messages sent or received, newest first.
	ListMessagesForUser(ctx context.Context, userID string) ([]Message, error)
	MarkMessageRead(ctx context.Context, id string) error
}

// Store bundles every repository a backend provides.
type Store interface {
	PropertyRepository
	SavedSearchRepository
	UserRepository
	FavoriteRepository
	ViewingRepository
	ReviewRepository
	InquiryRepository
	MessageRepository
	Close(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Mailer interface {
	SendDigest(ctx context.Context, d Digest) error
}
