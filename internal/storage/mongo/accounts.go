package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campus_rentals/internal/adapters/observability"
	"campus_rentals/internal/domain"
)

// savedSearchDoc keeps filters untyped; documents written by older clients
// use aliased keys and string-encoded numbers.
type savedSearchDoc struct {
	ID                    string     `bson:"_id"`
	UserID                string     `bson:"userId"`
	Name                  string     `bson:"name"`
	Filters               any        `bson:"filters"`
	EmailNotifications    bool       `bson:"emailNotifications"`
	NotificationFrequency string     `bson:"notificationFrequency"`
	LastNotified          *time.Time `bson:"lastNotified,omitempty"`
	CreatedAt             time.Time  `bson:"createdAt"`
	UpdatedAt             time.Time  `bson:"updatedAt"`
}

func (d savedSearchDoc) toDomain() (domain.SavedSearch, error) {
	f, err := domain.DecodeSearchFilters(normalize(d.Filters))
	if err != nil {
		return domain.SavedSearch{}, fmt.Errorf("saved search %s: %w", d.ID, err)
	}
	return domain.SavedSearch{
		ID: d.ID, UserID: d.UserID, Name: d.Name, Filters: f,
		EmailNotifications:    d.EmailNotifications,
		NotificationFrequency: domain.Frequency(d.NotificationFrequency),
		LastNotified:          d.LastNotified,
		CreatedAt:             d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}, nil
}

// filtersDoc writes filters under the canonical keys.
func filtersDoc(f domain.SearchFilters) bson.M {
	m := bson.M{}
	if len(f.PropertyTypes) > 0 {
		m["propertyType"] = f.PropertyTypes
	}
	if pr := f.PriceRange; pr != nil {
		r := bson.M{}
		if pr.Min != nil {
			r["min"] = *pr.Min
		}
		if pr.Max != nil {
			r["max"] = *pr.Max
		}
		m["priceRange"] = r
	}
	if len(f.Bedrooms) > 0 {
		m["bedrooms"] = f.Bedrooms
	}
	if len(f.Bathrooms) > 0 {
		m["bathrooms"] = f.Bathrooms
	}
	if len(f.Amenities) > 0 {
		m["amenities"] = f.Amenities
	}
	if f.Location != nil {
		m["location"] = *f.Location
	}
	if f.Distance != nil {
		m["distance"] = *f.Distance
	}
	return m
}

func (s *Store) CreateSavedSearch(ctx context.Context, ss domain.SavedSearch) error {
	_, err := s.c(colSavedSearches).InsertOne(ctx, savedSearchDoc{
		ID: ss.ID, UserID: ss.UserID, Name: ss.Name, Filters: filtersDoc(ss.Filters),
		EmailNotifications:    ss.EmailNotifications,
		NotificationFrequency: string(ss.NotificationFrequency),
		LastNotified:          ss.LastNotified,
		CreatedAt:             ss.CreatedAt.UTC(), UpdatedAt: ss.UpdatedAt.UTC(),
	})
	return err
}

// UpdateSavedSearch never touches lastNotified.
func (s *Store) UpdateSavedSearch(ctx context.Context, ss domain.SavedSearch) error {
	res, err := s.c(colSavedSearches).UpdateOne(ctx, bson.M{"_id": ss.ID}, bson.M{"$set": bson.M{
		"name":                  ss.Name,
		"filters":               filtersDoc(ss.Filters),
		"emailNotifications":    ss.EmailNotifications,
		"notificationFrequency": string(ss.NotificationFrequency),
		"updatedAt":             ss.UpdatedAt.UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSavedSearch(ctx context.Context, id string) error {
	_, err := s.c(colSavedSearches).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *Store) SetLastNotified(ctx context.Context, id string, at time.Time) error {
	res, err := s.c(colSavedSearches).UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastNotified": at.UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetSavedSearch(ctx context.Context, id string) (domain.SavedSearch, error) {
	var d savedSearchDoc
	if err := s.c(colSavedSearches).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.SavedSearch{}, notFound(err)
	}
	return d.toDomain()
}

func (s *Store) ListSavedSearches(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.findSavedSearches(ctx, bson.M{"userId": userID}, opts)
}

func (s *Store) ListActiveSavedSearches(ctx context.Context) ([]domain.SavedSearch, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return s.findSavedSearches(ctx, bson.M{"emailNotifications": true}, opts)
}

func (s *Store) findSavedSearches(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.SavedSearch, error) {
	cur, err := s.c(colSavedSearches).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.SavedSearch{}
	for cur.Next(ctx) {
		var d savedSearchDoc
		err := cur.Decode(&d)
		var ss domain.SavedSearch
		if err == nil {
			ss, err = d.toDomain()
		}
		if err != nil {
			observability.ObserveMalformed(colSavedSearches)
			log.Warn().Err(err).Msg("skipping malformed saved search")
			continue
		}
		out = append(out, ss)
	}
	return out, cur.Err()
}

type userDoc struct {
	ID          string `bson:"_id"`
	Email       string `bson:"email"`
	DisplayName string `bson:"displayName"`
}

func (s *Store) UpsertUser(ctx context.Context, u domain.UserContact) error {
	_, err := s.c(colUsers).UpdateOne(ctx, bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"email": u.Email, "displayName": u.DisplayName}},
		options.Update().SetUpsert(true))
	return err
}

func (s *Store) GetUserContact(ctx context.Context, id string) (domain.UserContact, error) {
	var d userDoc
	if err := s.c(colUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.UserContact{}, notFound(err)
	}
	return domain.UserContact{ID: d.ID, Email: d.Email, DisplayName: d.DisplayName}, nil
}

type favoriteDoc struct {
	UserID     string    `bson:"userId"`
	PropertyID string    `bson:"propertyId"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func (s *Store) AddFavorite(ctx context.Context, f domain.Favorite) error {
	_, err := s.c(colFavorites).UpdateOne(ctx,
		bson.M{"userId": f.UserID, "propertyId": f.PropertyID},
		bson.M{"$setOnInsert": favoriteDoc{UserID: f.UserID, PropertyID: f.PropertyID, CreatedAt: f.CreatedAt.UTC()}},
		options.Update().SetUpsert(true))
	return err
}

func (s *Store) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	_, err := s.c(colFavorites).DeleteOne(ctx, bson.M{"userId": userID, "propertyId": propertyID})
	return err
}

func (s *Store) IsFavorite(ctx context.Context, userID, propertyID string) (bool, error) {
	n, err := s.c(colFavorites).CountDocuments(ctx, bson.M{"userId": userID, "propertyId": propertyID})
	return n > 0, err
}

func (s *Store) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	cur, err := s.c(colFavorites).Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []favoriteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Favorite, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.Favorite{UserID: d.UserID, PropertyID: d.PropertyID, CreatedAt: d.CreatedAt})
	}
	return out, nil
}

type viewingDoc struct {
	ID            string    `bson:"_id"`
	PropertyID    string    `bson:"propertyId"`
	PropertyTitle string    `bson:"propertyTitle"`
	LandlordID    string    `bson:"landlordId"`
	UserID        string    `bson:"userId"`
	UserEmail     string    `bson:"userEmail"`
	UserName      string    `bson:"userName"`
	Date          string    `bson:"date"`
	Time          string    `bson:"time"`
	Notes         *string   `bson:"notes,omitempty"`
	Status        string    `bson:"status"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

func (d viewingDoc) toDomain() domain.Viewing {
	return domain.Viewing{
		ID: d.ID, PropertyID: d.PropertyID, PropertyTitle: d.PropertyTitle, LandlordID: d.LandlordID,
		UserID: d.UserID, UserEmail: d.UserEmail, UserName: d.UserName, Date: d.Date, Time: d.Time,
		Notes: d.Notes, Status: domain.ViewingStatus(d.Status), CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func (s *Store) CreateViewing(ctx context.Context, v domain.Viewing) error {
	_, err := s.c(colViewings).InsertOne(ctx, viewingDoc{
		ID: v.ID, PropertyID: v.PropertyID, PropertyTitle: v.PropertyTitle, LandlordID: v.LandlordID,
		UserID: v.UserID, UserEmail: v.UserEmail, UserName: v.UserName, Date: v.Date, Time: v.Time,
		Notes: v.Notes, Status: string(v.Status), CreatedAt: v.CreatedAt.UTC(), UpdatedAt: v.UpdatedAt.UTC(),
	})
	return err
}

func (s *Store) GetViewing(ctx context.Context, id string) (domain.Viewing, error) {
	var d viewingDoc
	if err := s.c(colViewings).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.Viewing{}, notFound(err)
	}
	return d.toDomain(), nil
}

func (s *Store) ListViewingsByUser(ctx context.Context, userID string) ([]domain.Viewing, error) {
	return s.findViewings(ctx, bson.M{"userId": userID})
}

func (s *Store) ListViewingsByLandlord(ctx context.Context, landlordID string) ([]domain.Viewing, error) {
	return s.findViewings(ctx, bson.M{"landlordId": landlordID})
}

func (s *Store) findViewings(ctx context.Context, filter bson.M) ([]domain.Viewing, error) {
	cur, err := s.c(colViewings).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []viewingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]domain.Viewing, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *Store) SetViewingStatus(ctx context.Context, id string, st domain.ViewingStatus, at time.Time) error {
	res, err := s.c(colViewings).UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": string(st), "updatedAt": at.UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
