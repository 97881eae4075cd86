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

type propertyDoc struct {
	ID            string          `bson:"_id"`
	Title         string          `bson:"title"`
	Description   string          `bson:"description"`
	Price         float64         `bson:"price"`
	Location      string          `bson:"location"`
	PropertyType  string          `bson:"propertyType"`
	Bedrooms      int             `bson:"bedrooms"`
	Bathrooms     int             `bson:"bathrooms"`
	Area          float64         `bson:"area"`
	Distance      float64         `bson:"distance"`
	Amenities     map[string]bool `bson:"amenities,omitempty"`
	Images        []string        `bson:"images,omitempty"`
	AvailableFrom *string         `bson:"availableFrom,omitempty"`
	LeaseTerm     *string         `bson:"leaseTerm,omitempty"`
	Deposit       *float64        `bson:"deposit,omitempty"`
	LandlordID    string          `bson:"landlordId"`
	CreatedAt     time.Time       `bson:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt"`
	DeletedAt     *time.Time      `bson:"deletedAt,omitempty"`
}

func toPropertyDoc(p domain.Property) propertyDoc {
	return propertyDoc{
		ID: p.ID, Title: p.Title, Description: p.Description, Price: p.Price, Location: p.Location,
		PropertyType: p.PropertyType, Bedrooms: p.Bedrooms, Bathrooms: p.Bathrooms, Area: p.Area,
		Distance: p.Distance, Amenities: p.Amenities, Images: p.Images, AvailableFrom: p.AvailableFrom,
		LeaseTerm: p.LeaseTerm, Deposit: p.Deposit, LandlordID: p.LandlordID,
		CreatedAt: p.CreatedAt.UTC(), UpdatedAt: p.UpdatedAt.UTC(), DeletedAt: p.DeletedAt,
	}
}

func (d propertyDoc) toDomain() domain.Property {
	return domain.Property{
		ID: d.ID, Title: d.Title, Description: d.Description, Price: d.Price, Location: d.Location,
		PropertyType: d.PropertyType, Bedrooms: d.Bedrooms, Bathrooms: d.Bathrooms, Area: d.Area,
		Distance: d.Distance, Amenities: d.Amenities, Images: d.Images, AvailableFrom: d.AvailableFrom,
		LeaseTerm: d.LeaseTerm, Deposit: d.Deposit, LandlordID: d.LandlordID,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt, DeletedAt: d.DeletedAt,
	}
}

func (s *Store) CreateProperty(ctx context.Context, p domain.Property) error {
	_, err := s.c(colProperties).InsertOne(ctx, toPropertyDoc(p))
	return err
}

func (s *Store) UpdateProperty(ctx context.Context, p domain.Property) error {
	doc := toPropertyDoc(p)
	res, err := s.c(colProperties).UpdateOne(ctx,
		bson.M{"_id": p.ID, "deletedAt": nil},
		bson.M{"$set": bson.M{
			"title": doc.Title, "description": doc.Description, "price": doc.Price,
			"location": doc.Location, "propertyType": doc.PropertyType,
			"bedrooms": doc.Bedrooms, "bathrooms": doc.Bathrooms, "area": doc.Area,
			"distance": doc.Distance, "amenities": doc.Amenities, "images": doc.Images,
			"availableFrom": doc.AvailableFrom, "leaseTerm": doc.LeaseTerm, "deposit": doc.Deposit,
			"updatedAt": doc.UpdatedAt,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) SoftDeleteProperty(ctx context.Context, id string, at time.Time) error {
	res, err := s.c(colProperties).UpdateOne(ctx,
		bson.M{"_id": id, "deletedAt": nil},
		bson.M{"$set": bson.M{"deletedAt": at.UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	var d propertyDoc
	if err := s.c(colProperties).FindOne(ctx, bson.M{"_id": id, "deletedAt": nil}).Decode(&d); err != nil {
		return domain.Property{}, notFound(err)
	}
	return d.toDomain(), nil
}

func (s *Store) ListProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	return s.listProperties(ctx, q)
}

func (s *Store) ListRecentProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	return s.listProperties(ctx, q)
}

func (s *Store) listProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := s.c(colProperties).Find(ctx, propertyFilter(q), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Property{}
	for cur.Next(ctx) {
		var d propertyDoc
		if err := cur.Decode(&d); err != nil {
			observability.ObserveMalformed(colProperties)
			log.Warn().Err(err).Str("id", fmt.Sprint(cur.Current.Lookup("_id"))).Msg("skipping malformed property document")
			continue
		}
		out = append(out, d.toDomain())
	}
	return out, cur.Err()
}

// propertyFilter renders the pushdown part of q. Deleted listings are always
// excluded; a null or missing deletedAt both match.
func propertyFilter(q domain.PropertyQuery) bson.M {
	f := bson.M{"deletedAt": nil}
	if len(q.Types) > 0 {
		f["propertyType"] = bson.M{"$in": q.Types}
	}
	price := bson.M{}
	if q.PriceMin != nil {
		price["$gte"] = *q.PriceMin
	}
	if q.PriceMax != nil {
		price["$lte"] = *q.PriceMax
	}
	if len(price) > 0 {
		f["price"] = price
	}
	if len(q.Bedrooms) > 0 {
		f["bedrooms"] = bson.M{"$in": q.Bedrooms}
	}
	if len(q.Bathrooms) > 0 {
		f["bathrooms"] = bson.M{"$in": q.Bathrooms}
	}
	if q.MaxDistance != nil {
		f["distance"] = bson.M{"$lte": *q.MaxDistance}
	}
	if q.LandlordID != nil {
		f["landlordId"] = *q.LandlordID
	}
	return f
}
