package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campus_rentals/internal/domain"
)

const (
	colReviews   = "reviews"
	colInquiries = "inquiries"
	colMessages  = "messages"
)

// findAll decodes every document matching filter, in sort order.
func findAll[D any, T any](ctx context.Context, c *driver.Collection, filter bson.M, sort bson.D, conv func(D) T) ([]T, error) {
	cur, err := c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		out = append(out, conv(d))
	}
	return out, nil
}

func matched(res *driver.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

// ---- reviews ----

type reviewDoc struct {
	ID         string    `bson:"_id"`
	PropertyID string    `bson:"propertyId"`
	UserID     string    `bson:"userId"`
	UserName   string    `bson:"userName"`
	Rating     int       `bson:"rating"`
	Comment    string    `bson:"comment"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func (d reviewDoc) toDomain() domain.Review {
	return domain.Review{
		ID: d.ID, PropertyID: d.PropertyID, UserID: d.UserID, UserName: d.UserName,
		Rating: d.Rating, Comment: d.Comment, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func (s *Store) CreateReview(ctx context.Context, r domain.Review) error {
	_, err := s.c(colReviews).InsertOne(ctx, reviewDoc{
		ID: r.ID, PropertyID: r.PropertyID, UserID: r.UserID, UserName: r.UserName,
		Rating: r.Rating, Comment: r.Comment, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC(),
	})
	return err
}

func (s *Store) UpdateReview(ctx context.Context, r domain.Review) error {
	return matched(s.c(colReviews).UpdateOne(ctx, bson.M{"_id": r.ID}, bson.M{"$set": bson.M{
		"rating": r.Rating, "comment": r.Comment, "updatedAt": r.UpdatedAt.UTC(),
	}}))
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	res, err := s.c(colReviews).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetReview(ctx context.Context, id string) (domain.Review, error) {
	var d reviewDoc
	if err := s.c(colReviews).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.Review{}, notFound(err)
	}
	return d.toDomain(), nil
}

func (s *Store) ListReviews(ctx context.Context, propertyID string) ([]domain.Review, error) {
	return findAll(ctx, s.c(colReviews), bson.M{"propertyId": propertyID}, newestFirst, reviewDoc.toDomain)
}

// ---- inquiries ----

type inquiryDoc struct {
	ID            string     `bson:"_id"`
	PropertyID    string     `bson:"propertyId"`
	PropertyTitle string     `bson:"propertyTitle"`
	LandlordID    string     `bson:"landlordId"`
	TenantID      string     `bson:"tenantId"`
	TenantName    string     `bson:"tenantName"`
	TenantEmail   string     `bson:"tenantEmail"`
	TenantPhone   *string    `bson:"tenantPhone,omitempty"`
	Message       string     `bson:"message"`
	Status        string     `bson:"status"`
	Response      *string    `bson:"response,omitempty"`
	ResponseAt    *time.Time `bson:"responseAt,omitempty"`
	CreatedAt     time.Time  `bson:"createdAt"`
	UpdatedAt     time.Time  `bson:"updatedAt"`
}

func (d inquiryDoc) toDomain() domain.Inquiry {
	return domain.Inquiry{
		ID: d.ID, PropertyID: d.PropertyID, PropertyTitle: d.PropertyTitle, LandlordID: d.LandlordID,
		TenantID: d.TenantID, TenantName: d.TenantName, TenantEmail: d.TenantEmail, TenantPhone: d.TenantPhone,
		Message: d.Message, Status: domain.InquiryStatus(d.Status), Response: d.Response, ResponseAt: d.ResponseAt,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *Store) CreateInquiry(ctx context.Context, q domain.Inquiry) error {
	_, err := s.c(colInquiries).InsertOne(ctx, inquiryDoc{
		ID: q.ID, PropertyID: q.PropertyID, PropertyTitle: q.PropertyTitle, LandlordID: q.LandlordID,
		TenantID: q.TenantID, TenantName: q.TenantName, TenantEmail: q.TenantEmail, TenantPhone: q.TenantPhone,
		Message: q.Message, Status: string(q.Status), Response: q.Response, ResponseAt: utcPtr(q.ResponseAt),
		CreatedAt: q.CreatedAt.UTC(), UpdatedAt: q.UpdatedAt.UTC(),
	})
	return err
}

func (s *Store) GetInquiry(ctx context.Context, id string) (domain.Inquiry, error) {
	var d inquiryDoc
	if err := s.c(colInquiries).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.Inquiry{}, notFound(err)
	}
	return d.toDomain(), nil
}

func (s *Store) ListInquiriesByTenant(ctx context.Context, tenantID string) ([]domain.Inquiry, error) {
	return findAll(ctx, s.c(colInquiries), bson.M{"tenantId": tenantID}, newestFirst, inquiryDoc.toDomain)
}

func (s *Store) ListInquiriesByLandlord(ctx context.Context, landlordID string, st domain.InquiryStatus) ([]domain.Inquiry, error) {
	filter := bson.M{"landlordId": landlordID}
	if st != "" {
		filter["status"] = string(st)
	}
	return findAll(ctx, s.c(colInquiries), filter, newestFirst, inquiryDoc.toDomain)
}

func (s *Store) UpdateInquiry(ctx context.Context, q domain.Inquiry) error {
	set := bson.M{"status": string(q.Status), "updatedAt": q.UpdatedAt.UTC()}
	if q.Response != nil {
		set["response"] = *q.Response
	}
	if q.ResponseAt != nil {
		set["responseAt"] = q.ResponseAt.UTC()
	}
	return matched(s.c(colInquiries).UpdateOne(ctx, bson.M{"_id": q.ID}, bson.M{"$set": set}))
}

// ---- messages ----

type messageDoc struct {
	ID         string `bson:"_id"`
	PropertyID string `bson:"propertyId"`
	SenderID   string `bson:"senderId"`
	ReceiverID string `bson:"receiverId"`
	// Participants backs the per-user inbox index.
	Participants []string  `bson:"participants"`
	Content      string    `bson:"content"`
	Read         bool      `bson:"read"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d messageDoc) toDomain() domain.Message {
	return domain.Message{
		ID: d.ID, PropertyID: d.PropertyID, SenderID: d.SenderID, ReceiverID: d.ReceiverID,
		Content: d.Content, Read: d.Read, CreatedAt: d.CreatedAt,
	}
}

func (s *Store) CreateMessage(ctx context.Context, m domain.Message) error {
	_, err := s.c(colMessages).InsertOne(ctx, messageDoc{
		ID: m.ID, PropertyID: m.PropertyID, SenderID: m.SenderID, ReceiverID: m.ReceiverID,
		Participants: []string{m.SenderID, m.ReceiverID},
		Content:      m.Content, Read: m.Read, CreatedAt: m.CreatedAt.UTC(),
	})
	return err
}

func (s *Store) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	var d messageDoc
	if err := s.c(colMessages).FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return domain.Message{}, notFound(err)
	}
	return d.toDomain(), nil
}

func (s *Store) ListConversation(ctx context.Context, propertyID, a, b string) ([]domain.Message, error) {
	filter := bson.M{
		"propertyId":   propertyID,
		"participants": bson.M{"$all": bson.A{a, b}},
	}
	return findAll(ctx, s.c(colMessages), filter, bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}, messageDoc.toDomain)
}

func (s *Store) ListMessagesForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	return findAll(ctx, s.c(colMessages), bson.M{"participants": userID}, newestFirst, messageDoc.toDomain)
}

func (s *Store) MarkMessageRead(ctx context.Context, id string) error {
	return matched(s.c(colMessages).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}}))
}
