package mysql

import (
	"context"
	"database/sql"
	"errors"

	"campus_rentals/internal/domain"
)

// affected maps an update or delete that touched no row onto ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// queryAll scans every row of stmt with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (T, error), stmt string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) CreateReview(ctx context.Context, rv domain.Review) error {
	_, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.ID, rv.PropertyID, rv.UserID, rv.UserName, rv.Rating, rv.Comment, rv.CreatedAt.UTC(), rv.UpdatedAt.UTC(),
	)
	return err
}

// UpdateReview reports ErrNotFound only for a missing row; an update that
// changes nothing still matches since updated_at moves.
func (r *Repo) UpdateReview(ctx context.Context, rv domain.Review) error {
	return affected(r.db.ExecContext(ctx, updateReviewSQL, rv.Rating, rv.Comment, rv.UpdatedAt.UTC(), rv.ID))
}

func (r *Repo) DeleteReview(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id))
}

func (r *Repo) GetReview(ctx context.Context, id string) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, "SELECT"+reviewColumns+" FROM reviews WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Review{}, domain.ErrNotFound
	}
	return rv, err
}

func (r *Repo) ListReviews(ctx context.Context, propertyID string) ([]domain.Review, error) {
	return queryAll(ctx, r.db, scanReview, listReviewsSQL, propertyID)
}

func scanReview(row rowScanner) (domain.Review, error) {
	var rv domain.Review
	err := row.Scan(&rv.ID, &rv.PropertyID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}

func (r *Repo) CreateInquiry(ctx context.Context, q domain.Inquiry) error {
	_, err := r.db.ExecContext(ctx, insertInquirySQL,
		q.ID, q.PropertyID, q.PropertyTitle, q.LandlordID, q.TenantID, q.TenantName, q.TenantEmail,
		valStr(q.TenantPhone), q.Message, string(q.Status), valStr(q.Response), valTime(q.ResponseAt),
		q.CreatedAt.UTC(), q.UpdatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetInquiry(ctx context.Context, id string) (domain.Inquiry, error) {
	q, err := scanInquiry(r.db.QueryRowContext(ctx, "SELECT"+inquiryColumns+" FROM inquiries WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Inquiry{}, domain.ErrNotFound
	}
	return q, err
}

func (r *Repo) ListInquiriesByTenant(ctx context.Context, tenantID string) ([]domain.Inquiry, error) {
	return queryAll(ctx, r.db, scanInquiry,
		"SELECT"+inquiryColumns+" FROM inquiries WHERE tenant_id = ? ORDER BY created_at DESC, id", tenantID)
}

func (r *Repo) ListInquiriesByLandlord(ctx context.Context, landlordID string, st domain.InquiryStatus) ([]domain.Inquiry, error) {
	if st == "" {
		return queryAll(ctx, r.db, scanInquiry,
			"SELECT"+inquiryColumns+" FROM inquiries WHERE landlord_id = ? ORDER BY created_at DESC, id", landlordID)
	}
	return queryAll(ctx, r.db, scanInquiry,
		"SELECT"+inquiryColumns+" FROM inquiries WHERE landlord_id = ? AND status = ? ORDER BY created_at DESC, id",
		landlordID, string(st))
}

func (r *Repo) UpdateInquiry(ctx context.Context, q domain.Inquiry) error {
	return affected(r.db.ExecContext(ctx, updateInquirySQL,
		string(q.Status), valStr(q.Response), valTime(q.ResponseAt), q.UpdatedAt.UTC(), q.ID,
	))
}

func scanInquiry(row rowScanner) (domain.Inquiry, error) {
	var q domain.Inquiry
	var phone, resp sql.NullString
	var respAt sql.NullTime
	var status string
	if err := row.Scan(
		&q.ID, &q.PropertyID, &q.PropertyTitle, &q.LandlordID, &q.TenantID, &q.TenantName, &q.TenantEmail,
		&phone, &q.Message, &status, &resp, &respAt, &q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return domain.Inquiry{}, err
	}
	q.Status = domain.InquiryStatus(status)
	if phone.Valid {
		q.TenantPhone = &phone.String
	}
	if resp.Valid {
		q.Response = &resp.String
	}
	if respAt.Valid {
		q.ResponseAt = &respAt.Time
	}
	return q, nil
}

func (r *Repo) CreateMessage(ctx context.Context, m domain.Message) error {
	_, err := r.db.ExecContext(ctx, insertMessageSQL,
		m.ID, m.PropertyID, m.SenderID, m.ReceiverID, m.Content, m.Read, m.CreatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, "SELECT"+messageColumns+" FROM messages WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, domain.ErrNotFound
	}
	return m, err
}

func (r *Repo) ListConversation(ctx context.Context, propertyID, a, b string) ([]domain.Message, error) {
	return queryAll(ctx, r.db, scanMessage, listConversationSQL, propertyID, a, b, b, a)
}

func (r *Repo) ListMessagesForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	return queryAll(ctx, r.db, scanMessage, listMessagesForUserSQL, userID, userID)
}

// MarkMessageRead is idempotent; only a missing message is an error.
func (r *Repo) MarkMessageRead(ctx context.Context, id string) error {
	if _, err := r.GetMessage(ctx, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = ?`, id)
	return err
}

func scanMessage(row rowScanner) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(&m.ID, &m.PropertyID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt)
	return m, err
}
