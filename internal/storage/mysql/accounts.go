package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"campus_rentals/internal/adapters/observability"
	"campus_rentals/internal/domain"
)

func (r *Repo) CreateSavedSearch(ctx context.Context, s domain.SavedSearch) error {
	filters, err := valJSON(s.Filters)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, insertSavedSearchSQL,
		s.ID, s.UserID, s.Name, filters, s.EmailNotifications, string(s.NotificationFrequency),
		valTime(s.LastNotified), s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	return err
}

func (r *Repo) UpdateSavedSearch(ctx context.Context, s domain.SavedSearch) error {
	filters, err := valJSON(s.Filters)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, updateSavedSearchSQL,
		s.Name, filters, s.EmailNotifications, string(s.NotificationFrequency), s.UpdatedAt.UTC(), s.ID,
	)
	return err
}

func (r *Repo) DeleteSavedSearch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
	return err
}

func (r *Repo) SetLastNotified(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, setLastNotifiedSQL, at.UTC(), id)
	return err
}

func (r *Repo) GetSavedSearch(ctx context.Context, id string) (domain.SavedSearch, error) {
	s, err := scanSavedSearch(r.db.QueryRowContext(ctx, getSavedSearchSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SavedSearch{}, domain.ErrNotFound
	}
	return s, err
}

func (r *Repo) ListSavedSearches(ctx context.Context, userID string) ([]domain.SavedSearch, error) {
	return r.querySavedSearches(ctx, listSavedSearchesSQL, userID)
}

func (r *Repo) ListActiveSavedSearches(ctx context.Context) ([]domain.SavedSearch, error) {
	return r.querySavedSearches(ctx, listActiveSavedSearchesSQL)
}

func (r *Repo) querySavedSearches(ctx context.Context, stmt string, args ...any) ([]domain.SavedSearch, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SavedSearch{}
	for rows.Next() {
		s, err := scanSavedSearch(rows)
		if errors.Is(err, domain.ErrMalformed) {
			observability.ObserveMalformed("saved_searches")
			log.Warn().Err(err).Msg("skipping malformed saved search")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSavedSearch(row rowScanner) (domain.SavedSearch, error) {
	var s domain.SavedSearch
	var filtersJSON []byte
	var freq string
	var last sql.NullTime
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Name, &filtersJSON, &s.EmailNotifications, &freq,
		&last, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return domain.SavedSearch{}, err
	}
	s.NotificationFrequency = domain.Frequency(freq)
	if last.Valid {
		t := last.Time
		s.LastNotified = &t
	}
	if len(filtersJSON) > 0 {
		var raw any
		if err := json.Unmarshal(filtersJSON, &raw); err != nil {
			return domain.SavedSearch{}, fmt.Errorf("%w: saved search %s filters: %v", domain.ErrMalformed, s.ID, err)
		}
		f, err := domain.DecodeSearchFilters(raw)
		if err != nil {
			return domain.SavedSearch{}, fmt.Errorf("saved search %s: %w", s.ID, err)
		}
		s.Filters = f
	}
	return s, nil
}

func (r *Repo) UpsertUser(ctx context.Context, u domain.UserContact) error {
	_, err := r.db.ExecContext(ctx, upsertUserSQL, u.ID, u.Email, u.DisplayName)
	return err
}

func (r *Repo) GetUserContact(ctx context.Context, id string) (domain.UserContact, error) {
	var u domain.UserContact
	err := r.db.QueryRowContext(ctx, getUserSQL, id).Scan(&u.ID, &u.Email, &u.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserContact{}, domain.ErrNotFound
	}
	return u, err
}

func (r *Repo) AddFavorite(ctx context.Context, f domain.Favorite) error {
	_, err := r.db.ExecContext(ctx, addFavoriteSQL, f.UserID, f.PropertyID, f.CreatedAt.UTC())
	return err
}

func (r *Repo) RemoveFavorite(ctx context.Context, userID, propertyID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND property_id = ?`, userID, propertyID)
	return err
}

func (r *Repo) IsFavorite(ctx context.Context, userID, propertyID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND property_id = ?`, userID, propertyID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *Repo) ListFavorites(ctx context.Context, userID string) ([]domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, property_id, created_at FROM favorites WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Favorite{}
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.UserID, &f.PropertyID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repo) CreateViewing(ctx context.Context, v domain.Viewing) error {
	_, err := r.db.ExecContext(ctx, insertViewingSQL,
		v.ID, v.PropertyID, v.PropertyTitle, v.LandlordID, v.UserID, v.UserEmail, v.UserName,
		v.Date, v.Time, valStr(v.Notes), string(v.Status), v.CreatedAt.UTC(), v.UpdatedAt.UTC(),
	)
	return err
}

func (r *Repo) GetViewing(ctx context.Context, id string) (domain.Viewing, error) {
	v, err := scanViewing(r.db.QueryRowContext(ctx, "SELECT"+viewingColumns+" FROM viewings WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Viewing{}, domain.ErrNotFound
	}
	return v, err
}

func (r *Repo) ListViewingsByUser(ctx context.Context, userID string) ([]domain.Viewing, error) {
	return r.queryViewings(ctx, "user_id", userID)
}

func (r *Repo) ListViewingsByLandlord(ctx context.Context, landlordID string) ([]domain.Viewing, error) {
	return r.queryViewings(ctx, "landlord_id", landlordID)
}

// col is always a constant from this package.
func (r *Repo) queryViewings(ctx context.Context, col, id string) ([]domain.Viewing, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+viewingColumns+" FROM viewings WHERE "+col+" = ? ORDER BY created_at DESC, id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Viewing{}
	for rows.Next() {
		v, err := scanViewing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) SetViewingStatus(ctx context.Context, id string, st domain.ViewingStatus, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE viewings SET status = ?, updated_at = ? WHERE id = ?`, string(st), at.UTC(), id)
	return err
}

func scanViewing(row rowScanner) (domain.Viewing, error) {
	var v domain.Viewing
	var notes sql.NullString
	var status string
	if err := row.Scan(
		&v.ID, &v.PropertyID, &v.PropertyTitle, &v.LandlordID, &v.UserID, &v.UserEmail, &v.UserName,
		&v.Date, &v.Time, &notes, &status, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return domain.Viewing{}, err
	}
	v.Status = domain.ViewingStatus(status)
	if notes.Valid {
		n := notes.String
		v.Notes = &n
	}
	return v, nil
}
