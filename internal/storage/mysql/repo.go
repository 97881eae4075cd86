package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"campus_rentals/internal/adapters/observability"
	"campus_rentals/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valTime(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}
func valJSON(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Open connects using dsn and verifies the connection. The DSN should carry
// parseTime=true and loc=UTC.
func Open(ctx context.Context, dsn string) (*Repo, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return New(db), nil
}

func (r *Repo) Close(ctx context.Context) error { return r.db.Close() }

var _ domain.Store = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repo) CreateProperty(ctx context.Context, p domain.Property) error {
	args, err := propertyArgs(p)
	if err != nil {
		return err
	}
	args = append([]any{p.ID}, args...)
	args = append(args, p.LandlordID, p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	_, err = r.db.ExecContext(ctx, insertPropertySQL, args...)
	return err
}

func (r *Repo) UpdateProperty(ctx context.Context, p domain.Property) error {
	args, err := propertyArgs(p)
	if err != nil {
		return err
	}
	args = append(args, p.UpdatedAt.UTC(), p.ID)
	_, err = r.db.ExecContext(ctx, updatePropertySQL, args...)
	return err
}

// propertyArgs returns the mutable columns in table order.
func propertyArgs(p domain.Property) ([]any, error) {
	amen, err := valJSON(p.Amenities)
	if err != nil {
		return nil, err
	}
	imgs, err := valJSON(p.Images)
	if err != nil {
		return nil, err
	}
	return []any{
		p.Title, p.Description, p.Price, p.Location, p.PropertyType,
		p.Bedrooms, p.Bathrooms, p.Area, p.Distance,
		amen, imgs,
		valStr(p.AvailableFrom), valStr(p.LeaseTerm), valF64(p.Deposit),
	}, nil
}

func (r *Repo) SoftDeleteProperty(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, softDeletePropertySQL, at.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, getPropertySQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, err
}

func (r *Repo) ListProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	return r.listProperties(ctx, q)
}

func (r *Repo) ListRecentProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	return r.listProperties(ctx, q)
}

func (r *Repo) listProperties(ctx context.Context, q domain.PropertyQuery) ([]domain.Property, error) {
	where, args := propertyWhere(q)
	stmt := "SELECT" + propertyColumns + "\nFROM properties\nWHERE " + where + "\nORDER BY created_at DESC, id"
	if q.Limit > 0 {
		stmt += "\nLIMIT ?"
		args = append(args, q.Limit)
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if errors.Is(err, domain.ErrMalformed) {
			observability.ObserveMalformed("properties")
			log.Warn().Err(err).Msg("skipping malformed property row")
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// propertyWhere renders the pushdown part of q. Deleted listings are always
// excluded.
func propertyWhere(q domain.PropertyQuery) (string, []any) {
	conds := []string{"deleted_at IS NULL"}
	var args []any
	in := func(col string, n int) string {
		return col + " IN (" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
	}
	if len(q.Types) > 0 {
		conds = append(conds, in("property_type", len(q.Types)))
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.PriceMin != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *q.PriceMin)
	}
	if q.PriceMax != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *q.PriceMax)
	}
	if len(q.Bedrooms) > 0 {
		conds = append(conds, in("bedrooms", len(q.Bedrooms)))
		for _, n := range q.Bedrooms {
			args = append(args, n)
		}
	}
	if len(q.Bathrooms) > 0 {
		conds = append(conds, in("bathrooms", len(q.Bathrooms)))
		for _, n := range q.Bathrooms {
			args = append(args, n)
		}
	}
	if q.MaxDistance != nil {
		conds = append(conds, "distance <= ?")
		args = append(args, *q.MaxDistance)
	}
	if q.LandlordID != nil {
		conds = append(conds, "landlord_id = ?")
		args = append(args, *q.LandlordID)
	}
	return strings.Join(conds, " AND "), args
}

func scanProperty(row rowScanner) (domain.Property, error) {
	var p domain.Property
	var amenitiesJSON, imagesJSON []byte
	var availableFrom, leaseTerm sql.NullString
	var deposit sql.NullFloat64
	if err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Location, &p.PropertyType,
		&p.Bedrooms, &p.Bathrooms, &p.Area, &p.Distance,
		&amenitiesJSON, &imagesJSON,
		&availableFrom, &leaseTerm, &deposit,
		&p.LandlordID, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return domain.Property{}, err
	}
	if len(amenitiesJSON) > 0 {
		if err := json.Unmarshal(amenitiesJSON, &p.Amenities); err != nil {
			return domain.Property{}, fmt.Errorf("%w: property %s amenities: %v", domain.ErrMalformed, p.ID, err)
		}
	}
	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &p.Images); err != nil {
			return domain.Property{}, fmt.Errorf("%w: property %s images: %v", domain.ErrMalformed, p.ID, err)
		}
	}
	if availableFrom.Valid {
		s := availableFrom.String
		p.AvailableFrom = &s
	}
	if leaseTerm.Valid {
		s := leaseTerm.String
		p.LeaseTerm = &s
	}
	if deposit.Valid {
		d := deposit.Float64
		p.Deposit = &d
	}
	return p, nil
}
