package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// preferenceRepo implements PreferenceRepo on the preferences table.
type preferenceRepo struct {
	db *sql.DB
}

func (r *preferenceRepo) Get(ctx context.Context, key string) (string, bool, error) {
	query, args := builder.Select("value").
		From(builder.Table(tablePreferences)).
		Where(entsql.EQ("key", key)).
		Query()

	var value string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %q: %w", key, err)
	}
	return value, true, nil
}

func (r *preferenceRepo) Set(ctx context.Context, key, value string) error {
	query, args := builder.Insert(tablePreferences).
		Columns("key", "value", "updated_at").
		Values(key, value, toMillis(time.Now())).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set preference %q: %w", key, err)
	}
	return nil
}

func (r *preferenceRepo) Delete(ctx context.Context, key string) error {
	query, args := builder.Delete(tablePreferences).
		Where(entsql.EQ("key", key)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete preference %q: %w", key, err)
	}
	return nil
}
