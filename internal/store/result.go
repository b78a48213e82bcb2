package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var resultColumns = []string{
	"id", "sequence", "session_id", "created_at", "score", "max_score",
	"band_title", "style_tag", "answers", "complete",
}

// resultRepo implements ResultRepo.
type resultRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *resultRepo) Save(ctx context.Context, rec *ResultRecord) error {
	answers, err := encodeAnswers(rec.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	query, args := builder.Insert(tableResults).
		Columns(resultColumns[1:]...).
		Values(
			seqNum,
			rec.SessionID,
			toMillis(rec.Timestamp),
			rec.Score,
			rec.MaxScore,
			rec.BandTitle,
			rec.StyleTag,
			answers,
			rec.Complete,
		).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("result id: %w", err)
	}
	rec.ID = int(id)
	rec.Sequence = seqNum
	return nil
}

func (r *resultRepo) Latest(ctx context.Context) (*ResultRecord, error) {
	records, err := r.List(ctx, QueryOpts{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (r *resultRepo) List(ctx context.Context, opts QueryOpts) ([]ResultRecord, error) {
	sel := builder.Select(resultColumns...).
		From(builder.Table(tableResults)).
		OrderBy(entsql.Desc("sequence"))
	query, args := applyQueryOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var (
			rec     ResultRecord
			ts      int64
			answers string
		)
		err := rows.Scan(&rec.ID, &rec.Sequence, &rec.SessionID, &ts, &rec.Score, &rec.MaxScore,
			&rec.BandTitle, &rec.StyleTag, &answers, &rec.Complete)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec.Timestamp = fromMillis(ts)
		if rec.Answers, err = decodeAnswers(answers); err != nil {
			return nil, fmt.Errorf("result %d: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *resultRepo) Count(ctx context.Context) (int, error) {
	query, args := builder.Select(entsql.Count("*")).
		From(builder.Table(tableResults)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

func (r *resultRepo) Prune(ctx context.Context, keep int) error {
	del := builder.Delete(tableResults)
	if keep > 0 {
		// The sequence of the oldest result that survives.
		query, args := builder.Select("sequence").
			From(builder.Table(tableResults)).
			OrderBy(entsql.Desc("sequence")).
			Offset(keep - 1).
			Limit(1).
			Query()

		var threshold int64
		err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
		if errors.Is(err, sql.ErrNoRows) {
			return nil // fewer than keep results exist
		}
		if err != nil {
			return fmt.Errorf("query results for prune: %w", err)
		}
		del = del.Where(entsql.LT("sequence", threshold))
	}

	query, args := del.Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune results: %w", err)
	}
	return nil
}

func encodeAnswers(answers map[int]int) (string, error) {
	m := make(map[string]int, len(answers))
	for id, v := range answers {
		m[strconv.Itoa(id)] = v
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeAnswers(s string) (map[int]int, error) {
	var m map[string]int
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	out := make(map[int]int, len(m))
	for k, v := range m {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("answer key %q: %w", k, err)
		}
		out[id] = v
	}
	return out, nil
}
