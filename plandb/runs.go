package plandb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SaveRun records an execution and returns its id. Callers set Status;
// CreatedAt defaults to now.
func (c *Client) SaveRun(ctx context.Context, r Run) (int64, error) {
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().UnixMilli()
	}
	res, err := c.DB.ExecContext(ctx,
		`INSERT INTO runs (kind, dataset_id, params, result, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Kind, r.DatasetID, string(r.Params), string(r.Result), r.Status, r.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error saving run: %w", err)
	}
	return res.LastInsertId()
}

// GetRun fetches one run by id; sql.ErrNoRows when absent.
func (c *Client) GetRun(ctx context.Context, id int64) (*Run, error) {
	row := c.DB.QueryRowContext(ctx, `
		SELECT id, kind, dataset_id, params, result, status, created_at
		FROM runs
		WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns recorded runs newest first. An empty kind lists every
// kind; out-of-range limits fall back to the default.
func (c *Client) ListRuns(ctx context.Context, kind string, limit int) ([]Run, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	query := `SELECT id, kind, dataset_id, params, result, status, created_at FROM runs`
	args := []interface{}{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		r         Run
		datasetID sql.NullInt64
		params    []byte
		result    []byte
	)
	err := row.Scan(&r.ID, &r.Kind, &datasetID, &params, &result, &r.Status, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if datasetID.Valid {
		r.DatasetID = &datasetID.Int64
	}
	// Empty stored payloads stay nil so the run still marshals as JSON.
	if len(params) > 0 {
		r.Params = json.RawMessage(params)
	}
	if len(result) > 0 {
		r.Result = json.RawMessage(result)
	}
	return &r, nil
}
