package plandb

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// SaveDataset stores a dataset's canonical text and returns its id.
func (c *Client) SaveDataset(ctx context.Context, d Dataset) (int64, error) {
	if d.CreatedAt == 0 {
		d.CreatedAt = time.Now().UnixMilli()
	}
	res, err := c.DB.ExecContext(ctx,
		`INSERT INTO datasets (kind, name, source, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.Kind, d.Name, d.Source, d.Payload, d.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error saving dataset: %w", err)
	}
	return res.LastInsertId()
}

// LatestDataset returns the most recently stored dataset of the given kind,
// payload included. sql.ErrNoRows is returned when none has been stored.
func (c *Client) LatestDataset(ctx context.Context, kind string) (*Dataset, error) {
	row := c.DB.QueryRowContext(ctx, `
		SELECT id, kind, name, source, payload, created_at
		FROM datasets
		WHERE kind = ?
		ORDER BY id DESC
		LIMIT 1`, kind)

	var d Dataset
	err := row.Scan(&d.ID, &d.Kind, &d.Name, &d.Source, &d.Payload, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDatasets returns stored dataset metadata without payloads, newest
// first. An empty kind lists every kind.
func (c *Client) ListDatasets(ctx context.Context, kind string, limit int) ([]Dataset, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	query := `SELECT id, kind, name, source, created_at FROM datasets`
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

	var out []Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.ID, &d.Kind, &d.Name, &d.Source, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
