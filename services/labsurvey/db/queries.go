package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type CreateSnapshotParams struct {
	Url       string
	FetchedAt string
	Html      string
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
INSERT INTO lab_snapshots (url, fetched_at, html) VALUES (?, ?, ?)
`, arg.Url, arg.FetchedAt, arg.Html)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type CreateChoiceParams struct {
	SnapshotID int64
	Label      string
}

func (q *Queries) CreateChoice(ctx context.Context, arg CreateChoiceParams) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO lab_choices (snapshot_id, label) VALUES (?, ?)
`, arg.SnapshotID, arg.Label)
	return err
}

func (q *Queries) GetChoices(ctx context.Context, snapshotID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT label FROM lab_choices WHERE snapshot_id = ? ORDER BY rowid
`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		err = rows.Scan(&label)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (q *Queries) GetLatestSnapshotID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, `
SELECT id FROM lab_snapshots ORDER BY id DESC LIMIT 1
`).Scan(&id)
	return id, err
}
