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

type GpaRow struct {
	StudentID string
	AvgGpa    float64
	Timestamp string
}

type UpsertGPAParams struct {
	StudentID string
	AvgGpa    float64
	Timestamp string
}

func (q *Queries) UpsertGPA(ctx context.Context, arg UpsertGPAParams) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO gpadata (student_id, avg_gpa, timestamp)
VALUES (?, ?, ?)
ON CONFLICT (student_id)
DO UPDATE SET avg_gpa = excluded.avg_gpa, timestamp = excluded.timestamp
`, arg.StudentID, arg.AvgGpa, arg.Timestamp)
	return err
}

func (q *Queries) GetAllGPA(ctx context.Context) ([]GpaRow, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT student_id, avg_gpa, timestamp FROM gpadata ORDER BY timestamp DESC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GpaRow
	for rows.Next() {
		var row GpaRow
		err = rows.Scan(&row.StudentID, &row.AvgGpa, &row.Timestamp)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (q *Queries) GetGPA(ctx context.Context, studentID string) (GpaRow, error) {
	var row GpaRow
	err := q.db.QueryRowContext(ctx, `
SELECT student_id, avg_gpa, timestamp FROM gpadata WHERE student_id = ?
`, studentID).Scan(&row.StudentID, &row.AvgGpa, &row.Timestamp)
	return row, err
}

type UpdateGPAParams struct {
	StudentID string
	AvgGpa    float64
	Timestamp string
}

func (q *Queries) UpdateGPA(ctx context.Context, arg UpdateGPAParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
UPDATE gpadata SET avg_gpa = ?, timestamp = ? WHERE student_id = ?
`, arg.AvgGpa, arg.Timestamp, arg.StudentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateStudentID rekeys one row, used by the hash migration.
func (q *Queries) UpdateStudentID(ctx context.Context, oldID, newID string) error {
	_, err := q.db.ExecContext(ctx, `
UPDATE gpadata SET student_id = ? WHERE student_id = ?
`, newID, oldID)
	return err
}

func (q *Queries) DeleteGPA(ctx context.Context, studentID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `
DELETE FROM gpadata WHERE student_id = ?
`, studentID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) GetUserPassword(ctx context.Context, username string) (string, error) {
	var pw string
	err := q.db.QueryRowContext(ctx, `
SELECT pw FROM users WHERE username = ?
`, username).Scan(&pw)
	return pw, err
}

// FindPasswordHash reports whether any admin account has this password
// hash. Kept for tokens issued as bare password hashes by earlier
// deployments.
func (q *Queries) FindPasswordHash(ctx context.Context, hash string) (bool, error) {
	var one int
	err := q.db.QueryRowContext(ctx, `
SELECT 1 FROM users WHERE pw = ?
`, hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

type CreateUserParams struct {
	Username string
	Pw       string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, `
INSERT INTO users (username, pw) VALUES (?, ?)
`, arg.Username, arg.Pw)
	return err
}
