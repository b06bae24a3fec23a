package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WasedaCreators/seiseki-viewer/lib/testutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/timezone"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
)

func setup(t *testing.T) (*Service, *db.Queries, func()) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "admin",
		DbSchema: db.Schema,
	})

	qry := db.New(result.DB)
	err := qry.CreateUser(context.Background(), db.CreateUserParams{
		Username: "operator",
		Pw:       hashPassword("hunter2"),
	})
	require.NoError(t, err)

	return NewService(result.DB), qry, cleanup
}

func TestLogin(t *testing.T) {
	svc, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	token, err := svc.Login(ctx, "operator", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, svc.VerifyToken(ctx, token))
}

func TestLoginRejected(t *testing.T) {
	svc, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.Login(ctx, "operator", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "hunter2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	svc, _, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.False(t, svc.VerifyToken(ctx, ""))
	require.False(t, svc.VerifyToken(ctx, "made-up-token"))

	// older clients present the plain password as the token, its hash
	// matches the stored one
	require.True(t, svc.VerifyToken(ctx, "hunter2"))
}

func TestListUpdateDelete(t *testing.T) {
	svc, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	err := qry.UpsertGPA(ctx, db.UpsertGPAParams{
		StudentID: "somehash",
		AvgGpa:    7.0,
		Timestamp: timezone.Timestamp(timezone.Now()),
	})
	require.NoError(t, err)

	rows, err := svc.ListData(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	err = svc.UpdateGPA(ctx, "somehash", 8.5)
	require.NoError(t, err)
	row, err := qry.GetGPA(ctx, "somehash")
	require.NoError(t, err)
	require.InDelta(t, 8.5, row.AvgGpa, 1e-9)

	err = svc.UpdateGPA(ctx, "missing", 1.0)
	require.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteStudent(ctx, "somehash")
	require.NoError(t, err)
	err = svc.DeleteStudent(ctx, "somehash")
	require.ErrorIs(t, err, ErrNotFound)
}
