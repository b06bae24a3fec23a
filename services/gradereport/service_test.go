package gradereport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WasedaCreators/seiseki-viewer/lib/testutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/timezone"
	"github.com/WasedaCreators/seiseki-viewer/services/gradereport/db"
)

func TestUpsertGPA(t *testing.T) {
	service, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "gradereport",
		DbSchema: db.Schema,
	})
	defer cleanup()

	ctx := context.Background()
	qry := db.New(service.DB)
	key := HashID("1X23B044")

	err := qry.UpsertGPA(ctx, db.UpsertGPAParams{
		StudentID: key,
		AvgGpa:    7.5,
		Timestamp: timezone.Timestamp(timezone.Now()),
	})
	require.NoError(t, err)

	// same student again, the row is replaced, not duplicated
	err = qry.UpsertGPA(ctx, db.UpsertGPAParams{
		StudentID: key,
		AvgGpa:    8.0,
		Timestamp: timezone.Timestamp(timezone.Now()),
	})
	require.NoError(t, err)

	rows, err := qry.GetAllGPA(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, key, rows[0].StudentID)
	require.InDelta(t, 8.0, rows[0].AvgGpa, 1e-9)
}

func TestUpdateStudentID(t *testing.T) {
	service, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "gradereport",
		DbSchema: db.Schema,
	})
	defer cleanup()

	ctx := context.Background()
	qry := db.New(service.DB)

	err := qry.UpsertGPA(ctx, db.UpsertGPAParams{
		StudentID: "1X23B044",
		AvgGpa:    7.0,
		Timestamp: timezone.Timestamp(timezone.Now()),
	})
	require.NoError(t, err)

	err = qry.UpdateStudentID(ctx, "1X23B044", HashID("1X23B044"))
	require.NoError(t, err)

	row, err := qry.GetGPA(ctx, HashID("1X23B044"))
	require.NoError(t, err)
	require.InDelta(t, 7.0, row.AvgGpa, 1e-9)
}
