package labsurvey

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/WasedaCreators/seiseki-viewer/lib/testutil"
	"github.com/WasedaCreators/seiseki-viewer/lib/timezone"
	"github.com/WasedaCreators/seiseki-viewer/services/labsurvey/db"
)

const surveyPage = `<html><body>
<form>
  <div class="option"><input type="radio" name="answer" id="c1"><label for="c1"> 制御工学研究室 </label></div>
  <div class="option"><input type="radio" name="answer" id="c2"><label for="c2">ロボティクス研究室</label></div>
  <div class="option"><input type="radio" name="answer" id="c3"><label for="c3"></label></div>
</form>
</body></html>`

func TestParseChoices(t *testing.T) {
	choices := ParseChoices(surveyPage)
	require.Equal(t, []string{"制御工学研究室", "ロボティクス研究室"}, choices)
}

func TestParseChoicesEmpty(t *testing.T) {
	require.Empty(t, ParseChoices("<html><body><p>no survey</p></body></html>"))
}

func TestLooksLikeLogin(t *testing.T) {
	require.True(t, looksLikeLogin(`<input name="loginfmt">`))
	require.True(t, looksLikeLogin(`redirecting to login.microsoftonline.com`))
	require.False(t, looksLikeLogin(surveyPage))
}

func TestSubmitDisabled(t *testing.T) {
	// a nil queue and a queue without a target url both refuse the
	// handoff, leaving the session with the caller
	var nilQueue *Queue
	require.False(t, nilQueue.Submit(Handoff{}))

	disabled := &Queue{}
	require.False(t, disabled.Submit(Handoff{}))
}

func TestSnapshotStorage(t *testing.T) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "labsurvey",
		DbSchema: db.Schema,
	})
	defer cleanup()

	ctx := context.Background()
	qry := db.New(result.DB)

	id, err := qry.CreateSnapshot(ctx, db.CreateSnapshotParams{
		Url:       "https://example.invalid/survey",
		FetchedAt: timezone.Timestamp(timezone.Now()),
		Html:      surveyPage,
	})
	require.NoError(t, err)

	for _, label := range ParseChoices(surveyPage) {
		err = qry.CreateChoice(ctx, db.CreateChoiceParams{SnapshotID: id, Label: label})
		require.NoError(t, err)
	}

	latest, err := qry.GetLatestSnapshotID(ctx)
	require.NoError(t, err)
	require.Equal(t, id, latest)

	labels, err := qry.GetChoices(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"制御工学研究室", "ロボティクス研究室"}, labels)
}
