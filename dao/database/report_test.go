package database

import (
	"context"
	"testing"
	"time"

	"gameforum/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportLifecycle(t *testing.T) {
	db, q := newTestDB(t)
	ctx := context.Background()
	alice := seedProfile(t, q, "alice")
	bob := seedProfile(t, q, "bob")
	th := seedThread(t, q, bob, seedCategory(t, q, "General"), "T", time.Now().UTC())

	exists, err := PendingReportExists(ctx, q, alice.ID, models.ReportTypeThread, &th.ID, nil, nil)
	require.NoError(t, err)
	assert.False(t, exists)

	r := &models.Report{
		ID:             models.ReportID(newID()),
		ReporterID:     alice.ID,
		ReportType:     models.ReportTypeThread,
		Reason:         "spam",
		ThreadID:       &th.ID,
		ReportedUserID: &bob.ID,
		Status:         models.ReportPending,
	}
	require.NoError(t, InsertReport(ctx, q, r))

	exists, err = PendingReportExists(ctx, q, alice.ID, models.ReportTypeThread, &th.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, exists)

	// A profile report against the thread author is a different target.
	exists, err = PendingReportExists(ctx, q, alice.ID, models.ReportTypeProfile, nil, nil, &bob.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	pending, err := ListReports(ctx, q, models.ReportPending, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Reporter)
	assert.Equal(t, "alice", pending[0].Reporter.Username)

	now := time.Now().UTC()
	ok, err := TransitionReport(ctx, q, r.ID, models.ReportResolved, bob.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = TransitionReport(ctx, q, r.ID, models.ReportDismissed, bob.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := GetReport(ctx, q, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, got.Status)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, bob.ID, *got.ResolvedBy)

	stats, err := mustStats(t, db).AdminStats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalReports)
	assert.Zero(t, stats.PendingReports)
}
