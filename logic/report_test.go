package logic

import (
	"context"
	"errors"
	"testing"

	"gameforum/models"
	"gameforum/pkg/assistant"
	"gameforum/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threadReport(id models.ThreadID) *models.ParamReport {
	return &models.ParamReport{ReportType: models.ReportTypeThread, Reason: "spam", ThreadID: &id}
}

func TestSubmitReportRefusesDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	th := f.thread(t, alice, f.category(t, "General"), "t")

	r, err := f.svc.SubmitReport(ctx, bob, threadReport(th.ID))
	require.NoError(t, err)
	assert.Equal(t, models.ReportPending, r.Status)
	require.NotNil(t, r.ReportedUserID)
	assert.Equal(t, alice.ProfileID, *r.ReportedUserID, "the content owner is recorded")

	exists, err := f.svc.CheckExistingReport(ctx, bob, threadReport(th.ID))
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = f.svc.CheckExistingReport(ctx, alice, threadReport(th.ID))
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = f.svc.SubmitReport(ctx, bob, threadReport(th.ID))
	assert.ErrorIs(t, err, errorx.ErrReportExists)
}

func TestSubmitReportValidatesTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	th := f.thread(t, alice, f.category(t, "General"), "t")
	post := f.post(t, alice, th.ID, "reply")

	both := threadReport(th.ID)
	both.PostID = &post.ID
	_, err := f.svc.SubmitReport(ctx, bob, both)
	assert.ErrorIs(t, err, errorx.ErrInvalidParam)

	wrong := &models.ParamReport{ReportType: models.ReportTypePost, Reason: "spam", ThreadID: &th.ID}
	_, err = f.svc.SubmitReport(ctx, bob, wrong)
	assert.ErrorIs(t, err, errorx.ErrInvalidParam)

	reason := threadReport(th.ID)
	reason.Reason = "boring"
	_, err = f.svc.SubmitReport(ctx, bob, reason)
	assert.ErrorIs(t, err, errorx.ErrInvalidParam)

	_, err = f.svc.SubmitReport(ctx, bob, threadReport(models.ThreadID(3)))
	assert.ErrorIs(t, err, errorx.ErrNotFound)

	r, err := f.svc.SubmitReport(ctx, bob, &models.ParamReport{ReportType: models.ReportTypePost, Reason: "harassment", PostID: &post.ID})
	require.NoError(t, err)
	assert.Equal(t, alice.ProfileID, *r.ReportedUserID)

	profile := alice.ProfileID
	_, err = f.svc.SubmitReport(ctx, bob, &models.ParamReport{ReportType: models.ReportTypeProfile, Reason: "other", ReportedUserID: &profile})
	assert.NoError(t, err)
}

func TestReportTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	mod := f.promote(t, f.register(t, "mod"), models.RoleModerator)
	th := f.thread(t, alice, f.category(t, "General"), "Spammy")

	r, err := f.svc.SubmitReport(ctx, bob, threadReport(th.ID))
	require.NoError(t, err)

	_, err = f.svc.ResolveReport(ctx, bob, r.ID)
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	views, err := f.svc.ListReports(ctx, mod, &models.ParamReportList{Status: models.ReportPending})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "bob", views[0].ReporterName)
	assert.Equal(t, "Spammy", views[0].TargetTitle)

	done, err := f.svc.ResolveReport(ctx, mod, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolved, done.Status)
	require.NotNil(t, done.ResolvedBy)
	assert.Equal(t, mod.ProfileID, *done.ResolvedBy)

	_, err = f.svc.DismissReport(ctx, mod, r.ID)
	assert.ErrorIs(t, err, errorx.ErrInvalidTransition)
	_, err = f.svc.ResolveReport(ctx, mod, r.ID)
	assert.ErrorIs(t, err, errorx.ErrInvalidTransition)
	_, err = f.svc.ResolveReport(ctx, mod, models.ReportID(11))
	assert.ErrorIs(t, err, errorx.ErrNotFound)

	views, err = f.svc.ListReports(ctx, mod, &models.ParamReportList{Status: models.ReportPending})
	require.NoError(t, err)
	assert.Empty(t, views)

	// Once resolved, the same reporter may flag the thread again.
	_, err = f.svc.SubmitReport(ctx, bob, threadReport(th.ID))
	assert.NoError(t, err)
}

type fakeAdvisor struct {
	got assistant.ReportInput
	err error
}

func (a *fakeAdvisor) Suggest(_ context.Context, in assistant.ReportInput) (string, error) {
	a.got = in
	if a.err != nil {
		return "", a.err
	}
	return "Resolve: obvious spam.", nil
}

func TestSuggestReportAction(t *testing.T) {
	adv := &fakeAdvisor{}
	f := newFixture(t, func(d *Deps) { d.Advice = adv })
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	admin := f.promote(t, f.register(t, "boss"), models.RoleAdmin)
	th := f.thread(t, alice, f.category(t, "General"), "Cheap gold")
	r, err := f.svc.SubmitReport(ctx, bob, threadReport(th.ID))
	require.NoError(t, err)

	hint, err := f.svc.SuggestReportAction(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Resolve: obvious spam.", hint)
	assert.Equal(t, "Cheap gold", adv.got.TargetTitle)
	assert.Equal(t, "spam", adv.got.Reason)

	adv.err = errors.New("quota")
	_, err = f.svc.SuggestReportAction(ctx, admin, r.ID)
	assert.ErrorIs(t, err, errorx.ErrServerBusy)

	f.svc.Advice = nil
	_, err = f.svc.SuggestReportAction(ctx, admin, r.ID)
	assert.ErrorIs(t, err, errorx.ErrAssistantDisabled)
}

func TestToggleFlags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	mod := f.promote(t, f.register(t, "mod"), models.RoleModerator)
	th := f.thread(t, alice, f.category(t, "General"), "t")

	_, err := f.svc.TogglePin(ctx, alice, th.ID)
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	flags, err := f.svc.TogglePin(ctx, mod, th.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationFlags{ThreadID: th.ID, IsPinned: true}, *flags)

	flags, err = f.svc.ToggleLock(ctx, mod, th.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ModerationFlags{ThreadID: th.ID, IsPinned: true, IsLocked: true}, *flags)

	flags, err = f.svc.TogglePin(ctx, mod, th.ID)
	require.NoError(t, err)
	assert.False(t, flags.IsPinned)
	assert.True(t, flags.IsLocked)

	_, err = f.svc.ToggleLock(ctx, mod, models.ThreadID(5))
	assert.ErrorIs(t, err, errorx.ErrNotFound)
}

func TestToggleFlagWriteFailureKeepsPreviousState(t *testing.T) {
	fc := &faultyClient{fails: map[string]bool{"update threads": true}}
	f := newFixture(t, withFaults(fc))
	ctx := context.Background()
	alice := f.register(t, "alice")
	mod := f.promote(t, f.register(t, "mod"), models.RoleModerator)
	th := f.thread(t, alice, f.category(t, "General"), "t")

	fc.armed.Store(true)
	flags, err := f.svc.TogglePin(ctx, mod, th.ID)
	assert.ErrorIs(t, err, errorx.ErrServerBusy)
	require.NotNil(t, flags)
	assert.Equal(t, models.ModerationFlags{ThreadID: th.ID}, *flags)

	fc.armed.Store(false)
	flags, err = f.svc.TogglePin(ctx, mod, th.ID)
	require.NoError(t, err)
	assert.True(t, flags.IsPinned)
}
