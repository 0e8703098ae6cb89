package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	got   []*schema.Message
	reply string
	err   error
}

func (f *fakeModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func TestSuggestFillsPrompt(t *testing.T) {
	m := &fakeModel{reply: "  Looks like spam; resolve.  "}
	a := New(m)

	out, err := a.Suggest(context.Background(), ReportInput{
		ReportType:  "thread",
		Reason:      "spam",
		TargetTitle: "Cheap gold",
		TargetBody:  strings.Repeat("buy ", 1000),
	})
	require.NoError(t, err)
	assert.Equal(t, "Looks like spam; resolve.", out)

	require.Len(t, m.got, 2)
	assert.Equal(t, schema.System, m.got[0].Role)
	user := m.got[1].Content
	assert.Contains(t, user, "Reason: spam")
	assert.Contains(t, user, "Reporter note: (none)")
	assert.Contains(t, user, "Reported title: Cheap gold")
	assert.True(t, strings.HasSuffix(user, "…"))
}

func TestSuggestPropagatesModelError(t *testing.T) {
	a := New(&fakeModel{err: errors.New("quota")})
	_, err := a.Suggest(context.Background(), ReportInput{ReportType: "post", Reason: "other"})
	assert.ErrorContains(t, err, "quota")
}
