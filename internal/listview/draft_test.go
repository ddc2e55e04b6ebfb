package listview

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"affiliate-admin/internal/domain"
)

func TestDraft_EditAndSubmit(t *testing.T) {
	src := &fakeSource{items: seedRows(2)}
	v := newView(src, Optimistic)
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	d, err := v.Edit(ctx, "u01")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "User 01", "email": "u01@x.io"}, d.Fields())

	var ve *domain.ValidationError
	assert.ErrorAs(t, d.Set("status", "inactive"), &ve)
	require.NoError(t, d.Set("name", "Draft Name"))

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u01","fields":{"name":"Draft Name","email":"u01@x.io"}}`, string(raw))

	require.NoError(t, v.Submit(ctx, d))
	got, _ := v.Find("u01")
	assert.Equal(t, "Draft Name", got.Name)
}

func TestDraft_EditMissingRecord(t *testing.T) {
	v := newView(&fakeSource{}, Optimistic)
	_, err := v.Edit(context.Background(), "ghost")
	var re *domain.RejectedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "User not found", re.Message)
}

func TestDraft_NotEditable(t *testing.T) {
	v := New(Config[row]{Name: "feed", Source: &fakeSource{}, ID: func(r row) string { return r.ID }})
	_, err := v.Edit(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrUnsupported)
}

type noGetSource struct{ *fakeSource }

func (noGetSource) GetByID(context.Context, string) (row, error) {
	return row{}, domain.ErrUnsupported
}

func TestDraft_FallsBackToLocalRecord(t *testing.T) {
	src := noGetSource{&fakeSource{items: seedRows(2)}}
	v := New(Config[row]{
		Name:     "requests",
		Source:   src,
		ID:       func(r row) string { return r.ID },
		Editable: []string{"email"},
	})
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))

	d, err := v.Edit(ctx, "u02")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "u02@x.io"}, d.Fields())

	_, err = v.Edit(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
