package user

import (
	"context"
	"errors"
	"testing"

	"kcal/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	calls []string
	err   error
}

func (n *recordingNotifier) LimitChanged(_ context.Context, userID string) error {
	n.calls = append(n.calls, userID)
	return n.err
}

func ptr[T any](v T) *T { return &v }

func TestGetOrCreate_CreatesDefaultsOnce(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	svc := &Service{Store: store}

	p, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, Profile{UserID: "u1", Username: "User", DailyLimitKcal: 2000}, p)

	stored, found, err := kv.GetJSON[Profile](ctx, store, "user:u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, p, stored)

	require.NoError(t, kv.SetJSON(ctx, store, "user:u1", Profile{UserID: "u1", Username: "Asha", DailyLimitKcal: 1800}))
	p, err = svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", p.Username)
	assert.Equal(t, 1800.0, p.DailyLimitKcal)
}

func TestUpdate_MergesNamedFields(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Store: kv.NewMemory()}

	p, err := svc.Update(ctx, "u1", UpdateProfile{Username: ptr("Asha")})
	require.NoError(t, err)
	assert.Equal(t, Profile{UserID: "u1", Username: "Asha", DailyLimitKcal: 2000}, p)

	p, err = svc.Update(ctx, "u1", UpdateProfile{DailyLimitKcal: ptr(1500.0)})
	require.NoError(t, err)
	assert.Equal(t, Profile{UserID: "u1", Username: "Asha", DailyLimitKcal: 1500}, p)

	got, err := svc.GetOrCreate(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestUpdate_AcceptsNonPositiveLimit(t *testing.T) {
	svc := &Service{Store: kv.NewMemory()}
	p, err := svc.Update(context.Background(), "u1", UpdateProfile{DailyLimitKcal: ptr(-5.0)})
	require.NoError(t, err)
	assert.Equal(t, -5.0, p.DailyLimitKcal)
}

func TestUpdate_NotifiesOnlyOnLimitChange(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	svc := &Service{Store: kv.NewMemory(), Notifier: n}

	_, err := svc.Update(ctx, "u1", UpdateProfile{Username: ptr("Asha")})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "u1", UpdateProfile{DailyLimitKcal: ptr(2000.0)})
	require.NoError(t, err)
	assert.Empty(t, n.calls, "same limit is not a change")

	_, err = svc.Update(ctx, "u1", UpdateProfile{DailyLimitKcal: ptr(1200.0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, n.calls)
}

func TestUpdate_NotifierFailureDoesNotFailUpdate(t *testing.T) {
	ctx := context.Background()
	svc := &Service{Store: kv.NewMemory(), Notifier: &recordingNotifier{err: errors.New("queue down")}}

	p, err := svc.Update(ctx, "u1", UpdateProfile{DailyLimitKcal: ptr(900.0)})
	require.NoError(t, err)
	assert.Equal(t, 900.0, p.DailyLimitKcal)
}
