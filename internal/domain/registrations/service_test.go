package registrations_test

import (
	"context"
	"testing"
	"time"

	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/registrations"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/storage/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	service *registrations.Service
	repo    *sqlite.Repository
	owner   users.User
	guest   users.User
	event   events.Event
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.MigrateUp(db))

	repo, err := sqlite.NewRepository(db)
	require.NoError(t, err)

	ctx := context.Background()
	owner, err := repo.Users().Create(ctx, users.CreateParams{
		Username: "ada", Email: "ada@example.com", PasswordHash: "hash",
	})
	require.NoError(t, err)
	guest, err := repo.Users().Create(ctx, users.CreateParams{
		Username: "bob", Email: "bob@example.com", PasswordHash: "hash",
	})
	require.NoError(t, err)
	event, err := repo.Events().Create(ctx, events.CreateParams{
		Title:   "meetup",
		Date:    time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC),
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	return fixture{
		service: registrations.NewService(repo.Registrations(), repo.Events(), zerolog.Nop()),
		repo:    repo,
		owner:   owner,
		guest:   guest,
		event:   event,
	}
}

func TestRegisterHappyPath(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	registration, event, err := fx.service.Register(ctx, fx.event.ID, fx.guest.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.event.ID, registration.EventID)
	assert.Equal(t, fx.guest.ID, registration.UserID)
	assert.Equal(t, registrations.StatusRegistered, registration.Status)
	assert.Equal(t, "meetup", event.Title)
}

func TestRegisterMissingEvent(t *testing.T) {
	fx := newFixture(t)

	_, _, err := fx.service.Register(context.Background(), 999, fx.guest.ID)
	assert.ErrorIs(t, err, registrations.ErrEventMissing)
}

func TestRegisterTwiceIsDuplicate(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, _, err := fx.service.Register(ctx, fx.event.ID, fx.guest.ID)
	require.NoError(t, err)

	_, _, err = fx.service.Register(ctx, fx.event.ID, fx.guest.ID)
	assert.ErrorIs(t, err, registrations.ErrDuplicate)
}

func TestCancelThenRegisterAgain(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first, _, err := fx.service.Register(ctx, fx.event.ID, fx.guest.ID)
	require.NoError(t, err)

	cancelled, err := fx.service.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, cancelled)

	cancelled, err = fx.service.Cancel(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, cancelled)

	again, _, err := fx.service.Register(ctx, fx.event.ID, fx.guest.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestListByEventRequiresEvent(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.service.ListByEvent(ctx, 999)
	assert.ErrorIs(t, err, events.ErrNotFound)

	_, _, err = fx.service.Register(ctx, fx.event.ID, fx.guest.ID)
	require.NoError(t, err)

	attendees, err := fx.service.ListByEvent(ctx, fx.event.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 1)
	assert.Equal(t, "bob", attendees[0].Username)
}

func TestListByUser(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	mine, err := fx.service.ListByUser(ctx, fx.guest.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	_, _, err = fx.service.Register(ctx, fx.event.ID, fx.guest.ID)
	require.NoError(t, err)

	mine, err = fx.service.ListByUser(ctx, fx.guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "meetup", mine[0].EventTitle)
}
