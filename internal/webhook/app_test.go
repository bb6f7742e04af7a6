package webhook

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sevigo/auto-me-bot/internal/core"
	ghclient "github.com/sevigo/auto-me-bot/internal/github"
	"github.com/sevigo/auto-me-bot/internal/logger"
	"github.com/sevigo/auto-me-bot/mocks"
)

const prOpened = `{
  "action": "opened",
  "number": 3,
  "pull_request": {"number": 3, "title": "feat: x", "head": {"sha": "abc"}},
  "repository": {"name": "octo-repo", "full_name": "octo-org/octo-repo", "owner": {"login": "octo-org"}},
  "installation": {"id": 1234}
}`

type fakeClients struct {
	client ghclient.Client
	err    error
	calls  []int64
}

func (f *fakeClients) ForInstallation(_ context.Context, id int64) (ghclient.Client, error) {
	f.calls = append(f.calls, id)
	return f.client, f.err
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []core.DeliveryRecord
	err     error
}

func (f *fakeRecorder) SaveDelivery(_ context.Context, d *core.DeliveryRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *d)
	return f.err
}

func TestApp_ReceiveDispatchesInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)
	clients := &fakeClients{client: client}
	recorder := &fakeRecorder{}

	app := New(
		WithClientFactory(clients),
		WithConfigLoader(func(c ghclient.Client) core.ConfigLoader {
			assert.Same(t, client, c)
			return core.ConfigLoaderFunc(func(context.Context, string, string, string) (core.RepoConfig, error) {
				return nil, nil
			})
		}),
		WithRecorder(recorder),
		WithLogger(logger.Discard()),
	)

	var order []string
	var seen *core.EventContext
	app.On([]string{"pull_request"}, func(_ context.Context, evt *core.EventContext) error {
		order = append(order, "any")
		seen = evt
		return nil
	})
	app.On([]string{"pull_request.opened", "pull_request.closed"}, func(context.Context, *core.EventContext) error {
		order = append(order, "opened")
		return nil
	})
	app.On([]string{"issues"}, func(context.Context, *core.EventContext) error {
		order = append(order, "issues")
		return nil
	})

	err := app.Receive(context.Background(), core.Delivery{ID: "d-1", Name: "pull_request", Payload: []byte(prOpened)})
	require.NoError(t, err)

	assert.Equal(t, []string{"any", "opened"}, order)
	assert.Equal(t, []int64{1234}, clients.calls, "one installation client per delivery")

	require.NotNil(t, seen)
	assert.Equal(t, "d-1", seen.DeliveryID)
	assert.Equal(t, "pull_request", seen.Name)
	assert.Equal(t, "octo-org", seen.Owner)
	assert.Equal(t, "octo-repo", seen.Repo)
	assert.Equal(t, int64(1234), seen.InstallationID)
	assert.Equal(t, "opened", seen.Payload["action"])
	assert.NotNil(t, seen.ConfigLoader)
	require.IsType(t, &github.PullRequestEvent{}, seen.Event)
	assert.Equal(t, 3, seen.PullRequest().GetNumber())

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, "d-1", rec.DeliveryID)
	assert.Equal(t, "pull_request", rec.Event)
	assert.Equal(t, "opened", rec.Action)
	assert.Equal(t, "octo-org/octo-repo", rec.RepoFullName)
	assert.Equal(t, core.DeliveryProcessed, rec.Outcome)
	assert.Empty(t, rec.Error)
}

func TestApp_ReceiveWithoutHandlers(t *testing.T) {
	clients := &fakeClients{}
	recorder := &fakeRecorder{}
	app := New(WithClientFactory(clients), WithRecorder(recorder), WithLogger(logger.Discard()))
	app.On([]string{"pull_request.closed"}, func(context.Context, *core.EventContext) error {
		t.Fatal("handler must not run")
		return nil
	})

	err := app.Receive(context.Background(), core.Delivery{ID: "d-2", Name: "pull_request", Payload: []byte(prOpened)})
	require.NoError(t, err)

	assert.Empty(t, clients.calls, "no client is created when nothing matches")
	require.Len(t, recorder.records, 1)
	assert.Equal(t, core.DeliveryIgnored, recorder.records[0].Outcome)
}

func TestApp_ReceiveJoinsHandlerErrors(t *testing.T) {
	recorder := &fakeRecorder{}
	app := New(WithRecorder(recorder), WithLogger(logger.Discard()))

	errA := errors.New("first")
	errB := errors.New("second")
	ran := 0
	app.On([]string{"pull_request"}, func(context.Context, *core.EventContext) error { ran++; return errA })
	app.On([]string{"pull_request"}, func(context.Context, *core.EventContext) error { ran++; return nil })
	app.On([]string{"pull_request"}, func(context.Context, *core.EventContext) error { ran++; return errB })

	err := app.Receive(context.Background(), core.Delivery{ID: "d-3", Name: "pull_request", Payload: []byte(prOpened)})
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 3, ran)

	require.Len(t, recorder.records, 1)
	assert.Equal(t, core.DeliveryFailed, recorder.records[0].Outcome)
	assert.Contains(t, recorder.records[0].Error, "first")
}

func TestApp_ReceiveInvalidPayload(t *testing.T) {
	app := New(WithLogger(logger.Discard()))
	app.On([]string{"pull_request"}, func(context.Context, *core.EventContext) error { return nil })

	for _, body := range []string{"not json", "[1,2]", "null"} {
		err := app.Receive(context.Background(), core.Delivery{ID: "d", Name: "pull_request", Payload: []byte(body)})
		assert.ErrorIs(t, err, ErrInvalidPayload, body)
	}
}

func TestApp_ReceiveClientFailure(t *testing.T) {
	authErr := errors.New("bad key")
	app := New(WithClientFactory(&fakeClients{err: authErr}), WithLogger(logger.Discard()))
	app.On([]string{"pull_request"}, func(context.Context, *core.EventContext) error {
		t.Fatal("handler must not run")
		return nil
	})

	err := app.Receive(context.Background(), core.Delivery{ID: "d", Name: "pull_request", Payload: []byte(prOpened)})
	assert.ErrorIs(t, err, authErr)
}

func TestApp_ReceiveUnknownEvent(t *testing.T) {
	app := New(WithLogger(logger.Discard()))
	var seen *core.EventContext
	app.On([]string{"unknown_event_type"}, func(_ context.Context, evt *core.EventContext) error {
		seen = evt
		return nil
	})

	err := app.Receive(context.Background(), core.Delivery{ID: "d", Name: "unknown_event_type", Payload: []byte(`{"foo":"bar"}`)})
	require.NoError(t, err)
	require.NotNil(t, seen)
	assert.Nil(t, seen.Event)
	assert.Nil(t, seen.GitHub)
	assert.Equal(t, "bar", seen.Payload["foo"])
}

func TestApp_RecorderErrorIsNotReturned(t *testing.T) {
	app := New(WithRecorder(&fakeRecorder{err: errors.New("db down")}), WithLogger(logger.Discard()))
	err := app.Receive(context.Background(), core.Delivery{ID: "d", Name: "ping", Payload: []byte(`{"zen":"hi"}`)})
	assert.NoError(t, err)
}

func TestApp_On(t *testing.T) {
	app := New()
	h := func(context.Context, *core.EventContext) error { return nil }

	app.On([]string{"pull_request.opened", "", "pull_request.opened"}, h)
	app.On([]string{"pull_request"}, nil)

	assert.Equal(t, 2, app.Handlers("pull_request.opened"))
	assert.Equal(t, 0, app.Handlers("pull_request"))
	assert.Equal(t, 0, app.Handlers(""))
}
