package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/skydesk"
	"github.com/xraph/skydesk/events"
	"github.com/xraph/skydesk/flight"
	"github.com/xraph/skydesk/reservation"
	"github.com/xraph/skydesk/store/memory"
)

var testNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

type published struct {
	key string
	msg amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []published
	publishErr error
	declareErr error
	closed     int
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	if durable {
		f.declared = append(f.declared, name)
	}
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	if exchange != "" {
		return errors.New("unexpected exchange " + exchange)
	}
	f.published = append(f.published, published{key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeChannel) messages(key string) []amqp.Publishing {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []amqp.Publishing
	for _, p := range f.published {
		if p.key == key {
			out = append(out, p.msg)
		}
	}
	return out
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newDesk(t *testing.T, p *events.Publisher) *skydesk.Desk {
	t.Helper()
	d := skydesk.New(memory.New(),
		skydesk.WithLogger(quiet()),
		skydesk.WithSweepInterval(0),
		skydesk.WithClock(func() time.Time { return testNow }),
		skydesk.WithPlugin(p),
	)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Stop() })
	return d
}

func TestNewDeclaresDurableQueues(t *testing.T) {
	ch := &fakeChannel{}
	_, err := events.New(ch)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{events.QueueBookingConfirmed, events.QueuePointsChanged}, ch.declared)
}

func TestNewFailsWhenDeclareFails(t *testing.T) {
	_, err := events.New(&fakeChannel{declareErr: errors.New("access refused")})
	assert.Error(t, err)
}

func TestBookingConfirmedIsPublished(t *testing.T) {
	ch := &fakeChannel{}
	p, err := events.New(ch, events.WithLogger(quiet()), events.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	d := newDesk(t, p)
	ctx := context.Background()

	dep := testNow.Add(3 * time.Hour)
	require.NoError(t, d.AddFlight(ctx, &flight.Flight{
		Code:          "SK101",
		Route:         "LHR->JFK",
		Aircraft:      "A350-1000",
		DepartureDate: dep.Format(flight.DateLayout),
		DepartureTime: dep.Format(flight.TimeLayout),
	}))
	r, err := d.Book(ctx, skydesk.BookingRequest{
		FlightCode:   "SK101",
		Cabin:        reservation.CabinFirst,
		HolderKind:   reservation.HolderSelf,
		HolderHandle: "Captain_Kim",
		BookedBy:     123456789012345678,
	})
	require.NoError(t, err)

	msgs := ch.messages(events.QueueBookingConfirmed)
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, events.AppID, msg.AppId)
	assert.Equal(t, testNow, msg.Timestamp)
	_, err = uuid.Parse(msg.MessageId)
	assert.NoError(t, err, "message id should be a uuid")

	var evt events.BookingConfirmed
	require.NoError(t, json.Unmarshal(msg.Body, &evt))
	assert.Equal(t, r.Code, evt.Code)
	assert.Equal(t, "LHR->JFK", evt.Route)
	assert.Equal(t, "First Class", evt.Cabin)
	assert.Equal(t, "123456789012345678", evt.HolderID)
	assert.Equal(t, "123456789012345678", evt.BookedBy)
}

func TestPointsChangedIsPublished(t *testing.T) {
	ch := &fakeChannel{}
	p, err := events.New(ch, events.WithLogger(quiet()))
	require.NoError(t, err)
	d := newDesk(t, p)
	ctx := context.Background()

	_, err = d.Credit(ctx, 42, 100)
	require.NoError(t, err)
	_, err = d.Debit(ctx, 42, 150)
	require.NoError(t, err)
	_, err = d.Reset(ctx, 42)
	require.NoError(t, err)

	msgs := ch.messages(events.QueuePointsChanged)
	require.Len(t, msgs, 3)

	var got []events.PointsChanged
	for _, m := range msgs {
		var evt events.PointsChanged
		require.NoError(t, json.Unmarshal(m.Body, &evt))
		got = append(got, evt)
	}

	assert.Equal(t, events.KindCredit, got[0].Kind)
	assert.Equal(t, int64(100), got[0].Balance)
	assert.Equal(t, int64(1), got[0].Flights)

	assert.Equal(t, events.KindDebit, got[1].Kind)
	assert.Equal(t, int64(150), got[1].Requested)
	assert.Equal(t, int64(100), got[1].Applied)
	assert.Equal(t, int64(0), got[1].Balance)

	assert.Equal(t, events.KindReset, got[2].Kind)
	assert.Equal(t, "42", got[2].AccountID)

	assert.NotEqual(t, msgs[0].MessageId, msgs[1].MessageId)
}

func TestPublishFailureDoesNotFailTheDesk(t *testing.T) {
	ch := &fakeChannel{}
	p, err := events.New(ch, events.WithLogger(quiet()))
	require.NoError(t, err)
	d := newDesk(t, p)

	ch.publishErr = errors.New("channel closed")
	acct, err := d.Credit(context.Background(), 7, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), acct.Balance)
}

func TestShutdownClosesChannel(t *testing.T) {
	ch := &fakeChannel{}
	p, err := events.New(ch, events.WithLogger(quiet()))
	require.NoError(t, err)
	d := newDesk(t, p)

	require.NoError(t, d.Stop())
	assert.Equal(t, 1, ch.closed)

	assert.NoError(t, p.Close(), "closing twice is a no-op")
	assert.Equal(t, 1, ch.closed)
	assert.Error(t, p.Publish(context.Background(), events.QueuePointsChanged, struct{}{}))
}
