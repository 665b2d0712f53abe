package notify_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/pkg/email"
	"github.com/alqudsguide/backend/svc/notify"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

const (
	to      = "user@example.com"
	subject = "Verify your email"
	body    = "<p>hello</p>"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := notify.New(nil)
	assert.ErrorIs(t, err, notify.ErrNoChannels)

	_, err = notify.New([]notify.Channel{{Name: "x"}})
	assert.ErrorIs(t, err, notify.ErrInvalidChannel)

	gw, err := notify.New([]notify.Channel{
		{Name: "postmark", Sender: &mockSender{}},
		{Name: "smtp", Sender: &mockSender{}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"postmark", "smtp"}, gw.Channels())
}

func TestGateway_Send(t *testing.T) {
	t.Parallel()

	t.Run("primary delivers", func(t *testing.T) {
		t.Parallel()

		primary, fallback := &mockSender{}, &mockSender{}
		primary.On("SendEmail", mock.Anything, email.Message{To: to, Subject: subject, HTML: body}).Return(nil).Once()

		gw, err := notify.New([]notify.Channel{{Name: "postmark", Sender: primary}, {Name: "smtp", Sender: fallback}})
		require.NoError(t, err)

		res, err := gw.Send(context.Background(), to, subject, body)
		require.NoError(t, err)
		assert.Equal(t, notify.Result{Delivered: true, Channel: "postmark"}, res)
		primary.AssertExpectations(t)
		fallback.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("falls back when primary fails", func(t *testing.T) {
		t.Parallel()

		primary, fallback := &mockSender{}, &mockSender{}
		primary.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("401 unauthorized")).Once()
		fallback.On("SendEmail", mock.Anything, mock.Anything).Return(nil).Once()

		var attempts []string
		gw, err := notify.New(
			[]notify.Channel{{Name: "postmark", Sender: primary}, {Name: "smtp", Sender: fallback}},
			notify.WithObserver(func(ch string, err error, _ time.Duration) {
				attempts = append(attempts, ch)
			}),
		)
		require.NoError(t, err)

		res, err := gw.Send(context.Background(), to, subject, body)
		require.NoError(t, err)
		assert.Equal(t, "smtp", res.Channel)
		assert.True(t, res.Delivered)
		assert.Equal(t, []string{"postmark", "smtp"}, attempts)
	})

	t.Run("all channels fail", func(t *testing.T) {
		t.Parallel()

		primaryErr := errors.New("primary down")
		fallbackErr := errors.New("fallback down")
		primary, fallback := &mockSender{}, &mockSender{}
		primary.On("SendEmail", mock.Anything, mock.Anything).Return(primaryErr)
		fallback.On("SendEmail", mock.Anything, mock.Anything).Return(fallbackErr)

		gw, err := notify.New([]notify.Channel{{Name: "postmark", Sender: primary}, {Name: "smtp", Sender: fallback}})
		require.NoError(t, err)

		res, err := gw.Send(context.Background(), to, subject, body)
		assert.ErrorIs(t, err, notify.ErrDeliveryFailed)
		assert.ErrorIs(t, err, primaryErr)
		assert.ErrorIs(t, err, fallbackErr)
		assert.False(t, res.Delivered)
		assert.Empty(t, res.Channel)
	})

	t.Run("slow channel times out and fallback delivers", func(t *testing.T) {
		t.Parallel()

		slow := email.SenderFunc(func(ctx context.Context, _ email.Message) error {
			<-ctx.Done()
			return ctx.Err()
		})
		var fastCalls atomic.Int32
		fast := email.SenderFunc(func(context.Context, email.Message) error {
			fastCalls.Add(1)
			return nil
		})

		gw, err := notify.New(
			[]notify.Channel{{Name: "slow", Sender: slow}, {Name: "fast", Sender: fast}},
			notify.WithTimeout(20*time.Millisecond),
		)
		require.NoError(t, err)

		start := time.Now()
		res, err := gw.Send(context.Background(), to, subject, body)
		require.NoError(t, err)
		assert.Equal(t, "fast", res.Channel)
		assert.EqualValues(t, 1, fastCalls.Load())
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("success after the attempt deadline is still delivered", func(t *testing.T) {
		t.Parallel()

		late := email.SenderFunc(func(ctx context.Context, _ email.Message) error {
			<-ctx.Done()
			time.Sleep(10 * time.Millisecond)
			return nil
		})
		var fallbackCalls atomic.Int32
		fallback := email.SenderFunc(func(context.Context, email.Message) error {
			fallbackCalls.Add(1)
			return nil
		})

		var observed []error
		gw, err := notify.New(
			[]notify.Channel{{Name: "postmark", Sender: late}, {Name: "smtp", Sender: fallback}},
			notify.WithTimeout(20*time.Millisecond),
			notify.WithObserver(func(_ string, err error, _ time.Duration) {
				observed = append(observed, err)
			}),
		)
		require.NoError(t, err)

		res, err := gw.Send(context.Background(), to, subject, body)
		require.NoError(t, err)
		assert.Equal(t, notify.Result{Delivered: true, Channel: "postmark"}, res)
		assert.Zero(t, fallbackCalls.Load())
		assert.Equal(t, []error{nil}, observed)
	})

	t.Run("invalid message never reaches a channel", func(t *testing.T) {
		t.Parallel()

		s := &mockSender{}
		gw, err := notify.New([]notify.Channel{{Name: "postmark", Sender: s}})
		require.NoError(t, err)

		_, err = gw.Send(context.Background(), "not-an-email", subject, body)
		assert.ErrorIs(t, err, notify.ErrDeliveryFailed)
		assert.ErrorIs(t, err, email.ErrInvalidMessage)
		s.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})

	t.Run("cancelled context stops the chain", func(t *testing.T) {
		t.Parallel()

		s := &mockSender{}
		gw, err := notify.New([]notify.Channel{{Name: "postmark", Sender: s}})
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = gw.Send(ctx, to, subject, body)
		assert.ErrorIs(t, err, notify.ErrDeliveryFailed)
		assert.ErrorIs(t, err, context.Canceled)
		s.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
	})
}
