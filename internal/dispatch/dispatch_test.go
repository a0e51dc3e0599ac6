package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	uuidMocks "github.com/KirkDiggler/pickup/internal/common/uuid/mocks"
	"github.com/KirkDiggler/pickup/internal/services/notify"
	notifyMocks "github.com/KirkDiggler/pickup/internal/services/notify/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testInput = &notify.SendInput{
	To:        "+15551234567",
	Body:      "You're in!",
	DedupeKey: "booking:confirmed:b1",
}

func TestLogDispatcherSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockUUID := uuidMocks.NewMockUUID(ctrl)
	mockUUID.EXPECT().NewUUID().Return("msg-1")

	core, logs := observer.New(zapcore.InfoLevel)
	d := NewLogDispatcher(zap.New(core), mockUUID)

	out, err := d.Send(context.Background(), testInput)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", out.MessageID)

	entries := logs.FilterMessage("notification").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "+1***-***-4567", fields["to"])
	assert.Equal(t, "booking:confirmed:b1", fields["dedupe_key"])
}

func newRetrying(next notify.Dispatcher, tries uint) *RetryingDispatcher {
	return NewRetryingDispatcher(next, &RetryConfig{
		MaxTries:        tries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})
}

func TestRetryingDispatcherRecovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := notifyMocks.NewMockDispatcher(ctrl)

	gomock.InOrder(
		next.EXPECT().Send(gomock.Any(), testInput).Return(nil, errors.New("timeout")),
		next.EXPECT().Send(gomock.Any(), testInput).Return(nil, errors.New("timeout")),
		next.EXPECT().Send(gomock.Any(), testInput).Return(&notify.SendOutput{MessageID: "msg-1"}, nil),
	)

	out, err := newRetrying(next, 4).Send(context.Background(), testInput)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", out.MessageID)
}

func TestRetryingDispatcherGivesUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := notifyMocks.NewMockDispatcher(ctrl)

	next.EXPECT().Send(gomock.Any(), testInput).Return(nil, errors.New("timeout")).Times(3)

	_, err := newRetrying(next, 3).Send(context.Background(), testInput)
	assert.EqualError(t, err, "timeout")
}

func TestRetryingDispatcherPermanentFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := notifyMocks.NewMockDispatcher(ctrl)

	next.EXPECT().Send(gomock.Any(), testInput).
		Return(nil, fmt.Errorf("unreachable number: %w", ErrPermanent)).Times(1)

	_, err := newRetrying(next, 5).Send(context.Background(), testInput)
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestRetryingDispatcherStopsOnCanceledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := notifyMocks.NewMockDispatcher(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	next.EXPECT().Send(gomock.Any(), testInput).DoAndReturn(
		func(context.Context, *notify.SendInput) (*notify.SendOutput, error) {
			cancel()
			return nil, errors.New("timeout")
		}).Times(1)

	_, err := newRetrying(next, 5).Send(ctx, testInput)
	assert.ErrorIs(t, err, context.Canceled)
}
