package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dyike/WealthGo/internal/models"
)

type fakeSource struct {
	mu      sync.Mutex
	lists   []models.NotificationList
	calls   int
	fetchErr error
	markErr error
	marked  [][]string
}

func (f *fakeSource) Notifications(ctx context.Context, clientID string) (models.NotificationList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fetchErr != nil {
		return models.NotificationList{}, f.fetchErr
	}
	if len(f.lists) == 0 {
		return models.NotificationList{}, nil
	}
	next := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return next, nil
}

func (f *fakeSource) MarkNotificationsRead(ctx context.Context, clientID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, ids)
	return f.markErr
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func list(ids ...string) models.NotificationList {
	l := models.NotificationList{Count: len(ids)}
	for _, id := range ids {
		l.Notifications = append(l.Notifications, models.Notification{ID: id, Person: "Jane Doe", Message: "New article " + id})
	}
	return l
}

func TestPollReplacesOnlyWhenCountPositive(t *testing.T) {
	src := &fakeSource{lists: []models.NotificationList{list("n1", "n2"), {Count: 0}}}
	p := NewPoller(src, "frontend-A")

	updated, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, []string{"n1", "n2"}, IDs(p.Current()))

	updated, err = p.Poll(context.Background())
	require.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, []string{"n1", "n2"}, IDs(p.Current()))
}

func TestMarkReadDropsOnlyAcknowledged(t *testing.T) {
	src := &fakeSource{lists: []models.NotificationList{list("n1", "n2", "n3")}}
	p := NewPoller(src, "frontend-A")
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.MarkRead(context.Background(), []string{"n2"}))
	assert.Equal(t, []string{"n1", "n3"}, IDs(p.Current()))
	assert.Equal(t, [][]string{{"n2"}}, src.marked)
}

func TestMarkReadFailureKeepsSet(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeSource{lists: []models.NotificationList{list("n1")}, markErr: errors.New("503")}
	p := NewPoller(src, "frontend-A", WithLogger(zap.New(core)))
	_, err := p.Poll(context.Background())
	require.NoError(t, err)

	assert.Error(t, p.MarkRead(context.Background(), []string{"n1"}))
	assert.Equal(t, []string{"n1"}, IDs(p.Current()))
	assert.Equal(t, 1, logs.FilterMessage("mark notifications read failed").Len())
}

func TestRunPollsImmediatelyAndOnTicks(t *testing.T) {
	src := &fakeSource{lists: []models.NotificationList{list("n1"), list("n1", "n2")}}
	p := NewPoller(src, "frontend-A", WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan []models.Notification, 16)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, func(ns []models.Notification) { updates <- ns }) }()

	first := <-updates
	assert.Equal(t, []string{"n1"}, IDs(first))
	second := <-updates
	assert.Equal(t, []string{"n1", "n2"}, IDs(second))

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.GreaterOrEqual(t, src.callCount(), 2)
}

func TestRunLogsFetchErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeSource{fetchErr: errors.New("connection refused")}
	p := NewPoller(src, "frontend-A", WithInterval(5*time.Millisecond), WithLogger(zap.New(core)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, nil) }()

	assert.Eventually(t, func() bool { return src.callCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
	assert.GreaterOrEqual(t, logs.FilterMessage("notification poll failed").Len(), 1)
	assert.Empty(t, p.Current())
}

func TestFormat(t *testing.T) {
	n := models.Notification{ID: "n1", Person: "Jane Doe", Message: "IPO filed", Timestamp: "2024-05-02T08:00:00"}
	out := Format(n, time.UTC)
	assert.Contains(t, out, "New article on Jane Doe")
	assert.Contains(t, out, "02 May 2024, 08:00 AM")
}
