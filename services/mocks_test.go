package services_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rayhandestian/quickbites/models"
	"github.com/rayhandestian/quickbites/repository"
	"github.com/rayhandestian/quickbites/sender"
	"github.com/rayhandestian/quickbites/services"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// --- Mock UserStore ---

type mockUserStore struct {
	users map[string]*models.User
	err   error
}

func newMockUserStore(users ...*models.User) *mockUserStore {
	s := &mockUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (m *mockUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

// --- Mock PushSender ---

type mockSender struct {
	mu   sync.Mutex
	sent []*models.PushMessage
	err  error
}

func (m *mockSender) Send(_ context.Context, msg *models.PushMessage) (sender.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if m.err != nil {
		return sender.SendResult{}, m.err
	}
	return sender.SendResult{MessageID: "msg-1", SentAt: time.Now()}, nil
}

func (m *mockSender) Provider() string { return "mock" }

func (m *mockSender) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// --- Mock Observer ---

type recordingObserver struct {
	mu         sync.Mutex
	events     []string
	outcomes   []string
	deliveries int
}

func (o *recordingObserver) ObserveEvent(eventType string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, eventType)
}

func (o *recordingObserver) ObserveOutcome(kind, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, kind+"/"+outcome)
}

func (o *recordingObserver) ObserveDelivery(string, time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deliveries++
}

var errTransport = errors.New("transport unavailable")

type fixture struct {
	store   *mockUserStore
	sender  *mockSender
	logs    *observer.ObservedLogs
	created *services.OrderCreatedHandler
	updated *services.OrderUpdatedHandler
}

func newFixture(users ...*models.User) *fixture {
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	store := newMockUserStore(users...)
	push := &mockSender{}
	resolver := services.NewRecipientResolver(store)
	return &fixture{
		store:   store,
		sender:  push,
		logs:    logs,
		created: services.NewOrderCreatedHandler(resolver, push, nil, log),
		updated: services.NewOrderUpdatedHandler(resolver, push, nil, log),
	}
}

func createdEvent(orderID string, snapshot *models.Order) *models.OrderCreatedEvent {
	return &models.OrderCreatedEvent{
		EventMeta: models.EventMeta{EventID: "ev-" + orderID, OrderID: orderID, Source: "test"},
		Snapshot:  snapshot,
	}
}

func updatedEvent(orderID string, before, after *models.Order) *models.OrderUpdatedEvent {
	return &models.OrderUpdatedEvent{
		EventMeta: models.EventMeta{EventID: "ev-" + orderID, OrderID: orderID, Source: "test"},
		Change:    &models.OrderChange{Before: before, After: after},
	}
}
