package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/setlistr/setlistr/internal/billing"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	Users       map[int64]*user.User
	EmailIndex  map[string]*user.User
	NextID      int64
	CreateError error
	GetError    error
	UpdateError error
	Updates     int
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[int64]*user.User),
		EmailIndex: make(map[string]*user.User),
		NextID:     1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.EmailIndex[u.Email]; ok {
		return errors.Conflict("Email already registered")
	}
	u.ID = m.NextID
	m.NextID++
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if customerID != "" && u.PaymentCustomerID == customerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.NotFound("User")
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Users[u.ID]; !ok {
		return errors.NotFound("User")
	}
	cp := *u
	m.Users[u.ID] = &cp
	m.EmailIndex[u.Email] = &cp
	m.Updates++
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	u, ok := m.Users[id]
	if !ok {
		return errors.NotFound("User")
	}
	delete(m.EmailIndex, u.Email)
	delete(m.Users, id)
	return nil
}

func (m *MockUserRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, u := range m.Users {
		if u.SubscriptionStatus != user.StatusExpired && u.EffectiveStatus(now) == user.StatusExpired {
			u.SubscriptionStatus = user.StatusExpired
			n++
		}
	}
	return n, nil
}

// NoTx runs fn directly. It satisfies services.Transactor for mocks that
// have no transactions.
type NoTx struct{}

func (NoTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SentMail is one message captured by MockMailer.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MockMailer records messages instead of sending them
type MockMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// MockBillingProvider returns canned checkout URLs and events
type MockBillingProvider struct {
	Checkouts   []billing.CheckoutRequest
	CheckoutURL string
	CheckoutErr error
	Event       *billing.Event
	WebhookErr  error
}

func (m *MockBillingProvider) CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (string, error) {
	if m.CheckoutErr != nil {
		return "", m.CheckoutErr
	}
	m.Checkouts = append(m.Checkouts, req)
	if m.CheckoutURL == "" {
		return fmt.Sprintf("https://checkout.test/session/%d", req.UserID), nil
	}
	return m.CheckoutURL, nil
}

func (m *MockBillingProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*billing.Event, error) {
	if m.WebhookErr != nil {
		return nil, m.WebhookErr
	}
	return m.Event, nil
}

// MockStorageProvider signs URLs of the form https://files.test/<op>/<key>
type MockStorageProvider struct {
	Err error
}

func (m *MockStorageProvider) Name() string { return "mock" }

func (m *MockStorageProvider) PresignUpload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "https://files.test/put/" + key, nil
}

func (m *MockStorageProvider) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "https://files.test/get/" + key, nil
}

// MockSessionCache is an in-memory member session cache
type MockSessionCache struct {
	mu      sync.Mutex
	Entries map[string]string
	Hits    int
	Err     error
}

func NewMockSessionCache() *MockSessionCache {
	return &MockSessionCache{Entries: make(map[string]string)}
}

func (m *MockSessionCache) Get(ctx context.Context, token string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", false, m.Err
	}
	id, ok := m.Entries[token]
	if ok {
		m.Hits++
	}
	return id, ok, nil
}

func (m *MockSessionCache) Set(ctx context.Context, token, memberID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries[token] = memberID
	return nil
}

func (m *MockSessionCache) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.Entries, token)
	return nil
}
