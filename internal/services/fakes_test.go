package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"talkk-backend/internal/jobs"
	"talkk-backend/internal/models"
	"talkk-backend/internal/repository"
)

var errFakeNotFound = errors.New("not found")

// fakeUserStore is an in-memory UserStore
type fakeUserStore struct {
	mu           sync.Mutex
	users        map[string]*models.User
	transactions []*models.CreditTransaction
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, errFakeNotFound
}

func (s *fakeUserStore) NicknameExists(ctx context.Context, nickname string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdateProfile(ctx context.Context, userID, nickname string, gender models.Gender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return errFakeNotFound
	}
	user.Nickname = nickname
	user.Gender = gender
	return nil
}

func (s *fakeUserStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return errFakeNotFound
	}
	user.PushToken = pushToken
	return nil
}

func (s *fakeUserStore) UpdateStatus(ctx context.Context, userID string, status models.UserStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return errFakeNotFound
	}
	user.Status = status
	return nil
}

func (s *fakeUserStore) AdjustCredits(ctx context.Context, trx *models.CreditTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[trx.UserID]
	if !ok {
		return errFakeNotFound
	}
	if user.Credits+trx.Amount < 0 {
		return repository.ErrInsufficientBalance
	}
	user.Credits += trx.Amount
	s.transactions = append(s.transactions, trx)
	return nil
}

func (s *fakeUserStore) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.CreditTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.CreditTransaction
	for _, trx := range s.transactions {
		if trx.UserID == userID {
			out = append(out, trx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeVerificationStore is an in-memory VerificationStore
type fakeVerificationStore struct {
	mu      sync.Mutex
	records map[string]*models.PhoneVerification
}

func newFakeVerificationStore() *fakeVerificationStore {
	return &fakeVerificationStore{records: make(map[string]*models.PhoneVerification)}
}

func (s *fakeVerificationStore) Create(ctx context.Context, v *models.PhoneVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[v.ID] = v
	return nil
}

func (s *fakeVerificationStore) GetActiveByPhone(ctx context.Context, phone string) (*models.PhoneVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.PhoneVerification
	for _, v := range s.records {
		if v.Phone != phone || v.Verified || !v.ExpiresAt.After(time.Now()) {
			continue
		}
		if latest == nil || v.CreatedAt.After(latest.CreatedAt) {
			latest = v
		}
	}
	if latest == nil {
		return nil, errFakeNotFound
	}
	return latest, nil
}

func (s *fakeVerificationStore) MarkVerified(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[id]
	if !ok {
		return errFakeNotFound
	}
	v.Verified = true
	return nil
}

func (s *fakeVerificationStore) IncrementAttempts(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[id]
	if !ok {
		return 0, errFakeNotFound
	}
	v.Attempts++
	return v.Attempts, nil
}

func (s *fakeVerificationStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, v := range s.records {
		if v.ExpiresAt.Before(cutoff) {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeBroadcastStore is an in-memory BroadcastStore
type fakeBroadcastStore struct {
	mu         sync.Mutex
	broadcasts map[string]*models.Broadcast
	createErr  error
}

func newFakeBroadcastStore(broadcasts ...*models.Broadcast) *fakeBroadcastStore {
	s := &fakeBroadcastStore{broadcasts: make(map[string]*models.Broadcast)}
	for _, b := range broadcasts {
		s.broadcasts[b.ID] = b
	}
	return s
}

func (s *fakeBroadcastStore) Create(ctx context.Context, b *models.Broadcast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.broadcasts[b.ID] = b
	return nil
}

func (s *fakeBroadcastStore) GetByID(ctx context.Context, id string) (*models.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.broadcasts[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return b, nil
}

func (s *fakeBroadcastStore) ListActive(ctx context.Context, limit int) ([]*models.Broadcast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Broadcast
	for _, b := range s.broadcasts {
		if b.Active && b.ExpiredAt.After(time.Now()) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeBroadcastStore) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.broadcasts[id]
	if !ok {
		return errFakeNotFound
	}
	b.Active = false
	return nil
}

func (s *fakeBroadcastStore) ExpireDue(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var flipped int64
	for _, b := range s.broadcasts {
		if b.Active && !b.ExpiredAt.After(time.Now()) {
			b.Active = false
			flipped++
		}
	}
	return flipped, nil
}

// fakeConversationStore is an in-memory ConversationStore keyed by the
// ordered participant pair, mirroring the unique constraint in Postgres
type fakeConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	nextID        int
}

func newFakeConversationStore(conversations ...*models.Conversation) *fakeConversationStore {
	s := &fakeConversationStore{conversations: make(map[string]*models.Conversation)}
	for _, c := range conversations {
		s.conversations[c.ID] = c
	}
	return s
}

func (s *fakeConversationStore) GetOrCreate(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, b := userID, otherID
	if b < a {
		a, b = b, a
	}
	for _, c := range s.conversations {
		if c.UserAID == a && c.UserBID == b {
			return c, nil
		}
	}
	s.nextID++
	now := time.Now()
	c := &models.Conversation{
		ID:        fmt.Sprintf("conv-%d", s.nextID),
		UserAID:   a,
		UserBID:   b,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.conversations[c.ID] = c
	return c, nil
}

func (s *fakeConversationStore) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, errFakeNotFound
	}
	return c, nil
}

func (s *fakeConversationStore) ListForUser(ctx context.Context, userID string) ([]*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Conversation
	for _, c := range s.conversations {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *fakeConversationStore) SetFavorite(ctx context.Context, id, userID string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return errFakeNotFound
	}
	if c.UserAID == userID {
		c.FavoriteA = favorite
	} else {
		c.FavoriteB = favorite
	}
	return nil
}

func (s *fakeConversationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[id]; !ok {
		return errFakeNotFound
	}
	delete(s.conversations, id)
	return nil
}

// fakeMessageStore is an in-memory MessageStore
type fakeMessageStore struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (s *fakeMessageStore) Create(ctx context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return nil
}

func (s *fakeMessageStore) ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Message
	for _, m := range s.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) MarkRead(ctx context.Context, conversationID, readerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID {
			m.Read = true
		}
	}
	return nil
}

// fakeModerationStore is an in-memory ModerationStore
type fakeModerationStore struct {
	mu      sync.Mutex
	blocks  []*models.Block
	reports []*models.Report
}

func (s *fakeModerationStore) CreateBlock(ctx context.Context, b *models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.blocks {
		if existing.BlockerID == b.BlockerID && existing.BlockedID == b.BlockedID {
			return nil
		}
	}
	s.blocks = append(s.blocks, b)
	return nil
}

func (s *fakeModerationStore) DeleteBlock(ctx context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.blocks {
		if b.BlockerID == blockerID && b.BlockedID == blockedID {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			return nil
		}
	}
	return errFakeNotFound
}

func (s *fakeModerationStore) IsBlocked(ctx context.Context, userID, otherID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.blocks {
		if (b.BlockerID == userID && b.BlockedID == otherID) ||
			(b.BlockerID == otherID && b.BlockedID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeModerationStore) BlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, b := range s.blocks {
		if b.BlockerID == userID {
			out = append(out, b.BlockedID)
		}
		if b.BlockedID == userID {
			out = append(out, b.BlockerID)
		}
	}
	return out, nil
}

func (s *fakeModerationStore) CreateReport(ctx context.Context, r *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return nil
}

func (s *fakeModerationStore) PendingReports(ctx context.Context, reportedID string) ([]*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Report
	for _, r := range s.reports {
		if r.ReportedID == reportedID && r.Status == models.ReportStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeModerationStore) ResolveReport(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.ID == id {
			r.Status = models.ReportStatusResolved
			return nil
		}
	}
	return errFakeNotFound
}

// fakeFeedCache is an in-memory FeedCache
type fakeFeedCache struct {
	mu          sync.Mutex
	cached      []*models.Broadcast
	hasValue    bool
	sets        int
	invalidates int
}

func (c *fakeFeedCache) Get(ctx context.Context) ([]*models.Broadcast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasValue {
		return nil, errors.New("cache miss")
	}
	return c.cached, nil
}

func (c *fakeFeedCache) Set(ctx context.Context, broadcasts []*models.Broadcast) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = broadcasts
	c.hasValue = true
	c.sets++
	return nil
}

func (c *fakeFeedCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
	c.hasValue = false
	c.invalidates++
	return nil
}

// fakeQueue records enqueued events
type fakeQueue struct {
	mu     sync.Mutex
	events []jobs.Event
}

func (q *fakeQueue) Enqueue(ctx context.Context, event jobs.Event) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, event)
	return nil
}

func (q *fakeQueue) all() []jobs.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]jobs.Event(nil), q.events...)
}

// fakeCodeSender records sent verification texts
type fakeCodeSender struct {
	mu    sync.Mutex
	sent  []string
	texts []string
}

func (s *fakeCodeSender) Send(ctx context.Context, phone, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, phone)
	s.texts = append(s.texts, text)
	return nil
}
