package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// --- fakes ---

type fakeLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *fakeLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *fakeLogger) Info(module, message string, details map[string]interface{})  {}
func (l *fakeLogger) Warn(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, message)
}
func (l *fakeLogger) Error(module, message string, details map[string]interface{}) {}
func (l *fakeLogger) Sync() error                                                  { return nil }

type fakeMemoryRepo struct {
	mu        sync.Mutex
	byUser    map[uuid.UUID]*entity.UserMemory
	getErr    error
	updateErr error
	updates   int
}

func newFakeMemoryRepo() *fakeMemoryRepo {
	return &fakeMemoryRepo{byUser: make(map[uuid.UUID]*entity.UserMemory)}
}

func (r *fakeMemoryRepo) GetOrCreate(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	if mem, ok := r.byUser[userId]; ok {
		return mem, nil
	}
	mem := &entity.UserMemory{
		Id:          uuid.New(),
		UserId:      userId,
		Preferences: entity.DefaultMemoryPreferences(),
	}
	r.byUser[userId] = mem
	return mem, nil
}

func (r *fakeMemoryRepo) Find(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byUser[userId], nil
}

func (r *fakeMemoryRepo) Update(ctx context.Context, memory *entity.UserMemory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	r.updates++
	r.byUser[memory.UserId] = memory
	return nil
}

func (r *fakeMemoryRepo) Delete(ctx context.Context, userId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byUser, userId)
	return nil
}

type fakeMessageRepo struct {
	mu        sync.Mutex
	created   []*entity.ChatMessage
	createErr error
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, message)
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	return nil, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.created)), nil
}

func (r *fakeMessageRepo) DeleteBySession(ctx context.Context, userId uuid.UUID, sessionId string) (int64, error) {
	return 0, nil
}

func (r *fakeMessageRepo) ListSessions(ctx context.Context, userId uuid.UUID) ([]*entity.SessionSummary, error) {
	return nil, nil
}

type fakeUnitOfWork struct {
	memories *fakeMemoryRepo
	messages *fakeMessageRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return nil
}
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messages
}
func (u *fakeUnitOfWork) SessionOwnerRepository() contract.SessionOwnerRepository {
	return nil
}
func (u *fakeUnitOfWork) UserMemoryRepository() contract.UserMemoryRepository {
	return u.memories
}

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

func newFixture() (*Updater, *fakeMemoryRepo, *fakeMessageRepo, *fakeLogger) {
	memories := newFakeMemoryRepo()
	messages := &fakeMessageRepo{}
	log := &fakeLogger{}
	factory := &fakeFactory{uow: &fakeUnitOfWork{memories: memories, messages: messages}}
	return NewUpdater(factory, nil, log), memories, messages, log
}

func exchange(userId uuid.UUID, sessionId, userText, aiText string) (*entity.ChatMessage, *entity.ChatMessage) {
	return &entity.ChatMessage{
			UserId:    userId,
			SessionId: sessionId,
			Role:      entity.ChatRoleUser,
			Content:   userText,
		}, &entity.ChatMessage{
			UserId:    userId,
			SessionId: sessionId,
			Role:      entity.ChatRoleAssistant,
			Content:   aiText,
		}
}

// --- tests ---

func TestUpdaterFullPass(t *testing.T) {
	updater, memories, messages, _ := newFixture()
	userId := uuid.New()

	userMsg, aiMsg := exchange(userId, "s1", "I am learning Rust and I like hiking", "Nice, tell me more")
	updater.Update(context.Background(), userId, "s1", userMsg, aiMsg)

	mem := memories.byUser[userId]
	if mem == nil {
		t.Fatal("memory was not created on first exchange")
	}
	if mem.Metrics.TotalMessages != 1 {
		t.Errorf("totalMessages = %d, want 1", mem.Metrics.TotalMessages)
	}
	topics := make(map[string]int)
	for _, topic := range mem.KeyTopics {
		topics[topic.Topic] = topic.Frequency
	}
	for _, want := range []string{"learning", "hiking"} {
		if topics[want] != 1 {
			t.Errorf("topic %q frequency = %d, want 1", want, topics[want])
		}
	}
	if mem.Summary == "" {
		t.Error("summary not appended")
	}
	if len(messages.created) != 2 {
		t.Fatalf("appended %d message rows, want 2", len(messages.created))
	}
	if messages.created[0].Role != entity.ChatRoleUser || messages.created[1].Role != entity.ChatRoleAssistant {
		t.Error("message rows appended out of order")
	}
}

func TestUpdaterMemoryFailureStillAppendsMessages(t *testing.T) {
	updater, memories, messages, log := newFixture()
	memories.getErr = errors.New("store down")
	userId := uuid.New()

	userMsg, aiMsg := exchange(userId, "s1", "hello there", "hi")
	updater.Update(context.Background(), userId, "s1", userMsg, aiMsg)

	if len(messages.created) != 2 {
		t.Errorf("appended %d message rows despite memory failure, want 2", len(messages.created))
	}
	if len(log.warnings) == 0 {
		t.Error("memory failure was not logged")
	}
}

func TestUpdaterPersistFailureIsSwallowed(t *testing.T) {
	updater, memories, messages, log := newFixture()
	memories.updateErr = errors.New("write refused")
	userId := uuid.New()

	userMsg, aiMsg := exchange(userId, "s1", "testing failure paths", "ok")
	updater.Update(context.Background(), userId, "s1", userMsg, aiMsg)

	if len(messages.created) != 2 {
		t.Errorf("message append skipped after persist failure")
	}
	if len(log.warnings) == 0 {
		t.Error("persist failure was not logged")
	}
}

func TestUpdaterTwoUsersStayIsolated(t *testing.T) {
	updater, memories, _, _ := newFixture()
	alice := uuid.New()
	bob := uuid.New()

	aliceUser, aliceAi := exchange(alice, "sa", "I love kubernetes and devops", "cool")
	bobUser, bobAi := exchange(bob, "sb", "painting watercolor landscapes", "lovely")

	updater.Update(context.Background(), alice, "sa", aliceUser, aliceAi)
	updater.Update(context.Background(), bob, "sb", bobUser, bobAi)

	aliceMem := memories.byUser[alice]
	for _, topic := range aliceMem.KeyTopics {
		if topic.Topic == "painting" || topic.Topic == "watercolor" {
			t.Errorf("bob's topic %q leaked into alice's memory", topic.Topic)
		}
	}
	bobMem := memories.byUser[bob]
	for _, topic := range bobMem.KeyTopics {
		if topic.Topic == "kubernetes" {
			t.Errorf("alice's topic leaked into bob's memory")
		}
	}
}

func TestUpdaterConcurrentUsersStayIsolated(t *testing.T) {
	updater, memories, messages, _ := newFixture()
	alice := uuid.New()
	bob := uuid.New()

	const rounds = 25
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			userMsg, aiMsg := exchange(alice, "sa", "I love kubernetes and devops", "cool")
			updater.Update(context.Background(), alice, "sa", userMsg, aiMsg)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			userMsg, aiMsg := exchange(bob, "sb", "painting watercolor landscapes", "lovely")
			updater.Update(context.Background(), bob, "sb", userMsg, aiMsg)
		}
	}()
	wg.Wait()

	aliceMem := memories.byUser[alice]
	bobMem := memories.byUser[bob]
	if aliceMem.Metrics.TotalMessages != rounds {
		t.Errorf("alice totalMessages = %d, want %d", aliceMem.Metrics.TotalMessages, rounds)
	}
	if bobMem.Metrics.TotalMessages != rounds {
		t.Errorf("bob totalMessages = %d, want %d", bobMem.Metrics.TotalMessages, rounds)
	}
	for _, topic := range aliceMem.KeyTopics {
		if topic.Topic == "painting" || topic.Topic == "watercolor" {
			t.Errorf("bob's topic %q leaked into alice's memory", topic.Topic)
		}
	}
	for _, topic := range bobMem.KeyTopics {
		if topic.Topic == "kubernetes" {
			t.Errorf("alice's topic leaked into bob's memory")
		}
	}
	if len(messages.created) != 4*rounds {
		t.Errorf("appended %d message rows, want %d", len(messages.created), 4*rounds)
	}
}

func TestUpdaterTwentiethMessageRebuildsSummary(t *testing.T) {
	updater, memories, _, _ := newFixture()
	userId := uuid.New()

	for i := 0; i < 19; i++ {
		userMsg, aiMsg := exchange(userId, "s1", "talking about golang concurrency", "sure")
		updater.Update(context.Background(), userId, "s1", userMsg, aiMsg)
	}
	if memories.byUser[userId].MemoryVersion != 0 {
		t.Fatal("summary rebuilt before the 20th message")
	}

	userMsg, aiMsg := exchange(userId, "s1", "talking about golang concurrency", "sure")
	updater.Update(context.Background(), userId, "s1", userMsg, aiMsg)

	mem := memories.byUser[userId]
	if mem.MemoryVersion != 1 {
		t.Errorf("memoryVersion = %d, want 1 after 20th message", mem.MemoryVersion)
	}
}
