package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/serverutils"
	"ai-assistant-be/internal/repository/contract"
	repomem "ai-assistant-be/internal/repository/memory"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/chatcontext"
	"ai-assistant-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// --- fakes ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users[user.Id] = user
	return nil
}
func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}
func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			return r.users[byId.ID], nil
		}
	}
	return nil, nil
}
func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeUserRepo) MarkVerified(ctx context.Context, userId uuid.UUID) error    { return nil }
func (r *fakeUserRepo) UpdateLastLogin(ctx context.Context, userId uuid.UUID) error { return nil }
func (r *fakeUserRepo) UpdatePreferences(ctx context.Context, userId uuid.UUID, prefs entity.UserPreferences) error {
	return nil
}
func (r *fakeUserRepo) IncrementUsage(ctx context.Context, userId uuid.UUID) error {
	if u, ok := r.users[userId]; ok {
		u.Usage.MessagesThisMonth++
		u.Usage.TotalMessages++
	}
	return nil
}
func (r *fakeUserRepo) ResetMonthlyUsage(ctx context.Context, userId uuid.UUID) error { return nil }

type fakeMemoryRepo struct{}

func (r *fakeMemoryRepo) GetOrCreate(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error) {
	return nil, nil
}
func (r *fakeMemoryRepo) Find(ctx context.Context, userId uuid.UUID) (*entity.UserMemory, error) {
	return nil, nil
}
func (r *fakeMemoryRepo) Update(ctx context.Context, memory *entity.UserMemory) error { return nil }
func (r *fakeMemoryRepo) Delete(ctx context.Context, userId uuid.UUID) error          { return nil }

type fakeMessageRepo struct {
	byUser map[uuid.UUID][]*entity.ChatMessage
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	r.byUser[m.UserId] = append(r.byUser[m.UserId], m)
	return nil
}
func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	return nil, nil
}
func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	var userId uuid.UUID
	sessionFilter := ""
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OwnedBy:
			userId = s.UserID
		case specification.BySessionID:
			sessionFilter = s.SessionID
		}
	}
	var out []*entity.ChatMessage
	for _, m := range r.byUser[userId] {
		if sessionFilter == "" || m.SessionId == sessionFilter {
			out = append(out, m)
		}
	}
	return out, nil
}
func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeMessageRepo) DeleteBySession(ctx context.Context, userId uuid.UUID, sessionId string) (int64, error) {
	kept := r.byUser[userId][:0]
	var deleted int64
	for _, m := range r.byUser[userId] {
		if m.SessionId == sessionId {
			deleted++
		} else {
			kept = append(kept, m)
		}
	}
	r.byUser[userId] = kept
	return deleted, nil
}
func (r *fakeMessageRepo) ListSessions(ctx context.Context, userId uuid.UUID) ([]*entity.SessionSummary, error) {
	return nil, nil
}

type fakeOwnerRepo struct {
	owners map[string]*entity.SessionOwner
}

func (r *fakeOwnerRepo) Claim(ctx context.Context, owner *entity.SessionOwner) (*entity.SessionOwner, error) {
	if existing, ok := r.owners[owner.SessionId]; ok {
		return existing, nil
	}
	r.owners[owner.SessionId] = owner
	return owner, nil
}
func (r *fakeOwnerRepo) Find(ctx context.Context, sessionId string) (*entity.SessionOwner, error) {
	return r.owners[sessionId], nil
}
func (r *fakeOwnerRepo) Delete(ctx context.Context, sessionId string) error {
	delete(r.owners, sessionId)
	return nil
}

type fakeUnitOfWork struct {
	users    *fakeUserRepo
	memories *fakeMemoryRepo
	messages *fakeMessageRepo
	owners   *fakeOwnerRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }
func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return u.users
}
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messages
}
func (u *fakeUnitOfWork) SessionOwnerRepository() contract.SessionOwnerRepository {
	return u.owners
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

type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (p *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (*llm.Result, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &llm.Result{Content: p.reply, FinishReason: "stop"}, nil
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Result, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type capturingPublisher struct {
	published []*message.Message
	err       error
}

func (p *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, messages...)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

// --- fixture ---

type chatFixture struct {
	svc       IChatService
	uow       *fakeUnitOfWork
	provider  *fakeProvider
	publisher *capturingPublisher
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	uow := &fakeUnitOfWork{
		users:    &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)},
		memories: &fakeMemoryRepo{},
		messages: &fakeMessageRepo{byUser: make(map[uuid.UUID][]*entity.ChatMessage)},
		owners:   &fakeOwnerRepo{owners: make(map[string]*entity.SessionOwner)},
	}
	factory := &fakeFactory{uow: uow}
	provider := &fakeProvider{reply: "Hello back!"}
	publisher := &capturingPublisher{}
	cfg := &config.Config{}
	cfg.Auth.FreePlanLimit = 100
	cfg.Auth.PremiumLimit = 1000
	cfg.Ai.Temperature = 0.7
	cfg.Ai.MaxTokens = 2000
	cfg.Ai.LLMModel = "test-model"

	assembler := chatcontext.NewAssembler(factory, nopLogger{})
	svc := NewChatService(factory, assembler, provider, publisher, repomem.NewUsageCache(), cfg, nopLogger{})
	return &chatFixture{svc: svc, uow: uow, provider: provider, publisher: publisher}
}

func (f *chatFixture) addUser(plan entity.UserPlan) *entity.User {
	user := &entity.User{
		Id:          uuid.New(),
		Username:    "tester",
		DisplayName: "Tester",
		Plan:        plan,
		Preferences: entity.DefaultUserPreferences(),
		Usage:       entity.UserUsage{LastResetDate: time.Now()},
		IsActive:    true,
	}
	f.uow.users.users[user.Id] = user
	return user
}

// --- tests ---

func TestSendMessageHappyPath(t *testing.T) {
	f := newChatFixture(t)
	user := f.addUser(entity.UserPlanFree)

	resp, err := f.svc.SendMessage(context.Background(), user.Id, &dto.SendMessageRequest{
		Message: "hello there",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.SessionId, "session id must be generated when absent")
	assert.Equal(t, "hello there", resp.Sent.Content)
	assert.Equal(t, "Hello back!", resp.Reply.Content)
	assert.False(t, resp.Degraded)
	assert.Len(t, f.publisher.published, 1, "one maintenance message per exchange")
}

func TestSendMessageForeignSessionForbidden(t *testing.T) {
	f := newChatFixture(t)
	alice := f.addUser(entity.UserPlanFree)
	bob := f.addUser(entity.UserPlanFree)

	resp, err := f.svc.SendMessage(context.Background(), alice.Id, &dto.SendMessageRequest{
		SessionId: "shared-session",
		Message:   "alice was here first",
	})
	assert.NoError(t, err)
	assert.Equal(t, "shared-session", resp.SessionId)

	_, err = f.svc.SendMessage(context.Background(), bob.Id, &dto.SendMessageRequest{
		SessionId: "shared-session",
		Message:   "bob trying to intrude",
	})
	var appErr *serverutils.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)
	assert.Empty(t, f.uow.messages.byUser[bob.Id], "no row may be written for the rejected writer")
}

func TestSendMessageUpstreamFailureFallsBack(t *testing.T) {
	f := newChatFixture(t)
	user := f.addUser(entity.UserPlanFree)
	f.provider.err = errors.New("provider exploded")

	resp, err := f.svc.SendMessage(context.Background(), user.Id, &dto.SendMessageRequest{
		Message: "hello?",
	})
	assert.NoError(t, err, "provider failure must not surface")
	assert.True(t, resp.Degraded)
	assert.Contains(t, resp.Reply.Content, "apologize")
	assert.Len(t, f.publisher.published, 1, "fallback reply is still recorded")
}

func TestSendMessagePlanLimit(t *testing.T) {
	f := newChatFixture(t)
	user := f.addUser(entity.UserPlanFree)
	user.Usage.MessagesThisMonth = 100

	_, err := f.svc.SendMessage(context.Background(), user.Id, &dto.SendMessageRequest{
		Message: "over the line",
	})
	var appErr *serverutils.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 429, appErr.Status)
	assert.Zero(t, f.provider.calls, "no provider call once the limit is hit")
}

func TestSendMessageMonthRollover(t *testing.T) {
	f := newChatFixture(t)
	user := f.addUser(entity.UserPlanFree)
	user.Usage.MessagesThisMonth = 100
	user.Usage.LastResetDate = time.Now().AddDate(0, -1, 0)

	_, err := f.svc.SendMessage(context.Background(), user.Id, &dto.SendMessageRequest{
		Message: "new month, fresh allowance",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, user.Usage.MessagesThisMonth, "counter restarts after the rollover")
}

func TestSendMessageEnterpriseUnlimited(t *testing.T) {
	f := newChatFixture(t)
	user := f.addUser(entity.UserPlanEnterprise)
	user.Usage.MessagesThisMonth = 100000

	_, err := f.svc.SendMessage(context.Background(), user.Id, &dto.SendMessageRequest{
		Message: "still going",
	})
	assert.NoError(t, err)
}

func TestSendMessagePublishFailureDoesNotSurface(t *testing.T) {
	f := newChatFixture(t)
	user := f.addUser(entity.UserPlanFree)
	f.publisher.err = errors.New("bus down")

	resp, err := f.svc.SendMessage(context.Background(), user.Id, &dto.SendMessageRequest{
		Message: "fire and forget",
	})
	assert.NoError(t, err, "maintenance is best-effort")
	assert.Equal(t, "Hello back!", resp.Reply.Content)
}

func TestDeleteSessionOwnership(t *testing.T) {
	f := newChatFixture(t)
	alice := f.addUser(entity.UserPlanFree)
	bob := f.addUser(entity.UserPlanFree)

	_, err := f.svc.SendMessage(context.Background(), alice.Id, &dto.SendMessageRequest{
		SessionId: "alice-session",
		Message:   "mine",
	})
	assert.NoError(t, err)

	_, err = f.svc.DeleteSession(context.Background(), bob.Id, "alice-session")
	var appErr *serverutils.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.Status)

	_, err = f.svc.DeleteSession(context.Background(), bob.Id, "no-such-session")
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)

	resp, err := f.svc.DeleteSession(context.Background(), alice.Id, "alice-session")
	assert.NoError(t, err)
	assert.Equal(t, "alice-session", resp.SessionId)
}

func TestGetHistoryIsUserScoped(t *testing.T) {
	f := newChatFixture(t)
	alice := f.addUser(entity.UserPlanFree)
	bob := f.addUser(entity.UserPlanFree)

	f.uow.messages.byUser[alice.Id] = []*entity.ChatMessage{
		{Id: uuid.New(), UserId: alice.Id, SessionId: "sa", Role: entity.ChatRoleUser, Content: "alice secret", CreatedAt: time.Now()},
	}
	f.uow.messages.byUser[bob.Id] = []*entity.ChatMessage{
		{Id: uuid.New(), UserId: bob.Id, SessionId: "sb", Role: entity.ChatRoleUser, Content: "bob secret", CreatedAt: time.Now()},
	}

	history, err := f.svc.GetHistory(context.Background(), alice.Id, "", 0)
	assert.NoError(t, err)
	for _, m := range history {
		assert.False(t, strings.Contains(m.Content, "bob"), "cross-user leakage in history")
	}
}
