package impl

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"plume/config"
	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/domain/service"
	mockRepo "plume/internal/mocks/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSiteConfig() *config.Config {
	cfg := &config.Config{
		Site: &config.SiteConfig{BaseURL: "https://example.com", FeedPath: "/feed", Name: "Example"},
	}
	cfg.ApplyDefaults()

	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingListener captures dispatched entry events.
type recordingListener struct {
	mu     sync.Mutex
	events []service.EntryEvent
}

func (l *recordingListener) EntryChanged(_ context.Context, event service.EntryEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.events)
}

func newEntryServiceForTest(t *testing.T, entryRepo repository.EntryRepository, mentionRepo repository.MentionRepository, listeners ...service.PublishListener) *entryService {
	t.Helper()

	txManager := &mockRepo.StubTransactionManager{
		Factory: &mockRepo.StubRepositoryFactory{EntryRepo: entryRepo, MentionRepo: mentionRepo},
	}

	return NewEntryService(txManager, testSiteConfig(), testLogger(), listeners).(*entryService)
}

func TestCreateEntry_AssignsIdentity(t *testing.T) {
	ctx := context.Background()
	entryRepo := mockRepo.NewMockEntryRepository(t)
	listener := &recordingListener{}

	var created *entity.Entry
	entryRepo.EXPECT().CreateEntry(ctx, mock.AnythingOfType("*entity.Entry")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Entry)
		}).
		Return(nil)

	srv := newEntryServiceForTest(t, entryRepo, nil, listener)

	doc := entity.Document{
		Type: []string{"h-entry"},
		Properties: entity.Properties{
			Content: []entity.Content{{Value: "hello world"}},
		},
	}

	entry, err := srv.CreateEntry(ctx, doc)
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEqual(t, uuid.Nil, entry.UUID)
	assert.Equal(t, "https://example.com/entries/"+entry.UUID.String(), entry.Location)
	assert.Equal(t, []string{entry.UUID.String()}, entry.Content.Properties.UID)
	assert.Equal(t, []string{entry.Location}, entry.Content.Properties.URL)
	assert.NotEmpty(t, entry.Content.Properties.Published)

	require.Eventually(t, func() bool { return listener.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestCreateEntry_RejectsNonEntry(t *testing.T) {
	srv := newEntryServiceForTest(t, mockRepo.NewMockEntryRepository(t), nil)

	_, err := srv.CreateEntry(context.Background(), entity.Document{Type: []string{"h-card"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestCreateEntry_RejectsForeignLocation(t *testing.T) {
	srv := newEntryServiceForTest(t, mockRepo.NewMockEntryRepository(t), nil)

	doc := entity.Document{
		Type:       []string{"h-entry"},
		Properties: entity.Properties{URL: []string{"https://elsewhere.example/post"}},
	}

	_, err := srv.CreateEntry(context.Background(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestCreateEntry_LocationConflict(t *testing.T) {
	ctx := context.Background()
	entryRepo := mockRepo.NewMockEntryRepository(t)
	entryRepo.EXPECT().CreateEntry(ctx, mock.Anything).Return(repository.ErrDuplicateLocation)

	srv := newEntryServiceForTest(t, entryRepo, nil)

	doc := entity.Document{
		Type:       []string{"h-entry"},
		Properties: entity.Properties{URL: []string{"https://example.com/taken"}},
	}

	_, err := srv.CreateEntry(ctx, doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrLocationConflict)
}

func TestUpdateEntry_PreservesIdentityAndUnknownProperties(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	createdAt := time.Now().UTC().Add(-time.Hour)

	stored := &entity.Entry{
		UUID:     id,
		Author:   "https://example.com",
		Location: "https://example.com/entries/" + id.String(),
		Content: entity.Document{
			Type: []string{"h-entry"},
			Properties: entity.Properties{
				Name:    []string{"old title"},
				Unknown: map[string]json.RawMessage{"x-custom": json.RawMessage(`["keep me"]`)},
			},
		},
		CreatedAt:      createdAt,
		LastModifiedAt: createdAt,
	}

	entryRepo := mockRepo.NewMockEntryRepository(t)
	entryRepo.EXPECT().FindEntryByUUID(ctx, id).Return(stored, nil)

	var updated *entity.Entry
	entryRepo.EXPECT().UpdateEntry(ctx, mock.AnythingOfType("*entity.Entry")).
		Run(func(args mock.Arguments) {
			updated = args.Get(1).(*entity.Entry)
		}).
		Return(nil)

	srv := newEntryServiceForTest(t, entryRepo, nil)

	result, err := srv.UpdateEntry(ctx, id, entity.Document{
		Properties: entity.Properties{Name: []string{"new title"}},
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, id, result.UUID)
	assert.Equal(t, createdAt, result.CreatedAt)
	assert.Equal(t, []string{"new title"}, result.Content.Properties.Name)
	assert.Contains(t, result.Content.Properties.Unknown, "x-custom")
	assert.NotEmpty(t, result.Content.Properties.Updated)
	assert.True(t, result.LastModifiedAt.After(createdAt))
}

func TestUpdateEntry_Tombstone(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	entryRepo := mockRepo.NewMockEntryRepository(t)
	entryRepo.EXPECT().FindEntryByUUID(ctx, id).Return(&entity.Entry{UUID: id, Deleted: true}, nil)

	srv := newEntryServiceForTest(t, entryRepo, nil)

	_, err := srv.UpdateEntry(ctx, id, entity.Document{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEntryGone)
}

func TestDeleteEntry_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	entryRepo := mockRepo.NewMockEntryRepository(t)
	entryRepo.EXPECT().FindEntryByUUID(ctx, id).Return(&entity.Entry{UUID: id, Deleted: true}, nil)

	srv := newEntryServiceForTest(t, entryRepo, nil)

	require.NoError(t, srv.DeleteEntry(ctx, id))
}

func TestUndeleteEntry_RestoresSameUUID(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	listener := &recordingListener{}

	entryRepo := mockRepo.NewMockEntryRepository(t)
	entryRepo.EXPECT().FindEntryByUUID(ctx, id).
		Return(&entity.Entry{UUID: id, Location: "https://example.com/entries/" + id.String(), Deleted: true}, nil)
	entryRepo.EXPECT().SetDeleted(ctx, id, false).Return(nil)

	srv := newEntryServiceForTest(t, entryRepo, nil, listener)

	require.NoError(t, srv.UndeleteEntry(ctx, id))
	require.Eventually(t, func() bool { return listener.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestGetThread_MixesLocalAndExternalReplies(t *testing.T) {
	ctx := context.Background()
	rootID := uuid.New()
	localID := uuid.New()
	externalID := uuid.New()

	rootLocation := "https://example.com/entries/" + rootID.String()
	localLocation := "https://example.com/entries/" + localID.String()

	root := &entity.Entry{UUID: rootID, Location: rootLocation, Content: entity.Document{Type: []string{"h-entry"}}}
	local := &entity.Entry{UUID: localID, Location: localLocation, Content: entity.Document{Type: []string{"h-entry"}}}

	entryRepo := mockRepo.NewMockEntryRepository(t)
	mentionRepo := mockRepo.NewMockMentionRepository(t)

	entryRepo.EXPECT().FindEntryByUUID(ctx, rootID).Return(root, nil)
	mentionRepo.EXPECT().FindVerifiedIncomingByTarget(ctx, rootLocation).Return([]*entity.Mention{
		{UUID: localID, Source: localLocation, Target: rootLocation, Status: entity.MentionVerified},
		{UUID: externalID, Source: "https://other.example/reply", Target: rootLocation, Status: entity.MentionVerified},
	}, nil)
	entryRepo.EXPECT().FindEntryByLocation(ctx, localLocation).Return(local, nil)
	entryRepo.EXPECT().FindEntryByLocation(ctx, "https://other.example/reply").Return(nil, repository.ErrEntryNotFound)
	mentionRepo.EXPECT().FindVerifiedIncomingByTarget(ctx, localLocation).Return(nil, nil)

	srv := newEntryServiceForTest(t, entryRepo, mentionRepo)

	thread, err := srv.GetThread(ctx, rootID)
	require.NoError(t, err)
	require.Len(t, thread.Children, 2)
	assert.Equal(t, localID, thread.Children[0].Entry.UUID)
	assert.Equal(t, "https://other.example/reply", thread.Children[1].Entry.Location)
}

func TestGetThread_DeletedRootIsGone(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	entryRepo := mockRepo.NewMockEntryRepository(t)
	entryRepo.EXPECT().FindEntryByUUID(ctx, id).Return(&entity.Entry{UUID: id, Deleted: true}, nil)

	srv := newEntryServiceForTest(t, entryRepo, mockRepo.NewMockMentionRepository(t))

	_, err := srv.GetThread(ctx, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrEntryGone)
}

func TestSearchEntries_EmptyQuery(t *testing.T) {
	srv := newEntryServiceForTest(t, mockRepo.NewMockEntryRepository(t), nil)

	_, err := srv.SearchEntries(context.Background(), "   ", 10, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}
