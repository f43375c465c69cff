package impl

import (
	"context"
	"testing"

	"plume/internal/domain/entity"
	domainerrors "plume/internal/domain/errors"
	"plume/internal/domain/repository"
	"plume/internal/domain/service"
	mockRepo "plume/internal/mocks/repository"
	mockService "plume/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mentionFixture struct {
	entryRepo   *mockRepo.MockEntryRepository
	mentionRepo *mockRepo.MockMentionRepository
	trustedRepo *mockRepo.MockTrustedDomainRepository
	client      *mockService.MockMentionClient
	srv         *mentionService
}

func newMentionFixture(t *testing.T) *mentionFixture {
	t.Helper()

	f := &mentionFixture{
		entryRepo:   mockRepo.NewMockEntryRepository(t),
		mentionRepo: mockRepo.NewMockMentionRepository(t),
		trustedRepo: mockRepo.NewMockTrustedDomainRepository(t),
		client:      mockService.NewMockMentionClient(t),
	}

	txManager := &mockRepo.StubTransactionManager{
		Factory: &mockRepo.StubRepositoryFactory{EntryRepo: f.entryRepo, MentionRepo: f.mentionRepo},
	}
	f.srv = NewMentionService(txManager, f.client, f.trustedRepo, testSiteConfig(), testLogger()).(*mentionService)
	// Run the verification leg inline so assertions see its effects.
	f.srv.async = func(fn func()) { fn() }

	return f
}

func incomingMention(source, target string) *entity.Mention {
	return &entity.Mention{
		UUID:      uuid.New(),
		Direction: entity.MentionIncoming,
		Source:    source,
		Target:    target,
		Status:    entity.MentionPending,
	}
}

func TestReceiveMention_RejectsEqualSourceAndTarget(t *testing.T) {
	f := newMentionFixture(t)

	_, err := f.srv.ReceiveMention(context.Background(), "https://example.com/a", "https://example.com/a", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestReceiveMention_RejectsNonHTTPSource(t *testing.T) {
	f := newMentionFixture(t)

	_, err := f.srv.ReceiveMention(context.Background(), "ftp://files.example/x", "https://example.com/entries/1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestReceiveMention_RejectsForeignTarget(t *testing.T) {
	f := newMentionFixture(t)

	_, err := f.srv.ReceiveMention(context.Background(), "https://other.example/post", "https://elsewhere.example/page", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
}

func TestReceiveMention_VouchRequired(t *testing.T) {
	f := newMentionFixture(t)
	f.srv.cfg.WebMention.RequireVouch = true

	_, err := f.srv.ReceiveMention(context.Background(), "https://other.example/post", "https://example.com/entries/1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrVouchRequired)
}

func TestReceiveMention_RejectsUnknownTarget(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)
	f.srv.async = func(func()) {}

	// Base-URL-prefixed but no live entry behind it.
	f.entryRepo.EXPECT().FindEntryByLocation(ctx, "https://example.com/entries/does-not-exist").
		Return(nil, repository.ErrEntryNotFound)

	_, err := f.srv.ReceiveMention(ctx, "https://other.example/post", "https://example.com/entries/does-not-exist", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidRequest)
	f.mentionRepo.AssertNotCalled(t, "UpsertMention", mock.Anything, mock.Anything)
}

func TestReceiveMention_SchedulesVerification(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	var scheduled bool
	f.srv.async = func(func()) { scheduled = true }

	stored := incomingMention("https://other.example/post", "https://example.com/entries/1")
	f.entryRepo.EXPECT().FindEntryByLocation(ctx, "https://example.com/entries/1").
		Return(&entity.Entry{UUID: uuid.New(), Location: "https://example.com/entries/1"}, nil)
	f.mentionRepo.EXPECT().UpsertMention(ctx, mock.AnythingOfType("*entity.Mention")).
		Run(func(args mock.Arguments) {
			upserted := args.Get(1).(*entity.Mention)
			assert.Equal(t, entity.MentionPending, upserted.Status)
			assert.Equal(t, entity.MentionIncoming, upserted.Direction)
		}).
		Return(stored, nil)

	result, err := f.srv.ReceiveMention(ctx, "https://other.example/post", "https://example.com/entries/1", "")
	require.NoError(t, err)
	assert.Equal(t, stored.UUID, result.UUID)
	assert.True(t, scheduled)
}

func TestReceiveMention_ResubmissionKeepsStoredUUID(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)
	f.srv.async = func(func()) {}

	// The repository resolves the (source, target) conflict and hands back
	// the original row.
	original := incomingMention("https://other.example/post", "https://example.com/entries/1")
	f.entryRepo.EXPECT().FindEntryByLocation(ctx, "https://example.com/entries/1").
		Return(&entity.Entry{UUID: uuid.New(), Location: "https://example.com/entries/1"}, nil)
	f.mentionRepo.EXPECT().UpsertMention(ctx, mock.Anything).Return(original, nil)

	result, err := f.srv.ReceiveMention(ctx, "https://other.example/post", "https://example.com/entries/1", "")
	require.NoError(t, err)
	assert.Equal(t, original.UUID, result.UUID)
}

func TestVerifyMention_BacklinkConfirmed(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	mention := incomingMention("https://other.example/post", "https://example.com/entries/1")
	page := &service.SourcePage{URL: mention.Source, ContentType: "text/html"}

	f.mentionRepo.EXPECT().FindMentionByUUID(ctx, mention.UUID).Return(mention, nil)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "other.example").Return(false, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Source).Return(page, nil)
	f.client.EXPECT().LinksBack(page, mention.Target).Return(true)
	f.mentionRepo.EXPECT().UpdateMentionStatus(ctx, mention.UUID, entity.MentionVerified, "", mock.Anything).Return(nil)
	// Salmention: the target entry is looked up for re-announcement.
	f.entryRepo.EXPECT().FindEntryByLocation(ctx, mention.Target).Return(nil, repository.ErrEntryNotFound)

	require.NoError(t, f.srv.VerifyMention(ctx, mention.UUID))
}

func TestVerifyMention_NoBacklinkIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	mention := incomingMention("https://other.example/post", "https://example.com/entries/1")
	page := &service.SourcePage{URL: mention.Source, ContentType: "text/html"}

	f.mentionRepo.EXPECT().FindMentionByUUID(ctx, mention.UUID).Return(mention, nil)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "other.example").Return(false, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Source).Return(page, nil)
	f.client.EXPECT().LinksBack(page, mention.Target).Return(false)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(ctx, mention.UUID, entity.MentionRejected, "source does not link to target", mock.Anything).
		Return(nil)

	require.NoError(t, f.srv.VerifyMention(ctx, mention.UUID))
}

func TestVerifyMention_TrustedDomainWaivesBacklink(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)
	f.srv.cfg.WebMention.TrustedSkipsBacklink = true

	mention := incomingMention("https://friend.example/post", "https://example.com/entries/1")
	page := &service.SourcePage{URL: mention.Source, ContentType: "text/html"}

	f.mentionRepo.EXPECT().FindMentionByUUID(ctx, mention.UUID).Return(mention, nil)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "friend.example").Return(true, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Source).Return(page, nil)
	f.client.EXPECT().LinksBack(page, mention.Target).Return(false)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(ctx, mention.UUID, entity.MentionVerified, "backlink waived for trusted domain", mock.Anything).
		Return(nil)
	f.entryRepo.EXPECT().FindEntryByLocation(ctx, mention.Target).Return(nil, repository.ErrEntryNotFound)

	require.NoError(t, f.srv.VerifyMention(ctx, mention.UUID))
}

func TestVerifyMention_UntrustedWithoutVouchGoesToModeration(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)
	f.srv.cfg.WebMention.RequireVouch = true

	mention := incomingMention("https://other.example/post", "https://example.com/entries/1")
	page := &service.SourcePage{URL: mention.Source, ContentType: "text/html"}

	f.mentionRepo.EXPECT().FindMentionByUUID(ctx, mention.UUID).Return(mention, nil)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "other.example").Return(false, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Source).Return(page, nil)
	f.client.EXPECT().LinksBack(page, mention.Target).Return(true)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(ctx, mention.UUID, entity.MentionModeration, "untrusted source without vouch", mock.Anything).
		Return(nil)

	require.NoError(t, f.srv.VerifyMention(ctx, mention.UUID))
}

func TestVerifyMention_InvalidVouchGoesToModeration(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	mention := incomingMention("https://other.example/post", "https://example.com/entries/1")
	mention.Vouch = "https://voucher.example/links"
	page := &service.SourcePage{URL: mention.Source, ContentType: "text/html"}

	f.mentionRepo.EXPECT().FindMentionByUUID(ctx, mention.UUID).Return(mention, nil)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "other.example").Return(false, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Source).Return(page, nil)
	f.client.EXPECT().LinksBack(page, mention.Target).Return(true)
	// The vouch page lives on an untrusted domain, so it cannot vouch.
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "voucher.example").Return(false, nil)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(ctx, mention.UUID, entity.MentionModeration, "vouch could not be validated", mock.Anything).
		Return(nil)

	require.NoError(t, f.srv.VerifyMention(ctx, mention.UUID))
}

func TestVerifyMention_ValidVouchVerifies(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	mention := incomingMention("https://other.example/post", "https://example.com/entries/1")
	mention.Vouch = "https://voucher.example/links"
	page := &service.SourcePage{URL: mention.Source, ContentType: "text/html"}
	vouchPage := &service.SourcePage{URL: mention.Vouch, ContentType: "text/html"}

	f.mentionRepo.EXPECT().FindMentionByUUID(ctx, mention.UUID).Return(mention, nil)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "other.example").Return(false, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Source).Return(page, nil)
	f.client.EXPECT().LinksBack(page, mention.Target).Return(true)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "voucher.example").Return(true, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Vouch).Return(vouchPage, nil)
	f.client.EXPECT().LinksBack(vouchPage, mention.Source).Return(true)
	f.mentionRepo.EXPECT().UpdateMentionStatus(ctx, mention.UUID, entity.MentionVerified, "", mock.Anything).Return(nil)
	f.entryRepo.EXPECT().FindEntryByLocation(ctx, mention.Target).Return(nil, repository.ErrEntryNotFound)

	require.NoError(t, f.srv.VerifyMention(ctx, mention.UUID))
}

func TestVerifyMention_FetchFailureRecordsError(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	mention := incomingMention("https://other.example/post", "https://example.com/entries/1")

	f.mentionRepo.EXPECT().FindMentionByUUID(ctx, mention.UUID).Return(mention, nil)
	f.trustedRepo.EXPECT().IsTrustedDomain(ctx, "other.example").Return(false, nil)
	f.client.EXPECT().FetchSource(ctx, mention.Source).Return(nil, errors.New("connection refused"))
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(ctx, mention.UUID, entity.MentionError, "connection refused", mock.Anything).
		Return(nil)

	require.NoError(t, f.srv.VerifyMention(ctx, mention.UUID))
}

func TestSendMentions_NoEndpointRecordedNotRetried(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	entry := &entity.Entry{
		UUID:     uuid.New(),
		Location: "https://example.com/entries/1",
		Content: entity.Document{
			Type:       []string{"h-entry"},
			Properties: entity.Properties{InReplyTo: []string{"https://silent.example/post"}},
		},
	}

	stored := &entity.Mention{UUID: uuid.New(), Direction: entity.MentionOutgoing}
	f.mentionRepo.EXPECT().UpsertMention(mock.Anything, mock.AnythingOfType("*entity.Mention")).Return(stored, nil)
	f.trustedRepo.EXPECT().AddTrustedDomain(mock.Anything, "silent.example").Return(nil)
	f.client.EXPECT().DiscoverEndpoint(mock.Anything, "https://silent.example/post").Return("", nil)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(mock.Anything, stored.UUID, entity.MentionNoEndpoint, "target advertises no webmention endpoint", mock.Anything).
		Return(nil)

	require.NoError(t, f.srv.SendMentionsForEntry(ctx, entry))
}

func TestSendMentions_DeliveryFailureIsolatedPerTarget(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	entry := &entity.Entry{
		UUID:     uuid.New(),
		Location: "https://example.com/entries/1",
		Content: entity.Document{
			Type: []string{"h-entry"},
			Properties: entity.Properties{
				InReplyTo: []string{"https://up.example/post", "https://down.example/post"},
			},
		},
	}

	f.mentionRepo.EXPECT().UpsertMention(mock.Anything, mock.Anything).
		Return(&entity.Mention{UUID: uuid.New()}, nil).
		Twice()
	f.trustedRepo.EXPECT().AddTrustedDomain(mock.Anything, "up.example").Return(nil)
	f.trustedRepo.EXPECT().AddTrustedDomain(mock.Anything, "down.example").Return(nil)
	f.client.EXPECT().DiscoverEndpoint(mock.Anything, "https://up.example/post").
		Return("https://up.example/webmention", nil)
	f.client.EXPECT().DiscoverEndpoint(mock.Anything, "https://down.example/post").
		Return("https://down.example/webmention", nil)
	f.client.EXPECT().
		Deliver(mock.Anything, "https://up.example/webmention", entry.Location, "https://up.example/post", "").
		Return(nil)
	f.client.EXPECT().
		Deliver(mock.Anything, "https://down.example/webmention", entry.Location, "https://down.example/post", "").
		Return(errors.New("503 after retries"))
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(mock.Anything, mock.Anything, entity.MentionVerified, "", mock.Anything).
		Return(nil)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(mock.Anything, mock.Anything, entity.MentionError, "503 after retries", mock.Anything).
		Return(nil)

	// One dead target must not fail the fan-out.
	require.NoError(t, f.srv.SendMentionsForEntry(ctx, entry))
}

func TestSendMentions_TargetDomainJoinsAllowList(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	entry := &entity.Entry{
		UUID:     uuid.New(),
		Location: "https://example.com/entries/1",
		Content: entity.Document{
			Type:       []string{"h-entry"},
			Properties: entity.Properties{InReplyTo: []string{"https://friend.example/post"}},
		},
	}

	stored := &entity.Mention{UUID: uuid.New(), Direction: entity.MentionOutgoing}
	f.mentionRepo.EXPECT().UpsertMention(mock.Anything, mock.Anything).Return(stored, nil)
	// Linking out extends the vouch chain: the target's domain becomes
	// trusted for future inbound vouches.
	f.trustedRepo.EXPECT().AddTrustedDomain(mock.Anything, "friend.example").Return(nil)
	f.client.EXPECT().DiscoverEndpoint(mock.Anything, "https://friend.example/post").
		Return("https://friend.example/webmention", nil)
	f.client.EXPECT().
		Deliver(mock.Anything, "https://friend.example/webmention", entry.Location, "https://friend.example/post", "").
		Return(nil)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(mock.Anything, stored.UUID, entity.MentionVerified, "", mock.Anything).
		Return(nil)

	require.NoError(t, f.srv.SendMentionsForEntry(ctx, entry))
}

func TestEntryChanged_NotifiesUnionOfOldAndNewTargets(t *testing.T) {
	ctx := context.Background()
	f := newMentionFixture(t)

	location := "https://example.com/entries/1"
	old := &entity.Entry{
		Location: location,
		Content: entity.Document{
			Type:       []string{"h-entry"},
			Properties: entity.Properties{InReplyTo: []string{"https://removed.example/post"}},
		},
	}
	updated := &entity.Entry{
		Location: location,
		Content: entity.Document{
			Type:       []string{"h-entry"},
			Properties: entity.Properties{InReplyTo: []string{"https://added.example/post"}},
		},
	}

	f.mentionRepo.EXPECT().UpsertMention(mock.Anything, mock.Anything).
		Return(&entity.Mention{UUID: uuid.New()}, nil).
		Twice()
	f.trustedRepo.EXPECT().AddTrustedDomain(mock.Anything, "removed.example").Return(nil)
	f.trustedRepo.EXPECT().AddTrustedDomain(mock.Anything, "added.example").Return(nil)
	f.client.EXPECT().DiscoverEndpoint(mock.Anything, "https://removed.example/post").Return("", nil)
	f.client.EXPECT().DiscoverEndpoint(mock.Anything, "https://added.example/post").Return("", nil)
	f.mentionRepo.EXPECT().
		UpdateMentionStatus(mock.Anything, mock.Anything, entity.MentionNoEndpoint, mock.Anything, mock.Anything).
		Return(nil).
		Twice()

	f.srv.EntryChanged(ctx, service.EntryEvent{OldEntry: old, NewEntry: updated})
}

func TestTargetsOf_SkipsSelfLinks(t *testing.T) {
	f := newMentionFixture(t)

	entry := &entity.Entry{
		Location: "https://example.com/entries/1",
		Content: entity.Document{
			Type: []string{"h-entry"},
			Properties: entity.Properties{
				InReplyTo: []string{"https://example.com/entries/1", "https://other.example/post"},
				Content:   []entity.Content{{HTML: `<a href="https://linked.example/">x</a>`}},
			},
		},
	}

	f.client.EXPECT().ExtractLinks(entry.Location, `<a href="https://linked.example/">x</a>`).
		Return([]string{"https://linked.example/", "https://other.example/post"})

	targets := f.srv.targetsOf(entry)
	assert.Equal(t, []string{"https://other.example/post", "https://linked.example/"}, targets)
}
