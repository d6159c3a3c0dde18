package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokodash/internal/models"
	"tokodash/internal/repositories"
	"tokodash/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPendingSource is a mock implementation of repositories.PendingItemSource
type MockPendingSource struct {
	mock.Mock
}

func (m *MockPendingSource) LoadPending(ctx context.Context) (*repositories.PendingItems, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.PendingItems), args.Error(1)
}

// MockPublisher is a mock implementation of services.DecisionPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishDecision(event models.DecisionEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func activated(t *testing.T, svc *services.ModerationService) {
	t.Helper()
	select {
	case <-svc.Activate(context.Background()):
	case <-time.After(2 * time.Second):
		t.Fatal("moderation queue did not populate")
	}
}

func sectionIDs(s services.Section) []int {
	ids := make([]int, 0, len(s.Items))
	for _, item := range s.Items {
		ids = append(ids, item.ItemID())
	}
	return ids
}

func TestModerationService_SectionsAfterActivate(t *testing.T) {
	svc := services.NewModerationService(repositories.NewSamplePendingSource(), nil, 0)

	sections := svc.Sections()
	require.Len(t, sections, 4)
	for _, s := range sections {
		assert.True(t, s.Empty())
	}

	activated(t, svc)
	assert.False(t, svc.Loading())
	assert.NoError(t, svc.LoadError())

	sections = svc.Sections()
	assert.Equal(t, models.KindComments, sections[0].Kind)
	assert.Equal(t, "Pending Comments (0)", sections[0].Heading())
	assert.Equal(t, services.EmptySectionMessage, sections[0].EmptyMessage)
	assert.Equal(t, "Pending Corrections (2)", sections[1].Heading())
	assert.Equal(t, "Pending Orders (2)", sections[2].Heading())
	assert.Equal(t, []int{101, 102}, sectionIDs(sections[2]))
	assert.Equal(t, "Wishlist Items (0)", sections[3].Heading())
}

func TestModerationService_LoadingWhileDelayed(t *testing.T) {
	svc := services.NewModerationService(repositories.NewSamplePendingSource(), nil, 50*time.Millisecond)

	done := svc.Activate(context.Background())
	assert.True(t, svc.Loading())
	assert.Equal(t, done, svc.Activate(context.Background()), "activating while loading must not start a second load")

	<-done
	assert.False(t, svc.Loading())
	assert.Len(t, svc.Sections()[2].Items, 2)
}

func TestModerationService_ResolveRemovesExactlyOne(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishDecision", mock.MatchedBy(func(e models.DecisionEvent) bool {
		return e.Kind == models.KindOrders && e.ItemID == 101 && e.Decision == models.DecisionApproved && e.DecidedBy == "admin" && e.ID != ""
	})).Return(nil).Once()

	svc := services.NewModerationService(repositories.NewSamplePendingSource(), publisher, 0)
	activated(t, svc)

	removed, err := svc.Resolve(context.Background(), models.KindOrders, 101, models.DecisionApproved, "admin")
	require.NoError(t, err)
	assert.True(t, removed)

	sections := svc.Sections()
	assert.Equal(t, []int{102}, sectionIDs(sections[2]))
	assert.Len(t, sections[1].Items, 2, "other lists are untouched")
	publisher.AssertExpectations(t)
}

func TestModerationService_ApproveAndRejectHaveSameEffect(t *testing.T) {
	for _, decision := range []models.Decision{models.DecisionApproved, models.DecisionRejected} {
		t.Run(string(decision), func(t *testing.T) {
			svc := services.NewModerationService(repositories.NewSamplePendingSource(), nil, 0)
			activated(t, svc)

			removed, err := svc.Resolve(context.Background(), models.KindCorrections, 1, decision, "admin")
			require.NoError(t, err)
			assert.True(t, removed)
			assert.Equal(t, []int{2}, sectionIDs(svc.Sections()[1]))
		})
	}
}

func TestModerationService_ResolveMissingID(t *testing.T) {
	publisher := new(MockPublisher)
	svc := services.NewModerationService(repositories.NewSamplePendingSource(), publisher, 0)
	activated(t, svc)

	removed, err := svc.Resolve(context.Background(), models.KindOrders, 999, models.DecisionRejected, "admin")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, svc.Sections()[2].Items, 2)

	removed, err = svc.Resolve(context.Background(), models.KindComments, 1, models.DecisionApproved, "admin")
	require.NoError(t, err)
	assert.False(t, removed)
	publisher.AssertNotCalled(t, "PublishDecision", mock.Anything)
}

func TestModerationService_ResolveUnknownKind(t *testing.T) {
	svc := services.NewModerationService(repositories.NewSamplePendingSource(), nil, 0)
	activated(t, svc)

	_, err := svc.Resolve(context.Background(), models.ItemKind("reviews"), 1, models.DecisionApproved, "admin")
	assert.ErrorIs(t, err, services.ErrUnknownKind)
}

func TestModerationService_PublishFailureStillRemoves(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishDecision", mock.Anything).Return(errors.New("broker down")).Once()

	svc := services.NewModerationService(repositories.NewSamplePendingSource(), publisher, 0)
	activated(t, svc)

	removed, err := svc.Resolve(context.Background(), models.KindOrders, 102, models.DecisionRejected, "admin")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []int{101}, sectionIDs(svc.Sections()[2]))
	publisher.AssertExpectations(t)
}

func TestModerationService_DuplicateIDsAllRemoved(t *testing.T) {
	source := repositories.NewStaticPendingSource(repositories.PendingItems{
		Comments: []models.Comment{{ID: 5, Content: "a"}, {ID: 6, Content: "b"}, {ID: 5, Content: "c"}},
	})
	svc := services.NewModerationService(source, nil, 0)
	activated(t, svc)

	removed, err := svc.Resolve(context.Background(), models.KindComments, 5, models.DecisionApproved, "admin")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []int{6}, sectionIDs(svc.Sections()[0]))
}

func TestModerationService_SourceError(t *testing.T) {
	source := new(MockPendingSource)
	source.On("LoadPending", mock.Anything).Return(nil, errors.New("db down")).Once()

	svc := services.NewModerationService(source, nil, 0)
	activated(t, svc)

	assert.EqualError(t, svc.LoadError(), "db down")
	for _, s := range svc.Sections() {
		assert.True(t, s.Empty())
	}
	source.AssertExpectations(t)
}

func TestModerationService_EnsureActivatedOnlyOnce(t *testing.T) {
	source := new(MockPendingSource)
	source.On("LoadPending", mock.Anything).Return(&repositories.PendingItems{}, nil).Once()

	svc := services.NewModerationService(source, nil, 0)
	svc.EnsureActivated(context.Background())
	assert.Eventually(t, func() bool { return !svc.Loading() }, 2*time.Second, 5*time.Millisecond)

	svc.EnsureActivated(context.Background())
	assert.False(t, svc.Loading())
	source.AssertNumberOfCalls(t, "LoadPending", 1)
}
