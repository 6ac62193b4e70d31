package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emrekaya/classline/internal/app/models"
	"github.com/emrekaya/classline/internal/db"
	"github.com/emrekaya/classline/internal/pkg/apperrors"
)

type fakeRoster struct {
	classes       map[int64]*models.Class
	students      map[int64]*models.Student
	classStudents map[int64][]models.Student
}

func (f *fakeRoster) GetClassByID(_ context.Context, schoolID, classID int64) (*models.Class, error) {
	class, ok := f.classes[classID]
	if !ok || class.SchoolID != schoolID {
		return nil, nil
	}
	return class, nil
}

func (f *fakeRoster) GetStudentByID(_ context.Context, schoolID, studentID int64) (*models.Student, error) {
	student, ok := f.students[studentID]
	if !ok || student.SchoolID != schoolID {
		return nil, nil
	}
	return student, nil
}

func (f *fakeRoster) FindStudentsByClass(_ context.Context, _, classID int64) ([]models.Student, error) {
	return f.classStudents[classID], nil
}

type fakeGuardians struct {
	byStudent map[int64][]int64
}

func (f *fakeGuardians) FindActiveGuardianIDs(_ context.Context, studentID int64) ([]int64, error) {
	return f.byStudent[studentID], nil
}

// fakeConversations keeps the aggregate in memory. failOnMessage simulates a
// storage failure mid-transaction.
type fakeConversations struct {
	nextID        int64
	conversations map[int64]*models.Conversation
	participants  map[int64]map[int64]*models.Participant
	messages      map[int64][]models.Message
	failOnMessage error
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{
		nextID:        1,
		conversations: make(map[int64]*models.Conversation),
		participants:  make(map[int64]map[int64]*models.Participant),
		messages:      make(map[int64][]models.Message),
	}
}

func (f *fakeConversations) Create(_ context.Context, _ pgx.Tx, conv *models.Conversation) (int64, error) {
	conv.ID = f.nextID
	f.nextID++
	conv.CreatedAt = time.Now()
	stored := *conv
	f.conversations[conv.ID] = &stored
	return conv.ID, nil
}

func (f *fakeConversations) AddParticipants(_ context.Context, _ pgx.Tx, conversationID int64, userIDs []int64) error {
	members, ok := f.participants[conversationID]
	if !ok {
		members = make(map[int64]*models.Participant)
		f.participants[conversationID] = members
	}
	for _, id := range userIDs {
		members[id] = &models.Participant{ConversationID: conversationID, UserID: id}
	}
	return nil
}

func (f *fakeConversations) CreateMessage(_ context.Context, _ pgx.Tx, msg *models.Message) (int64, error) {
	if f.failOnMessage != nil {
		return 0, f.failOnMessage
	}
	msg.ID = f.nextID
	f.nextID++
	msg.CreatedAt = time.Now()
	f.messages[msg.ConversationID] = append(f.messages[msg.ConversationID], *msg)
	return msg.ID, nil
}

func (f *fakeConversations) GetByID(_ context.Context, id int64) (*models.Conversation, error) {
	return f.conversations[id], nil
}

func (f *fakeConversations) GetParticipant(_ context.Context, conversationID, userID int64) (*models.Participant, error) {
	return f.participants[conversationID][userID], nil
}

func (f *fakeConversations) ListParticipants(_ context.Context, conversationID int64) ([]models.Participant, error) {
	var out []models.Participant
	for _, p := range f.participants[conversationID] {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeConversations) ListMessages(_ context.Context, conversationID int64, _ *time.Time, _ int) ([]models.Message, error) {
	return f.messages[conversationID], nil
}

func (f *fakeConversations) ListByParticipant(_ context.Context, schoolID, userID int64) ([]models.ConversationSummary, error) {
	var out []models.ConversationSummary
	for id, conv := range f.conversations {
		if conv.SchoolID != schoolID {
			continue
		}
		participant, ok := f.participants[id][userID]
		if !ok {
			continue
		}
		summary := models.ConversationSummary{Conversation: *conv, LastReadAt: participant.LastReadAt}
		if msgs := f.messages[id]; len(msgs) > 0 {
			last := msgs[len(msgs)-1].CreatedAt
			summary.LastMessageAt = &last
		}
		summary.Unread = summary.LastMessageAt != nil &&
			(summary.LastReadAt == nil || summary.LastReadAt.Before(*summary.LastMessageAt))
		out = append(out, summary)
	}
	return out, nil
}

func (f *fakeConversations) TouchLastRead(_ context.Context, _ pgx.Tx, conversationID, userID int64, when time.Time) error {
	participant, ok := f.participants[conversationID][userID]
	if !ok {
		return nil
	}
	if participant.LastReadAt == nil || participant.LastReadAt.Before(when) {
		participant.LastReadAt = &when
	}
	return nil
}

func (f *fakeConversations) SetStatus(_ context.Context, conversationID int64, status models.ConversationStatus) error {
	conv, ok := f.conversations[conversationID]
	if !ok {
		return errors.New("conversation not found")
	}
	conv.Status = status
	return nil
}

type fakeTx struct{}

func (fakeTx) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	return fn(ctx, nil)
}

type recordingNotifier struct {
	conversationID int64
	recipients     []int64
	calls          int
}

func (n *recordingNotifier) ConversationCreated(conversationID int64, recipientIDs []int64) {
	n.calls++
	n.conversationID = conversationID
	n.recipients = recipientIDs
}

const testSchoolID = int64(1)

// newTestService builds a service over a roster of one class (ID 10) with
// two students (100, 101) and one standalone student (102). Students 100
// and 101 share guardian 201.
func newTestService(conversations *fakeConversations, notifier Notifier) MessagingService {
	roster := &fakeRoster{
		classes: map[int64]*models.Class{
			10: {ID: 10, SchoolID: testSchoolID, Name: "3A"},
		},
		students: map[int64]*models.Student{
			100: {ID: 100, SchoolID: testSchoolID},
			101: {ID: 101, SchoolID: testSchoolID},
			102: {ID: 102, SchoolID: testSchoolID},
		},
		classStudents: map[int64][]models.Student{
			10: {{ID: 100, SchoolID: testSchoolID}, {ID: 101, SchoolID: testSchoolID}},
		},
	}
	guardians := &fakeGuardians{
		byStudent: map[int64][]int64{
			100: {200, 201},
			101: {201, 202},
			102: nil,
		},
	}
	return NewMessagingService(roster, guardians, conversations, fakeTx{}, notifier, zerolog.Nop())
}

func staffActor() Actor {
	return Actor{UserID: 7, SchoolID: testSchoolID, Role: models.RoleTeacher}
}

func TestResolveRecipientsDeduplicatesSharedGuardians(t *testing.T) {
	svc := newTestService(newFakeConversations(), nil)

	recipients, err := svc.ResolveRecipients(context.Background(), testSchoolID, Audience{Type: models.AudienceClass, TargetID: 10})
	require.NoError(t, err)

	// Guardian 201 guards both students but appears once
	assert.ElementsMatch(t, []int64{200, 201, 202}, recipients)
}

func TestResolveRecipientsSingleStudent(t *testing.T) {
	svc := newTestService(newFakeConversations(), nil)

	recipients, err := svc.ResolveRecipients(context.Background(), testSchoolID, Audience{Type: models.AudienceStudent, TargetID: 100})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{200, 201}, recipients)
}

func TestResolveRecipientsEmptyAudience(t *testing.T) {
	svc := newTestService(newFakeConversations(), nil)

	_, err := svc.ResolveRecipients(context.Background(), testSchoolID, Audience{Type: models.AudienceStudent, TargetID: 102})
	assert.ErrorIs(t, err, apperrors.ErrEmptyAudience)
}

func TestResolveRecipientsUnknownTarget(t *testing.T) {
	svc := newTestService(newFakeConversations(), nil)
	ctx := context.Background()

	_, err := svc.ResolveRecipients(ctx, testSchoolID, Audience{Type: models.AudienceClass, TargetID: 99})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = svc.ResolveRecipients(ctx, testSchoolID, Audience{Type: models.AudienceStudent, TargetID: 99})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	// A class of another school is indistinguishable from a missing one
	_, err = svc.ResolveRecipients(ctx, 2, Audience{Type: models.AudienceClass, TargetID: 10})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestCreateConversationBuildsFullAggregate(t *testing.T) {
	store := newFakeConversations()
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	actor := staffActor()

	convID, err := svc.CreateConversation(context.Background(), actor, Audience{Type: models.AudienceClass, TargetID: 10}, "Trip", "Please sign the slip.")
	require.NoError(t, err)
	require.NotZero(t, convID)

	// Sender plus the three resolved guardians
	require.Len(t, store.participants[convID], 4)
	assert.Contains(t, store.participants[convID], actor.UserID)

	require.Len(t, store.messages[convID], 1)
	assert.Equal(t, actor.UserID, store.messages[convID][0].SenderID)
	assert.Equal(t, "Please sign the slip.", store.messages[convID][0].Body)

	// The sender starts with the conversation already read
	require.NotNil(t, store.participants[convID][actor.UserID].LastReadAt)

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, convID, notifier.conversationID)
	assert.ElementsMatch(t, []int64{200, 201, 202}, notifier.recipients)

	conv := store.conversations[convID]
	assert.Equal(t, models.AudienceClass, conv.AudienceType)
	assert.Equal(t, int64(10), conv.AudienceTargetID)
}

func TestCreateConversationSenderAlsoGuardian(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)

	// Guardian 200 is staff in this scenario and messages their own child's class
	actor := Actor{UserID: 200, SchoolID: testSchoolID, Role: models.RoleTeacher}
	convID, err := svc.CreateConversation(context.Background(), actor, Audience{Type: models.AudienceClass, TargetID: 10}, "", "Hello")
	require.NoError(t, err)

	// No duplicate participant row for the sender
	assert.Len(t, store.participants[convID], 3)
}

func TestCreateConversationParentForbidden(t *testing.T) {
	svc := newTestService(newFakeConversations(), nil)
	actor := Actor{UserID: 200, SchoolID: testSchoolID, Role: models.RoleParent}

	_, err := svc.CreateConversation(context.Background(), actor, Audience{Type: models.AudienceStudent, TargetID: 100}, "", "Hi")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCreateConversationBlankBody(t *testing.T) {
	svc := newTestService(newFakeConversations(), nil)

	_, err := svc.CreateConversation(context.Background(), staffActor(), Audience{Type: models.AudienceStudent, TargetID: 100}, "", "   \n ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateConversationStorageFailure(t *testing.T) {
	store := newFakeConversations()
	store.failOnMessage = errors.New("disk full")
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	_, err := svc.CreateConversation(context.Background(), staffActor(), Audience{Type: models.AudienceClass, TargetID: 10}, "", "Hello")
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	// Nothing was announced for the rolled back conversation
	assert.Zero(t, notifier.calls)
}

// seedConversation creates a conversation through the service and returns
// its ID.
func seedConversation(t *testing.T, svc MessagingService, actor Actor) int64 {
	t.Helper()
	convID, err := svc.CreateConversation(context.Background(), actor, Audience{Type: models.AudienceClass, TargetID: 10}, "Subject", "First")
	require.NoError(t, err)
	return convID
}

func TestGuardUniformAccessDenial(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)
	actor := staffActor()
	convID := seedConversation(t, svc, actor)

	tests := []struct {
		name  string
		actor Actor
		conv  int64
	}{
		{"missing conversation", actor, convID + 99},
		{"cross tenant", Actor{UserID: 7, SchoolID: 2, Role: models.RoleTeacher}, convID},
		{"non participant", Actor{UserID: 999, SchoolID: testSchoolID, Role: models.RoleParent}, convID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PostMessage(context.Background(), tt.actor, tt.conv, "hi")
			assert.ErrorIs(t, err, apperrors.ErrConversationAccess)

			err = svc.MarkRead(context.Background(), tt.actor, tt.conv)
			assert.ErrorIs(t, err, apperrors.ErrConversationAccess)

			_, err = svc.GetConversation(context.Background(), tt.actor, tt.conv, nil, 50)
			assert.ErrorIs(t, err, apperrors.ErrConversationAccess)
		})
	}
}

func TestPostMessageOnClosedConversation(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)
	actor := staffActor()
	convID := seedConversation(t, svc, actor)

	require.NoError(t, svc.SetStatus(context.Background(), actor, convID, models.ConversationClosed))

	_, err := svc.PostMessage(context.Background(), actor, convID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrConversationClosed)

	// Reading stays permitted on a closed conversation
	detail, err := svc.GetConversation(context.Background(), actor, convID, nil, 50)
	require.NoError(t, err)
	assert.Equal(t, string(models.ConversationClosed), detail.Status)
}

func TestPostMessageAdvancesSenderMarkerOnly(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)
	actor := staffActor()
	convID := seedConversation(t, svc, actor)

	msgID, err := svc.PostMessage(context.Background(), actor, convID, "Second message")
	require.NoError(t, err)
	require.NotZero(t, msgID)

	assert.NotNil(t, store.participants[convID][actor.UserID].LastReadAt)
	assert.Nil(t, store.participants[convID][int64(200)].LastReadAt)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)
	actor := staffActor()
	convID := seedConversation(t, svc, actor)
	reader := Actor{UserID: 200, SchoolID: testSchoolID, Role: models.RoleParent}

	require.NoError(t, svc.MarkRead(context.Background(), reader, convID))
	first := *store.participants[convID][reader.UserID].LastReadAt

	require.NoError(t, svc.MarkRead(context.Background(), reader, convID))
	second := *store.participants[convID][reader.UserID].LastReadAt

	assert.False(t, second.Before(first))

	summaries, err := svc.ListConversations(context.Background(), reader)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.False(t, summaries[0].Unread)
}

func TestUnreadFlagFollowsNewMessages(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)
	actor := staffActor()
	convID := seedConversation(t, svc, actor)
	reader := Actor{UserID: 200, SchoolID: testSchoolID, Role: models.RoleParent}

	summaries, err := svc.ListConversations(context.Background(), reader)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Unread)

	require.NoError(t, svc.MarkRead(context.Background(), reader, convID))

	_, err = svc.PostMessage(context.Background(), actor, convID, "News")
	require.NoError(t, err)

	summaries, err = svc.ListConversations(context.Background(), reader)
	require.NoError(t, err)
	assert.True(t, summaries[0].Unread)
}

func TestSetStatusRules(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)
	actor := staffActor()
	convID := seedConversation(t, svc, actor)
	ctx := context.Background()

	// Parents cannot change status even as participants
	parent := Actor{UserID: 200, SchoolID: testSchoolID, Role: models.RoleParent}
	err := svc.SetStatus(ctx, parent, convID, models.ConversationClosed)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.NoError(t, svc.SetStatus(ctx, actor, convID, models.ConversationClosed))
	assert.Equal(t, models.ConversationClosed, store.conversations[convID].Status)

	// Reopening is a legal transition for staff
	require.NoError(t, svc.SetStatus(ctx, actor, convID, models.ConversationOpen))
	assert.Equal(t, models.ConversationOpen, store.conversations[convID].Status)

	err = svc.SetStatus(ctx, actor, convID, models.ConversationStatus("ARCHIVED"))
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGetConversationDetail(t *testing.T) {
	store := newFakeConversations()
	svc := newTestService(store, nil)
	actor := staffActor()
	convID := seedConversation(t, svc, actor)

	detail, err := svc.GetConversation(context.Background(), actor, convID, nil, 50)
	require.NoError(t, err)

	assert.Equal(t, convID, detail.ID)
	assert.Equal(t, "Subject", detail.Subject)
	assert.Equal(t, string(models.AudienceClass), detail.AudienceType)
	assert.Equal(t, int64(10), detail.AudienceTargetID)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "First", detail.Messages[0].Body)
}
