package joinRequest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teamNotification/internal/models"
	"github.com/teamNotification/internal/store"
	"github.com/teamNotification/internal/telegram"
)

const adminChat int64 = -100123

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) SendMessage(ctx context.Context, chatID int64, text string, markup *telegram.InlineKeyboardMarkup) error {
	args := m.Called(ctx, chatID, text, markup)
	return args.Error(0)
}

func memberEvent(oldStatus, newStatus, teamID, userID string) models.MemberEvent {
	name := "projects/p/databases/(default)/documents/teams/" + teamID + "/members/" + userID
	event := models.MemberEvent{
		Value: models.MemberValue{
			Name:   name,
			Fields: models.MemberFields{Status: models.StringValue{Value: newStatus}},
		},
	}
	if oldStatus != "" {
		event.OldValue = models.MemberValue{
			Name:   name,
			Fields: models.MemberFields{Status: models.StringValue{Value: oldStatus}},
		}
	}
	return event
}

func TestNotifier_Handle(t *testing.T) {
	t.Run("new pending member is forwarded with decision buttons", func(t *testing.T) {
		s := new(MockStore)
		messenger := new(MockMessenger)
		s.On("GetTeam", mock.Anything, "t1").Return(&models.Team{ID: "t1", Name: "FC <Seoul>"}, nil).Once()
		s.On("GetUser", mock.Anything, "u1").Return(&models.User{ID: "u1", Email: "kim@example.com"}, nil).Once()

		var sent string
		var markup *telegram.InlineKeyboardMarkup
		messenger.On("SendMessage", mock.Anything, adminChat, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				sent = args.String(2)
				markup = args.Get(3).(*telegram.InlineKeyboardMarkup)
			}).
			Return(nil).Once()

		err := NewNotifier(s, messenger, adminChat).Handle(context.Background(), memberEvent("", "pending", "t1", "u1"))

		require.NoError(t, err)
		assert.Contains(t, sent, "FC &lt;Seoul&gt;")
		assert.Contains(t, sent, "kim@example.com")
		require.NotNil(t, markup)
		assert.Equal(t, [][]telegram.InlineKeyboardButton{{
			{Text: "✅ 승인", CallbackData: "approve:t1:u1"},
			{Text: "❌ 거절", CallbackData: "reject:t1:u1"},
		}}, markup.InlineKeyboard)
		s.AssertExpectations(t)
		messenger.AssertExpectations(t)
	})

	t.Run("pending to pending sends nothing", func(t *testing.T) {
		s := new(MockStore)
		messenger := new(MockMessenger)

		err := NewNotifier(s, messenger, adminChat).Handle(context.Background(), memberEvent("pending", "pending", "t1", "u1"))

		require.NoError(t, err)
		messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		s.AssertNotCalled(t, "GetTeam", mock.Anything, mock.Anything)
	})

	t.Run("other transitions send nothing", func(t *testing.T) {
		messenger := new(MockMessenger)
		notifier := NewNotifier(new(MockStore), messenger, adminChat)

		for _, event := range []models.MemberEvent{
			memberEvent("pending", "active", "t1", "u1"),
			memberEvent("", "active", "t1", "u1"),
			memberEvent("active", "", "t1", "u1"),
		} {
			require.NoError(t, notifier.Handle(context.Background(), event))
		}
		messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected member re-applying is forwarded", func(t *testing.T) {
		s := new(MockStore)
		messenger := new(MockMessenger)
		s.On("GetTeam", mock.Anything, "t1").Return(nil, store.ErrNotFound).Once()
		s.On("GetUser", mock.Anything, "u1").Return(nil, errors.New("unavailable")).Once()

		var sent string
		messenger.On("SendMessage", mock.Anything, adminChat, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { sent = args.String(2) }).
			Return(nil).Once()

		err := NewNotifier(s, messenger, adminChat).Handle(context.Background(), memberEvent("rejected", "pending", "t1", "u1"))

		require.NoError(t, err)
		assert.Contains(t, sent, "팀: t1")
		assert.Contains(t, sent, "신청자: u1")
	})

	t.Run("oversized callback data sends nothing", func(t *testing.T) {
		s := new(MockStore)
		messenger := new(MockMessenger)
		longID := strings.Repeat("x", 60)

		err := NewNotifier(s, messenger, adminChat).Handle(context.Background(), memberEvent("", "pending", "t1", longID))

		require.NoError(t, err)
		messenger.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing telegram configuration is not an error", func(t *testing.T) {
		err := NewNotifier(new(MockStore), nil, 0).Handle(context.Background(), memberEvent("", "pending", "t1", "u1"))
		require.NoError(t, err)
	})

	t.Run("send failure is returned", func(t *testing.T) {
		s := new(MockStore)
		messenger := new(MockMessenger)
		s.On("GetTeam", mock.Anything, "t1").Return(&models.Team{ID: "t1", Name: "FC"}, nil).Once()
		s.On("GetUser", mock.Anything, "u1").Return(&models.User{ID: "u1", DisplayName: "Kim"}, nil).Once()
		messenger.On("SendMessage", mock.Anything, adminChat, mock.Anything, mock.Anything).Return(telegram.ErrTelegramAPI).Once()

		err := NewNotifier(s, messenger, adminChat).Handle(context.Background(), memberEvent("", "pending", "t1", "u1"))

		assert.ErrorIs(t, err, telegram.ErrTelegramAPI)
	})
}

func TestNotifier_UserNameFallback(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want string
	}{
		{name: "display name", user: models.User{DisplayName: "Kim", Email: "kim@example.com"}, want: "Kim"},
		{name: "email", user: models.User{Email: "kim@example.com", PhoneNumber: "+8210"}, want: "kim@example.com"},
		{name: "phone", user: models.User{PhoneNumber: "+8210"}, want: "+8210"},
		{name: "uid", user: models.User{}, want: "u1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(MockStore)
			user := tt.user
			s.On("GetUser", mock.Anything, "u1").Return(&user, nil).Once()

			assert.Equal(t, tt.want, NewNotifier(s, nil, 0).userName(context.Background(), "u1"))
		})
	}
}

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback("approve:t1:u1")
	require.NoError(t, err)
	assert.Equal(t, Callback{Action: ActionApprove, TeamID: "t1", UserID: "u1"}, cb)
	assert.Equal(t, "approve:t1:u1", cb.Encode())

	cb, err = ParseCallback("reject:t1:u1")
	require.NoError(t, err)
	status, ok := cb.Action.MemberStatus()
	assert.True(t, ok)
	assert.Equal(t, models.MemberRejected, status)

	for _, data := range []string{"", "approve", "approve:t1", "approve::u1", "approve:t1:", "ban:t1:u1", "approve:t1:u1:x"} {
		_, err := ParseCallback(data)
		assert.ErrorIs(t, err, ErrMalformedCallback, data)
	}
}
