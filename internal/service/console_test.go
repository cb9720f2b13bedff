package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "usermgmt/internal/errors"
	"usermgmt/internal/model"
	"usermgmt/internal/session"
)

// MockUserBackend is a mock implementation of UserBackend.
type MockUserBackend struct {
	mock.Mock
}

func (m *MockUserBackend) ListUsers(ctx context.Context, skip, limit int) ([]model.User, error) {
	args := m.Called(ctx, skip, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserBackend) CreateUser(ctx context.Context, in model.UserCreate) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserBackend) UpdateUser(ctx context.Context, id uint, in model.UserUpdate) (*model.User, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserBackend) DeleteUser(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEmailBackend is a mock implementation of EmailBackend.
type MockEmailBackend struct {
	mock.Mock
}

func (m *MockEmailBackend) SendWelcomeEmail(ctx context.Context, email, name string) (*model.EmailResponse, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailResponse), args.Error(1)
}

func (m *MockEmailBackend) GetTaskStatus(ctx context.Context, taskID string) (*model.TaskStatusResponse, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TaskStatusResponse), args.Error(1)
}

const sid = "session-1"

var errBackend = errors.New("backend unavailable")

func uintPtr(v uint) *uint { return &v }

type fixture struct {
	users   *MockUserBackend
	email   *MockEmailBackend
	store   *session.Store
	console *Console
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users: new(MockUserBackend),
		email: new(MockEmailBackend),
		store: session.NewStore(session.NewMemory(), time.Hour),
	}
	f.console = NewConsole(f.users, f.email, f.store, NewValidator(), zap.NewNop().Sugar(), 100)
	t.Cleanup(func() {
		f.users.AssertExpectations(t)
		f.email.AssertExpectations(t)
	})
	return f
}

// seed stores a mounted session holding users.
func (f *fixture) seed(t *testing.T, users ...model.User) {
	t.Helper()
	st := session.New()
	st.Loaded = true
	st.ReplaceUsers(users)
	require.NoError(t, f.store.Save(context.Background(), sid, st))
}

func (f *fixture) state(t *testing.T) *session.State {
	t.Helper()
	st, err := f.store.Load(context.Background(), sid)
	require.NoError(t, err)
	return st
}

var threeUsers = []model.User{
	{ID: 1, Name: "Ada", Email: "ada@x.com"},
	{ID: 3, Name: "Cy", Email: "cy@x.com"},
	{ID: 4, Name: "Di", Email: "di@x.com"},
}

func TestConsole_PageMountsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.users.On("ListUsers", mock.Anything, 0, 100).
		Run(func(mock.Arguments) {
			assert.True(t, f.state(t).Loading, "loading flag must be visible while fetching")
		}).
		Return(threeUsers, nil).Once()

	st, err := f.console.Page(ctx, sid)
	require.NoError(t, err)
	assert.True(t, st.Loaded)
	assert.False(t, st.Loading)
	assert.Equal(t, threeUsers, st.Users)

	st, err = f.console.Page(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, threeUsers, st.Users)
}

func TestConsole_MountFailureIsNonFatal(t *testing.T) {
	f := newFixture(t)
	f.users.On("ListUsers", mock.Anything, 0, 100).Return(nil, errBackend).Once()

	st, err := f.console.Page(context.Background(), sid)
	require.NoError(t, err)
	assert.True(t, st.Loaded)
	assert.False(t, st.Loading)
	assert.NotNil(t, st.Users)
	assert.Empty(t, st.Users)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.Toast{Kind: session.ToastError, Message: MsgLoadFailed}, st.Toasts[0])

	again, err := f.console.Page(context.Background(), sid)
	require.NoError(t, err)
	assert.Empty(t, again.Toasts, "toasts are shown once")
}

func TestConsole_RefreshReplacesList(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.User{ID: 9, Name: "Stale", Email: "stale@x.com"})
	f.users.On("ListUsers", mock.Anything, 0, 100).Return(threeUsers, nil).Twice()

	require.NoError(t, f.console.Refresh(context.Background(), sid))
	first := f.state(t).Users
	require.NoError(t, f.console.Refresh(context.Background(), sid))
	second := f.state(t).Users

	assert.Equal(t, threeUsers, first)
	assert.Equal(t, first, second)
}

func TestConsole_RefreshFailureKeepsList(t *testing.T) {
	f := newFixture(t)
	f.seed(t, threeUsers...)
	f.users.On("ListUsers", mock.Anything, 0, 100).Return(nil, errBackend).Once()

	require.NoError(t, f.console.Refresh(context.Background(), sid))
	st := f.state(t)
	assert.Equal(t, threeUsers, st.Users)
	assert.False(t, st.Loading)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.ToastError, st.Toasts[0].Kind)
}

func TestConsole_CreateAppendsAndSendsWelcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, threeUsers...)
	require.NoError(t, f.console.OpenCreate(ctx, sid))

	f.users.On("CreateUser", mock.Anything, model.UserCreate{Name: "Ada", Email: "ada@x.com"}).
		Run(func(mock.Arguments) {
			assert.True(t, f.state(t).Submitting)
		}).
		Return(&model.User{ID: 42, Name: "Ada", Email: "ada@x.com"}, nil).Once()
	f.email.On("SendWelcomeEmail", mock.Anything, "ada@x.com", "Ada").
		Run(func(mock.Arguments) {
			_, listed := f.state(t).FindUser(42)
			assert.True(t, listed, "record must be listed before the email is sent")
		}).
		Return(&model.EmailResponse{TaskID: "task-9", Status: "PENDING"}, nil).Once()

	require.NoError(t, f.console.Submit(ctx, sid, session.FormValues{Name: "Ada", Email: "ada@x.com"}))

	st := f.state(t)
	assert.Len(t, st.Users, len(threeUsers)+1)
	assert.Equal(t, model.User{ID: 42, Name: "Ada", Email: "ada@x.com"}, st.Users[len(st.Users)-1])
	assert.Nil(t, st.Form)
	assert.False(t, st.Submitting)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.ToastSuccess, st.Toasts[0].Kind)
	assert.Equal(t, "task-9", st.Toasts[0].TaskID)
	assert.Contains(t, st.Toasts[0].Message, "Task ID: task-9")
}

func TestConsole_CreateSurvivesEmailFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)
	require.NoError(t, f.console.OpenCreate(ctx, sid))

	f.users.On("CreateUser", mock.Anything, mock.Anything).
		Return(&model.User{ID: 5, Name: "Bea", Email: "bea@x.com"}, nil).Once()
	f.email.On("SendWelcomeEmail", mock.Anything, "bea@x.com", "Bea").Return(nil, errBackend).Once()

	require.NoError(t, f.console.Submit(ctx, sid, session.FormValues{Name: "Bea", Email: "bea@x.com"}))

	st := f.state(t)
	_, listed := st.FindUser(5)
	assert.True(t, listed)
	assert.Nil(t, st.Form)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.Toast{Kind: session.ToastWarning, Message: MsgCreatedNoEmail}, st.Toasts[0])
}

func TestConsole_CreateFailureKeepsFormOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, threeUsers...)
	require.NoError(t, f.console.OpenCreate(ctx, sid))
	f.users.On("CreateUser", mock.Anything, mock.Anything).Return(nil, errBackend).Once()

	values := session.FormValues{Name: "Ada", Email: "ada@x.com"}
	require.NoError(t, f.console.Submit(ctx, sid, values))

	st := f.state(t)
	assert.Equal(t, threeUsers, st.Users)
	require.NotNil(t, st.Form)
	assert.Equal(t, session.FormCreate, st.Form.Mode)
	assert.Equal(t, values, st.Form.Values)
	assert.False(t, st.Submitting)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.Toast{Kind: session.ToastError, Message: MsgCreateFailed}, st.Toasts[0])
	f.email.AssertNotCalled(t, "SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsole_CreateValidPayloads(t *testing.T) {
	tests := []struct {
		name   string
		values session.FormValues
	}{
		{"shortest name", session.FormValues{Name: "Al", Email: "al@x.com"}},
		{"longest name", session.FormValues{Name: strings.Repeat("n", 50), Email: "long@x.com"}},
		{"subdomain email", session.FormValues{Name: "Ada Lovelace", Email: "ada@mail.example.org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.seed(t)
			require.NoError(t, f.console.OpenCreate(ctx, sid))

			want := model.UserCreate{Name: tt.values.Name, Email: tt.values.Email}
			f.users.On("CreateUser", mock.Anything, want).
				Return(&model.User{ID: 1, Name: want.Name, Email: want.Email}, nil).Once()
			f.email.On("SendWelcomeEmail", mock.Anything, want.Email, want.Name).
				Return(&model.EmailResponse{TaskID: "t"}, nil).Once()

			require.NoError(t, f.console.Submit(ctx, sid, tt.values))
			f.users.AssertNumberOfCalls(t, "CreateUser", 1)
		})
	}
}

func TestConsole_CreateInvalidPayloads(t *testing.T) {
	tests := []struct {
		name       string
		values     session.FormValues
		wantErrors map[string]string
	}{
		{
			name:       "empty name",
			values:     session.FormValues{Name: "", Email: "ok@x.com"},
			wantErrors: map[string]string{"name": MsgNameTooShort},
		},
		{
			name:       "one character name",
			values:     session.FormValues{Name: "A", Email: "ok@x.com"},
			wantErrors: map[string]string{"name": MsgNameTooShort},
		},
		{
			name:       "51 character name",
			values:     session.FormValues{Name: strings.Repeat("n", 51), Email: "ok@x.com"},
			wantErrors: map[string]string{"name": MsgNameTooLong},
		},
		{
			name:       "malformed email",
			values:     session.FormValues{Name: "Ada", Email: "not-an-email"},
			wantErrors: map[string]string{"email": MsgEmailInvalid},
		},
		{
			name:       "both fields",
			values:     session.FormValues{Name: "A", Email: ""},
			wantErrors: map[string]string{"name": MsgNameTooShort, "email": MsgEmailInvalid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			f.seed(t, threeUsers...)
			require.NoError(t, f.console.OpenCreate(ctx, sid))

			require.NoError(t, f.console.Submit(ctx, sid, tt.values))

			st := f.state(t)
			require.NotNil(t, st.Form)
			assert.Equal(t, tt.wantErrors, map[string]string(st.Form.Errors))
			assert.Equal(t, tt.values, st.Form.Values)
			assert.False(t, st.Submitting)
			assert.Empty(t, st.Toasts, "validation errors are never toasts")
			assert.Equal(t, threeUsers, st.Users)
			f.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
		})
	}
}

func TestConsole_UpdateSendsOnlyChangedFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, threeUsers...)
	require.NoError(t, f.console.OpenEdit(ctx, sid, 3))

	bob := "Bob"
	f.users.On("UpdateUser", mock.Anything, uint(3), model.UserUpdate{Name: &bob}).
		Return(&model.User{ID: 3, Name: "Bob", Email: "cy@x.com"}, nil).Once()

	require.NoError(t, f.console.Submit(ctx, sid, session.FormValues{Name: "Bob", Email: "cy@x.com"}))

	st := f.state(t)
	assert.Equal(t, []model.User{
		{ID: 1, Name: "Ada", Email: "ada@x.com"},
		{ID: 3, Name: "Bob", Email: "cy@x.com"},
		{ID: 4, Name: "Di", Email: "di@x.com"},
	}, st.Users)
	assert.Nil(t, st.Form)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.Toast{Kind: session.ToastSuccess, Message: MsgUpdated}, st.Toasts[0])
}

func TestConsole_UpdateFailureStaysInEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, threeUsers...)
	require.NoError(t, f.console.OpenEdit(ctx, sid, 3))
	f.users.On("UpdateUser", mock.Anything, uint(3), mock.Anything).Return(nil, errBackend).Once()

	require.NoError(t, f.console.Submit(ctx, sid, session.FormValues{Name: "Bob", Email: "cy@x.com"}))

	st := f.state(t)
	require.NotNil(t, st.Form)
	assert.Equal(t, session.FormEdit, st.Form.Mode)
	assert.Equal(t, uint(3), st.Form.Editing.ID)
	assert.Equal(t, threeUsers, st.Users)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, MsgUpdateFailed, st.Toasts[0].Message)
}

func TestConsole_UpdateInvalidEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, threeUsers...)
	require.NoError(t, f.console.OpenEdit(ctx, sid, 1))

	require.NoError(t, f.console.Submit(ctx, sid, session.FormValues{Name: "Ada", Email: "nope"}))

	st := f.state(t)
	require.NotNil(t, st.Form)
	assert.Equal(t, map[string]string{"email": MsgEmailInvalid}, map[string]string(st.Form.Errors))
	f.users.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestConsole_OpenEditUnknownUser(t *testing.T) {
	f := newFixture(t)
	f.seed(t, threeUsers...)

	require.NoError(t, f.console.OpenEdit(context.Background(), sid, 77))

	st := f.state(t)
	assert.Nil(t, st.Form)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, MsgUserNotInList, st.Toasts[0].Message)
}

func TestConsole_CancelForm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, threeUsers...)
	require.NoError(t, f.console.OpenEdit(ctx, sid, 1))

	require.NoError(t, f.console.CancelForm(ctx, sid))
	assert.Nil(t, f.state(t).Form)
}

func TestConsole_SubmitWithoutForm(t *testing.T) {
	f := newFixture(t)
	f.seed(t, threeUsers...)

	err := f.console.Submit(context.Background(), sid, session.FormValues{Name: "Ada", Email: "ada@x.com"})
	assert.ErrorIs(t, err, apperrors.ErrFormClosed)

	st := f.state(t)
	assert.Nil(t, st.Form)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.Toast{Kind: session.ToastError, Message: MsgFormClosed}, st.Toasts[0])
	f.users.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestConsole_InterruptedOperationsClearInFlightFlags(t *testing.T) {
	t.Run("submit", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		f.seed(t, threeUsers...)
		require.NoError(t, f.console.OpenCreate(ctx, sid))
		f.users.On("CreateUser", mock.Anything, mock.Anything).
			Panic("backend client crashed").Once()

		assert.Panics(t, func() {
			_ = f.console.Submit(ctx, sid, session.FormValues{Name: "Ada", Email: "ada@x.com"})
		})

		st := f.state(t)
		assert.False(t, st.Submitting)
		require.NotNil(t, st.Form, "the form stays open so the user can retry or cancel")
		assert.Equal(t, "Ada", st.Form.Values.Name)
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, threeUsers...)
		f.users.On("DeleteUser", mock.Anything, uint(3)).
			Panic("backend client crashed").Once()

		assert.Panics(t, func() { _ = f.console.Delete(context.Background(), sid, 3) })

		st := f.state(t)
		assert.Nil(t, st.DeletingID)
		assert.Equal(t, threeUsers, st.Users)
	})

	t.Run("refresh", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t, threeUsers...)
		f.users.On("ListUsers", mock.Anything, 0, 100).
			Panic("backend client crashed").Once()

		assert.Panics(t, func() { _ = f.console.Refresh(context.Background(), sid) })

		assert.False(t, f.state(t).Loading)
	})
}

func TestConsole_Delete(t *testing.T) {
	f := newFixture(t)
	f.seed(t, threeUsers...)
	f.users.On("DeleteUser", mock.Anything, uint(3)).
		Run(func(mock.Arguments) {
			assert.Equal(t, uintPtr(3), f.state(t).DeletingID, "row must be marked while the delete is in flight")
		}).
		Return(nil).Once()

	require.NoError(t, f.console.Delete(context.Background(), sid, 3))

	st := f.state(t)
	assert.Len(t, st.Users, len(threeUsers)-1)
	_, found := st.FindUser(3)
	assert.False(t, found)
	assert.Nil(t, st.DeletingID)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.Toast{Kind: session.ToastSuccess, Message: MsgDeleted}, st.Toasts[0])
}

func TestConsole_DeleteFailureKeepsList(t *testing.T) {
	f := newFixture(t)
	f.seed(t, threeUsers...)
	f.users.On("DeleteUser", mock.Anything, uint(3)).Return(errBackend).Once()

	require.NoError(t, f.console.Delete(context.Background(), sid, 3))

	st := f.state(t)
	assert.Equal(t, threeUsers, st.Users)
	assert.Nil(t, st.DeletingID)
	require.Len(t, st.Toasts, 1)
	assert.Equal(t, session.Toast{Kind: session.ToastError, Message: MsgDeleteFailed}, st.Toasts[0])
}

func TestConsole_TaskStatus(t *testing.T) {
	f := newFixture(t)
	want := &model.TaskStatusResponse{TaskID: "task-1", Status: "SUCCESS"}
	f.email.On("GetTaskStatus", mock.Anything, "task-1").Return(want, nil).Once()
	f.email.On("GetTaskStatus", mock.Anything, "missing").Return(nil, errBackend).Once()

	got, err := f.console.TaskStatus(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = f.console.TaskStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, errBackend)
}
