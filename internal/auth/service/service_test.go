package service

import (
	"context"
	"testing"
	"time"

	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	authrepo "github.com/campuswatt/gridline/internal/auth/repository"
	"github.com/campuswatt/gridline/internal/auth/token"
	"github.com/campuswatt/gridline/internal/clock"
	"github.com/campuswatt/gridline/internal/config"
	linerepo "github.com/campuswatt/gridline/internal/line/repository"
	"github.com/campuswatt/gridline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) authdomain.Service {
	t.Helper()

	db := testutil.NewDB(t)
	return New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		GenID:  testutil.NewNode(t),
		Clock:  clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
		Tokens: token.NewManager(config.Config{AuthJWTSecret: "test-secret"}),
		Repo:   authrepo.Provide(),
		Lines:  linerepo.Provide(),
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)

	session, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "Student@Campus.Local",
		Password: "hunter2hunter2",
		Name:     "Test Student",
	})
	require.NoError(t, err)
	assert.Equal(t, "student@campus.local", session.User.Email)
	assert.Equal(t, "student", session.User.Role)
	assert.NotEmpty(t, session.Token)

	login, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "student@campus.local",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	user, err := svc.VerifySession(context.Background(), login.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID.String())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "dup@campus.local",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "dup@campus.local",
		Password: "hunter2hunter2",
	})
	require.ErrorIs(t, err, authdomain.ErrEmailTaken)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "weak@campus.local",
		Password: "short",
	})
	require.ErrorIs(t, err, authdomain.ErrWeakPassword)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "who@campus.local",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "who@campus.local",
		Password: "wrong-password",
	})
	require.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestVerifySessionGarbageToken(t *testing.T) {
	svc := newService(t)

	_, err := svc.VerifySession(context.Background(), "not-a-token")
	require.ErrorIs(t, err, authdomain.ErrInvalidSession)
}
