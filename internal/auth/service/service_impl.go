package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	"github.com/campuswatt/gridline/internal/auth/token"
	"github.com/campuswatt/gridline/internal/clock"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 8

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Tokens *token.Manager
	Repo   authdomain.Repository
	Lines  linedomain.Repository
}

type service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	tokens *token.Manager
	repo   authdomain.Repository
	lines  linedomain.Repository
}

func New(p Params) authdomain.Service {
	return &service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		tokens: p.Tokens,
		repo:   p.Repo,
		lines:  p.Lines,
	}
}

func (s *service) Register(ctx context.Context, req authdomain.RegisterRequest) (*authdomain.SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, authdomain.ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLen {
		return nil, authdomain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	user := &authdomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         authdomain.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, authdomain.ErrEmailTaken
		}
		s.log.Error("failed to insert user", zap.Error(err))
		return nil, err
	}

	session, err := s.tokens.Issue(user.ID.String(), string(user.Role), now)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return &authdomain.SessionResponse{User: *toResponse(user), Token: session}, nil
}

func (s *service) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.SessionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, authdomain.ErrInvalidCredentials
	}

	session, err := s.tokens.Issue(user.ID.String(), string(user.Role), s.clock.Now())
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &authdomain.SessionResponse{User: *toResponse(user), Token: session}, nil
}

func (s *service) VerifySession(ctx context.Context, raw string) (*authdomain.User, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, authdomain.ErrInvalidSession
	}
	userID, err := snowflake.ParseString(claims.Subject)
	if err != nil {
		return nil, authdomain.ErrInvalidSession
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrInvalidSession
	}
	return user, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*authdomain.UserResponse, error) {
	userID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, authdomain.ErrInvalidID
	}
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrNotFound
	}
	return toResponse(user), nil
}

func (s *service) List(ctx context.Context) ([]authdomain.UserResponse, error) {
	users, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]authdomain.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, *toResponse(&users[i]))
	}
	return out, nil
}

func (s *service) Assign(ctx context.Context, req authdomain.AssignRequest) (*authdomain.UserResponse, error) {
	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		return nil, authdomain.ErrInvalidID
	}

	lineID, err := snowflake.ParseString(req.LineID)
	if err != nil {
		return nil, authdomain.ErrInvalidAssignment
	}
	line, err := s.lines.FindByID(ctx, s.db, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, authdomain.ErrInvalidAssignment
	}

	// The block follows the line; an explicit block_id must agree.
	if req.BlockID != "" {
		blockID, err := snowflake.ParseString(req.BlockID)
		if err != nil || blockID != line.BlockID {
			return nil, authdomain.ErrInvalidAssignment
		}
	}

	blockID := line.BlockID
	if err := s.repo.UpdateAssignment(ctx, s.db, userID, &blockID, &lineID); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, authdomain.ErrNotFound
	}

	s.log.Info("user assigned",
		zap.String("user_id", req.UserID),
		zap.String("line_id", req.LineID),
	)
	return toResponse(user), nil
}

func toResponse(u *authdomain.User) *authdomain.UserResponse {
	resp := &authdomain.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
	if u.BlockID != nil {
		resp.BlockID = u.BlockID.String()
	}
	if u.LineID != nil {
		resp.LineID = u.LineID.String()
	}
	return resp
}
