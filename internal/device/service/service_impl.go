package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	"github.com/campuswatt/gridline/internal/clock"
	"github.com/campuswatt/gridline/internal/config"
	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config config.Config
	Repo   devicedomain.Repository
	Blocks blockdomain.Repository
	Lines  linedomain.Repository
}

type service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	cfg    config.Config
	repo   devicedomain.Repository
	blocks blockdomain.Repository
	lines  linedomain.Repository
}

func New(p Params) devicedomain.Service {
	return &service{
		db:     p.DB,
		log:    p.Log.Named("device.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		cfg:    p.Config,
		repo:   p.Repo,
		blocks: p.Blocks,
		lines:  p.Lines,
	}
}

func (s *service) Register(ctx context.Context, req devicedomain.RegisterRequest) (*devicedomain.RegisterResponse, error) {
	blockID, err := snowflake.ParseString(req.BlockID)
	if err != nil {
		return nil, devicedomain.ErrInvalidBlock
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, devicedomain.ErrInvalidName
	}

	exists, err := s.blocks.Exists(ctx, s.db, blockID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, devicedomain.ErrInvalidBlock
	}

	device := &devicedomain.Device{
		ID:        s.genID.Generate(),
		BlockID:   blockID,
		Name:      name,
		Token:     uuid.NewString(),
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, device); err != nil {
		return nil, err
	}

	s.log.Info("device registered",
		zap.String("device_id", device.ID.String()),
		zap.String("block_id", blockID.String()),
	)
	return &devicedomain.RegisterResponse{
		Device: *s.toResponse(device),
		Token:  device.Token,
	}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*devicedomain.Device, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, devicedomain.ErrUnauthorized
	}
	device, err := s.repo.FindByToken(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, devicedomain.ErrUnauthorized
	}
	return device, nil
}

func (s *service) AuthorizeLine(ctx context.Context, device *devicedomain.Device, lineID string) error {
	if device == nil {
		return devicedomain.ErrUnauthorized
	}
	id, err := snowflake.ParseString(lineID)
	if err != nil {
		return devicedomain.ErrInvalidLine
	}
	line, err := s.lines.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if line == nil {
		return devicedomain.ErrUnknownLine
	}
	if line.BlockID != device.BlockID {
		s.log.Warn("device polled a line outside its block",
			zap.String("device_id", device.ID.String()),
			zap.String("line_id", lineID),
		)
		return devicedomain.ErrLineNotPaired
	}
	return nil
}

func (s *service) Heartbeat(ctx context.Context, token string) (*devicedomain.HeartbeatResponse, error) {
	device, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.repo.TouchLastSeen(ctx, s.db, device.ID, now); err != nil {
		return nil, err
	}
	return &devicedomain.HeartbeatResponse{
		DeviceID: device.ID.String(),
		SeenAt:   now,
	}, nil
}

func (s *service) List(ctx context.Context, blockID string) ([]devicedomain.Response, error) {
	var id snowflake.ID
	if blockID != "" {
		parsed, err := snowflake.ParseString(blockID)
		if err != nil {
			return nil, devicedomain.ErrInvalidBlock
		}
		id = parsed
	}

	devices, err := s.repo.List(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	out := make([]devicedomain.Response, 0, len(devices))
	for i := range devices {
		out = append(out, *s.toResponse(&devices[i]))
	}
	return out, nil
}

func (s *service) Revoke(ctx context.Context, id string) error {
	deviceID, err := snowflake.ParseString(id)
	if err != nil {
		return devicedomain.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, s.db, deviceID); err != nil {
		return err
	}
	s.log.Info("device revoked", zap.String("device_id", id))
	return nil
}

func (s *service) toResponse(d *devicedomain.Device) *devicedomain.Response {
	online := false
	if d.LastSeenAt != nil {
		online = s.clock.Now().Sub(*d.LastSeenAt) <= s.cfg.DeviceOfflineAfter
	}
	return &devicedomain.Response{
		ID:         d.ID.String(),
		BlockID:    d.BlockID.String(),
		Name:       d.Name,
		Online:     online,
		LastSeenAt: d.LastSeenAt,
		CreatedAt:  d.CreatedAt,
	}
}
