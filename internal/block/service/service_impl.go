package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	"github.com/campuswatt/gridline/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  blockdomain.Repository
}

type service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  blockdomain.Repository
}

func New(p Params) blockdomain.Service {
	return &service{
		db:    p.DB,
		log:   p.Log.Named("block.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *service) Create(ctx context.Context, req blockdomain.CreateRequest) (*blockdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, blockdomain.ErrInvalidName
	}
	quota, err := linedomain.ParseKwh(req.TotalQuotaKwh)
	if err != nil {
		return nil, blockdomain.ErrInvalidQuota
	}

	now := time.Now().UTC()
	block := &blockdomain.Block{
		ID:            s.genID.Generate(),
		Name:          name,
		TotalQuotaKwh: quota,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, block); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, blockdomain.ErrBlockExists
		}
		s.log.Error("failed to insert block", zap.Error(err))
		return nil, err
	}

	s.log.Info("block created",
		zap.String("block_id", block.ID.String()),
		zap.String("name", block.Name),
	)
	return toResponse(block, 0), nil
}

func (s *service) List(ctx context.Context) ([]blockdomain.Response, error) {
	blocks, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]blockdomain.Response, 0, len(blocks))
	for i := range blocks {
		out = append(out, *toResponse(&blocks[i].Block, blocks[i].LineCount))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*blockdomain.Response, error) {
	blockID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, blockdomain.ErrInvalidID
	}
	block, err := s.repo.FindByID(ctx, s.db, blockID)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, blockdomain.ErrNotFound
	}
	return toResponse(block, 0), nil
}

func (s *service) Update(ctx context.Context, req blockdomain.UpdateRequest) (*blockdomain.Response, error) {
	blockID, err := snowflake.ParseString(req.ID)
	if err != nil {
		return nil, blockdomain.ErrInvalidID
	}
	block, err := s.repo.FindByID(ctx, s.db, blockID)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, blockdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, blockdomain.ErrInvalidName
		}
		block.Name = name
	}
	if req.TotalQuotaKwh != nil {
		quota, err := linedomain.ParseKwh(*req.TotalQuotaKwh)
		if err != nil {
			return nil, blockdomain.ErrInvalidQuota
		}
		block.TotalQuotaKwh = quota
	}
	block.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, block); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, blockdomain.ErrBlockExists
		}
		return nil, err
	}
	return toResponse(block, 0), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	blockID, err := snowflake.ParseString(id)
	if err != nil {
		return blockdomain.ErrInvalidID
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.DeleteCascade(ctx, tx, blockID)
	})
	if err != nil {
		return err
	}

	s.log.Info("block deleted", zap.String("block_id", blockID.String()))
	return nil
}

func toResponse(b *blockdomain.Block, lineCount int) *blockdomain.Response {
	return &blockdomain.Response{
		ID:            b.ID.String(),
		Name:          b.Name,
		TotalQuotaKwh: b.TotalQuotaKwh.StringFixed(2),
		LineCount:     lineCount,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}
