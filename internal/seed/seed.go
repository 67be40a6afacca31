// Package seed provisions the initial admin account.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	"github.com/campuswatt/gridline/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Config config.Config
}

// Run creates the configured admin when no admin account exists yet.
// With no seed password set it does nothing, so production deployments
// opt in explicitly.
func Run(p Params) error {
	if p.Config.SeedAdminPassword == "" {
		return nil
	}

	var count int64
	if err := p.DB.Raw(`SELECT COUNT(1) FROM users WHERE role = 'admin'`).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Config.SeedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	admin := &authdomain.User{
		ID:           p.GenID.Generate(),
		Email:        p.Config.SeedAdminEmail,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         authdomain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = p.DB.Exec(
		`INSERT INTO users (id, email, password_hash, name, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.Name, admin.Role, admin.CreatedAt, admin.UpdatedAt,
	).Error
	if err != nil {
		return err
	}

	p.Log.Info("admin account seeded", zap.String("email", admin.Email))
	return nil
}

var Module = fx.Module("seed",
	fx.Invoke(Run),
)
