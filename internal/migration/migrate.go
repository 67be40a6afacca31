// Package migration applies the embedded schema migrations at startup.
package migration

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	alertdomain "github.com/campuswatt/gridline/internal/alert/domain"
	authdomain "github.com/campuswatt/gridline/internal/auth/domain"
	blockdomain "github.com/campuswatt/gridline/internal/block/domain"
	controldomain "github.com/campuswatt/gridline/internal/control/domain"
	devicedomain "github.com/campuswatt/gridline/internal/device/domain"
	linedomain "github.com/campuswatt/gridline/internal/line/domain"
	predictiondomain "github.com/campuswatt/gridline/internal/prediction/domain"
	telemetrydomain "github.com/campuswatt/gridline/internal/telemetry/domain"
	topupdomain "github.com/campuswatt/gridline/internal/topup/domain"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var migrations embed.FS

// Run brings the schema up to date. Postgres and MySQL go through the
// versioned migrations; the sqlite path used by tests syncs the models
// directly since the migrate sqlite driver pulls in a second sqlite
// implementation.
func Run(db *gorm.DB, log *zap.Logger) error {
	dialect := strings.ToLower(db.Dialector.Name())

	if dialect == "sqlite" {
		return db.AutoMigrate(
			&blockdomain.Block{},
			&linedomain.Line{},
			&authdomain.User{},
			&telemetrydomain.EnergyLog{},
			&topupdomain.Payment{},
			&alertdomain.Alert{},
			&controldomain.ControlCommand{},
			&predictiondomain.AiPrediction{},
			&devicedomain.Device{},
		)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "sql")
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	switch dialect {
	case "postgres":
		driver, err := migratepostgres.WithInstance(sqlDB, &migratepostgres.Config{})
		if err != nil {
			return err
		}
		m, err = migrate.NewWithInstance("iofs", source, "postgres", driver)
		if err != nil {
			return err
		}
	case "mysql":
		driver, err := migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
		if err != nil {
			return err
		}
		m, err = migrate.NewWithInstance("iofs", source, "mysql", driver)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, _ := m.Version()
	log.Info("schema migrated",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
