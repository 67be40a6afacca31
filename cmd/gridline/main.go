package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/campuswatt/gridline/internal/alert"
	"github.com/campuswatt/gridline/internal/auth"
	"github.com/campuswatt/gridline/internal/block"
	"github.com/campuswatt/gridline/internal/clock"
	"github.com/campuswatt/gridline/internal/config"
	"github.com/campuswatt/gridline/internal/control"
	"github.com/campuswatt/gridline/internal/device"
	"github.com/campuswatt/gridline/internal/line"
	"github.com/campuswatt/gridline/internal/migration"
	"github.com/campuswatt/gridline/internal/observability"
	"github.com/campuswatt/gridline/internal/prediction"
	"github.com/campuswatt/gridline/internal/ratelimit"
	"github.com/campuswatt/gridline/internal/seed"
	"github.com/campuswatt/gridline/internal/server"
	"github.com/campuswatt/gridline/internal/telemetry"
	"github.com/campuswatt/gridline/internal/topup"
	"github.com/campuswatt/gridline/pkg/db"
	"go.uber.org/fx"
)

// newSnowflakeNode derives a stable node id from the hostname so
// replicas mint non-colliding ids without coordination.
func newSnowflakeNode() (*snowflake.Node, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "gridline"
	}
	h := fnv.New32a()
	h.Write([]byte(hostname))
	return snowflake.NewNode(int64(h.Sum32() % 1024))
}

func main() {
	fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		db.Module,
		fx.Provide(newSnowflakeNode),

		migration.Module,
		seed.Module,
		ratelimit.Module,

		block.Module,
		line.Module,
		telemetry.Module,
		alert.Module,
		control.Module,
		topup.Module,
		prediction.Module,
		device.Module,
		auth.Module,

		server.Module,
	).Run()
}
