package rotator_config

import (
	"github.com/ticketon/ticketon/internal/obs"
	pg "github.com/ticketon/ticketon/internal/repository/postgres"
	"github.com/ticketon/ticketon/internal/services/rotation"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (lc *Log) AsLoggerConfig(app App) *obs.LogConfig {
	return &obs.LogConfig{
		Level:  lc.Level,
		Pretty: lc.Pretty,
		App:    app.Name,
		Env:    app.Env,
		Ver:    app.Version,
	}
}

type JWT struct {
	AccessSecret  string `mapstructure:"access_secret"`
	RefreshSecret string `mapstructure:"refresh_secret"`
	Issuer        string `mapstructure:"issuer"`
}

type Config struct {
	App      App             `mapstructure:"app"`
	DB       pg.Config       `mapstructure:"db"`
	Log      Log             `mapstructure:"log"`
	JWT      JWT             `mapstructure:"jwt"`
	Rotation rotation.Config `mapstructure:"rotation"`
}
