package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pageza/foodgram/backend/config"
)

// New builds the application logger. Production emits JSON, everything else
// the human readable development encoding.
func New(cfg *config.Config) (*zap.SugaredLogger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == config.Production {
		zcfg = zap.NewProductionConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
		}
		zcfg.Level = level
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to build logger")
	}
	return log.Sugar().With("env", string(cfg.Environment)), nil
}
