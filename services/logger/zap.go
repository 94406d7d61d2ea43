package logsvc

import (
	"go.uber.org/zap"

	"github.com/trezcool/qitc/core"
)

// ZapLogger adapts a zap SugaredLogger to core.Logger.
// args are alternating key/value pairs.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = (*ZapLogger)(nil)

func NewZapLogger(conf *core.Config) (*ZapLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if conf.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("app", conf.AppName), zap.String("build", conf.Build))
	return &ZapLogger{sugar: logger.Sugar()}, nil
}

func (l ZapLogger) Debug(msg string, args ...interface{}) { l.sugar.Debugw(msg, args...) }
func (l ZapLogger) Info(msg string, args ...interface{})  { l.sugar.Infow(msg, args...) }
func (l ZapLogger) Warn(msg string, args ...interface{})  { l.sugar.Warnw(msg, args...) }
func (l ZapLogger) Error(msg string, args ...interface{}) { l.sugar.Errorw(msg, args...) }
func (l ZapLogger) Fatal(msg string, args ...interface{}) { l.sugar.Fatalw(msg, args...) }

func (l ZapLogger) Sync() error { return l.sugar.Sync() }
