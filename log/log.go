package log

import (
	"os"

	"contract-kit/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Logger *zap.Logger

func init() {
	Logger, _ = zap.NewDevelopment()
}

// Init 初始化日志：控制台 + 按大小切割的文件
func Init(conf config.LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(conf.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConf := zap.NewProductionEncoderConfig()
	encoderConf.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConf), zapcore.Lock(os.Stdout), level),
	}
	if conf.File != "" {
		writer := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSize,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAge,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConf), zapcore.AddSync(writer), level))
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return Logger
}
