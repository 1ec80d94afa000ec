package adapter

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mateusmacedo/bus-booking/pkg/application"
)

type zapAppLoggerAdapter struct {
	zapLogger *zap.Logger
}

// Options controla a construção do logger de produção.
type Options struct {
	App   string
	Level string
}

func NewZapAppLogger(opts Options) (application.AppLogger, error) {
	level, err := zap.ParseAtomicLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = level
	config.InitialFields = map[string]interface{}{"app": opts.App}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &zapAppLoggerAdapter{zapLogger: zapLogger}, nil
}

// NewFromZap embrulha um *zap.Logger já construído, por exemplo um logger de teste.
func NewFromZap(zapLogger *zap.Logger) application.AppLogger {
	return &zapAppLoggerAdapter{zapLogger: zapLogger}
}

// Sync descarrega os buffers do logger quando ele foi criado por este pacote.
func Sync(logger application.AppLogger) error {
	if l, ok := logger.(*zapAppLoggerAdapter); ok {
		return l.zapLogger.Sync()
	}
	return nil
}

func (l *zapAppLoggerAdapter) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Info(msg, convertFields(ctx, fields)...)
}

func (l *zapAppLoggerAdapter) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Debug(msg, convertFields(ctx, fields)...)
}

func (l *zapAppLoggerAdapter) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Error(msg, convertFields(ctx, fields)...)
}

// Trace não existe no zap; vai para o nível debug.
func (l *zapAppLoggerAdapter) Trace(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Debug(msg, convertFields(ctx, fields)...)
}

func convertFields(ctx context.Context, fields map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+1)

	if ctx != nil {
		if requestID := middleware.GetReqID(ctx); requestID != "" {
			zapFields = append(zapFields, zap.String("requestID", requestID))
		}
	}

	for k, v := range fields {
		if err, ok := v.(error); ok {
			zapFields = append(zapFields, zap.NamedError(k, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
