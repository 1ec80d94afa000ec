package application

import (
	"context"
	"encoding/json"
)

// AppLogger é a fachada de log usada por todas as camadas.
type AppLogger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})
	Trace(ctx context.Context, msg string, fields map[string]interface{})
}

func LogError(ctx context.Context, logger AppLogger, message string, err error, fields map[string]interface{}) {
	logData := copyFields(fields, 1)
	if err != nil {
		logData["error"] = err.Error()
	}
	logger.Error(ctx, message, logData)
}

func LogInfo(ctx context.Context, logger AppLogger, message string, fields map[string]interface{}) {
	logger.Info(ctx, message, copyFields(fields, 0))
}

func LogDebug(ctx context.Context, logger AppLogger, message string, fields map[string]interface{}) {
	logger.Debug(ctx, message, copyFields(fields, 0))
}

func LogTrace(ctx context.Context, logger AppLogger, message string, fields map[string]interface{}) {
	logger.Trace(ctx, message, copyFields(fields, 0))
}

// copyFields evita que o chamador veja as chaves adicionadas pelos helpers.
func copyFields(fields map[string]interface{}, extra int) map[string]interface{} {
	logData := make(map[string]interface{}, len(fields)+extra)
	for k, v := range fields {
		logData[k] = v
	}
	return logData
}

func MarshalPayload[T any](payload T) ([]byte, error) {
	return json.Marshal(payload)
}

func UnmarshalPayload[T any](raw []byte) (T, error) {
	var payload T
	err := json.Unmarshal(raw, &payload)
	return payload, err
}

// NopLogger descarta tudo. Útil em testes.
type NopLogger struct{}

func (NopLogger) Info(context.Context, string, map[string]interface{})  {}
func (NopLogger) Debug(context.Context, string, map[string]interface{}) {}
func (NopLogger) Error(context.Context, string, map[string]interface{}) {}
func (NopLogger) Trace(context.Context, string, map[string]interface{}) {}
