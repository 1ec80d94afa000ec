package infrastructure

import (
	"context"

	"github.com/google/uuid"

	"github.com/mateusmacedo/bus-booking/pkg/application"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID aceita apenas UUIDs na forma canônica de 36 caracteres.
func IsUUID(id string) bool {
	if len(id) != 36 {
		return false
	}
	return uuid.Validate(id) == nil
}

func LogError(ctx context.Context, logger application.AppLogger, message string, err error, fields map[string]interface{}) {
	application.LogError(ctx, logger, message, err, fields)
}

func LogInfo(ctx context.Context, logger application.AppLogger, message string, fields map[string]interface{}) {
	application.LogInfo(ctx, logger, message, fields)
}
