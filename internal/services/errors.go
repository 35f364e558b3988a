package services

import (
	"errors"
	"log/slog"

	"github.com/localnerve/jam-build-rentals/internal/database"
	"github.com/localnerve/jam-build-rentals/internal/types"
)

// storeError passes request errors through and turns everything else into a
// logged Internal error carrying message
func storeError(log *slog.Logger, message string, err error) error {
	var custom *types.CustomError
	if errors.As(err, &custom) {
		return custom
	}
	if database.IsForeignKeyViolation(err) {
		return types.InvalidInput("Unknown property or unit")
	}
	log.Error(message, "error", err)
	return types.Internal(message, err)
}
