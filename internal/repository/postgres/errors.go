package postgres

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/daffodeal/marketplace/pkg/errors"
)

// SQLSTATE codes mapped to client errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapWriteError turns unique and foreign key violations into 409 and 400
// errors and wraps everything else with op.
func mapWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return apperrors.Conflict(fmt.Sprintf("%s: duplicate %s", op, pgErr.ConstraintName))
		case foreignKeyViolation:
			return apperrors.InvalidInput(fmt.Sprintf("%s: referenced record does not exist", op))
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

func unmarshalJSONB(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
