package redis

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/allmytab/startpage/internal/apperror"
)

// classify maps a raw client error onto the engine's error taxonomy.
// Auth/ACL rejections are terminal permission errors; everything else that
// is not a missing key counts as transient and is eligible for retry.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return apperror.NotFound(op, "")
	}
	if isPermission(err) {
		return apperror.Permission(op)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return apperror.Transient(op, err)
}

func isPermission(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "NOPERM") ||
		strings.HasPrefix(msg, "NOAUTH") ||
		strings.HasPrefix(msg, "WRONGPASS")
}
