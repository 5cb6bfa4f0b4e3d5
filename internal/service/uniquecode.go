package service

import (
	"context"
	"errors"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/zanledger/server/internal/apperrors"
	"github.com/zanledger/server/internal/models"
)

const (
	uniqueCodePrefix      = "ZAN-"
	uniqueCodeSuffixLen   = 8
	maxUniqueCodeAttempts = 5
)

// GenerateUniqueCode returns a fresh customer code such as ZAN-3F9A0C1B
func GenerateUniqueCode() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:uniqueCodeSuffixLen]
	return uniqueCodePrefix + strings.ToUpper(suffix)
}

func uniqueCodeBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewConstantBackOff(10 * time.Millisecond)
	return backoff.WithContext(backoff.WithMaxRetries(b, maxUniqueCodeAttempts-1), ctx)
}

// insertWithGeneratedCode assigns a generated unique code to the customer and
// inserts it, drawing a new code whenever the previous one is already taken
func (s *DefaultService) insertWithGeneratedCode(ctx context.Context, customer *models.Customer) error {
	attempt := func() error {
		code := s.newUniqueCode()
		customer.UniqueCode = &code

		err := s.repo.CreateCustomer(ctx, customer)
		if errors.Is(err, apperrors.ErrUniqueCodeTaken) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	return backoff.Retry(attempt, uniqueCodeBackoff(ctx))
}
