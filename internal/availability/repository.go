package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrRuleNotFound = errors.New("availability rule not found")

// Repository is the rule store consumed by the booking service and the API.
type Repository interface {
	Create(ctx context.Context, r *Rule) error
	GetByID(ctx context.Context, id uuid.UUID) (*Rule, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Rule, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
