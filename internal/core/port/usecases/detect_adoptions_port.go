package usecases

import (
	"adoption-tracker-service/internal/core/domain"
	"context"
)

type DetectAdoptionsPort interface {
	Execute(ctx context.Context) []domain.Listing
}
