package usecases

import "context"

// PollCyclePort - один полный цикл опроса всех источников
type PollCyclePort interface {
	Execute(ctx context.Context) error
}
