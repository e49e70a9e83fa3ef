package usecases

import "context"

// RestoreStatePort - загрузка снимка при старте, возвращает число восстановленных записей
type RestoreStatePort interface {
	Execute(ctx context.Context) (int, error)
}
