package port

import (
	"context"
	"time"

	"adoption-tracker-service/internal/core/domain"
)

// AlerterPort подает звуковой сигнал оператору
type AlerterPort interface {
	Alert(ctx context.Context, at time.Time) error
}

// ListingPrinterPort выводит объявления оператору (не лог, а пользовательский вывод)
type ListingPrinterPort interface {
	PrintListing(listing domain.Listing)

	// PrintBreak отделяет группу строк пустой строкой
	PrintBreak()
}

// WaiterPort ждет до следующего цикла, прерывается отменой контекста
type WaiterPort interface {
	Wait(ctx context.Context, d time.Duration) error
}
