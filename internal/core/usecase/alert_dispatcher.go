package usecase

import (
	"adoption-tracker-service/internal/contextkeys"
	"adoption-tracker-service/internal/core/domain"
	"adoption-tracker-service/internal/core/port"
	"context"
	"fmt"
	"time"
)

// AlertDispatcher решает, подавать ли сигнал в конце цикла.
// Первый цикл после старта только "взводит" диспетчер, чтобы при загрузке
// сохраненного состояния не звенеть на все уже известные объявления.
type AlertDispatcher struct {
	alerter port.AlerterPort
	now     func() time.Time

	armed     bool
	triggered bool
}

func NewAlertDispatcher(alerter port.AlerterPort, now func() time.Time) (*AlertDispatcher, error) {
	if alerter == nil {
		return nil, fmt.Errorf("alert dispatcher: alerter cannot be nil")
	}
	if now == nil {
		now = time.Now
	}
	return &AlertDispatcher{alerter: alerter, now: now}, nil
}

// Record учитывает результат наблюдения. Исключенные породы сигнал не вызывают никогда.
func (d *AlertDispatcher) Record(outcome domain.SightingOutcome, excluded bool) {
	if excluded || !outcome.Notable() {
		return
	}
	d.triggered = true
}

// Armed - прошел ли уже первый цикл
func (d *AlertDispatcher) Armed() bool {
	return d.armed
}

// Triggered - было ли в текущем цикле событие, достойное сигнала
func (d *AlertDispatcher) Triggered() bool {
	return d.triggered
}

// Evaluate вызывается один раз в конце цикла. Возвращает true, если сигнал был подан.
func (d *AlertDispatcher) Evaluate(ctx context.Context) (bool, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AlertDispatcher"})

	if !d.armed {
		d.armed = true
		d.triggered = false
		logger.Debug("Alert dispatcher armed", nil)
		return false, nil
	}

	if !d.triggered {
		return false, nil
	}

	// флаг сбрасываем в любом случае, иначе один сбой звука повторялся бы каждый цикл
	d.triggered = false
	if err := d.alerter.Alert(ctx, d.now()); err != nil {
		logger.Error("Failed to emit alert", err, nil)
		return false, fmt.Errorf("alert dispatcher: %w", err)
	}
	return true, nil
}
