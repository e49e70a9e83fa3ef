package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	bellChar        = "\a"
	defaultBellStep = 250 * time.Millisecond
)

// Bell - звуковой сигнал в терминал: строка с временем и несколько символов BEL
type Bell struct {
	out   io.Writer
	count int
	step  time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBell - конструктор. nil означает os.Stdout.
func NewBell(out io.Writer, count int) *Bell {
	if out == nil {
		out = os.Stdout
	}
	return &Bell{out: out, count: count, step: defaultBellStep, sleep: sleepContext}
}

// Alert печатает время и звонит count раз с паузой 250мс. Отмена контекста прерывает серию.
func (b *Bell) Alert(ctx context.Context, at time.Time) error {
	if _, err := fmt.Fprintln(b.out, at.Format(timeLayout)); err != nil {
		return fmt.Errorf("bell: %w", err)
	}
	defer fmt.Fprintln(b.out)

	for i := 0; i < b.count; i++ {
		if _, err := io.WriteString(b.out, bellChar); err != nil {
			return fmt.Errorf("bell: %w", err)
		}
		if err := b.sleep(ctx, b.step); err != nil {
			return err
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
