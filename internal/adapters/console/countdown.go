package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

const spinnerTick = 250 * time.Millisecond

// Countdown ждет до следующего цикла, показывая спиннер и оставшееся время.
// Без вывода (show == false) просто ждет.
type Countdown struct {
	out  io.Writer
	show bool
	tick time.Duration
	now  func() time.Time
}

// NewCountdown - конструктор. nil означает os.Stdout.
func NewCountdown(out io.Writer, show bool) *Countdown {
	if out == nil {
		out = os.Stdout
	}
	return &Countdown{out: out, show: show, tick: spinnerTick, now: time.Now}
}

// Wait блокируется на d или до отмены контекста, тогда возвращает ctx.Err()
func (c *Countdown) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	if !c.show {
		return sleepContext(ctx, d)
	}

	deadline := c.now().Add(d)
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	defer fmt.Fprint(c.out, strings.Repeat(" ", 80)+"\r")

	for frame := 0; ; frame++ {
		remaining := deadline.Sub(c.now())
		if remaining <= 0 {
			return nil
		}
		fmt.Fprintf(c.out, "%s %s (next update in: %ds)  \r",
			spinnerFrames[frame%len(spinnerFrames)], c.now().Format(timeLayout), int(remaining.Round(time.Second)/time.Second))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
