package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"coinprices-service/internal/application"

	"github.com/stretchr/testify/require"
)

type countingRunner struct {
	n     atomic.Int32
	err   error
	panic bool
}

func (c *countingRunner) Run(context.Context) (application.RunResult, error) {
	c.n.Add(1)
	if c.panic {
		panic("boom")
	}
	return application.RunResult{RunID: "r"}, c.err
}

func startWorker(t *testing.T, w *CronWorker) (context.CancelFunc, <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	return cancel, done
}

func TestCronWorker_RunOnStart(t *testing.T) {
	t.Parallel()

	r := &countingRunner{}
	w, err := NewCronWorker(r, "0 0 0 1 1 *", true, nil)
	require.NoError(t, err)

	cancel, done := startWorker(t, w)
	require.Eventually(t, func() bool { return r.n.Load() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
	require.Equal(t, int32(1), r.n.Load())
}

func TestCronWorker_Ticks(t *testing.T) {
	t.Parallel()

	r := &countingRunner{err: errors.New("fatal")}
	w, err := NewCronWorker(r, "* * * * * *", false, nil)
	require.NoError(t, err)

	cancel, done := startWorker(t, w)
	require.Eventually(t, func() bool { return r.n.Load() >= 2 }, 4*time.Second, 20*time.Millisecond)
	cancel()
	<-done
}

func TestCronWorker_SurvivesPanic(t *testing.T) {
	t.Parallel()

	r := &countingRunner{panic: true}
	w, err := NewCronWorker(r, "* * * * * *", true, nil)
	require.NoError(t, err)

	cancel, done := startWorker(t, w)
	require.Eventually(t, func() bool { return r.n.Load() >= 2 }, 4*time.Second, 20*time.Millisecond)
	cancel()
	<-done
}

func TestNewCronWorker_BadSchedule(t *testing.T) {
	t.Parallel()

	_, err := NewCronWorker(&countingRunner{}, "not a cron", true, nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate("0 5 0 * * *"))
	require.NoError(t, Validate("@daily"))
	require.Error(t, Validate("0 5 0 * *"))
}
