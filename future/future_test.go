package future

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/surya2611/percona-server-mongodb/status"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMakeReadyFuture(t *testing.T) {
	f := MakeReadyFuture(42)
	assert.True(t, f.Ready())

	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, val)
}

func TestMakeReadyFutureErr(t *testing.T) {
	wantErr := status.New(status.CodeBadValue, "bad input")
	f := MakeReadyFutureErr[int](wantErr)
	assert.True(t, f.Ready())

	_, err := f.Get(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestMakeReadyFutureErr_nil(t *testing.T) {
	assert.Panics(t, func() {
		MakeReadyFutureErr[int](nil)
	})
}

func TestMakeReadyFutureWith(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		f := MakeReadyFutureWith(func() (string, error) {
			return "hello", nil
		})
		val, err := f.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hello", val)
	})

	t.Run("panic becomes error", func(t *testing.T) {
		f := MakeReadyFutureWith(func() (string, error) {
			panic("boom")
		})
		_, err := f.Get(context.Background())
		assert.Equal(t, status.CodeUnknownError, status.CodeOf(err))
	})
}

func TestPromiseEmplaceValue(t *testing.T) {
	p, f := MakePromiseFuture[int]()
	assert.False(t, f.Ready())

	go func() {
		time.Sleep(10 * time.Millisecond)
		p.EmplaceValue(7)
	}()

	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, val)
}

func TestPromiseSetError(t *testing.T) {
	p, f := MakePromiseFuture[int]()
	p.SetError(status.New(status.CodeShutdownInProgress, "shutting down"))

	_, err := f.Get(context.Background())
	assert.Equal(t, status.CodeShutdownInProgress, status.CodeOf(err))
}

func TestPromiseSetErrorRejectsNilAndOKCode(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		p, _ := MakePromiseFuture[int]()
		assert.Panics(t, func() {
			p.SetError(nil)
		})
	})

	t.Run("OK-coded error", func(t *testing.T) {
		p, f := MakePromiseFuture[int]()
		assert.Panics(t, func() {
			p.SetError(status.New(status.CodeOK, "not actually an error"))
		})
		assert.False(t, f.Ready())
	})
}

func TestMakeReadyFutureErrRejectsOKCode(t *testing.T) {
	assert.Panics(t, func() {
		MakeReadyFutureErr[int](status.New(status.CodeOK, "not actually an error"))
	})
}

func TestPromiseSetWith(t *testing.T) {
	t.Run("panic becomes error, not crash", func(t *testing.T) {
		p, f := MakePromiseFuture[int]()
		p.SetWith(func() (int, error) {
			panic("producer bug")
		})

		_, err := f.Get(context.Background())
		assert.Equal(t, status.CodeUnknownError, status.CodeOf(err))
	})

	t.Run("value", func(t *testing.T) {
		p, f := MakePromiseFuture[int]()
		p.SetWith(func() (int, error) {
			return 3, nil
		})

		val, err := f.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, val)
	})
}

func TestPromiseSetFromFuture(t *testing.T) {
	inner, innerF := MakePromiseFuture[string]()
	p, f := MakePromiseFuture[string]()
	p.SetFromFuture(innerF)

	assert.False(t, f.Ready())
	inner.EmplaceValue("forwarded")

	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "forwarded", val)
}

func TestPromiseDoubleCompletePanics(t *testing.T) {
	p, f := MakePromiseFuture[int]()
	p.EmplaceValue(1)
	assert.Panics(t, func() {
		p.EmplaceValue(2)
	})

	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, val)
}

func TestNullPromisePanics(t *testing.T) {
	var p Promise[int]
	assert.Panics(t, func() {
		p.EmplaceValue(1)
	})
	assert.Panics(t, func() {
		p.GetFuture()
	})
	assert.NotPanics(t, func() {
		p.Break()
	})
}

func TestBrokenPromise(t *testing.T) {
	p, f := MakePromiseFuture[int]()
	p.Break()

	_, err := f.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, status.CodeBrokenPromise, status.CodeOf(err))
	assert.Equal(t, "broken promise", status.MessageOf(err))
}

func TestAbandonedPromiseBreaks(t *testing.T) {
	f := func() *Future[int] {
		p, f := MakePromiseFuture[int]()
		_ = p // dropped without completing
		return f
	}()

	// The finalizer backstop needs a collection cycle to notice the
	// abandoned producer.
	deadline := time.Now().Add(5 * time.Second)
	for !f.Ready() {
		if time.Now().After(deadline) {
			t.Fatal("abandoned promise was never broken")
		}
		runtime.GC()
		time.Sleep(time.Millisecond)
	}

	_, err := f.Get(context.Background())
	assert.Equal(t, status.CodeBrokenPromise, status.CodeOf(err))
}

func TestBreakAfterCompleteIsNoop(t *testing.T) {
	p, f := MakePromiseFuture[int]()
	p.EmplaceValue(9)
	p.Break()

	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, val)
}

func TestWaitInterruption(t *testing.T) {
	t.Run("already-fired token never blocks", func(t *testing.T) {
		p, f := MakePromiseFuture[int]()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := f.Wait(ctx)
		require.Error(t, err)
		assert.Equal(t, status.CodeInterrupted, status.CodeOf(err))
		runtime.KeepAlive(p)
	})

	t.Run("deadline maps to ExceededTimeLimit", func(t *testing.T) {
		p, f := MakePromiseFuture[int]()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()

		err := f.Wait(ctx)
		require.Error(t, err)
		assert.Equal(t, status.CodeExceededTimeLimit, status.CodeOf(err))
		runtime.KeepAlive(p)
	})

	t.Run("state stays pending and re-waitable", func(t *testing.T) {
		p, f := MakePromiseFuture[int]()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.Error(t, f.Wait(ctx))

		p.EmplaceValue(5)
		require.NoError(t, f.Wait(context.Background()))

		val, err := f.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 5, val)
	})

	t.Run("ready result wins over fired token", func(t *testing.T) {
		f := MakeReadyFuture(1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.NoError(t, f.Wait(ctx))
	})
}

func TestGetInterruptionDoesNotConsume(t *testing.T) {
	p, f := MakePromiseFuture[int]()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Get(ctx)
	require.Error(t, err)

	p.EmplaceValue(11)
	val, err := f.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, val)
}

func TestDoubleConsumePanics(t *testing.T) {
	t.Run("get twice", func(t *testing.T) {
		f := MakeReadyFuture(1)
		_, _ = f.Get(context.Background())
		assert.Panics(t, func() {
			_, _ = f.Get(context.Background())
		})
	})

	t.Run("then after get", func(t *testing.T) {
		f := MakeReadyFuture(1)
		_, _ = f.Get(context.Background())
		assert.Panics(t, func() {
			f.Then(func(v int) (int, error) { return v, nil })
		})
	})

	t.Run("share after getasync", func(t *testing.T) {
		f := MakeReadyFuture(1)
		f.GetAsync(func(int, error) {})
		assert.Panics(t, func() {
			f.Share()
		})
	})
}

func TestMustGet(t *testing.T) {
	assert.Equal(t, 4, MakeReadyFuture(4).MustGet(context.Background()))
	assert.Panics(t, func() {
		MakeReadyFutureErr[int](status.New(status.CodeBadValue, "nope")).MustGet(context.Background())
	})
}

func TestGetAsync(t *testing.T) {
	t.Run("runs inline when ready", func(t *testing.T) {
		called := false
		MakeReadyFuture(2).GetAsync(func(val int, err error) {
			called = true
			assert.NoError(t, err)
			assert.Equal(t, 2, val)
		})
		assert.True(t, called)
	})

	t.Run("runs on completing goroutine when pending", func(t *testing.T) {
		p, f := MakePromiseFuture[int]()
		got := make(chan int, 1)
		f.GetAsync(func(val int, err error) {
			got <- val
		})
		p.EmplaceValue(8)
		assert.Equal(t, 8, <-got)
	})
}

// The §8-style completion/attachment race: exactly one continuation run,
// and the chained value is observed regardless of interleaving.
func TestCompletionAttachmentRace(t *testing.T) {
	for i := 0; i < 200; i++ {
		p, f := MakePromiseFuture[int]()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rand.Intn(2) == 0 {
				time.Sleep(time.Duration(rand.Intn(100)) * time.Microsecond)
			}
			p.EmplaceValue(42)
		}()

		var invocations atomic.Int32
		chained := f.Then(func(x int) (int, error) {
			invocations.Add(1)
			return x + 1, nil
		})

		val, err := chained.Get(context.Background())
		wg.Wait()
		require.NoError(t, err)
		require.Equal(t, 43, val)
		require.Equal(t, int32(1), invocations.Load())
	}
}
