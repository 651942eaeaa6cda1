package parallel

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestErrorCollectorKeepsFirstError(t *testing.T) {
	t.Parallel()
	var ec ErrorCollector
	first := errors.New("row 3 failed")

	ec.SetError(nil)
	if ec.Err() != nil {
		t.Fatalf("nil error must not be recorded, got %v", ec.Err())
	}

	ec.SetError(first)
	ec.SetError(errors.New("row 7 failed"))
	if ec.Err() != first {
		t.Errorf("Err() = %v, want %v", ec.Err(), first)
	}
}

func TestErrorCollectorPolledWhileWorking(t *testing.T) {
	t.Parallel()
	var ec ErrorCollector
	var wg sync.WaitGroup
	var stopped atomic.Int32
	start := make(chan struct{})

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if i == 0 {
				ec.SetError(errors.New("worker 0 failed"))
				return
			}
			for ec.Err() == nil {
			}
			stopped.Add(1)
		}()
	}

	close(start)
	wg.Wait()

	if got := stopped.Load(); got != 15 {
		t.Errorf("%d workers observed the failure, want 15", got)
	}
	if ec.Err() == nil || ec.Err().Error() != "worker 0 failed" {
		t.Errorf("unexpected collected error %v", ec.Err())
	}
}

func TestErrorCollectorReset(t *testing.T) {
	t.Parallel()
	var ec ErrorCollector

	ec.SetError(errors.New("canceled"))
	ec.Reset()
	if ec.Err() != nil {
		t.Fatalf("Err() after Reset = %v, want nil", ec.Err())
	}

	again := errors.New("second run")
	ec.SetError(again)
	if ec.Err() != again {
		t.Errorf("Err() = %v, want %v", ec.Err(), again)
	}
}
