// Package parallel provides utilities for fanning work out over goroutines.
package parallel

import "sync"

// ErrorCollector keeps the first error reported by a set of goroutines.
// All methods are safe for concurrent use, so workers may poll Err to stop
// early once a sibling has failed.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	for _, chunk := range chunks {
//	    wg.Add(1)
//	    go func() {
//	        defer wg.Done()
//	        ec.SetError(process(chunk))
//	    }()
//	}
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	mu  sync.Mutex
	err error
}

// SetError records err unless an error was already recorded. Nil is ignored.
func (c *ErrorCollector) SetError(err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err == nil {
		c.err = err
	}
}

// Err returns the first recorded error, or nil.
func (c *ErrorCollector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Reset clears the recorded error so the collector can be reused.
func (c *ErrorCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}
