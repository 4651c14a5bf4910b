// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to return quickly and do their work in
// goroutines they own.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run() {
//	    go w.loop()
//	}
type Worker interface {
	Run()
}

// Stopper is implemented by workers that hold buffered work which must be
// flushed before the process exits.
type Stopper interface {
	Shutdown(ctx context.Context) error
}
