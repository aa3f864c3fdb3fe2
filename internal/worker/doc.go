// Package worker provides a fixed-size goroutine pool.
//
// Tasks submitted with Execute go onto an unbounded Channel and are picked
// up by whichever worker is idle first. Execute never blocks.
//
//	pool, err := worker.New(4)
//	if err != nil {
//	    return err
//	}
//	defer pool.Shutdown()
//
//	_ = pool.Execute(func() { handle(conn) })
//
// Shutdown closes the channel and waits for every queued and running task
// to finish. Execute after that returns ErrChannelClosed. A panicking task
// is logged and counted; its worker keeps serving.
package worker
