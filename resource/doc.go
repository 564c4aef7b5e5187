// Package resource shares memory, worker and IO limits between stores.
//
// The Controller governs three resource types:
//
//   - Memory: store buffers reserve their size at creation and return it on Close
//   - Workers: ranking goroutines borrow slots per query without blocking
//   - IO: entry loading is throttled by a token bucket
//
// # Memory Management
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(ctx, 1024*1024); err != nil {
//	    // ErrMemoryLimitExceeded or ctx.Err()
//	}
//	defer rc.ReleaseMemory(1024*1024)
//
// # Worker Slots
//
//	n := rc.AcquireWorkers(8) // 0..8, never blocks
//	defer rc.ReleaseWorkers(n)
//
// # IO Rate Limiting
//
//	reader := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully: memory and IO become
// unlimited and every worker request is granted.
package resource
