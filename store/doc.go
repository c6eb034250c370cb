// Package store keeps the history of finished workflow runs.
//
// Records are JSON documents behind the [Adapter] interface. Two adapters
// ship with the package: [MemoryAdapter], bounded and process-local, and
// [RedisAdapter], which shares history between replicas.
//
// # Basic Usage
//
//	runs := store.NewRuns(nil) // in-memory
//	result, _ := engine.Run(ctx, state)
//	if err := runs.Save(ctx, store.NewRecord(result)); err != nil {
//	    log.Fatal(err)
//	}
//
//	rec, err := runs.Get(ctx, result.RunID)
//	if errors.Is(err, store.ErrRunNotFound) {
//	    // expired or evicted
//	}
//
// # Redis
//
//	adapter := store.NewRedisAdapter("localhost:6379", "", 0,
//	    store.WithPrefix("warden:runs:"),
//	    store.WithTTL(24*time.Hour))
//	runs := store.NewRuns(adapter)
//
// The store records outcomes only. Runs are never resumed from it.
package store
