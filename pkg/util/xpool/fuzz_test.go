package xpool

import (
	"math"
	"testing"
)

func FuzzNew(f *testing.F) {
	f.Add(1, 1, 1)
	f.Add(0, 0, 0)
	f.Add(-1, -1, 2)
	f.Add(100, 100, 1)
	f.Add(math.MaxInt, 1, 2)
	f.Add(1, math.MaxInt, 1)
	f.Add(maxWorkers+1, 1, 1)
	f.Add(1, maxQueueSize+1, 2)

	f.Fuzz(func(t *testing.T, workers, queueSize, mode int) {
		// 避免一次创建过多 goroutine
		if workers > 64 && workers <= maxWorkers {
			workers = 64
		}
		conns := newConns(t, 1)
		p, err := New(Mode(mode), conns, WithWorkers(workers), WithMaxRequests(queueSize),
			WithLogger(discardLogger(t)))
		if err != nil {
			return
		}
		defer func() { _ = p.Close() }()

		for i := 0; i < min(queueSize, 10); i++ {
			_ = p.Submit(&fakeTask{readOK: i%2 == 0}) // 队列满时忽略
		}
		if p.Len() > p.MaxRequests() {
			t.Fatalf("queue length %d exceeds capacity %d", p.Len(), p.MaxRequests())
		}
	})
}
