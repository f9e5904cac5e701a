package benchmark

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vnykmshr/taskflow/pkg/async/scheduler"
)

func workerLabel(n int) string {
	return fmt.Sprintf("workers-%d", n)
}

// channelPool is the baseline: every worker reads from one shared channel.
type channelPool struct {
	jobs chan func()
	wg   sync.WaitGroup
}

func newChannelPool(workers, buffer int) *channelPool {
	p := &channelPool{jobs: make(chan func(), buffer)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for fn := range p.jobs {
				fn()
			}
		}()
	}
	return p
}

func (p *channelPool) Submit(fn func()) { p.jobs <- fn }

func (p *channelPool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// BenchmarkSchedulerThroughput measures scheduling and running b.N jobs.
func BenchmarkSchedulerThroughput(b *testing.B) {
	for _, workers := range []int{2, 4, 8} {
		b.Run(workerLabel(workers), func(b *testing.B) {
			s, err := scheduler.New(workers)
			if err != nil {
				b.Fatalf("failed to create scheduler: %v", err)
			}

			var done atomic.Int64
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = s.Schedule(func() { done.Add(1) })
			}
			_ = s.Close()
			b.StopTimer()

			if done.Load() != int64(b.N) {
				b.Fatalf("executed %d of %d jobs", done.Load(), b.N)
			}
		})
	}
}

// BenchmarkChannelPoolThroughput is the shared-channel baseline.
func BenchmarkChannelPoolThroughput(b *testing.B) {
	for _, workers := range []int{2, 4, 8} {
		b.Run(workerLabel(workers), func(b *testing.B) {
			p := newChannelPool(workers, 1024)

			var done atomic.Int64
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.Submit(func() { done.Add(1) })
			}
			p.Close()
			b.StopTimer()

			if done.Load() != int64(b.N) {
				b.Fatalf("executed %d of %d jobs", done.Load(), b.N)
			}
		})
	}
}

// BenchmarkSchedulerParallelProducers measures contention on the probe path.
func BenchmarkSchedulerParallelProducers(b *testing.B) {
	s, err := scheduler.New(4)
	if err != nil {
		b.Fatalf("failed to create scheduler: %v", err)
	}
	defer s.Close()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = s.Schedule(func() {})
		}
	})
}

// BenchmarkAsync measures the round trip of a future.
func BenchmarkAsync(b *testing.B) {
	s, err := scheduler.New(4)
	if err != nil {
		b.Fatalf("failed to create scheduler: %v", err)
	}
	defer s.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scheduler.Async1(s, func(n int) (int, error) { return n + 1, nil }, i).Get(); err != nil {
			b.Fatal(err)
		}
	}
}
