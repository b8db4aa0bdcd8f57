// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

type task struct {
	id       int64
	execute  time.Time
	interval time.Duration
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].execute.Before(q[j].execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	t := x.(*task)
	t.index = n
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[0 : n-1]
	return t
}

// Manager runs scheduled callbacks off a single min-heap. Callbacks execute
// on their own goroutine; the scheduler never blocks on them.
type Manager struct {
	queue    taskQueue
	mutex    sync.Mutex
	nextID   int64
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		queue:    make(taskQueue, 0),
		nextID:   1,
		stopChan: make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.process()
	return m
}

// After schedules a one-shot callback and returns its cancellation id.
func (m *Manager) After(delay time.Duration, callback func()) int64 {
	return m.add(delay, 0, callback)
}

// Every schedules a repeating callback, first firing after one interval.
func (m *Manager) Every(interval time.Duration, callback func()) int64 {
	return m.add(interval, interval, callback)
}

func (m *Manager) add(delay, interval time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t := &task{
		id:       m.nextID,
		execute:  time.Now().Add(delay),
		interval: interval,
		callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, t)
	return t.id
}

// Cancel removes a scheduled task. Cancelling an id that already fired or
// never existed is a no-op.
func (m *Manager) Cancel(id int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, t := range m.queue {
		if t.id == id {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop shuts the scheduler down. Pending tasks never fire.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Manager) process() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, due := range m.collectDue() {
				go due()
			}
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) collectDue() []func() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := time.Now()
	var due []func()

	for m.queue.Len() > 0 {
		t := m.queue[0]
		if t.execute.After(now) {
			break
		}

		heap.Pop(&m.queue)
		due = append(due, t.callback)

		if t.interval > 0 {
			t.execute = now.Add(t.interval)
			heap.Push(&m.queue, t)
		}
	}
	return due
}
