package journey

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionLocksSerializeSameSession(t *testing.T) {
	l := newSessionLocks()

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.acquire("SESS_a")
			defer unlock()
			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()
			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "turns for one session must not overlap")
}

func TestSessionLocksEvictReleasedEntries(t *testing.T) {
	l := newSessionLocks()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			unlock := l.acquire(string(rune('A' + n%26)))
			unlock()
		}(i)
	}
	wg.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.locks, "released sessions must not leave entries behind")
}

func TestSessionLocksIndependentSessionsDoNotBlock(t *testing.T) {
	l := newSessionLocks()

	unlockA := l.acquire("SESS_a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := l.acquire("SESS_b")
		unlockB()
		close(done)
	}()
	<-done
}
