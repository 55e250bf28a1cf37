package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	locks := newKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("room-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Empty(t, locks.locks)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	locks := newKeyedMutex()

	unlockA := locks.Lock("room-a")
	// A second key must not block behind the first.
	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("room-b")
		unlockB()
		close(done)
	}()
	<-done
	unlockA()

	assert.Empty(t, locks.locks)
}
