package resource

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type memSource struct {
	data []byte
}

func (m memSource) Name() string { return "mem.ztd" }

func (m memSource) Read() ([]byte, error) {
	return append([]byte{}, m.data...), nil
}

func (s *Store) ownedSum() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, rec := range s.records {
		sum += rec.owned()
	}
	return sum
}

func TestStore_TotalMatchesOwnedBuffers(t *testing.T) {
	s := New(Config{MaxMemoryBytes: 2000, TargetMemoryBytes: 1000}, zap.NewNop())

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 500; i++ {
				key := Key(fmt.Sprintf("k%d", rnd.Intn(20)))
				size := rnd.Intn(200)
				switch rnd.Intn(6) {
				case 0:
					s.RegisterLazy(key, memSource{data: make([]byte, size)})
				case 1:
					s.RegisterPinned(key, KindOther, make([]byte, size))
				case 2:
					s.Remove(key)
				case 3:
					s.Acquire(key)
				case 4:
					s.Release(key)
				default:
					s.Fetch(key)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	assert.Equal(t, s.ownedSum(), s.Stats().TotalBytes)

	s.mu.Lock()
	for key, rec := range s.records {
		assert.Equal(t, key, rec.key)
		assert.GreaterOrEqual(t, rec.refs.Load(), int64(0))
	}
	s.mu.Unlock()
}
