package pool

import (
	"sync"
)

// SizedBytePool manages per-size-class sync.Pools for scratch buffers. It is
// the arena the default creators of buffer-carrying pooled objects draw from:
// an internal optimization behind the Pool contract, not part of it.
type SizedBytePool struct {
	pools map[int]*sync.Pool
	sizes []int
}

// NewSizedBytePool initializes all size classes (256B..1MB).
func NewSizedBytePool() *SizedBytePool {
	sizes := []int{
		256, 512, 1024, 4096, 16384,
		65536, 262144, 1048576,
	}

	pools := make(map[int]*sync.Pool, len(sizes))
	for _, size := range sizes {
		sz := size // capture loop var
		pools[sz] = &sync.Pool{
			New: func() any {
				buf := make([]byte, 0, sz)
				return &buf
			},
		}
	}

	return &SizedBytePool{
		pools: pools,
		sizes: sizes,
	}
}

// Get returns a zero-length []byte pointer with capacity for at least weight.
func (s *SizedBytePool) Get(weight int) *[]byte {
	pool := s.pools[s.sizeClass(weight)]
	bufPtr := pool.Get().(*[]byte)
	*bufPtr = (*bufPtr)[:0]
	return bufPtr
}

// Put returns the buffer to its size class.
func (s *SizedBytePool) Put(buf *[]byte) {
	s.pools[s.sizeClass(cap(*buf))].Put(buf)
}

// sizeClass finds the smallest size class >= weight.
func (s *SizedBytePool) sizeClass(weight int) int {
	for _, size := range s.sizes {
		if weight <= size {
			return size
		}
	}
	return s.sizes[len(s.sizes)-1] // fallback: biggest class
}
