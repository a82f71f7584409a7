package country

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource 提供 [0,1) 区间的随机数，用于估算GDP的随机乘数
type RandomSource interface {
	Float64() float64
}

// lockedRand 并发安全的随机数源
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource 创建指定种子的随机数源，相同种子产生相同序列
func NewRandomSource(seed uint64) RandomSource {
	return &lockedRand{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeededRandomSource 使用当前时间作为种子
func NewTimeSeededRandomSource() RandomSource {
	return NewRandomSource(uint64(time.Now().UnixNano()))
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}
