package runner

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunner_ПоследнийЗапросВыигрывает(t *testing.T) {
	r := New()

	seq1 := r.Begin("diary.fetchEntry")
	seq2 := r.Begin("diary.fetchEntry")

	// Результат второго запроса пришёл первым — он и применяется.
	assert.True(t, r.Latest("diary.fetchEntry", seq2))
	// Запоздавший результат первого запроса отбрасывается.
	assert.False(t, r.Latest("diary.fetchEntry", seq1))
}

func TestRunner_КатегорииНезависимы(t *testing.T) {
	r := New()

	seqA := r.Begin("identity.fetchUser")
	r.Begin("purchase.validateReceipt")

	assert.True(t, r.Latest("identity.fetchUser", seqA))
}

func TestRunner_МонотонностьПодГонкой(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	seqs := make([]uint64, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seqs[i] = r.Begin("cat")
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, 100)
	var max uint64
	for _, s := range seqs {
		assert.False(t, seen[s], "номера запросов не должны повторяться")
		seen[s] = true
		if s > max {
			max = s
		}
	}
	assert.Equal(t, uint64(100), max)
	// Последним остаётся только максимальный номер.
	assert.True(t, r.Latest("cat", max))
	assert.False(t, r.Latest("cat", max-1))
}
