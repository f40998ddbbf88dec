package lib

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^HY-[A-Z0-9]{6}$`)

	for range 100 {
		number := GenerateOrderNumber()
		assert.True(t, pattern.MatchString(number), "unexpected order number: %s", number)
	}
}

// Back-to-back draws must not repeat just because they happened within the
// same clock tick; the generator draws from one shared source rather than
// reseeding per call.
func TestGenerateOrderNumberBurstIsDistinct(t *testing.T) {
	const draws = 500

	seen := make(map[string]struct{}, draws)
	for range draws {
		seen[GenerateOrderNumber()] = struct{}{}
	}

	assert.Len(t, seen, draws)
}

func TestGenerateOrderNumberConcurrentDraws(t *testing.T) {
	const goroutines = 8
	const perGoroutine = 50

	var mu sync.Mutex
	seen := make(map[string]struct{}, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perGoroutine {
				number := GenerateOrderNumber()
				mu.Lock()
				seen[number] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
}
