package starschema_test

import (
	"sync"
	"testing"

	"github.com/pilosa/starschema"
)

func TestNexter(t *testing.T) {
	n := starschema.NewNexter(starschema.NexterStartFrom(19))
	if num := n.Next(); num != 19 {
		t.Fatalf("expected 19 for Next, but %d", num)
	}
	if num := n.Last(); num != 19 {
		t.Fatalf("expected 19 for Last, but %d", num)
	}
}

func TestNexterConcurrent(t *testing.T) {
	n := starschema.NewNexter()
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				n.Next()
			}
		}()
	}
	wg.Wait()
	if last := n.Last(); last != 7999 {
		t.Fatalf("expected 7999 for Last, but %d", last)
	}
}
