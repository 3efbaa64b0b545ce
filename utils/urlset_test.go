package utils

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	added := s.Add("https://suumo.jp/ms/chuko/tokyo/sc_104/nc_10001/")
	if !added {
		t.Error("first Add should return true")
	}

	added = s.Add("https://suumo.jp/ms/chuko/tokyo/sc_104/nc_10001/")
	if added {
		t.Error("second Add of same URL should return false")
	}

	if s.Size() != 1 {
		t.Errorf("size: got %d, want 1", s.Size())
	}

	if !s.Contains("https://suumo.jp/ms/chuko/tokyo/sc_104/nc_10001/") {
		t.Error("Contains should report the added URL")
	}
}

func TestURLSetConcurrentAdd(t *testing.T) {
	s := NewURLSet()
	var added int64

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Add("https://suumo.jp/ms/chuko/nc_1/") {
				atomic.AddInt64(&added, 1)
			}
		}()
	}
	wg.Wait()

	if added != 1 {
		t.Errorf("expected exactly 1 successful add, got %d", added)
	}
}
