package core

import (
	"fmt"
	"testing"

	"github.com/ollamachat/chathub/internal/log"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	h := NewHub("bench", []string{"bench"}, log.Nop())

	sender := NewClient("sender")
	h.Register(sender)
	h.Join("sender", "sender", "bench")

	target := NewClient("target")
	h.Register(target)
	h.Join("target", "target", "bench")

	for i := 0; i < recipients-1; i++ {
		id := fmt.Sprintf("c%d", i)
		c := NewClient(id)
		h.Register(c)
		h.Join(id, "client", "bench")
		// Drain to avoid filled buffers turning sends into drops.
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}

	go func() {
		for range sender.Events {
		}
	}()

	// Drop the join notices accumulated during setup.
	for len(target.Events) > 0 {
		<-target.Events
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		h.HandleMessage("sender", "payload")
		for {
			ev := <-target.Events
			if ev.Kind == EventMessage && ev.Message.Kind == KindUser {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
