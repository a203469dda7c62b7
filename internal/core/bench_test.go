package core

import (
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	hub := NewHub("bench", nil)

	sender := NewClient("sender")
	hub.Connect(sender)
	hub.Handle(sender, []byte(`{"type":"join","name":"sender","room":"bench"}`))

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		c := NewClient(fmt.Sprintf("c%d", i))
		hub.Connect(c)
		hub.Handle(c, []byte(`{"type":"join","room":"bench"}`))
		clients = append(clients, c)
	}

	// Track delivery on one recipient; the rest overflow and drop,
	// which is the production behavior for slow consumers.
	target := clients[0]
	drain(target)
	drain(sender)

	frame := []byte(`{"type":"chat","text":"payload"}`)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		drain(target)
		hub.Handle(sender, frame)
		<-target.Outbox()
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
