// Package mesh is a Go client for the MudVault Mesh, an
// inter-application message bus connecting independent MUDs through a
// central gateway over WebSocket.
//
// A Client owns one long-lived gateway connection and drives its full
// lifecycle: connect, authenticate, heartbeat, listen, and reconnect
// with exponential backoff. Decoded envelopes and lifecycle events
// are delivered to handlers registered with On.
//
//	client, err := mesh.NewClient("DarkTower")
//	if err != nil {
//		log.Fatal(err)
//	}
//	client.On(messaging.EventConnected, func(ev messaging.Event) {
//		log.Println("on the mesh")
//	})
//	client.On(contracts.TypeTell, func(ev messaging.Event) {
//		log.Println(contracts.FormatForDisplay(ev.Envelope))
//	})
//	if err := client.Connect(ctx, "wss://mesh.mudvault.org", apiKey); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	client.SendTell(contracts.Endpoint{Mud: "OtherMud", User: "bob"}, "hi")
package mesh
