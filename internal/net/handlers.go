package net

import "github.com/l1jgo/entitycore/internal/net/packet"

var anyState = []packet.SessionState{packet.StateConnected, packet.StateSubscribed}

func registerHandlers(reg *packet.Registry) {
	reg.Register(packet.C_OPCODE_PING, anyState, handlePing)
	reg.Register(packet.C_OPCODE_SUBSCRIBE, anyState, handleSubscribe)
	reg.Register(packet.C_OPCODE_UNSUBSCRIBE, []packet.SessionState{packet.StateSubscribed}, handleUnsubscribe)
}

// handlePing: [D nonce] -> pong with the same nonce.
func handlePing(sess any, r *packet.Reader) {
	sess.(*Session).Send(packet.BuildPong(r.ReadD()))
}

// handleSubscribe: [S world filter]
func handleSubscribe(sess any, r *packet.Reader) {
	sess.(*Session).Subscribe(r.ReadS())
}

func handleUnsubscribe(sess any, _ *packet.Reader) {
	sess.(*Session).Unsubscribe()
}
