package packet

// ProtocolVersion is sent in the hello packet.
const ProtocolVersion = 1

// Client opcodes.
const (
	C_OPCODE_PING        byte = 1
	C_OPCODE_SUBSCRIBE   byte = 2
	C_OPCODE_UNSUBSCRIBE byte = 3
)

// Server opcodes.
const (
	S_OPCODE_HELLO        byte = 100
	S_OPCODE_PONG         byte = 101
	S_OPCODE_WORLD_DIGEST byte = 102
)
