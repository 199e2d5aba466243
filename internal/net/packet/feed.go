package packet

// WorldDigest is one world's state summary at the end of a tick.
type WorldDigest struct {
	World    string
	Tick     int64
	Entities int32
	Staged   int32
	Digest   uint64
}

// BuildHello: [C op][H version][S server name]
func BuildHello(server string) []byte {
	w := NewWriterWithOpcode(S_OPCODE_HELLO)
	w.WriteH(ProtocolVersion)
	w.WriteS(server)
	return w.Bytes()
}

// BuildPong: [C op][D nonce]
func BuildPong(nonce int32) []byte {
	w := NewWriterWithOpcode(S_OPCODE_PONG)
	w.WriteD(nonce)
	return w.Bytes()
}

// BuildWorldDigest: [C op][S world][Q tick][D entities][D staged][Q digest]
func BuildWorldDigest(d WorldDigest) []byte {
	w := NewWriterWithOpcode(S_OPCODE_WORLD_DIGEST)
	w.WriteS(d.World)
	w.WriteQ(uint64(d.Tick))
	w.WriteD(d.Entities)
	w.WriteD(d.Staged)
	w.WriteQ(d.Digest)
	return w.Bytes()
}

func ParseWorldDigest(r *Reader) WorldDigest {
	return WorldDigest{
		World:    r.ReadS(),
		Tick:     int64(r.ReadQ()),
		Entities: r.ReadD(),
		Staged:   r.ReadD(),
		Digest:   r.ReadQ(),
	}
}

// BuildPing: [C op][D nonce]
func BuildPing(nonce int32) []byte {
	w := NewWriterWithOpcode(C_OPCODE_PING)
	w.WriteD(nonce)
	return w.Bytes()
}

// BuildSubscribe: [C op][S world filter, empty = all worlds]
func BuildSubscribe(world string) []byte {
	w := NewWriterWithOpcode(C_OPCODE_SUBSCRIBE)
	w.WriteS(world)
	return w.Bytes()
}

func BuildUnsubscribe() []byte {
	return NewWriterWithOpcode(C_OPCODE_UNSUBSCRIBE).Bytes()
}
