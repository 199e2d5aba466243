package packet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriterReader_Fields(t *testing.T) {
	w := NewWriterWithOpcode(42)
	w.WriteC(7)
	w.WriteH(0xBEEF)
	w.WriteD(-5)
	w.WriteDU(math.MaxUint32)
	w.WriteQ(1 << 40)
	w.WriteF(-2.5)
	w.WriteS("héllo")
	w.WriteS("")
	assert.Equal(t, 1+1+2+4+4+8+8+7+1, w.Len())

	data := w.Bytes()
	assert.Zero(t, len(data)%4, "padded to 4 bytes")

	r := NewReader(data)
	assert.Equal(t, byte(42), r.Opcode())
	assert.Equal(t, byte(7), r.ReadC())
	assert.Equal(t, uint16(0xBEEF), r.ReadH())
	assert.Equal(t, int32(-5), r.ReadD())
	assert.Equal(t, int32(-1), r.ReadD())
	assert.Equal(t, uint64(1<<40), r.ReadQ())
	assert.Equal(t, -2.5, r.ReadF())
	assert.Equal(t, "héllo", r.ReadS())
	assert.Equal(t, "", r.ReadS())
}

func TestReader_PastEnd(t *testing.T) {
	r := NewReader([]byte{1, 2})
	assert.Equal(t, byte(2), r.ReadC())
	assert.Zero(t, r.ReadC())
	assert.Zero(t, r.ReadH())
	assert.Zero(t, r.ReadD())
	assert.Zero(t, r.ReadQ())
	assert.Equal(t, "", r.ReadS())
	assert.Zero(t, r.Remaining())
	assert.Zero(t, NewReader(nil).Opcode())
}

func TestWorldDigestPacket(t *testing.T) {
	in := WorldDigest{World: "world-3", Tick: 1 << 33, Entities: 120, Staged: 4, Digest: 0xDEADBEEFCAFEF00D}
	data := BuildWorldDigest(in)
	r := NewReader(data)
	require.Equal(t, S_OPCODE_WORLD_DIGEST, r.Opcode())
	assert.Equal(t, in, ParseWorldDigest(r))
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got string
	reg.Register(C_OPCODE_SUBSCRIBE, []SessionState{StateConnected}, func(_ any, r *Reader) {
		got = r.ReadS()
	})
	reg.Register(C_OPCODE_PING, []SessionState{StateConnected}, func(any, *Reader) {
		panic("boom")
	})

	require.NoError(t, reg.Dispatch(nil, StateConnected, BuildSubscribe("world-1")))
	assert.Equal(t, "world-1", got)

	assert.Error(t, reg.Dispatch(nil, StateSubscribed, BuildSubscribe("x")), "state not allowed")
	assert.Error(t, reg.Dispatch(nil, StateConnected, BuildPing(1)), "panics are recovered")
	assert.Error(t, reg.Dispatch(nil, StateConnected, nil))
	assert.NoError(t, reg.Dispatch(nil, StateConnected, []byte{250}), "unknown opcodes are ignored")
	assert.Equal(t, "Subscribed", StateSubscribed.String())
}
