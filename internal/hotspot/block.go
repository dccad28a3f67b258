package hotspot

// ExecBlock is a BlockBuilder that executes each emitted op on the
// spot. The interpreter uses it to run instrumentation immediately,
// where the JIT emitter would append the same ops to a real block.
type ExecBlock struct {
	acc uint32
}

func (b *ExecBlock) EmitLoadU32(addr *uint32) { b.acc = *addr }

func (b *ExecBlock) EmitAddU32(delta uint32) { b.acc += delta }

func (b *ExecBlock) EmitStoreU32(addr *uint32) { *addr = b.acc }

// RecordingBlock is a BlockBuilder that records the emitted op
// sequence without executing it, for emitter tests.
type RecordingBlock struct {
	Ops   []string
	Addrs []*uint32
}

func (b *RecordingBlock) EmitLoadU32(addr *uint32) {
	b.Ops = append(b.Ops, "load")
	b.Addrs = append(b.Addrs, addr)
}

func (b *RecordingBlock) EmitAddU32(delta uint32) {
	b.Ops = append(b.Ops, "add")
}

func (b *RecordingBlock) EmitStoreU32(addr *uint32) {
	b.Ops = append(b.Ops, "store")
	b.Addrs = append(b.Addrs, addr)
}
