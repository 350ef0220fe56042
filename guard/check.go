package guard

import (
	stderrors "errors"
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/hook-guard/errors"
	"github.com/wippyai/hook-guard/wasm"
)

// checker walks one function body. It owns the block tree for that body
// and nothing else, so the tree is dropped as soon as the walk returns.
type checker struct {
	r          *wasm.Reader
	tree       *blockTree
	guardIdx   uint32
	lastImport uint32
	fn         int
}

// checkGuard verifies the instructions of one function body in
// code[start:end) and returns its worst-case instruction count.
//
// Every loop must open with i32.const, i32.const <bound>, call <guardIdx>.
// Calls may only target imports, call_indirect and memory.grow are refused.
func checkGuard(code []byte, start, end int, guardIdx, lastImport uint32, fn int) (uint64, error) {
	c := &checker{
		r:          wasm.NewReader(code, start, end),
		tree:       newBlockTree(),
		guardIdx:   guardIdx,
		lastImport: lastImport,
		fn:         fn,
	}
	return c.run()
}

func (c *checker) run() (uint64, error) {
	r := c.r
	for r.Len() > 0 {
		at := r.Position()
		if c.tree.closed() {
			return 0, c.fail(errors.CodeBlockIllegal, at, "instructions after the final end")
		}
		op, err := r.ReadByte()
		if err != nil {
			return 0, c.readErr(err, "opcode")
		}
		if op == wasm.OpEnd {
			c.tree.close()
			continue
		}
		c.tree.count()
		if err := c.step(op, at); err != nil {
			return 0, err
		}
	}

	if !c.tree.closed() {
		return 0, c.fail(errors.CodeBlockIllegal, r.Position(),
			"function body ends with %d unclosed blocks", c.tree.depth+1)
	}

	wce := c.tree.worstCase()
	Logger().Debug("function verified",
		zap.Int("func", c.fn),
		zap.Uint64("wce", wce),
		zap.Int("blocks", len(c.tree.nodes)),
	)
	if wce >= MaxInstructionCount {
		e := errors.Limit(errors.PhaseGuard, errors.CodeInstructionExcess, wce, MaxInstructionCount-1)
		e.Func = c.fn
		e.Detail = "worst-case instruction count too large: " + e.Detail
		return 0, e
	}
	return wce, nil
}

// step decodes the immediates of one instruction whose opcode byte at
// offset at has already been consumed.
func (c *checker) step(op byte, at int) error {
	r := c.r
	switch op {
	case wasm.OpUnreachable, wasm.OpNop, wasm.OpElse, wasm.OpReturn,
		wasm.OpDrop, wasm.OpSelect, wasm.OpRefIsNull:
		return nil

	case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
		if err := c.blockType(); err != nil {
			return err
		}
		bound := c.tree.bound()
		if op == wasm.OpLoop {
			var err error
			if bound, err = c.loopGuard(at); err != nil {
				return err
			}
		}
		c.tree.open(bound)
		return nil

	case wasm.OpBr, wasm.OpBrIf,
		wasm.OpLocalGet, wasm.OpLocalSet, wasm.OpLocalTee,
		wasm.OpGlobalGet, wasm.OpGlobalSet,
		wasm.OpTableGet, wasm.OpTableSet,
		wasm.OpRefFunc:
		return c.skipVarints(1, "index")

	case wasm.OpBrTable:
		n, err := r.ReadUvarint()
		if err != nil {
			return c.readErr(err, "br_table count")
		}
		// Each label takes at least one byte, a lying count fails as truncated.
		for i := uint64(0); i < n; i++ {
			if err := c.skipVarints(1, "br_table label"); err != nil {
				return err
			}
		}
		return c.skipVarints(1, "br_table default")

	case wasm.OpCall:
		callee, err := r.ReadUvarint()
		if err != nil {
			return c.readErr(err, "call target")
		}
		if callee > uint64(c.lastImport) {
			return c.fail(errors.CodeCallIllegal, at,
				"call to non-imported function %d (last import %d)", callee, c.lastImport)
		}
		return nil

	case wasm.OpCallIndirect:
		return c.fail(errors.CodeCallIndirect, at, "call_indirect is not permitted")

	case wasm.OpSelectType:
		n, err := r.ReadUvarint()
		if err != nil {
			return c.readErr(err, "select arity")
		}
		for i := uint64(0); i < n; i++ {
			vt, err := r.ReadByte()
			if err != nil {
				return c.readErr(err, "select type")
			}
			if !wasm.ValType(vt).IsNumeric() {
				return c.fail(errors.CodeValueKindInvalid, r.Position()-1,
					"select type 0x%02x not allowed", vt)
			}
		}
		return nil

	case wasm.OpMemorySize:
		return c.skipBytes(1, "memory.size reserved byte")

	case wasm.OpMemoryGrow:
		return c.fail(errors.CodeMemoryGrow, at, "memory.grow is not permitted")

	case wasm.OpI32Const, wasm.OpI64Const:
		if _, err := r.ReadSvarint(); err != nil {
			return c.readErr(err, "integer constant")
		}
		return nil

	case wasm.OpF32Const:
		return c.skipBytes(4, "f32 constant")

	case wasm.OpF64Const:
		return c.skipBytes(8, "f64 constant")

	case wasm.OpRefNull:
		return c.skipBytes(1, "reference type")

	case wasm.OpPrefixMisc:
		return c.misc(at)

	case wasm.OpPrefixSIMD:
		return c.simd(at)
	}

	switch {
	case op >= wasm.OpI32Load && op <= wasm.OpI64Store32:
		return c.skipVarints(2, "memarg")
	case op >= wasm.OpI32Eqz && op <= wasm.OpI64Extend32S:
		return nil
	}
	return c.fail(errors.CodeOpcodeUnknown, at, "unknown opcode 0x%02x", op)
}

// blockType consumes a block type: one byte for the empty and value types,
// otherwise a signed LEB128 type index.
func (c *checker) blockType() error {
	b, err := c.r.PeekByte()
	if err != nil {
		return c.readErr(err, "block type")
	}
	if wasm.IsShortBlockType(b) {
		return c.skipBytes(1, "block type")
	}
	if _, err := c.r.ReadSvarint(); err != nil {
		return c.readErr(err, "block type index")
	}
	return nil
}

// loopGuard consumes the mandatory guard idiom at the head of a loop and
// returns the asserted iteration bound.
func (c *checker) loopGuard(loopAt int) (uint64, error) {
	r := c.r

	if err := c.expect(wasm.OpI32Const, loopAt); err != nil {
		return 0, err
	}
	if _, err := r.ReadSvarint(); err != nil {
		return 0, c.readErr(err, "guard id")
	}

	if err := c.expect(wasm.OpI32Const, loopAt); err != nil {
		return 0, err
	}
	at := r.Position()
	v, err := r.ReadSvarint()
	if err != nil {
		return 0, c.readErr(err, "guard bound")
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, c.fail(errors.CodeGuardMissing, at, "guard bound %d is not an i32", v)
	}
	bound := uint64(uint32(int32(v)))
	if bound == 0 {
		return 0, c.fail(errors.CodeGuardZeroIter, at, "guard call cannot specify zero max-iterations")
	}

	if err := c.expect(wasm.OpCall, loopAt); err != nil {
		return 0, err
	}
	at = r.Position()
	target, err := r.ReadUvarint()
	if err != nil {
		return 0, c.readErr(err, "guard call target")
	}
	if target != uint64(c.guardIdx) {
		return 0, c.fail(errors.CodeGuardTarget, at,
			"loop head calls function %d, guard is %d", target, c.guardIdx)
	}
	return bound, nil
}

// expect consumes one opcode of the guard idiom.
func (c *checker) expect(op byte, loopAt int) error {
	got, err := c.r.ReadByte()
	if err != nil {
		return c.readErr(err, "guard call")
	}
	if got != op {
		return c.fail(errors.CodeGuardMissing, loopAt,
			"missing or invalid guard call at loop head: want i32.const, i32.const, call _g")
	}
	return nil
}

func (c *checker) misc(at int) error {
	sub, err := c.r.ReadUvarint()
	if err != nil {
		return c.readErr(err, "0xfc sub-opcode")
	}
	switch {
	case sub <= wasm.MiscI64TruncSatF64U:
		return nil
	case sub == wasm.MiscMemoryInit:
		if err := c.skipVarints(1, "data index"); err != nil {
			return err
		}
		return c.skipBytes(1, "memory index")
	case sub == wasm.MiscDataDrop, sub == wasm.MiscElemDrop,
		sub == wasm.MiscTableGrow, sub == wasm.MiscTableSize, sub == wasm.MiscTableFill:
		return c.skipVarints(1, "index")
	case sub == wasm.MiscMemoryCopy:
		return c.skipBytes(2, "memory indices")
	case sub == wasm.MiscMemoryFill:
		return c.skipBytes(1, "memory index")
	case sub == wasm.MiscTableInit, sub == wasm.MiscTableCopy:
		return c.skipVarints(2, "table indices")
	}
	return c.fail(errors.CodeOpcodeUnknown, at, "unknown 0xfc sub-opcode 0x%x", sub)
}

func (c *checker) simd(at int) error {
	sub, err := c.r.ReadUvarint()
	if err != nil {
		return c.readErr(err, "0xfd sub-opcode")
	}
	switch {
	case sub <= wasm.SimdV128Store:
		return c.skipVarints(2, "memarg")
	case sub == wasm.SimdV128Const, sub == wasm.SimdI8x16Shuffle:
		return c.skipBytes(16, "v128 immediate")
	case sub >= wasm.SimdI8x16ExtractLane && sub <= wasm.SimdF64x2ReplaceLane:
		return c.skipBytes(1, "lane index")
	case sub >= wasm.SimdV128Load8Lane && sub <= wasm.SimdV128Store64Lane:
		if err := c.skipVarints(2, "memarg"); err != nil {
			return err
		}
		return c.skipBytes(1, "lane index")
	case sub == wasm.SimdV128Load32Zero, sub == wasm.SimdV128Load64Zero:
		return c.skipVarints(2, "memarg")
	case sub > wasm.SimdMaxOpcode:
		return c.fail(errors.CodeOpcodeUnknown, at, "unknown 0xfd sub-opcode 0x%x", sub)
	}
	return nil
}

func (c *checker) skipVarints(n int, what string) error {
	for i := 0; i < n; i++ {
		if _, err := c.r.ReadUvarint(); err != nil {
			return c.readErr(err, what)
		}
	}
	return nil
}

func (c *checker) skipBytes(n uint64, what string) error {
	if err := c.r.Skip(n); err != nil {
		return c.readErr(err, what)
	}
	return nil
}

func (c *checker) fail(code errors.Code, at int, detail string, args ...any) error {
	return errors.New(errors.PhaseGuard, errors.KindPolicy).
		Code(code).
		At(at).
		Func(c.fn).
		Detail(detail, args...).
		Build()
}

func (c *checker) readErr(err error, what string) error {
	e := readError(errors.PhaseGuard, err, what)
	e.Func = c.fn
	return e
}

// readError converts a Reader failure into a rejection carrying the
// offset where decoding stopped.
func readError(phase errors.Phase, err error, what string) *errors.Error {
	off := -1
	var perr *wasm.ParseError
	if stderrors.As(err, &perr) {
		off = perr.Position
	}
	if stderrors.Is(err, wasm.ErrOverflow) {
		return errors.New(phase, errors.KindMalformed).
			Code(errors.CodeLEBInvalid).
			At(off).
			Cause(err).
			Detail("invalid LEB128 in %s", what).
			Build()
	}
	return errors.New(phase, errors.KindTruncated).
		Code(errors.CodeShortHook).
		At(off).
		Cause(err).
		Detail("truncated while reading %s", what).
		Build()
}
