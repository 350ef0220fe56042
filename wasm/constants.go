package wasm

// Module header. Every module starts with the magic bytes followed by the
// little-endian format version.
const (
	// Magic is "\0asm" read as a little-endian uint32.
	Magic uint32 = 0x6D736100

	// Version is the only binary format version hooks may use.
	Version uint32 = 0x01

	// HeaderSize is the byte length of magic plus version.
	HeaderSize = 8
)

// Header is the exact byte prefix of an acceptable module.
var Header = [HeaderSize]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// Section IDs. Sections are walked in file order, the ID only selects the handler.
const (
	SectionCustom    byte = 0
	SectionType      byte = 1
	SectionImport    byte = 2
	SectionFunction  byte = 3
	SectionTable     byte = 4
	SectionMemory    byte = 5
	SectionGlobal    byte = 6
	SectionExport    byte = 7
	SectionStart     byte = 8
	SectionElement   byte = 9
	SectionCode      byte = 10
	SectionData      byte = 11
	SectionDataCount byte = 12
	SectionTag       byte = 13
)

// SectionName returns a printable name for a section ID.
func SectionName(id byte) string {
	switch id {
	case SectionCustom:
		return "custom"
	case SectionType:
		return "type"
	case SectionImport:
		return "import"
	case SectionFunction:
		return "function"
	case SectionTable:
		return "table"
	case SectionMemory:
		return "memory"
	case SectionGlobal:
		return "global"
	case SectionExport:
		return "export"
	case SectionStart:
		return "start"
	case SectionElement:
		return "element"
	case SectionCode:
		return "code"
	case SectionData:
		return "data"
	case SectionDataCount:
		return "datacount"
	case SectionTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Import/export descriptor kinds.
const (
	KindFunc   byte = 0
	KindTable  byte = 1
	KindMemory byte = 2
	KindGlobal byte = 3
	KindTag    byte = 4
)

// ValType is a single-byte value type encoding.
type ValType byte

// Value type encodings.
const (
	ValI32     ValType = 0x7F
	ValI64     ValType = 0x7E
	ValF32     ValType = 0x7D
	ValF64     ValType = 0x7C
	ValV128    ValType = 0x7B
	ValFuncRef ValType = 0x70
	ValExtern  ValType = 0x6F
)

// String returns the text format name of the value type.
func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	default:
		return "invalid"
	}
}

// IsNumeric reports whether v is one of i32, i64, f32 or f64.
// Hook signatures, locals and typed selects are restricted to these.
func (v ValType) IsNumeric() bool {
	return v >= ValF64 && v <= ValI32
}

// BlockVoid is the empty block type.
const BlockVoid byte = 0x40

// IsShortBlockType reports whether b is a block type encoded in a single byte.
// Anything else is a signed LEB128 type index.
func IsShortBlockType(b byte) bool {
	switch ValType(b) {
	case ValI32, ValI64, ValF32, ValF64, ValV128, ValFuncRef, ValExtern:
		return true
	}
	return b == BlockVoid
}

// FuncTypeByte introduces a function type in the type section.
const FuncTypeByte byte = 0x60

// Limits flags
const (
	LimitsHasMax byte = 0x01
)

// Control flow opcodes
const (
	OpUnreachable  byte = 0x00
	OpNop          byte = 0x01
	OpBlock        byte = 0x02
	OpLoop         byte = 0x03
	OpIf           byte = 0x04
	OpElse         byte = 0x05
	OpEnd          byte = 0x0B
	OpBr           byte = 0x0C
	OpBrIf         byte = 0x0D
	OpBrTable      byte = 0x0E
	OpReturn       byte = 0x0F
	OpCall         byte = 0x10
	OpCallIndirect byte = 0x11
)

// Parametric opcodes
const (
	OpDrop       byte = 0x1A
	OpSelect     byte = 0x1B
	OpSelectType byte = 0x1C
)

// Variable access opcodes
const (
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
)

// Table access opcodes
const (
	OpTableGet byte = 0x25
	OpTableSet byte = 0x26
)

// Memory access opcodes. Loads and stores occupy the contiguous range
// OpI32Load..OpI64Store32 and all carry an alignment and offset immediate.
const (
	OpI32Load    byte = 0x28
	OpI64Store32 byte = 0x3E
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40
)

// Constant opcodes
const (
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44
)

// Numeric opcodes without immediates span OpI32Eqz..OpI64Extend32S, covering
// comparisons, arithmetic, conversions and sign extension.
const (
	OpI32Eqz       byte = 0x45
	OpI64Extend32S byte = 0xC4
)

// Reference type opcodes
const (
	OpRefNull   byte = 0xD0
	OpRefIsNull byte = 0xD1
	OpRefFunc   byte = 0xD2
)

// Multi-byte opcode prefixes. A LEB128 sub-opcode follows.
const (
	OpPrefixMisc byte = 0xFC
	OpPrefixSIMD byte = 0xFD
)

// Misc opcodes (0xFC prefix)
const (
	MiscI64TruncSatF64U uint64 = 0x07 // last saturating truncation
	MiscMemoryInit      uint64 = 0x08
	MiscDataDrop        uint64 = 0x09
	MiscMemoryCopy      uint64 = 0x0A
	MiscMemoryFill      uint64 = 0x0B
	MiscTableInit       uint64 = 0x0C
	MiscElemDrop        uint64 = 0x0D
	MiscTableCopy       uint64 = 0x0E
	MiscTableGrow       uint64 = 0x0F
	MiscTableSize       uint64 = 0x10
	MiscTableFill       uint64 = 0x11
)

// SIMD sub-opcode bands (0xFD prefix), grouped by immediate shape.
const (
	SimdV128Load         uint64 = 0x00 // first memarg load
	SimdV128Store        uint64 = 0x0B // last memarg store
	SimdV128Const        uint64 = 0x0C // 16 byte immediate
	SimdI8x16Shuffle     uint64 = 0x0D // 16 lane indices
	SimdI8x16ExtractLane uint64 = 0x15 // first lane op
	SimdF64x2ReplaceLane uint64 = 0x22 // last lane op
	SimdV128Load8Lane    uint64 = 0x54 // first memarg+lane op
	SimdV128Store64Lane  uint64 = 0x5B // last memarg+lane op
	SimdV128Load32Zero   uint64 = 0x5C
	SimdV128Load64Zero   uint64 = 0x5D
	SimdMaxOpcode        uint64 = 0xFF
)
