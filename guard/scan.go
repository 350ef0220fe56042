package guard

import (
	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"github.com/wippyai/hook-guard/errors"
	"github.com/wippyai/hook-guard/wasm"
)

// moduleInfo is what the first pass learns about a module.
type moduleInfo struct {
	funcTypes   []uint32 // type index per module-defined function
	importCount uint32   // number of function imports
	guardIdx    uint32
	hookIdx     uint32 // combined index space until resolved
	cbakIdx     uint32
	guardFound  bool
	hasHook     bool
	hasCbak     bool

	// Set by resolve: positions in the module-defined function space.
	hookFunc int
	cbakFunc int
	hookType uint32
}

// lastImport returns the highest function index that is an import.
func (m *moduleInfo) lastImport() uint32 {
	return m.importCount - 1
}

// sectionFunc handles one section. r is confined to the section payload.
type sectionFunc func(id byte, r *wasm.Reader) error

// walkSections visits every top-level section in file order. The cursor
// always moves to the declared end of a section, whatever fn consumed, and
// a step that does not move the cursor forward aborts the walk.
func walkSections(code []byte, fn sectionFunc) error {
	r := wasm.NewReader(code, wasm.HeaderSize, len(code))
	var seen bitset.BitSet

	for r.Len() > 0 {
		before := r.Position()

		id, err := r.ReadByte()
		if err != nil {
			return readError(errors.PhaseSection, err, "section id")
		}
		size, err := r.ReadUvarint()
		if err != nil {
			return readError(errors.PhaseSection, err, "section size")
		}
		payload, err := r.Sub(size)
		if err != nil {
			return errors.Truncated(errors.PhaseSection, before, wasm.SectionName(id)+" section")
		}

		if id != wasm.SectionCustom {
			if seen.Test(uint(id)) {
				return errors.Malformed(errors.PhaseSection, errors.CodeSectionDuplicate, before,
					"duplicate %s section", wasm.SectionName(id))
			}
			seen.Set(uint(id))
		}

		Logger().Debug("section",
			zap.String("name", wasm.SectionName(id)),
			zap.Int("offset", before),
			zap.Uint64("size", size),
		)
		if err := fn(id, payload); err != nil {
			return err
		}

		if r.Position() <= before {
			return errors.Malformed(errors.PhaseSection, errors.CodeWasmParseLoop, before,
				"parser would not advance")
		}
	}
	return nil
}

// scanMetadata is the first pass: imports, exports and the function map.
func scanMetadata(code []byte) (*moduleInfo, error) {
	m := &moduleInfo{}
	err := walkSections(code, func(id byte, r *wasm.Reader) error {
		switch id {
		case wasm.SectionImport:
			return m.readImports(r)
		case wasm.SectionExport:
			return m.readExports(r)
		case wasm.SectionFunction:
			return m.readFunctions(r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !m.guardFound {
		return nil, errors.Policy(errors.PhaseImport, errors.CodeGuardImportMissing, -1,
			"guard import missing: hook must import %s.%s", ImportModule, GuardFunc)
	}
	if !m.hasHook {
		return nil, errors.Policy(errors.PhaseExport, errors.CodeHookExportMissing, -1,
			"hook export missing")
	}
	return m, nil
}

func (m *moduleInfo) readImports(r *wasm.Reader) error {
	count, err := r.ReadUvarint()
	if err != nil {
		return readError(errors.PhaseImport, err, "import count")
	}
	if count == 0 {
		return errors.Policy(errors.PhaseImport, errors.CodeImportsMissing, r.Position(),
			"hook must import at least %s.%s", ImportModule, GuardFunc)
	}

	for i := uint64(0); i < count; i++ {
		at := r.Position()
		module, err := r.ReadName()
		if err != nil {
			return readError(errors.PhaseImport, err, "import module name")
		}
		if module != ImportModule {
			return errors.Policy(errors.PhaseImport, errors.CodeImportModuleEnv, at,
				"import module must be %q, got %q", ImportModule, module)
		}
		field, err := r.ReadName()
		if err != nil {
			return readError(errors.PhaseImport, err, "import field name")
		}
		kind, err := r.ReadByte()
		if err != nil {
			return readError(errors.PhaseImport, err, "import kind")
		}

		if kind != wasm.KindFunc {
			if err := skipImportDesc(r, kind, at); err != nil {
				return err
			}
			continue
		}

		if _, err := r.ReadU32(); err != nil {
			return readError(errors.PhaseImport, err, "import type index")
		}
		ordinal := m.importCount
		m.importCount++

		if field == GuardFunc {
			m.guardIdx = ordinal
			m.guardFound = true
			continue
		}
		if !Whitelisted(field) {
			return errors.Policy(errors.PhaseImport, errors.CodeImportIllegal, at,
				"function %q is not on the host API whitelist", field)
		}
	}
	return nil
}

// skipImportDesc consumes a non-function import descriptor. These are not
// subject to any policy.
func skipImportDesc(r *wasm.Reader, kind byte, at int) error {
	var err error
	switch kind {
	case wasm.KindTable:
		if _, err = r.ReadByte(); err == nil {
			err = skipLimits(r)
		}
	case wasm.KindMemory:
		err = skipLimits(r)
	case wasm.KindGlobal:
		if err = r.Skip(1); err == nil {
			err = r.Skip(1)
		}
	case wasm.KindTag:
		if _, err = r.ReadByte(); err == nil {
			_, err = r.ReadUvarint()
		}
	default:
		return errors.Malformed(errors.PhaseImport, errors.CodeImportKindInvalid, at,
			"unknown import kind 0x%02x", kind)
	}
	if err != nil {
		return readError(errors.PhaseImport, err, "import descriptor")
	}
	return nil
}

func skipLimits(r *wasm.Reader) error {
	flags, err := r.ReadByte()
	if err != nil {
		return err
	}
	if _, err := r.ReadUvarint(); err != nil {
		return err
	}
	if flags&wasm.LimitsHasMax != 0 {
		if _, err := r.ReadUvarint(); err != nil {
			return err
		}
	}
	return nil
}

func (m *moduleInfo) readExports(r *wasm.Reader) error {
	count, err := r.ReadUvarint()
	if err != nil {
		return readError(errors.PhaseExport, err, "export count")
	}
	if count == 0 {
		return errors.Policy(errors.PhaseExport, errors.CodeExportsMissing, r.Position(),
			"hook must export at least %q", HookExport)
	}

	for i := uint64(0); i < count; i++ {
		name, err := r.ReadName()
		if err != nil {
			return readError(errors.PhaseExport, err, "export name")
		}
		kind, err := r.ReadByte()
		if err != nil {
			return readError(errors.PhaseExport, err, "export kind")
		}
		idx, err := r.ReadU32()
		if err != nil {
			return readError(errors.PhaseExport, err, "export index")
		}
		if kind != wasm.KindFunc {
			continue
		}
		switch name {
		case HookExport:
			m.hookIdx, m.hasHook = idx, true
		case CbakExport:
			m.cbakIdx, m.hasCbak = idx, true
		}
	}
	return nil
}

func (m *moduleInfo) readFunctions(r *wasm.Reader) error {
	count, err := r.ReadUvarint()
	if err != nil {
		return readError(errors.PhaseFunction, err, "function count")
	}
	if count == 0 {
		return errors.Policy(errors.PhaseFunction, errors.CodeFunctionsMissing, r.Position(),
			"function section declares no functions")
	}
	// Every entry takes at least one byte.
	if count > uint64(r.Len()) {
		return errors.Truncated(errors.PhaseFunction, r.Position(), "function section")
	}

	m.funcTypes = make([]uint32, 0, count)
	for i := uint64(0); i < count; i++ {
		typeIdx, err := r.ReadU32()
		if err != nil {
			return readError(errors.PhaseFunction, err, "function type index")
		}
		m.funcTypes = append(m.funcTypes, typeIdx)
	}
	return nil
}

// resolve translates hook and cbak from the combined function index space
// into the module-defined space and checks they share a type.
func (m *moduleInfo) resolve() error {
	hook, err := m.defined(m.hookIdx, HookExport)
	if err != nil {
		return err
	}
	m.hookFunc = hook
	m.hookType = m.funcTypes[hook]
	m.cbakFunc = -1

	if !m.hasCbak {
		return nil
	}
	cbak, err := m.defined(m.cbakIdx, CbakExport)
	if err != nil {
		return err
	}
	if m.funcTypes[cbak] != m.hookType {
		return errors.Policy(errors.PhaseFunction, errors.CodeCbakTypeMismatch, -1,
			"cbak type %d differs from hook type %d", m.funcTypes[cbak], m.hookType)
	}
	m.cbakFunc = cbak
	return nil
}

func (m *moduleInfo) defined(idx uint32, name string) (int, error) {
	if idx < m.importCount {
		return 0, errors.Policy(errors.PhaseFunction, errors.CodeExportIndexInvalid, -1,
			"%s export refers to imported function %d", name, idx)
	}
	local := uint64(idx - m.importCount)
	if local >= uint64(len(m.funcTypes)) {
		return 0, errors.Policy(errors.PhaseFunction, errors.CodeExportIndexInvalid, -1,
			"%s export refers to undeclared function %d", name, idx)
	}
	return int(local), nil
}

// bounds is what the second pass produces.
type bounds struct {
	hook     uint64
	cbak     uint64
	sawTypes bool
	sawCode  bool
}

// scanBodies is the second pass: the type section, then every function
// body through the block-guard verifier.
func scanBodies(code []byte, m *moduleInfo, strict bool) (*bounds, error) {
	b := &bounds{}
	err := walkSections(code, func(id byte, r *wasm.Reader) error {
		switch id {
		case wasm.SectionType:
			b.sawTypes = true
			return readTypes(r, m.hookType, strict)
		case wasm.SectionCode:
			b.sawCode = true
			return readCode(code, r, m, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !b.sawTypes {
		return nil, errors.Policy(errors.PhaseType, errors.CodeTypeMissing, -1, "type section missing")
	}
	if !b.sawCode {
		return nil, errors.Policy(errors.PhaseCode, errors.CodeCodeMissing, -1, "code section missing")
	}
	return b, nil
}

func readTypes(r *wasm.Reader, hookType uint32, strict bool) error {
	count, err := r.ReadUvarint()
	if err != nil {
		return readError(errors.PhaseType, err, "type count")
	}
	if uint64(hookType) >= count {
		return errors.Policy(errors.PhaseType, errors.CodeTypeMissing, r.Position(),
			"hook type %d not declared (%d types)", hookType, count)
	}

	for j := uint64(0); j < count; j++ {
		isHook := j == uint64(hookType)
		at := r.Position()

		form, err := r.ReadByte()
		if err != nil {
			return readError(errors.PhaseType, err, "type form")
		}
		if form != wasm.FuncTypeByte {
			return errors.Malformed(errors.PhaseType, errors.CodeTypeInvalid, at,
				"type %d has form 0x%02x, want func", j, form)
		}

		params, err := r.ReadUvarint()
		if err != nil {
			return readError(errors.PhaseType, err, "parameter count")
		}
		if isHook && params != 1 {
			return errors.Policy(errors.PhaseType, errors.CodeParamCount, at,
				"hook/cbak type must take exactly one parameter, has %d", params)
		}
		for p := uint64(0); p < params; p++ {
			vt, err := r.ReadByte()
			if err != nil {
				return readError(errors.PhaseType, err, "parameter kind")
			}
			if !wasm.ValType(vt).IsNumeric() {
				return errors.Policy(errors.PhaseType, errors.CodeParamInvalid, r.Position()-1,
					"type %d parameter %d has kind 0x%02x", j, p, vt)
			}
			if isHook && wasm.ValType(vt) != wasm.ValI32 {
				return errors.Policy(errors.PhaseType, errors.CodeParamInvalid, r.Position()-1,
					"hook/cbak parameter must be i32, got %s", wasm.ValType(vt))
			}
		}

		results, err := r.ReadUvarint()
		if err != nil {
			return readError(errors.PhaseType, err, "result count")
		}
		if (strict || isHook) && results != 1 {
			return errors.Policy(errors.PhaseType, errors.CodeResultCount, at,
				"type %d must return exactly one value, returns %d", j, results)
		}
		for k := uint64(0); k < results; k++ {
			vt, err := r.ReadByte()
			if err != nil {
				return readError(errors.PhaseType, err, "result kind")
			}
			if !wasm.ValType(vt).IsNumeric() {
				return errors.Policy(errors.PhaseType, errors.CodeResultInvalid, r.Position()-1,
					"type %d result %d has kind 0x%02x", j, k, vt)
			}
			if isHook && wasm.ValType(vt) != wasm.ValI64 {
				return errors.Policy(errors.PhaseType, errors.CodeResultInvalid, r.Position()-1,
					"hook/cbak must return i64, got %s", wasm.ValType(vt))
			}
		}
	}
	return nil
}

func readCode(code []byte, r *wasm.Reader, m *moduleInfo, b *bounds) error {
	count, err := r.ReadUvarint()
	if err != nil {
		return readError(errors.PhaseCode, err, "body count")
	}
	if count != uint64(len(m.funcTypes)) {
		return errors.Policy(errors.PhaseCode, errors.CodeCodeMissing, r.Position(),
			"code section has %d bodies, function section declares %d", count, len(m.funcTypes))
	}

	for fn := 0; uint64(fn) < count; fn++ {
		at := r.Position()
		size, err := r.ReadUvarint()
		if err != nil {
			return readError(errors.PhaseCode, err, "body size")
		}
		body, err := r.Sub(size)
		if err != nil {
			e := errors.Truncated(errors.PhaseCode, at, "function body")
			e.Func = fn
			return e
		}

		if err := skipLocals(body, fn); err != nil {
			return err
		}
		if body.Len() == 0 {
			continue
		}

		wce, err := checkGuard(code, body.Position(), body.End(), m.guardIdx, m.lastImport(), fn)
		if err != nil {
			return err
		}
		if fn == m.hookFunc {
			b.hook = wce
		}
		if fn == m.cbakFunc {
			b.cbak = wce
		}
	}
	return nil
}

func skipLocals(r *wasm.Reader, fn int) error {
	groups, err := r.ReadUvarint()
	if err != nil {
		e := readError(errors.PhaseCode, err, "local group count")
		e.Func = fn
		return e
	}
	for g := uint64(0); g < groups; g++ {
		if _, err := r.ReadUvarint(); err != nil {
			e := readError(errors.PhaseCode, err, "local run length")
			e.Func = fn
			return e
		}
		vt, err := r.ReadByte()
		if err != nil {
			e := readError(errors.PhaseCode, err, "local kind")
			e.Func = fn
			return e
		}
		if !wasm.ValType(vt).IsNumeric() {
			return errors.New(errors.PhaseCode, errors.KindPolicy).
				Code(errors.CodeLocalInvalid).
				At(r.Position() - 1).
				Func(fn).
				Detail("local kind 0x%02x not allowed", vt).
				Build()
		}
	}
	return nil
}
