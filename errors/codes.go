package errors

import "fmt"

// Code is a stable numeric diagnostic code. Values are part of the log
// format consumed by operators and must never be renumbered.
type Code uint16

const (
	CodeWasmTooSmall       Code = 1
	CodeWasmBadMagic       Code = 2
	CodeWasmParseLoop      Code = 3
	CodeShortHook          Code = 4
	CodeLEBInvalid         Code = 5
	CodeSectionDuplicate   Code = 6
	CodeImportsMissing     Code = 7
	CodeImportModuleEnv    Code = 8
	CodeImportIllegal      Code = 9
	CodeImportKindInvalid  Code = 10
	CodeGuardImportMissing Code = 11
	CodeExportsMissing     Code = 12
	CodeHookExportMissing  Code = 13
	CodeExportIndexInvalid Code = 14
	CodeFunctionsMissing   Code = 15
	CodeCbakTypeMismatch   Code = 16
	CodeTypeInvalid        Code = 17
	CodeTypeMissing        Code = 18
	CodeParamCount         Code = 19
	CodeParamInvalid       Code = 20
	CodeResultCount        Code = 21
	CodeResultInvalid      Code = 22
	CodeLocalInvalid       Code = 23
	CodeCodeMissing        Code = 24
	CodeBlockIllegal       Code = 25
	CodeGuardMissing       Code = 26
	CodeGuardZeroIter      Code = 27
	CodeGuardTarget        Code = 28
	CodeCallIllegal        Code = 29
	CodeCallIndirect       Code = 30
	CodeMemoryGrow         Code = 31
	CodeOpcodeUnknown      Code = 32
	CodeInstructionExcess  Code = 33
	CodeValueKindInvalid   Code = 34
)

// CodeInfo describes one entry of the taxonomy.
type CodeInfo struct {
	Code        Code   `csv:"code"`
	Name        string `csv:"name"`
	Description string `csv:"description"`
}

var codeTable = []CodeInfo{
	{Code: CodeWasmTooSmall, Name: "WASM_TOO_SMALL", Description: "module shorter than the wasm header"},
	{Code: CodeWasmBadMagic, Name: "WASM_BAD_MAGIC", Description: "module does not start with wasm magic and version 1"},
	{Code: CodeWasmParseLoop, Name: "WASM_PARSE_LOOP", Description: "section walk would not advance"},
	{Code: CodeShortHook, Name: "SHORT_HOOK", Description: "module truncated inside a section, body or operand"},
	{Code: CodeLEBInvalid, Name: "LEB_INVALID", Description: "malformed or overlong LEB128 integer"},
	{Code: CodeSectionDuplicate, Name: "SECTION_DUPLICATE", Description: "non-custom section appears more than once"},
	{Code: CodeImportsMissing, Name: "IMPORTS_MISSING", Description: "import section is empty"},
	{Code: CodeImportModuleEnv, Name: "IMPORT_MODULE_ENV", Description: "import module name is not env"},
	{Code: CodeImportIllegal, Name: "IMPORT_ILLEGAL", Description: "imported function is not on the host API whitelist"},
	{Code: CodeImportKindInvalid, Name: "IMPORT_KIND_INVALID", Description: "unknown import descriptor kind"},
	{Code: CodeGuardImportMissing, Name: "GUARD_IMPORT_MISSING", Description: "guard function _g is not imported"},
	{Code: CodeExportsMissing, Name: "EXPORTS_MISSING", Description: "export section is empty"},
	{Code: CodeHookExportMissing, Name: "HOOK_EXPORT_MISSING", Description: "hook function is not exported"},
	{Code: CodeExportIndexInvalid, Name: "EXPORT_INDEX_INVALID", Description: "hook or cbak export does not name a module-defined function"},
	{Code: CodeFunctionsMissing, Name: "FUNCTIONS_MISSING", Description: "function section is empty"},
	{Code: CodeCbakTypeMismatch, Name: "CBAK_TYPE_MISMATCH", Description: "cbak type differs from hook type"},
	{Code: CodeTypeInvalid, Name: "TYPE_INVALID", Description: "type entry is not a function type"},
	{Code: CodeTypeMissing, Name: "TYPE_MISSING", Description: "hook type is not declared in the type section"},
	{Code: CodeParamCount, Name: "PARAM_COUNT", Description: "hook or cbak does not take exactly one parameter"},
	{Code: CodeParamInvalid, Name: "PARAM_INVALID", Description: "parameter kind not allowed"},
	{Code: CodeResultCount, Name: "RESULT_COUNT", Description: "function type does not return exactly one value"},
	{Code: CodeResultInvalid, Name: "RESULT_INVALID", Description: "result kind not allowed"},
	{Code: CodeLocalInvalid, Name: "LOCAL_INVALID", Description: "local declaration uses a kind other than i32, i64, f32, f64"},
	{Code: CodeCodeMissing, Name: "CODE_MISSING", Description: "code section absent or body count differs from function count"},
	{Code: CodeBlockIllegal, Name: "BLOCK_ILLEGAL", Description: "unbalanced block structure"},
	{Code: CodeGuardMissing, Name: "GUARD_MISSING", Description: "loop does not start with i32.const, i32.const, call _g"},
	{Code: CodeGuardZeroIter, Name: "GUARD_ZERO_ITERATIONS", Description: "guard call cannot specify zero max-iterations"},
	{Code: CodeGuardTarget, Name: "GUARD_TARGET", Description: "loop head calls a function other than _g"},
	{Code: CodeCallIllegal, Name: "CALL_ILLEGAL", Description: "call to a module-defined function"},
	{Code: CodeCallIndirect, Name: "CALL_INDIRECT", Description: "call_indirect is not permitted"},
	{Code: CodeMemoryGrow, Name: "MEMORY_GROW", Description: "memory.grow is not permitted"},
	{Code: CodeOpcodeUnknown, Name: "OPCODE_UNKNOWN", Description: "unknown or unsupported opcode"},
	{Code: CodeInstructionExcess, Name: "INSTRUCTION_EXCESS", Description: "worst-case instruction count too large"},
	{Code: CodeValueKindInvalid, Name: "VALUE_KIND_INVALID", Description: "typed select uses a kind other than i32, i64, f32, f64"},
}

var codeIndex = func() map[Code]int {
	m := make(map[Code]int, len(codeTable))
	for i, c := range codeTable {
		m[c.Code] = i
	}
	return m
}()

// String returns the symbolic name of the code.
func (c Code) String() string {
	if i, ok := codeIndex[c]; ok {
		return codeTable[i].Name
	}
	return fmt.Sprintf("CODE_%d", uint16(c))
}

// Description returns a one-line explanation of the code.
func (c Code) Description() string {
	if i, ok := codeIndex[c]; ok {
		return codeTable[i].Description
	}
	return ""
}

// Codes returns the full taxonomy ordered by code.
func Codes() []CodeInfo {
	out := make([]CodeInfo, len(codeTable))
	copy(out, codeTable)
	return out
}
