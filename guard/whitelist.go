package guard

import "sort"

// GuardFunc is the field name of the mandatory guard import.
const GuardFunc = "_g"

// ImportModule is the only module name hooks may import from.
const ImportModule = "env"

// Entry point export names.
const (
	HookExport = "hook"
	CbakExport = "cbak"
)

// hostAPI is the set of host functions a hook may import besides the guard.
var hostAPI = map[string]struct{}{
	"accept":             {},
	"emit":               {},
	"etxn_burden":        {},
	"etxn_details":       {},
	"etxn_fee_base":      {},
	"etxn_generation":    {},
	"etxn_nonce":         {},
	"etxn_reserve":       {},
	"fee_base":           {},
	"float_compare":      {},
	"float_divide":       {},
	"float_exponent":     {},
	"float_exponent_set": {},
	"float_int":          {},
	"float_invert":       {},
	"float_log":          {},
	"float_mantissa":     {},
	"float_mantissa_set": {},
	"float_mulratio":     {},
	"float_multiply":     {},
	"float_negate":       {},
	"float_one":          {},
	"float_root":         {},
	"float_set":          {},
	"float_sign":         {},
	"float_sign_set":     {},
	"float_sto":          {},
	"float_sto_set":      {},
	"float_sum":          {},
	"hook_account":       {},
	"hook_again":         {},
	"hook_hash":          {},
	"hook_param":         {},
	"hook_param_set":     {},
	"hook_pos":           {},
	"hook_skip":          {},
	"ledger_keylet":      {},
	"ledger_last_hash":   {},
	"ledger_last_time":   {},
	"ledger_nonce":       {},
	"ledger_seq":         {},
	"otxn_burden":        {},
	"otxn_field":         {},
	"otxn_generation":    {},
	"otxn_id":            {},
	"otxn_param":         {},
	"otxn_slot":          {},
	"otxn_type":          {},
	"rollback":           {},
	"slot":               {},
	"slot_clear":         {},
	"slot_count":         {},
	"slot_float":         {},
	"slot_set":           {},
	"slot_size":          {},
	"slot_subarray":      {},
	"slot_subfield":      {},
	"slot_type":          {},
	"state":              {},
	"state_foreign":      {},
	"state_foreign_set":  {},
	"state_set":          {},
	"sto_emplace":        {},
	"sto_erase":          {},
	"sto_subarray":       {},
	"sto_subfield":       {},
	"sto_validate":       {},
	"trace":              {},
	"trace_float":        {},
	"trace_num":          {},
	"util_accid":         {},
	"util_keylet":        {},
	"util_raddr":         {},
	"util_sha512h":       {},
	"util_verify":        {},
}

// Whitelisted reports whether name is a host function hooks may import.
// The guard function is handled separately and is not part of this set.
func Whitelisted(name string) bool {
	_, ok := hostAPI[name]
	return ok
}

// HostAPI returns the whitelisted host function names in sorted order.
func HostAPI() []string {
	names := make([]string, 0, len(hostAPI))
	for name := range hostAPI {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
