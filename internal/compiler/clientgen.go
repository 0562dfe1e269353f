package compiler

import (
	"fmt"
	"strings"

	"rsxc/internal/ast"
	"rsxc/internal/scanner"
)

// Client code generation: produces a standalone `no_std` module targeting
// wasm32-unknown-unknown. Each Client function becomes an exported wrapper
// with a flattened boundary signature; each Component function becomes an
// exported `__rsx_component_<name>` render function wrapped in
// begin/end lifecycle calls.

type stateHelperKind int

const (
	helperI32 stateHelperKind = iota
	helperF32
)

// stateHelperBinding is a module-level getter/setter pair generated for a
// tuple `use_state` declaration, so Client handlers can reach the state.
type stateHelperBinding struct {
	getter string
	setter string
	compID int
	slot   int
	kind   stateHelperKind
}

type componentID struct {
	name string
	id   int
}

// externNeeds tracks which foreign imports the generated module must
// declare. Flags are set by substring analysis of function bodies and
// merged with the flags of any incremental-render output.
type externNeeds struct {
	query, setText, getValue, setAttr, addClass, removeClass, log    bool
	componentLifecycle                                               bool
	stateInitI32, stateInitF32, stateInitStr                         bool
	xstateGetI32, xstateSetI32, xstateGetF32, xstateSetF32           bool
	xstateGetStr, xstateSetStr                                       bool
	fmtI32, fmtF32                                                   bool
	effect                                                           bool
	memoI32, memoF32                                                 bool
	refInitI32, refInitF32, refInitEl                                bool
	refGetI32, refSetI32, refGetF32, refSetF32                       bool
	create, appendNode, removeNode, setHTML, toggleClass             bool
	getAttr, removeAttr, queryAllCount, queryAllGet                  bool
	createText, isMounted, mountPoint                                bool
}

type clientGen struct {
	componentIDs []componentID
	warnings     []string
}

// GenerateClientModule builds the complete client module source for one
// input file. componentMarkup holds the parsed markup of each Component
// function's `return (...)` block, nil for imperative-only components.
// Returned warnings are plain messages; the driver attaches locations.
func GenerateClientModule(
	clientFns, componentFns []scanner.Function,
	source string,
	componentMarkup [][]ast.Node,
) (string, []string) {
	g := &clientGen{}
	for i, f := range componentFns {
		if f.Name != "" {
			g.componentIDs = append(g.componentIDs, componentID{name: f.Name, id: i})
		}
	}
	stateHelpers := g.collectStateHelperBindings(componentFns, source)

	var out strings.Builder
	out.WriteString("#![no_std]\n")
	out.WriteString("#![no_main]\n\n")

	out.WriteString("#[panic_handler]\n")
	out.WriteString("fn panic(_: &core::panic::PanicInfo) -> ! { loop {} }\n\n")

	// Bump allocator for string passing.
	out.WriteString("static mut HEAP: [u8; 65536] = [0u8; 65536];\n")
	out.WriteString("static mut HEAP_PTR: usize = 0;\n\n")

	out.WriteString("#[unsafe(no_mangle)]\n")
	out.WriteString("pub extern \"C\" fn __rsx_alloc(size: i32) -> i32 {\n")
	out.WriteString("    unsafe {\n")
	out.WriteString("        let ptr = core::ptr::addr_of!(HEAP_PTR).read();\n")
	out.WriteString("        let new_ptr = ptr + size as usize;\n")
	out.WriteString("        if new_ptr > 65536 { return 0; }\n")
	out.WriteString("        core::ptr::addr_of_mut!(HEAP_PTR).write(new_ptr);\n")
	out.WriteString("        core::ptr::addr_of_mut!(HEAP).cast::<u8>().add(ptr) as i32\n")
	out.WriteString("    }\n")
	out.WriteString("}\n\n")

	out.WriteString("#[unsafe(no_mangle)]\n")
	out.WriteString("pub extern \"C\" fn __rsx_dealloc() {\n")
	out.WriteString("    unsafe { core::ptr::addr_of_mut!(HEAP_PTR).write(0); }\n")
	out.WriteString("}\n\n")

	needs, userExterns, renderOutputs := analyzeModuleNeeds(clientFns, componentFns, source, componentMarkup, stateHelpers)

	writeExternBlock(&out, &needs, userExterns)

	if needs.log {
		out.WriteString("fn __rsx_log_str(msg: &str) {\n")
		out.WriteString("    unsafe { __rsx_console_log(msg.as_ptr() as i32, msg.len() as i32); }\n")
		out.WriteString("}\n\n")
		out.WriteString("fn __rsx_log_i32(val: i32) {\n")
		out.WriteString("    unsafe { __rsx_console_log_i32(val); }\n")
		out.WriteString("}\n\n")
	}

	for _, h := range stateHelpers {
		writeStateHelper(&out, h)
	}

	for i, f := range componentFns {
		g.writeComponentFn(&out, f, source, i, renderOutputs[i])
	}
	for _, f := range clientFns {
		g.writeClientFn(&out, f, source)
	}

	return out.String(), g.warnings
}

// analyzeModuleNeeds computes the foreign-import surface of the whole client
// module: substring flags over every function body, user extern declarations
// hoisted out of bodies, and the merged flags of each markup component's
// incremental-render output. Both the wasm module and the bridging script are
// built from the same analysis so the import object always satisfies the
// module's declared imports.
func analyzeModuleNeeds(
	clientFns, componentFns []scanner.Function,
	source string,
	componentMarkup [][]ast.Node,
	stateHelpers []stateHelperBinding,
) (externNeeds, []string, []*RenderOutput) {
	var needs externNeeds
	needs.componentLifecycle = len(componentFns) > 0

	var userExterns []string
	allFns := make([]scanner.Function, 0, len(clientFns)+len(componentFns))
	allFns = append(allFns, clientFns...)
	allFns = append(allFns, componentFns...)
	for _, f := range allFns {
		body := source[f.BodySpan.Start:f.BodySpan.End]
		scanBodyNeeds(body, &needs)
		extractUserExterns(body, &userExterns)
	}

	// Generated state helpers rely on the cross-function state imports.
	if len(stateHelpers) > 0 {
		needs.xstateGetI32 = true
		needs.xstateSetI32 = true
		for _, h := range stateHelpers {
			if h.kind == helperF32 {
				needs.xstateGetF32 = true
				needs.xstateSetF32 = true
			}
		}
	}

	renderOutputs := make([]*RenderOutput, len(componentFns))
	for i, f := range componentFns {
		var nodes []ast.Node
		if i < len(componentMarkup) {
			nodes = componentMarkup[i]
		}
		if nodes == nil {
			continue
		}
		refOffset := countUserRefs(f, source)
		r := GenerateComponentRender(nodes, i, refOffset)
		needs.create = needs.create || r.NeedsCreate
		needs.createText = needs.createText || r.NeedsCreateText
		needs.appendNode = needs.appendNode || r.NeedsAppend
		needs.addClass = needs.addClass || r.NeedsAddClass
		needs.setAttr = needs.setAttr || r.NeedsSetAttr
		needs.setText = needs.setText || r.NeedsSetText
		needs.mountPoint = needs.mountPoint || r.NeedsMountPoint
		needs.isMounted = needs.isMounted || r.NeedsIsMounted
		needs.refGetI32 = needs.refGetI32 || r.NeedsRefGetI32
		needs.refSetI32 = needs.refSetI32 || r.NeedsRefSetI32
		needs.fmtI32 = needs.fmtI32 || r.NeedsFmtI32
		needs.fmtF32 = needs.fmtF32 || r.NeedsFmtF32
		renderOutputs[i] = &r
	}
	return needs, userExterns, renderOutputs
}

// scanBodyNeeds flags the foreign imports a single body requires.
func scanBodyNeeds(body string, needs *externNeeds) {
	has := func(s string) bool { return strings.Contains(body, s) }

	if has("dom::query(") {
		needs.query = true
	}
	if has(".set_text(") {
		needs.setText = true
	}
	if has(".get_value(") {
		needs.getValue = true
	}
	if has(".set_attr(") {
		needs.setAttr = true
	}
	if has(".add_class(") {
		needs.addClass = true
	}
	if has(".remove_class(") {
		needs.removeClass = true
	}
	if has("dom::log") {
		needs.log = true
	}

	if has("dom::create(") {
		needs.create = true
	}
	if has("dom::append(") {
		needs.appendNode = true
	}
	if has("dom::remove(") {
		needs.removeNode = true
	}
	if has("dom::set_html(") {
		needs.setHTML = true
	}
	if has(".toggle_class(") {
		needs.toggleClass = true
	}
	if has(".get_attr(") {
		needs.getAttr = true
	}
	if has(".remove_attr(") {
		needs.removeAttr = true
	}
	if has("dom::query_all_count(") {
		needs.queryAllCount = true
	}
	if has("dom::query_all_get(") {
		needs.queryAllGet = true
	}

	if has("use_state(") {
		if has("use_state(\"") {
			needs.stateInitStr = true
		}
		if has("_i32") || has("true") || has("false") {
			needs.stateInitI32 = true
		}
		if has("_f32") {
			needs.stateInitF32 = true
		}
		// Default to i32 when there is no clear suffix and no string init.
		if !has("_f32") && !has("use_state(\"") {
			needs.stateInitI32 = true
		}
	}
	if has("state::get_i32(") {
		needs.xstateGetI32 = true
	}
	if has("state::set_i32(") {
		needs.xstateSetI32 = true
	}
	if has("state::get_f32(") {
		needs.xstateGetF32 = true
	}
	if has("state::set_f32(") {
		needs.xstateSetF32 = true
	}
	if has("state::get_str(") {
		needs.xstateGetStr = true
	}
	if has("state::set_str(") {
		needs.xstateSetStr = true
	}
	if has("state::fmt_i32(") {
		needs.fmtI32 = true
	}
	if has("state::fmt_f32(") {
		needs.fmtF32 = true
	}

	if has("use_ref(") && !has("use_ref_el(") {
		if has("_i32") {
			needs.refInitI32 = true
		}
		if has("_f32") {
			needs.refInitF32 = true
		}
		if !has("_f32") {
			needs.refInitI32 = true
		}
	}
	if has("use_ref_el(") {
		needs.refInitEl = true
	}
	if has("ref::get_i32(") {
		needs.refGetI32 = true
	}
	if has("ref::set_i32(") {
		needs.refSetI32 = true
	}
	if has("ref::get_f32(") {
		needs.refGetF32 = true
	}
	if has("ref::set_f32(") {
		needs.refSetF32 = true
	}

	if has("use_effect(") {
		needs.effect = true
	}
	if has("use_memo_i32(") {
		needs.memoI32 = true
	}
	if has("use_memo_f32(") {
		needs.memoF32 = true
	}
}

func writeExternBlock(out *strings.Builder, needs *externNeeds, userExterns []string) {
	out.WriteString("unsafe extern \"C\" {\n")

	if needs.componentLifecycle {
		out.WriteString("    fn __rsx_component_begin(id: i32);\n")
		out.WriteString("    fn __rsx_component_end();\n")
	}
	if needs.isMounted {
		out.WriteString("    fn __rsx_component_is_mounted(id: i32) -> i32;\n")
	}
	if needs.mountPoint {
		out.WriteString("    fn __rsx_component_mount_point(id: i32) -> i32;\n")
	}

	if needs.stateInitI32 {
		out.WriteString("    fn __rsx_state_init_i32(slot: i32, initial: i32) -> i32;\n")
	}
	if needs.stateInitF32 {
		out.WriteString("    fn __rsx_state_init_f32(slot: i32, initial: f32) -> f32;\n")
	}
	if needs.stateInitStr {
		out.WriteString("    fn __rsx_state_init_str(slot: i32, ptr: i32, len: i32) -> i32;\n")
		out.WriteString("    fn __rsx_state_init_str_len(slot: i32) -> i32;\n")
	}

	if needs.xstateGetI32 {
		out.WriteString("    fn __rsx_xstate_get_i32(comp_id: i32, slot: i32) -> i32;\n")
	}
	if needs.xstateSetI32 {
		out.WriteString("    fn __rsx_xstate_set_i32(comp_id: i32, slot: i32, value: i32);\n")
	}
	if needs.xstateGetF32 {
		out.WriteString("    fn __rsx_xstate_get_f32(comp_id: i32, slot: i32) -> f32;\n")
	}
	if needs.xstateSetF32 {
		out.WriteString("    fn __rsx_xstate_set_f32(comp_id: i32, slot: i32, value: f32);\n")
	}
	if needs.xstateGetStr {
		out.WriteString("    fn __rsx_xstate_get_str(comp_id: i32, slot: i32) -> i32;\n")
		out.WriteString("    fn __rsx_xstate_get_str_len(comp_id: i32, slot: i32) -> i32;\n")
	}
	if needs.xstateSetStr {
		out.WriteString("    fn __rsx_xstate_set_str(comp_id: i32, slot: i32, ptr: i32, len: i32);\n")
	}

	if needs.fmtI32 {
		out.WriteString("    fn __rsx_state_fmt_i32(value: i32, buf_ptr: i32, buf_len: i32) -> i32;\n")
	}
	if needs.fmtF32 {
		out.WriteString("    fn __rsx_state_fmt_f32(value: f32, buf_ptr: i32, buf_len: i32) -> i32;\n")
	}

	if needs.effect {
		out.WriteString("    fn __rsx_effect_register(slot: i32, dep_count: i32);\n")
		out.WriteString("    fn __rsx_effect_set_dep(slot: i32, dep_idx: i32, value: i32);\n")
	}

	if needs.memoI32 || needs.memoF32 {
		out.WriteString("    fn __rsx_memo_begin(slot: i32, dep_count: i32);\n")
		out.WriteString("    fn __rsx_memo_set_dep(slot: i32, dep_idx: i32, value: i32);\n")
		out.WriteString("    fn __rsx_memo_changed(slot: i32) -> i32;\n")
	}
	if needs.memoI32 {
		out.WriteString("    fn __rsx_memo_store_i32(slot: i32, value: i32);\n")
		out.WriteString("    fn __rsx_memo_load_i32(slot: i32) -> i32;\n")
	}
	if needs.memoF32 {
		out.WriteString("    fn __rsx_memo_store_f32(slot: i32, value: f32);\n")
		out.WriteString("    fn __rsx_memo_load_f32(slot: i32) -> f32;\n")
	}

	if needs.refInitI32 {
		out.WriteString("    fn __rsx_ref_init_i32(slot: i32, initial: i32) -> i32;\n")
	}
	if needs.refInitF32 {
		out.WriteString("    fn __rsx_ref_init_f32(slot: i32, initial: f32) -> f32;\n")
	}
	if needs.refInitEl {
		out.WriteString("    fn __rsx_ref_init_el(slot: i32, sel_ptr: i32, sel_len: i32) -> i32;\n")
	}
	if needs.refGetI32 {
		out.WriteString("    fn __rsx_ref_get_i32(slot: i32) -> i32;\n")
	}
	if needs.refSetI32 {
		out.WriteString("    fn __rsx_ref_set_i32(slot: i32, value: i32);\n")
	}
	if needs.refGetF32 {
		out.WriteString("    fn __rsx_ref_get_f32(slot: i32) -> f32;\n")
	}
	if needs.refSetF32 {
		out.WriteString("    fn __rsx_ref_set_f32(slot: i32, value: f32);\n")
	}

	if needs.query {
		out.WriteString("    fn __rsx_dom_query(sel_ptr: i32, sel_len: i32) -> i32;\n")
	}
	if needs.setText {
		out.WriteString("    fn __rsx_dom_set_text(handle: i32, text_ptr: i32, text_len: i32);\n")
	}
	if needs.getValue {
		out.WriteString("    fn __rsx_dom_get_value(handle: i32) -> i32;\n")
		out.WriteString("    fn __rsx_dom_get_value_len(handle: i32) -> i32;\n")
	}
	if needs.setAttr {
		out.WriteString("    fn __rsx_dom_set_attr(handle: i32, name_ptr: i32, name_len: i32, val_ptr: i32, val_len: i32);\n")
	}
	if needs.addClass {
		out.WriteString("    fn __rsx_dom_add_class(handle: i32, cls_ptr: i32, cls_len: i32);\n")
	}
	if needs.removeClass {
		out.WriteString("    fn __rsx_dom_remove_class(handle: i32, cls_ptr: i32, cls_len: i32);\n")
	}
	if needs.log {
		out.WriteString("    fn __rsx_console_log(msg_ptr: i32, msg_len: i32);\n")
		out.WriteString("    fn __rsx_console_log_i32(value: i32);\n")
	}
	if needs.create {
		out.WriteString("    fn __rsx_dom_create(tag_ptr: i32, tag_len: i32) -> i32;\n")
	}
	if needs.createText {
		out.WriteString("    fn __rsx_dom_create_text(text_ptr: i32, text_len: i32) -> i32;\n")
	}
	if needs.appendNode {
		out.WriteString("    fn __rsx_dom_append(parent: i32, child: i32);\n")
	}
	if needs.removeNode {
		out.WriteString("    fn __rsx_dom_remove(handle: i32);\n")
	}
	if needs.setHTML {
		out.WriteString("    fn __rsx_dom_set_html(handle: i32, html_ptr: i32, html_len: i32);\n")
	}
	if needs.toggleClass {
		out.WriteString("    fn __rsx_dom_toggle_class(handle: i32, cls_ptr: i32, cls_len: i32);\n")
	}
	if needs.getAttr {
		out.WriteString("    fn __rsx_dom_get_attr(handle: i32, name_ptr: i32, name_len: i32) -> i32;\n")
		out.WriteString("    fn __rsx_dom_get_attr_len(handle: i32, name_ptr: i32, name_len: i32) -> i32;\n")
	}
	if needs.removeAttr {
		out.WriteString("    fn __rsx_dom_remove_attr(handle: i32, name_ptr: i32, name_len: i32);\n")
	}
	if needs.queryAllCount {
		out.WriteString("    fn __rsx_dom_query_all_count(sel_ptr: i32, sel_len: i32) -> i32;\n")
	}
	if needs.queryAllGet {
		out.WriteString("    fn __rsx_dom_query_all_get(sel_ptr: i32, sel_len: i32, idx: i32) -> i32;\n")
	}

	for _, ext := range userExterns {
		out.WriteString("    ")
		out.WriteString(ext)
		out.WriteString("\n")
	}
	out.WriteString("}\n\n")
}

func writeStateHelper(out *strings.Builder, h stateHelperBinding) {
	ty := "i32"
	if h.kind == helperF32 {
		ty = "f32"
	}
	fmt.Fprintf(out, "fn %s() -> %s {\n", h.getter, ty)
	fmt.Fprintf(out, "    unsafe { __rsx_xstate_get_%s(%d, %d) }\n", ty, h.compID, h.slot)
	out.WriteString("}\n\n")

	fmt.Fprintf(out, "fn %s(value: %s) {\n", h.setter, ty)
	fmt.Fprintf(out, "    unsafe { __rsx_xstate_set_%s(%d, %d, value); }\n", ty, h.compID, h.slot)
	out.WriteString("}\n\n")
}

// writeClientFn emits one exported wrapper with a flattened signature and a
// transformed body.
func (g *clientGen) writeClientFn(out *strings.Builder, f scanner.Function, source string) {
	if f.Name == "" {
		return
	}

	sig := BuildSignature(f.Name, f.Params)

	out.WriteString("#[unsafe(no_mangle)]\n")
	out.WriteString("pub extern \"C\" fn ")
	out.WriteString(f.Name)
	out.WriteString("(")

	first := true
	for _, p := range sig.Params {
		if p.Kind == AbiVoid {
			continue
		}
		if !first {
			out.WriteString(", ")
		}
		first = false
		switch p.Kind {
		case AbiStringPair:
			fmt.Fprintf(out, "%s_ptr: i32, %s_len: i32", p.Name, p.Name)
		case AbiDirect:
			fmt.Fprintf(out, "%s: %s", p.Name, p.Scalar)
		}
	}
	out.WriteString(") {\n")

	// Reconstruct string params from their ptr/len pairs.
	for _, p := range sig.Params {
		if p.Kind == AbiStringPair {
			fmt.Fprintf(out,
				"    let %s = unsafe { core::str::from_utf8_unchecked(core::slice::from_raw_parts(%s_ptr as *const u8, %s_len as usize)) };\n",
				p.Name, p.Name, p.Name)
		}
	}

	body := source[f.BodySpan.Start:f.BodySpan.End]
	transformed := g.transformClientBody(body)
	out.WriteString("    unsafe {\n")
	for _, line := range strings.Split(transformed, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		// User extern blocks are already hoisted to module level.
		if strings.HasPrefix(trimmed, "extern ") {
			continue
		}
		out.WriteString("        ")
		out.WriteString(trimmed)
		out.WriteString("\n")
	}
	out.WriteString("    }\n")
	out.WriteString("}\n\n")
}

// writeComponentFn emits one exported `__rsx_component_<name>` function. A
// markup component runs its logic prelude, a mount block guarded on first
// render, then the per-render update block.
func (g *clientGen) writeComponentFn(out *strings.Builder, f scanner.Function, source string, id int, render *RenderOutput) {
	if f.Name == "" {
		return
	}

	out.WriteString("#[unsafe(no_mangle)]\n")
	out.WriteString("pub extern \"C\" fn __rsx_component_")
	out.WriteString(f.Name)
	out.WriteString("() {\n")
	out.WriteString("    unsafe {\n")
	fmt.Fprintf(out, "        __rsx_component_begin(%d);\n", id)

	if render != nil {
		logicBody := source[f.BodySpan.Start:f.BodySpan.End]
		if split, ok := scanner.SplitComponentBody(source, f.BodySpan); ok {
			logicBody = source[split.Logic.Start:split.Logic.End]
		}

		transformed := g.transformComponentBody(logicBody, id)
		writeIndented(out, transformed, "        ", true)

		fmt.Fprintf(out, "        if __rsx_component_is_mounted(%d) == 0 {\n", id)
		writeIndented(out, render.MountCode, "            ", false)
		out.WriteString("        }\n")

		if render.UpdateCode != "" {
			writeIndented(out, render.UpdateCode, "        ", false)
		}
	} else {
		body := source[f.BodySpan.Start:f.BodySpan.End]
		transformed := g.transformComponentBody(body, id)
		writeIndented(out, transformed, "        ", true)
	}

	out.WriteString("        __rsx_component_end();\n")
	out.WriteString("    }\n")
	out.WriteString("}\n\n")
}

func writeIndented(out *strings.Builder, code, indent string, skipExtern bool) {
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if skipExtern && strings.HasPrefix(trimmed, "extern ") {
			continue
		}
		out.WriteString(indent)
		out.WriteString(trimmed)
		out.WriteString("\n")
	}
}

// countUserRefs counts ref declarations in a component's logic section, so
// render-generated ref slots start after them.
func countUserRefs(f scanner.Function, source string) int {
	body := source[f.BodySpan.Start:f.BodySpan.End]
	if split, ok := scanner.SplitComponentBody(source, f.BodySpan); ok {
		body = source[split.Logic.Start:split.Logic.End]
	}
	count := 0
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "use_ref_el(") || strings.Contains(trimmed, "use_ref(") {
			count++
		}
	}
	return count
}

// resolveComponentID maps a component name to its numeric id, defaulting to
// id 0 with a warning when the name is unknown.
func (g *clientGen) resolveComponentID(name string) int {
	for _, c := range g.componentIDs {
		if c.name == name {
			return c.id
		}
	}
	g.warnings = append(g.warnings,
		fmt.Sprintf("state reference to unknown component `%s`; defaulting to component id 0", name))
	return 0
}

func (g *clientGen) collectStateHelperBindings(componentFns []scanner.Function, source string) []stateHelperBinding {
	var out []stateHelperBinding
	for _, f := range componentFns {
		if f.Name == "" {
			continue
		}
		compID := g.resolveComponentID(f.Name)
		body := source[f.BodySpan.Start:f.BodySpan.End]
		slot := 0
		for _, raw := range strings.Split(body, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			if stateVar, setterVar, kind, ok := parseUseStateTupleDecl(line); ok {
				out = append(out, stateHelperBinding{
					getter: "get_" + stateVar,
					setter: setterVar,
					compID: compID,
					slot:   slot,
					kind:   kind,
				})
				slot++
				continue
			}
			if strings.Contains(line, "use_state(") {
				slot++
			}
		}
	}
	return out
}

func parseUseStateTupleDecl(line string) (stateVar, setterVar string, kind stateHelperKind, ok bool) {
	useIdx := strings.Index(line, "use_state(")
	if useIdx < 0 {
		return "", "", 0, false
	}
	before := strings.TrimSpace(line[:useIdx])
	if !strings.HasPrefix(before, "let (") || !strings.HasSuffix(before, "=") {
		return "", "", 0, false
	}

	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(before, "let ("), "="))
	inner, found := strings.CutSuffix(inner, ")")
	if !found {
		return "", "", 0, false
	}
	comma := strings.Index(inner, ",")
	if comma < 0 {
		return "", "", 0, false
	}
	stateVar = strings.TrimSpace(inner[:comma])
	setterVar = strings.TrimSpace(inner[comma+1:])
	if stateVar == "" || setterVar == "" {
		return "", "", 0, false
	}

	argStart := useIdx + len("use_state(")
	argEnd, found := findClosingParen(line, argStart)
	if !found {
		return "", "", 0, false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])
	kind = helperI32
	if strings.HasSuffix(arg, "_f32") {
		kind = helperF32
	}
	return stateVar, setterVar, kind, true
}

// transformClientBody rewrites host-level `dom::`, `state::` and `ref::`
// calls in a Client body into foreign calls, line by line.
func (g *clientGen) transformClientBody(body string) string {
	var out strings.Builder
	varCounter := 0
	inExtern := false

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// User extern blocks are hoisted; drop them here.
		if strings.HasPrefix(line, "extern ") && strings.Contains(line, "{") {
			inExtern = true
			continue
		}
		if inExtern {
			if strings.Contains(line, "}") {
				inExtern = false
			}
			continue
		}

		if t, ok := transformRefGet(line); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformRefSet(line); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := g.transformStateGetStr(line); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := g.transformStateSetStr(line, &varCounter); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := g.transformStateGet(line); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := g.transformStateSet(line); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformDomLine(line, body, &varCounter); ok {
			out.WriteString(t + "\n")
			continue
		}

		out.WriteString(line + "\n")
	}

	return out.String()
}

// transformComponentBody additionally lowers the hook calls that only exist
// inside Component functions: state, ref, effect and memo declarations.
func (g *clientGen) transformComponentBody(body string, componentID int) string {
	var out strings.Builder
	varCounter := 0
	slotCounter := 0
	refSlotCounter := 0
	effectSlotCounter := 0
	memoSlotCounter := 0
	fmtCounter := 0
	inExtern := false

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "extern ") && strings.Contains(line, "{") {
			inExtern = true
			continue
		}
		if inExtern {
			if strings.Contains(line, "}") {
				inExtern = false
			}
			continue
		}

		if t, ok := transformUseMemo(line, &memoSlotCounter); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformUseEffect(line, &effectSlotCounter); ok {
			out.WriteString(t + "\n")
			continue
		}
		// use_ref_el before use_ref, use_ref before use_state: the needles
		// overlap.
		if t, ok := transformUseRefEl(line, &refSlotCounter); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformUseRef(line, &refSlotCounter); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformRefGet(line); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformRefSet(line); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformUseStateStr(line, &slotCounter); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformUseStateTuple(line, &slotCounter, componentID); ok {
			out.WriteString(t + "\n")
			continue
		}
		if t, ok := transformUseState(line, &slotCounter); ok {
			out.WriteString(t + "\n")
			continue
		}
		if strings.Contains(line, "state::fmt_i32(") || strings.Contains(line, "state::fmt_f32(") {
			if t, ok := transformStateFmtLine(line, &fmtCounter); ok {
				out.WriteString(t + "\n")
				continue
			}
		}
		if t, ok := transformDomLine(line, body, &varCounter); ok {
			out.WriteString(t + "\n")
			continue
		}

		out.WriteString(line + "\n")
	}

	return out.String()
}

// transformDomLine applies the DOM transforms shared by Client and Component
// bodies, in precedence order.
func transformDomLine(line, body string, counter *int) (string, bool) {
	if t, ok := transformDomCreate(line); ok {
		return t, true
	}
	if t, ok := transformDomAppend(line); ok {
		return t, true
	}
	if t, ok := transformDomRemove(line); ok {
		return t, true
	}
	if t, ok := transformDomSetHTML(line, counter); ok {
		return t, true
	}
	// query_all before the plain query: the needles overlap.
	if t, ok := transformDomQueryAllCount(line); ok {
		return t, true
	}
	if t, ok := transformDomQueryAllGet(line); ok {
		return t, true
	}
	if t, ok := transformDomQuery(line); ok {
		return t, true
	}
	if t, ok := transformGetAttr(line, counter); ok {
		return t, true
	}
	if t, ok := transformGetValue(line); ok {
		return t, true
	}
	if t, ok := transformMethodCall(line, ".set_text(", "__rsx_dom_set_text", counter); ok {
		return t, true
	}
	if t, ok := transformMethodCall(line, ".add_class(", "__rsx_dom_add_class", counter); ok {
		return t, true
	}
	if t, ok := transformMethodCall(line, ".remove_class(", "__rsx_dom_remove_class", counter); ok {
		return t, true
	}
	if t, ok := transformMethodCall(line, ".toggle_class(", "__rsx_dom_toggle_class", counter); ok {
		return t, true
	}
	if t, ok := transformMethodCall(line, ".remove_attr(", "__rsx_dom_remove_attr", counter); ok {
		return t, true
	}
	if t, ok := transformSetAttr(line, counter); ok {
		return t, true
	}
	if t, ok := transformDomLog(line, body, counter); ok {
		return t, true
	}
	return "", false
}

// transformUseState lowers `let x = use_state(0_i32);` into a slot init
// call. Type suffixes are stripped; booleans become 0/1; bare values default
// to i32.
func transformUseState(line string, slotCounter *int) (string, bool) {
	useIdx := strings.Index(line, "use_state(")
	if useIdx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:useIdx])
	if !ok {
		return "", false
	}
	argStart := useIdx + len("use_state(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	slot := *slotCounter
	*slotCounter++

	externFn := "__rsx_state_init_i32"
	cleanArg := arg
	switch {
	case strings.HasSuffix(arg, "_i32"):
		cleanArg = arg[:len(arg)-4]
	case strings.HasSuffix(arg, "_f32"):
		externFn = "__rsx_state_init_f32"
		cleanArg = arg[:len(arg)-4]
	case arg == "true":
		cleanArg = "1"
	case arg == "false":
		cleanArg = "0"
	}

	return fmt.Sprintf("let %s = %s(%d, %s);", varName, externFn, slot, cleanArg), true
}

// transformUseStateTuple lowers `let (count, set_count) = use_state(0_i32);`
// into an init call plus a setter closure bound to this component's slot.
func transformUseStateTuple(line string, slotCounter *int, componentID int) (string, bool) {
	useIdx := strings.Index(line, "use_state(")
	if useIdx < 0 {
		return "", false
	}
	stateVar, setterVar, _, ok := parseUseStateTupleDecl(line)
	if !ok {
		return "", false
	}
	argStart := useIdx + len("use_state(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	slot := *slotCounter
	*slotCounter++

	initFn := "__rsx_state_init_i32"
	setterFn := "__rsx_xstate_set_i32"
	setterTy := "i32"
	cleanArg := arg
	switch {
	case strings.HasSuffix(arg, "_i32"):
		cleanArg = arg[:len(arg)-4]
	case strings.HasSuffix(arg, "_f32"):
		initFn = "__rsx_state_init_f32"
		setterFn = "__rsx_xstate_set_f32"
		setterTy = "f32"
		cleanArg = arg[:len(arg)-4]
	case arg == "true":
		cleanArg = "1"
	case arg == "false":
		cleanArg = "0"
	}

	var out strings.Builder
	fmt.Fprintf(&out, "let %s = %s(%d, %s);\n", stateVar, initFn, slot, cleanArg)
	fmt.Fprintf(&out, "let %s = |value: %s| {\n", setterVar, setterTy)
	fmt.Fprintf(&out, "    %s(%d, %d, value);\n", setterFn, componentID, slot)
	out.WriteString("};")
	return out.String(), true
}

// transformUseStateStr lowers `let s = use_state("hello");` into the string
// init two-call pattern plus a reconstruction of the stored slice.
func transformUseStateStr(line string, slotCounter *int) (string, bool) {
	useIdx := strings.Index(line, "use_state(")
	if useIdx < 0 {
		return "", false
	}
	argStart := useIdx + len("use_state(")
	if !strings.HasPrefix(strings.TrimLeft(line[argStart:], " \t"), "\"") {
		return "", false
	}
	varName, ok := extractLetVar(line[:useIdx])
	if !ok {
		return "", false
	}
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	slot := *slotCounter
	*slotCounter++

	s := arg[1 : len(arg)-1]

	var out strings.Builder
	fmt.Fprintf(&out, "let __sinit%d = \"%s\";\n", slot, s)
	fmt.Fprintf(&out, "let __sptr = __rsx_state_init_str(%d, __sinit%d.as_ptr() as i32, __sinit%d.len() as i32);\n", slot, slot, slot)
	fmt.Fprintf(&out, "let __slen = __rsx_state_init_str_len(%d);\n", slot)
	fmt.Fprintf(&out, "let %s = core::str::from_utf8_unchecked(core::slice::from_raw_parts(__sptr as *const u8, __slen as usize));", varName)
	return out.String(), true
}

// transformStateFmtLine lowers a line containing `state::fmt_i32(v)` or
// `state::fmt_f32(v)` into an alloc + format pair, folding a surrounding
// `.set_text(...)` into a direct foreign call.
func transformStateFmtLine(line string, fmtCounter *int) (string, bool) {
	fmtIdx := strings.Index(line, "state::fmt_i32(")
	fmtFn := "__rsx_state_fmt_i32"
	prefix := "state::fmt_i32("
	bufSize := 20
	if fmtIdx < 0 {
		fmtIdx = strings.Index(line, "state::fmt_f32(")
		fmtFn = "__rsx_state_fmt_f32"
		prefix = "state::fmt_f32("
		bufSize = 32
	}
	if fmtIdx < 0 {
		return "", false
	}

	valStart := fmtIdx + len(prefix)
	valEnd, ok := findClosingParen(line, valStart)
	if !ok {
		return "", false
	}
	valueArg := strings.TrimSpace(line[valStart:valEnd])

	fc := *fmtCounter
	*fmtCounter++
	bufVar := fmt.Sprintf("__fb%d", fc)
	lenVar := fmt.Sprintf("__fl%d", fc)

	var out strings.Builder
	fmt.Fprintf(&out, "let %s = __rsx_alloc(%d);\n", bufVar, bufSize)
	fmt.Fprintf(&out, "let %s = %s(%s, %s, %d);\n", lenVar, fmtFn, valueArg, bufVar, bufSize)

	if methodIdx := strings.Index(line, ".set_text("); methodIdx >= 0 {
		obj := strings.TrimSuffix(strings.TrimSpace(line[:methodIdx]), ";")
		fmt.Fprintf(&out, "__rsx_dom_set_text(%s, %s, %s);", obj, bufVar, lenVar)
		return out.String(), true
	}

	s := out.String()
	if strings.HasPrefix(strings.TrimSpace(line), "let ") {
		// `let result = state::fmt_i32(v);` — the buffer and length vars
		// carry the value; drop the trailing newline only.
		s = strings.TrimSuffix(s, "\n")
	}
	return s, true
}

// transformStateGet lowers `let x = state::get_i32("comp", slot);` into a
// cross-component state read with the name resolved to its numeric id.
func (g *clientGen) transformStateGet(line string) (string, bool) {
	getIdx := strings.Index(line, "state::get_i32(")
	externFn := "__rsx_xstate_get_i32"
	prefix := "state::get_i32("
	if getIdx < 0 {
		getIdx = strings.Index(line, "state::get_f32(")
		externFn = "__rsx_xstate_get_f32"
		prefix = "state::get_f32("
	}
	if getIdx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:getIdx])
	if !ok {
		return "", false
	}
	argStart := getIdx + len(prefix)
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]
	comma := strings.Index(args, ",")
	if comma < 0 {
		return "", false
	}
	compArg := strings.TrimSpace(args[:comma])
	slotArg := strings.TrimSpace(args[comma+1:])

	compID := g.resolveComponentID(strings.Trim(compArg, "\""))
	return fmt.Sprintf("let %s = %s(%d, %s);", varName, externFn, compID, slotArg), true
}

// transformStateSet lowers `state::set_i32("comp", slot, value);`.
func (g *clientGen) transformStateSet(line string) (string, bool) {
	setIdx := strings.Index(line, "state::set_i32(")
	externFn := "__rsx_xstate_set_i32"
	prefix := "state::set_i32("
	if setIdx < 0 {
		setIdx = strings.Index(line, "state::set_f32(")
		externFn = "__rsx_xstate_set_f32"
		prefix = "state::set_f32("
	}
	if setIdx < 0 {
		return "", false
	}
	argStart := setIdx + len(prefix)
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]

	firstComma := strings.Index(args, ",")
	if firstComma < 0 {
		return "", false
	}
	compArg := strings.TrimSpace(args[:firstComma])
	rest := args[firstComma+1:]
	secondComma := strings.Index(rest, ",")
	if secondComma < 0 {
		return "", false
	}
	slotArg := strings.TrimSpace(rest[:secondComma])
	valueArg := strings.TrimSpace(rest[secondComma+1:])

	compID := g.resolveComponentID(strings.Trim(compArg, "\""))
	return fmt.Sprintf("%s(%d, %s, %s);", externFn, compID, slotArg, valueArg), true
}

// transformStateGetStr lowers `let v = state::get_str("comp", slot);` into
// the ptr+len two-call pattern and a slice reconstruction.
func (g *clientGen) transformStateGetStr(line string) (string, bool) {
	getIdx := strings.Index(line, "state::get_str(")
	if getIdx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:getIdx])
	if !ok {
		return "", false
	}
	argStart := getIdx + len("state::get_str(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]
	comma := strings.Index(args, ",")
	if comma < 0 {
		return "", false
	}
	compArg := strings.TrimSpace(args[:comma])
	slotArg := strings.TrimSpace(args[comma+1:])

	compID := g.resolveComponentID(strings.Trim(compArg, "\""))

	var out strings.Builder
	fmt.Fprintf(&out, "let __gsptr = __rsx_xstate_get_str(%d, %s);\n", compID, slotArg)
	fmt.Fprintf(&out, "let __gslen = __rsx_xstate_get_str_len(%d, %s);\n", compID, slotArg)
	fmt.Fprintf(&out, "let %s = core::str::from_utf8_unchecked(core::slice::from_raw_parts(__gsptr as *const u8, __gslen as usize));", varName)
	return out.String(), true
}

// transformStateSetStr lowers `state::set_str("comp", slot, value);`.
func (g *clientGen) transformStateSetStr(line string, counter *int) (string, bool) {
	setIdx := strings.Index(line, "state::set_str(")
	if setIdx < 0 {
		return "", false
	}
	argStart := setIdx + len("state::set_str(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]

	firstComma := strings.Index(args, ",")
	if firstComma < 0 {
		return "", false
	}
	compArg := strings.TrimSpace(args[:firstComma])
	rest := args[firstComma+1:]
	secondComma := strings.Index(rest, ",")
	if secondComma < 0 {
		return "", false
	}
	slotArg := strings.TrimSpace(rest[:secondComma])
	valueArg := strings.TrimSpace(rest[secondComma+1:])

	compID := g.resolveComponentID(strings.Trim(compArg, "\""))

	tmp := fmt.Sprintf("__ss%d", *counter)
	*counter++

	var out strings.Builder
	if strings.HasPrefix(valueArg, "\"") {
		fmt.Fprintf(&out, "let %s = \"%s\";\n", tmp, valueArg[1:len(valueArg)-1])
	} else {
		fmt.Fprintf(&out, "let %s = %s;\n", tmp, valueArg)
	}
	fmt.Fprintf(&out, "__rsx_xstate_set_str(%d, %s, %s.as_ptr() as i32, %s.len() as i32);", compID, slotArg, tmp, tmp)
	return out.String(), true
}

// transformDomQuery lowers `let el = dom::query("sel");` or a variable
// selector into the ptr+len foreign call.
func transformDomQuery(line string) (string, bool) {
	idx := strings.Index(line, "dom::query(")
	if idx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:idx])
	if !ok {
		return "", false
	}
	argStart := idx + len("dom::query(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	if strings.HasPrefix(arg, "\"") {
		s := arg[1 : len(arg)-1]
		return fmt.Sprintf("let __q = \"%s\";\nlet %s = __rsx_dom_query(__q.as_ptr() as i32, __q.len() as i32);", s, varName), true
	}
	return fmt.Sprintf("let %s = __rsx_dom_query(%s.as_ptr() as i32, %s.len() as i32);", varName, arg, arg), true
}

// transformMethodCall lowers a one-string-argument method call like
// `el.set_text("hi");` into its foreign equivalent.
func transformMethodCall(line, method, externName string, counter *int) (string, bool) {
	methodIdx := strings.Index(line, method)
	if methodIdx < 0 {
		return "", false
	}
	obj := strings.TrimSuffix(strings.TrimSpace(line[:methodIdx]), ";")

	argStart := methodIdx + len(method)
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	tmp := fmt.Sprintf("__s%d", *counter)
	*counter++

	if strings.HasPrefix(arg, "\"") {
		s := arg[1 : len(arg)-1]
		return fmt.Sprintf("let %s = \"%s\";\n%s(%s, %s.as_ptr() as i32, %s.len() as i32);", tmp, s, externName, obj, tmp, tmp), true
	}
	return fmt.Sprintf("%s(%s, %s.as_ptr() as i32, %s.len() as i32);", externName, obj, arg, arg), true
}

// transformSetAttr lowers `el.set_attr(name, value);` — both arguments may
// be literals or expressions.
func transformSetAttr(line string, counter *int) (string, bool) {
	methodIdx := strings.Index(line, ".set_attr(")
	if methodIdx < 0 {
		return "", false
	}
	obj := strings.TrimSpace(line[:methodIdx])

	argStart := methodIdx + len(".set_attr(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]

	comma := strings.Index(args, ",")
	if comma < 0 {
		return "", false
	}
	nameArg := strings.TrimSpace(args[:comma])
	valArg := strings.TrimSpace(args[comma+1:])

	tmpN := fmt.Sprintf("__n%d", *counter)
	tmpV := fmt.Sprintf("__v%d", *counter)
	*counter++

	var out strings.Builder
	if strings.HasPrefix(nameArg, "\"") {
		fmt.Fprintf(&out, "let %s = \"%s\";\n", tmpN, nameArg[1:len(nameArg)-1])
	} else {
		fmt.Fprintf(&out, "let %s = %s;\n", tmpN, nameArg)
	}
	if strings.HasPrefix(valArg, "\"") {
		fmt.Fprintf(&out, "let %s = \"%s\";\n", tmpV, valArg[1:len(valArg)-1])
	} else {
		fmt.Fprintf(&out, "let %s = %s;\n", tmpV, valArg)
	}
	fmt.Fprintf(&out, "__rsx_dom_set_attr(%s, %s.as_ptr() as i32, %s.len() as i32, %s.as_ptr() as i32, %s.len() as i32);",
		obj, tmpN, tmpN, tmpV, tmpV)
	return out.String(), true
}

// transformDomLog lowers `dom::log(arg);`, picking the string or i32 import
// by literal shape and how the argument was declared in the body.
func transformDomLog(line, body string, counter *int) (string, bool) {
	idx := strings.Index(line, "dom::log(")
	if idx < 0 {
		return "", false
	}
	argStart := idx + len("dom::log(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	tmp := fmt.Sprintf("__l%d", *counter)
	*counter++

	if strings.HasPrefix(arg, "\"") {
		s := arg[1 : len(arg)-1]
		return fmt.Sprintf("let %s = \"%s\";\n__rsx_log_str(%s);", tmp, s, tmp), true
	}
	if isI32Arg(arg, body) {
		return fmt.Sprintf("__rsx_log_i32(%s);", arg), true
	}
	return fmt.Sprintf("__rsx_log_str(%s);", arg), true
}

// isI32Arg decides whether a log argument is numeric: literals, spaced
// arithmetic, `get_*()` calls, or a variable whose declaration in the body
// points at a numeric source.
func isI32Arg(arg, body string) bool {
	trimmed := strings.TrimLeft(arg, "-")
	if trimmed != "" && strings.Trim(trimmed, "0123456789") == "" {
		return true
	}
	for _, op := range []string{" + ", " - ", " * ", " / ", " % "} {
		if strings.Contains(arg, op) {
			return true
		}
	}
	if strings.HasPrefix(arg, "get_") && strings.HasSuffix(arg, ")") {
		return true
	}

	letPat := "let " + arg + " = "
	for _, bline := range strings.Split(body, "\n") {
		bt := strings.TrimSpace(bline)
		rest, found := strings.CutPrefix(bt, letPat)
		if !found {
			continue
		}
		if strings.HasPrefix(rest, "get_") {
			return true
		}
		if strings.HasPrefix(rest, "state::get_i32(") || strings.HasPrefix(rest, "state::get_f32(") {
			return true
		}
		if strings.Contains(rest, ".get_value()") {
			return false
		}
		if strings.HasPrefix(rest, "state::get_str(") || strings.HasPrefix(rest, "state::fmt_") {
			return false
		}
		if strings.HasPrefix(rest, "\"") {
			return false
		}
	}

	tuplePat := "let (" + arg + ","
	tuplePat2 := "let (" + arg + " ,"
	for _, bline := range strings.Split(body, "\n") {
		bt := strings.TrimSpace(bline)
		if (strings.HasPrefix(bt, tuplePat) || strings.HasPrefix(bt, tuplePat2)) &&
			strings.Contains(bt, "use_state(") {
			if strings.Contains(bt, "_i32") || strings.Contains(bt, "_f32") {
				return true
			}
		}
	}
	return false
}

// transformDomCreate lowers `let div = dom::create("div");`.
func transformDomCreate(line string) (string, bool) {
	idx := strings.Index(line, "dom::create(")
	if idx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:idx])
	if !ok {
		return "", false
	}
	argStart := idx + len("dom::create(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	if strings.HasPrefix(arg, "\"") {
		s := arg[1 : len(arg)-1]
		return fmt.Sprintf("let __ct = \"%s\";\nlet %s = __rsx_dom_create(__ct.as_ptr() as i32, __ct.len() as i32);", s, varName), true
	}
	return fmt.Sprintf("let %s = __rsx_dom_create(%s.as_ptr() as i32, %s.len() as i32);", varName, arg, arg), true
}

func transformDomAppend(line string) (string, bool) {
	idx := strings.Index(line, "dom::append(")
	if idx < 0 {
		return "", false
	}
	argStart := idx + len("dom::append(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]
	comma := strings.Index(args, ",")
	if comma < 0 {
		return "", false
	}
	parent := strings.TrimSpace(args[:comma])
	child := strings.TrimSpace(args[comma+1:])
	return fmt.Sprintf("__rsx_dom_append(%s, %s);", parent, child), true
}

func transformDomRemove(line string) (string, bool) {
	idx := strings.Index(line, "dom::remove(")
	if idx < 0 {
		return "", false
	}
	argStart := idx + len("dom::remove(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])
	return fmt.Sprintf("__rsx_dom_remove(%s);", arg), true
}

// transformDomSetHTML lowers `dom::set_html(handle, html);`.
func transformDomSetHTML(line string, counter *int) (string, bool) {
	idx := strings.Index(line, "dom::set_html(")
	if idx < 0 {
		return "", false
	}
	argStart := idx + len("dom::set_html(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]
	comma := strings.Index(args, ",")
	if comma < 0 {
		return "", false
	}
	handleArg := strings.TrimSpace(args[:comma])
	htmlArg := strings.TrimSpace(args[comma+1:])

	tmp := fmt.Sprintf("__h%d", *counter)
	*counter++

	var out strings.Builder
	if strings.HasPrefix(htmlArg, "\"") {
		fmt.Fprintf(&out, "let %s = \"%s\";\n", tmp, htmlArg[1:len(htmlArg)-1])
	} else {
		fmt.Fprintf(&out, "let %s = %s;\n", tmp, htmlArg)
	}
	fmt.Fprintf(&out, "__rsx_dom_set_html(%s, %s.as_ptr() as i32, %s.len() as i32);", handleArg, tmp, tmp)
	return out.String(), true
}

// transformGetAttr lowers `let v = el.get_attr("name");` into the two-call
// ptr+len pattern. Only let-bindings qualify; the returned value is a string.
func transformGetAttr(line string, counter *int) (string, bool) {
	methodIdx := strings.Index(line, ".get_attr(")
	if methodIdx < 0 {
		return "", false
	}
	lhs := strings.TrimSpace(line[:methodIdx])
	if !strings.HasPrefix(lhs, "let ") {
		return "", false
	}
	eq := strings.LastIndex(lhs, "=")
	if eq < 0 {
		return "", false
	}
	varName := strings.TrimSpace(lhs[4:eq])
	obj := strings.TrimSpace(lhs[eq+1:])
	if varName == "" || obj == "" {
		return "", false
	}

	argStart := methodIdx + len(".get_attr(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	tmp := fmt.Sprintf("__ga%d", *counter)
	*counter++

	var out strings.Builder
	if strings.HasPrefix(arg, "\"") {
		fmt.Fprintf(&out, "let %s = \"%s\";\n", tmp, arg[1:len(arg)-1])
	} else {
		fmt.Fprintf(&out, "let %s = %s;\n", tmp, arg)
	}
	fmt.Fprintf(&out, "let __gaptr = __rsx_dom_get_attr(%s, %s.as_ptr() as i32, %s.len() as i32);\n", obj, tmp, tmp)
	fmt.Fprintf(&out, "let __galen = __rsx_dom_get_attr_len(%s, %s.as_ptr() as i32, %s.len() as i32);\n", obj, tmp, tmp)
	fmt.Fprintf(&out, "let %s = core::str::from_utf8_unchecked(core::slice::from_raw_parts(__gaptr as *const u8, __galen as usize));", varName)
	return out.String(), true
}

// transformGetValue lowers `let v = el.get_value();` into the two-call
// ptr+len pattern for the string return.
func transformGetValue(line string) (string, bool) {
	methodIdx := strings.Index(line, ".get_value(")
	if methodIdx < 0 {
		return "", false
	}
	lhs := strings.TrimSpace(line[:methodIdx])
	if !strings.HasPrefix(lhs, "let ") {
		return "", false
	}
	eq := strings.LastIndex(lhs, "=")
	if eq < 0 {
		return "", false
	}
	varName := strings.TrimSpace(lhs[4:eq])
	obj := strings.TrimSpace(lhs[eq+1:])
	if varName == "" || obj == "" {
		return "", false
	}
	if _, ok := findClosingParen(line, methodIdx+len(".get_value(")); !ok {
		return "", false
	}

	var out strings.Builder
	fmt.Fprintf(&out, "let __gvptr = __rsx_dom_get_value(%s);\n", obj)
	fmt.Fprintf(&out, "let __gvlen = __rsx_dom_get_value_len(%s);\n", obj)
	fmt.Fprintf(&out, "let %s = core::str::from_utf8_unchecked(core::slice::from_raw_parts(__gvptr as *const u8, __gvlen as usize));", varName)
	return out.String(), true
}

// transformUseMemo lowers `let sum = use_memo_i32(a + b, &[a, b]);` into a
// begin/set_dep prologue and a changed/store/load conditional.
func transformUseMemo(line string, memoSlotCounter *int) (string, bool) {
	memoIdx := strings.Index(line, "use_memo_i32(")
	prefix := "use_memo_i32("
	storeFn, loadFn := "__rsx_memo_store_i32", "__rsx_memo_load_i32"
	if memoIdx < 0 {
		memoIdx = strings.Index(line, "use_memo_f32(")
		prefix = "use_memo_f32("
		storeFn, loadFn = "__rsx_memo_store_f32", "__rsx_memo_load_f32"
	}
	if memoIdx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:memoIdx])
	if !ok {
		return "", false
	}
	argStart := memoIdx + len(prefix)
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	fullArgs := line[argStart:argEnd]

	const depMarker = ", &["
	splitIdx := strings.Index(fullArgs, depMarker)
	if splitIdx < 0 {
		return "", false
	}
	expr := strings.TrimSpace(fullArgs[:splitIdx])
	depsPart, found := strings.CutSuffix(fullArgs[splitIdx+len(depMarker):], "]")
	if !found {
		return "", false
	}
	deps := splitDeps(depsPart)

	slot := *memoSlotCounter
	*memoSlotCounter++

	var out strings.Builder
	fmt.Fprintf(&out, "__rsx_memo_begin(%d, %d);\n", slot, len(deps))
	for i, dep := range deps {
		fmt.Fprintf(&out, "__rsx_memo_set_dep(%d, %d, %s);\n", slot, i, dep)
	}
	fmt.Fprintf(&out, "let %s = if __rsx_memo_changed(%d) == 1 {\n", varName, slot)
	fmt.Fprintf(&out, "    let __mv = %s;\n", expr)
	fmt.Fprintf(&out, "    %s(%d, __mv);\n", storeFn, slot)
	out.WriteString("    __mv\n")
	out.WriteString("} else {\n")
	fmt.Fprintf(&out, "    %s(%d)\n", loadFn, slot)
	out.WriteString("};")
	return out.String(), true
}

// transformUseEffect lowers `use_effect(&[dep1, dep2]);` into a register
// call plus one set_dep per dependency.
func transformUseEffect(line string, effectSlotCounter *int) (string, bool) {
	idx := strings.Index(line, "use_effect(")
	if idx < 0 {
		return "", false
	}
	argStart := idx + len("use_effect(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	inner, found := strings.CutPrefix(arg, "&[")
	if !found {
		return "", false
	}
	inner, found = strings.CutSuffix(inner, "]")
	if !found {
		return "", false
	}
	deps := splitDeps(inner)

	slot := *effectSlotCounter
	*effectSlotCounter++

	var out strings.Builder
	fmt.Fprintf(&out, "__rsx_effect_register(%d, %d);\n", slot, len(deps))
	for i, dep := range deps {
		fmt.Fprintf(&out, "__rsx_effect_set_dep(%d, %d, %s);\n", slot, i, dep)
	}
	return strings.TrimSuffix(out.String(), "\n"), true
}

func splitDeps(inner string) []string {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil
	}
	parts := strings.Split(inner, ",")
	deps := make([]string, 0, len(parts))
	for _, p := range parts {
		deps = append(deps, strings.TrimSpace(p))
	}
	return deps
}

// transformUseRef lowers `let r = use_ref(0_i32);` into a ref slot init.
func transformUseRef(line string, refSlotCounter *int) (string, bool) {
	useIdx := strings.Index(line, "use_ref(")
	if useIdx < 0 {
		return "", false
	}
	if strings.HasPrefix(line[useIdx:], "use_ref_el(") {
		return "", false
	}
	varName, ok := extractLetVar(line[:useIdx])
	if !ok {
		return "", false
	}
	argStart := useIdx + len("use_ref(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	slot := *refSlotCounter
	*refSlotCounter++

	externFn := "__rsx_ref_init_i32"
	cleanArg := arg
	switch {
	case strings.HasSuffix(arg, "_i32"):
		cleanArg = arg[:len(arg)-4]
	case strings.HasSuffix(arg, "_f32"):
		externFn = "__rsx_ref_init_f32"
		cleanArg = arg[:len(arg)-4]
	}
	return fmt.Sprintf("let %s = %s(%d, %s);", varName, externFn, slot, cleanArg), true
}

// transformUseRefEl lowers `let el = use_ref_el("#box");` into an element
// ref slot init.
func transformUseRefEl(line string, refSlotCounter *int) (string, bool) {
	useIdx := strings.Index(line, "use_ref_el(")
	if useIdx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:useIdx])
	if !ok {
		return "", false
	}
	argStart := useIdx + len("use_ref_el(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	slot := *refSlotCounter
	*refSlotCounter++

	if strings.HasPrefix(arg, "\"") {
		s := arg[1 : len(arg)-1]
		return fmt.Sprintf("let __rsel = \"%s\";\nlet %s = __rsx_ref_init_el(%d, __rsel.as_ptr() as i32, __rsel.len() as i32);", s, varName, slot), true
	}
	return fmt.Sprintf("let %s = __rsx_ref_init_el(%d, %s.as_ptr() as i32, %s.len() as i32);", varName, slot, arg, arg), true
}

func transformRefGet(line string) (string, bool) {
	getIdx := strings.Index(line, "ref::get_i32(")
	externFn := "__rsx_ref_get_i32"
	prefix := "ref::get_i32("
	if getIdx < 0 {
		getIdx = strings.Index(line, "ref::get_f32(")
		externFn = "__rsx_ref_get_f32"
		prefix = "ref::get_f32("
	}
	if getIdx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:getIdx])
	if !ok {
		return "", false
	}
	argStart := getIdx + len(prefix)
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	slotArg := strings.TrimSpace(line[argStart:argEnd])
	return fmt.Sprintf("let %s = %s(%s);", varName, externFn, slotArg), true
}

func transformRefSet(line string) (string, bool) {
	setIdx := strings.Index(line, "ref::set_i32(")
	externFn := "__rsx_ref_set_i32"
	prefix := "ref::set_i32("
	if setIdx < 0 {
		setIdx = strings.Index(line, "ref::set_f32(")
		externFn = "__rsx_ref_set_f32"
		prefix = "ref::set_f32("
	}
	if setIdx < 0 {
		return "", false
	}
	argStart := setIdx + len(prefix)
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]
	comma := strings.Index(args, ",")
	if comma < 0 {
		return "", false
	}
	slotArg := strings.TrimSpace(args[:comma])
	valueArg := strings.TrimSpace(args[comma+1:])
	return fmt.Sprintf("%s(%s, %s);", externFn, slotArg, valueArg), true
}

func transformDomQueryAllCount(line string) (string, bool) {
	idx := strings.Index(line, "dom::query_all_count(")
	if idx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:idx])
	if !ok {
		return "", false
	}
	argStart := idx + len("dom::query_all_count(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	arg := strings.TrimSpace(line[argStart:argEnd])

	if strings.HasPrefix(arg, "\"") {
		s := arg[1 : len(arg)-1]
		return fmt.Sprintf("let __qac = \"%s\";\nlet %s = __rsx_dom_query_all_count(__qac.as_ptr() as i32, __qac.len() as i32);", s, varName), true
	}
	return fmt.Sprintf("let %s = __rsx_dom_query_all_count(%s.as_ptr() as i32, %s.len() as i32);", varName, arg, arg), true
}

func transformDomQueryAllGet(line string) (string, bool) {
	idx := strings.Index(line, "dom::query_all_get(")
	if idx < 0 {
		return "", false
	}
	varName, ok := extractLetVar(line[:idx])
	if !ok {
		return "", false
	}
	argStart := idx + len("dom::query_all_get(")
	argEnd, ok := findClosingParen(line, argStart)
	if !ok {
		return "", false
	}
	args := line[argStart:argEnd]
	comma := strings.Index(args, ",")
	if comma < 0 {
		return "", false
	}
	selArg := strings.TrimSpace(args[:comma])
	idxArg := strings.TrimSpace(args[comma+1:])

	if strings.HasPrefix(selArg, "\"") {
		s := selArg[1 : len(selArg)-1]
		return fmt.Sprintf("let __qag = \"%s\";\nlet %s = __rsx_dom_query_all_get(__qag.as_ptr() as i32, __qag.len() as i32, %s);", s, varName, idxArg), true
	}
	return fmt.Sprintf("let %s = __rsx_dom_query_all_get(%s.as_ptr() as i32, %s.len() as i32, %s);", varName, selArg, selArg, idxArg), true
}

// extractLetVar pulls the variable name out of a `let <name> = ` prefix.
func extractLetVar(before string) (string, bool) {
	s := strings.TrimSpace(before)
	s, found := strings.CutPrefix(s, "let ")
	if !found {
		return "", false
	}
	s, found = strings.CutSuffix(strings.TrimSpace(s), "=")
	if !found {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// findClosingParen finds the paren closing the group that starts just before
// `start`. String literals (with escapes) are skipped.
func findClosingParen(s string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		case '"':
			i++
			for i < len(s) {
				if s[i] == '\\' {
					i += 2
					continue
				}
				if s[i] == '"' {
					break
				}
				i++
			}
		}
	}
	return 0, false
}

// extractUserExterns collects `fn ...;` declarations from `extern "C"`
// blocks inside a body so they can be hoisted to the module extern block.
func extractUserExterns(body string, externs *[]string) {
	searchFrom := 0
	for {
		idx := strings.Index(body[searchFrom:], "extern \"C\"")
		if idx < 0 {
			return
		}
		absIdx := searchFrom + idx
		braceStart := strings.Index(body[absIdx:], "{")
		if braceStart < 0 {
			return
		}
		braceAbs := absIdx + braceStart
		braceEnd := strings.Index(body[braceAbs:], "}")
		if braceEnd < 0 {
			return
		}
		inner := body[braceAbs+1 : braceAbs+braceEnd]
		for _, line := range strings.Split(inner, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "fn ") {
				*externs = append(*externs, trimmed)
			}
		}
		searchFrom = braceAbs + braceEnd + 1
	}
}
