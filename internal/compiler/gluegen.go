package compiler

import (
	"fmt"
	"strings"

	"rsxc/internal/ast"
	"rsxc/internal/scanner"
)

// Bridging-script generation: produces the JavaScript module that loads the
// compiled wasm binary, provides its foreign imports against the real DOM,
// and wires `data-rsx-on*` attributes to the exported handler wrappers.
// The emitted import object is driven by the same needs analysis as the
// wasm module's extern block.

// GenerateGlueScript builds the bridging script for one input file.
// wasmURL is the public URL the compiled binary is served from.
func GenerateGlueScript(
	clientFns, componentFns []scanner.Function,
	source, wasmURL string,
	componentMarkup [][]ast.Node,
) string {
	g := &clientGen{}
	for i, f := range componentFns {
		if f.Name != "" {
			g.componentIDs = append(g.componentIDs, componentID{name: f.Name, id: i})
		}
	}
	stateHelpers := g.collectStateHelperBindings(componentFns, source)
	needs, userExterns, _ := analyzeModuleNeeds(clientFns, componentFns, source, componentMarkup, stateHelpers)

	hasComponents := len(componentFns) > 0
	hasState := needs.stateInitI32 || needs.stateInitF32 || needs.stateInitStr ||
		needs.xstateGetI32 || needs.xstateSetI32 || needs.xstateGetF32 ||
		needs.xstateSetF32 || needs.xstateGetStr || needs.xstateSetStr
	hasRefs := needs.refInitI32 || needs.refInitF32 || needs.refInitEl ||
		needs.refGetI32 || needs.refSetI32 || needs.refGetF32 || needs.refSetF32
	// Refs, effects and memos address their storage by slot key too.
	hasSlots := hasState || hasRefs || needs.effect || needs.memoI32 || needs.memoF32

	var out strings.Builder
	out.WriteString("// @generated bridging script. Do not edit.\n")
	out.WriteString("(function () {\n")
	out.WriteString("  \"use strict\";\n\n")

	out.WriteString("  let __wasm = null;\n")
	out.WriteString("  const __enc = new TextEncoder();\n")
	out.WriteString("  const __dec = new TextDecoder();\n\n")

	out.WriteString("  function __mem() {\n")
	out.WriteString("    return new Uint8Array(__wasm.exports.memory.buffer);\n")
	out.WriteString("  }\n\n")

	out.WriteString("  function __read_str(ptr, len) {\n")
	out.WriteString("    return __dec.decode(__mem().subarray(ptr, ptr + len));\n")
	out.WriteString("  }\n\n")

	out.WriteString("  function __write_str(s) {\n")
	out.WriteString("    const bytes = __enc.encode(String(s));\n")
	out.WriteString("    const ptr = __wasm.exports.__rsx_alloc(bytes.length);\n")
	out.WriteString("    __mem().set(bytes, ptr);\n")
	out.WriteString("    return [ptr, bytes.length];\n")
	out.WriteString("  }\n\n")

	// DOM handle table. Handle 0 is the null element.
	out.WriteString("  const __handles = [null];\n")
	out.WriteString("  function __handle(el) {\n")
	out.WriteString("    if (!el) return 0;\n")
	out.WriteString("    __handles.push(el);\n")
	out.WriteString("    return __handles.length - 1;\n")
	out.WriteString("  }\n")
	out.WriteString("  function __el(handle) {\n")
	out.WriteString("    return __handles[handle] || null;\n")
	out.WriteString("  }\n\n")

	if hasComponents {
		writeComponentRuntime(&out, g.componentIDs)
	} else if hasState {
		// Cross-file state writes have no local component to rerun.
		out.WriteString("  function __schedule_rerender(comp_id) {}\n\n")
	}
	if hasSlots || hasComponents {
		out.WriteString("  let __current_component = 0;\n")
	}
	if hasSlots {
		out.WriteString("  function __slot_key(comp_id, slot) {\n")
		out.WriteString("    return comp_id * 1024 + slot;\n")
		out.WriteString("  }\n")
	}
	if hasState {
		out.WriteString("  const __state = new Map();\n")
		out.WriteString("  const __str_out = new Map();\n")
	}
	if hasRefs {
		out.WriteString("  const __refs = new Map();\n")
	}
	if needs.effect {
		out.WriteString("  const __effect_deps = new Map();\n")
	}
	if needs.memoI32 || needs.memoF32 {
		out.WriteString("  const __memo_deps = new Map();\n")
		out.WriteString("  const __memo_pending = new Map();\n")
		out.WriteString("  const __memo_vals = new Map();\n")
	}
	if needs.getValue || needs.getAttr || needs.xstateGetStr || needs.stateInitStr {
		out.WriteString("  const __out_lens = new Map();\n")
	}
	out.WriteString("\n")

	writeImportObject(&out, &needs, userExterns)
	writeHandlers(&out, clientFns)
	writeBinder(&out)
	writeLoader(&out, wasmURL, g.componentIDs, componentFns)

	out.WriteString("})();\n")
	return out.String()
}

func writeComponentRuntime(out *strings.Builder, ids []componentID) {
	out.WriteString("  const __components = new Map();\n")
	out.WriteString("  const __rerender_queue = new Set();\n\n")

	out.WriteString("  function __register_component(id, name, export_name) {\n")
	out.WriteString("    __components.set(id, { name: name, export_name: export_name, mounted: false });\n")
	out.WriteString("  }\n\n")

	out.WriteString("  function __schedule_rerender(comp_id) {\n")
	out.WriteString("    if (__rerender_queue.has(comp_id)) return;\n")
	out.WriteString("    __rerender_queue.add(comp_id);\n")
	out.WriteString("    queueMicrotask(() => {\n")
	out.WriteString("      __rerender_queue.delete(comp_id);\n")
	out.WriteString("      const c = __components.get(comp_id);\n")
	out.WriteString("      if (!c || !__wasm) return;\n")
	out.WriteString("      __wasm.exports[c.export_name]();\n")
	out.WriteString("      __wasm.exports.__rsx_dealloc();\n")
	out.WriteString("      __bind_rsx_handlers();\n")
	out.WriteString("    });\n")
	out.WriteString("  }\n\n")

	for _, c := range ids {
		fmt.Fprintf(out, "  __register_component(%d, %q, %q);\n", c.id, c.name, "__rsx_component_"+c.name)
	}
	out.WriteString("\n")
}

// writeImportObject emits one shim per foreign import the wasm module
// declares. Shim parameter names mirror the extern declarations.
func writeImportObject(out *strings.Builder, needs *externNeeds, userExterns []string) {
	out.WriteString("  const __imports = {\n")
	out.WriteString("    env: {\n")

	if needs.componentLifecycle {
		out.WriteString("      __rsx_component_begin(id) {\n")
		out.WriteString("        __current_component = id;\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_component_end() {\n")
		out.WriteString("        const c = __components.get(__current_component);\n")
		out.WriteString("        if (c) c.mounted = true;\n")
		out.WriteString("      },\n")
	}
	if needs.isMounted {
		out.WriteString("      __rsx_component_is_mounted(id) {\n")
		out.WriteString("        const c = __components.get(id);\n")
		out.WriteString("        return c && c.mounted ? 1 : 0;\n")
		out.WriteString("      },\n")
	}
	if needs.mountPoint {
		out.WriteString("      __rsx_component_mount_point(id) {\n")
		out.WriteString("        const c = __components.get(id);\n")
		out.WriteString("        if (!c) return 0;\n")
		out.WriteString("        return __handle(document.querySelector('[data-rsx-component=\"' + c.name + '\"]'));\n")
		out.WriteString("      },\n")
	}

	if needs.stateInitI32 {
		out.WriteString("      __rsx_state_init_i32(slot, initial) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        if (!__state.has(key)) __state.set(key, initial | 0);\n")
		out.WriteString("        return __state.get(key);\n")
		out.WriteString("      },\n")
	}
	if needs.stateInitF32 {
		out.WriteString("      __rsx_state_init_f32(slot, initial) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        if (!__state.has(key)) __state.set(key, initial);\n")
		out.WriteString("        return __state.get(key);\n")
		out.WriteString("      },\n")
	}
	if needs.stateInitStr {
		out.WriteString("      __rsx_state_init_str(slot, ptr, len) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        if (!__state.has(key)) __state.set(key, __read_str(ptr, len));\n")
		out.WriteString("        const [out_ptr, out_len] = __write_str(__state.get(key));\n")
		out.WriteString("        __out_lens.set(\"state:\" + key, out_len);\n")
		out.WriteString("        return out_ptr;\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_state_init_str_len(slot) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        return __out_lens.get(\"state:\" + key) || 0;\n")
		out.WriteString("      },\n")
	}

	if needs.xstateGetI32 {
		out.WriteString("      __rsx_xstate_get_i32(comp_id, slot) {\n")
		out.WriteString("        return __state.get(__slot_key(comp_id, slot)) | 0;\n")
		out.WriteString("      },\n")
	}
	if needs.xstateSetI32 {
		out.WriteString("      __rsx_xstate_set_i32(comp_id, slot, value) {\n")
		out.WriteString("        __state.set(__slot_key(comp_id, slot), value | 0);\n")
		out.WriteString("        __schedule_rerender(comp_id);\n")
		out.WriteString("      },\n")
	}
	if needs.xstateGetF32 {
		out.WriteString("      __rsx_xstate_get_f32(comp_id, slot) {\n")
		out.WriteString("        return __state.get(__slot_key(comp_id, slot)) || 0;\n")
		out.WriteString("      },\n")
	}
	if needs.xstateSetF32 {
		out.WriteString("      __rsx_xstate_set_f32(comp_id, slot, value) {\n")
		out.WriteString("        __state.set(__slot_key(comp_id, slot), value);\n")
		out.WriteString("        __schedule_rerender(comp_id);\n")
		out.WriteString("      },\n")
	}
	if needs.xstateGetStr {
		out.WriteString("      __rsx_xstate_get_str(comp_id, slot) {\n")
		out.WriteString("        const key = __slot_key(comp_id, slot);\n")
		out.WriteString("        const [out_ptr, out_len] = __write_str(__state.get(key) || \"\");\n")
		out.WriteString("        __out_lens.set(\"state:\" + key, out_len);\n")
		out.WriteString("        return out_ptr;\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_xstate_get_str_len(comp_id, slot) {\n")
		out.WriteString("        return __out_lens.get(\"state:\" + __slot_key(comp_id, slot)) || 0;\n")
		out.WriteString("      },\n")
	}
	if needs.xstateSetStr {
		out.WriteString("      __rsx_xstate_set_str(comp_id, slot, ptr, len) {\n")
		out.WriteString("        __state.set(__slot_key(comp_id, slot), __read_str(ptr, len));\n")
		out.WriteString("        __schedule_rerender(comp_id);\n")
		out.WriteString("      },\n")
	}

	if needs.fmtI32 {
		out.WriteString("      __rsx_state_fmt_i32(value, buf_ptr, buf_len) {\n")
		out.WriteString("        const bytes = __enc.encode(String(value | 0));\n")
		out.WriteString("        const n = Math.min(bytes.length, buf_len);\n")
		out.WriteString("        __mem().set(bytes.subarray(0, n), buf_ptr);\n")
		out.WriteString("        return n;\n")
		out.WriteString("      },\n")
	}
	if needs.fmtF32 {
		out.WriteString("      __rsx_state_fmt_f32(value, buf_ptr, buf_len) {\n")
		out.WriteString("        const bytes = __enc.encode(String(Math.round(value * 100) / 100));\n")
		out.WriteString("        const n = Math.min(bytes.length, buf_len);\n")
		out.WriteString("        __mem().set(bytes.subarray(0, n), buf_ptr);\n")
		out.WriteString("        return n;\n")
		out.WriteString("      },\n")
	}

	if needs.effect {
		out.WriteString("      __rsx_effect_register(slot, dep_count) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        if (!__effect_deps.has(key)) __effect_deps.set(key, new Array(dep_count).fill(null));\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_effect_set_dep(slot, dep_idx, value) {\n")
		out.WriteString("        const deps = __effect_deps.get(__slot_key(__current_component, slot));\n")
		out.WriteString("        if (deps) deps[dep_idx] = value;\n")
		out.WriteString("      },\n")
	}

	if needs.memoI32 || needs.memoF32 {
		out.WriteString("      __rsx_memo_begin(slot, dep_count) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        __memo_pending.set(key, new Array(dep_count).fill(null));\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_memo_set_dep(slot, dep_idx, value) {\n")
		out.WriteString("        const deps = __memo_pending.get(__slot_key(__current_component, slot));\n")
		out.WriteString("        if (deps) deps[dep_idx] = value;\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_memo_changed(slot) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        const pending = __memo_pending.get(key) || [];\n")
		out.WriteString("        const prev = __memo_deps.get(key);\n")
		out.WriteString("        __memo_deps.set(key, pending);\n")
		out.WriteString("        if (!prev || prev.length !== pending.length) return 1;\n")
		out.WriteString("        for (let i = 0; i < pending.length; i++) {\n")
		out.WriteString("          if (prev[i] !== pending[i]) return 1;\n")
		out.WriteString("        }\n")
		out.WriteString("        return 0;\n")
		out.WriteString("      },\n")
	}
	if needs.memoI32 {
		out.WriteString("      __rsx_memo_store_i32(slot, value) {\n")
		out.WriteString("        __memo_vals.set(__slot_key(__current_component, slot), value | 0);\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_memo_load_i32(slot) {\n")
		out.WriteString("        return __memo_vals.get(__slot_key(__current_component, slot)) | 0;\n")
		out.WriteString("      },\n")
	}
	if needs.memoF32 {
		out.WriteString("      __rsx_memo_store_f32(slot, value) {\n")
		out.WriteString("        __memo_vals.set(__slot_key(__current_component, slot), value);\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_memo_load_f32(slot) {\n")
		out.WriteString("        return __memo_vals.get(__slot_key(__current_component, slot)) || 0;\n")
		out.WriteString("      },\n")
	}

	if needs.refInitI32 {
		out.WriteString("      __rsx_ref_init_i32(slot, initial) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        if (!__refs.has(key)) __refs.set(key, initial | 0);\n")
		out.WriteString("        return __refs.get(key);\n")
		out.WriteString("      },\n")
	}
	if needs.refInitF32 {
		out.WriteString("      __rsx_ref_init_f32(slot, initial) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        if (!__refs.has(key)) __refs.set(key, initial);\n")
		out.WriteString("        return __refs.get(key);\n")
		out.WriteString("      },\n")
	}
	if needs.refInitEl {
		out.WriteString("      __rsx_ref_init_el(slot, sel_ptr, sel_len) {\n")
		out.WriteString("        const key = __slot_key(__current_component, slot);\n")
		out.WriteString("        if (!__refs.has(key)) {\n")
		out.WriteString("          __refs.set(key, __handle(document.querySelector(__read_str(sel_ptr, sel_len))));\n")
		out.WriteString("        }\n")
		out.WriteString("        return __refs.get(key);\n")
		out.WriteString("      },\n")
	}
	if needs.refGetI32 {
		out.WriteString("      __rsx_ref_get_i32(slot) {\n")
		out.WriteString("        return __refs.get(__slot_key(__current_component, slot)) | 0;\n")
		out.WriteString("      },\n")
	}
	if needs.refSetI32 {
		out.WriteString("      __rsx_ref_set_i32(slot, value) {\n")
		out.WriteString("        __refs.set(__slot_key(__current_component, slot), value | 0);\n")
		out.WriteString("      },\n")
	}
	if needs.refGetF32 {
		out.WriteString("      __rsx_ref_get_f32(slot) {\n")
		out.WriteString("        return __refs.get(__slot_key(__current_component, slot)) || 0;\n")
		out.WriteString("      },\n")
	}
	if needs.refSetF32 {
		out.WriteString("      __rsx_ref_set_f32(slot, value) {\n")
		out.WriteString("        __refs.set(__slot_key(__current_component, slot), value);\n")
		out.WriteString("      },\n")
	}

	if needs.query {
		out.WriteString("      __rsx_dom_query(sel_ptr, sel_len) {\n")
		out.WriteString("        return __handle(document.querySelector(__read_str(sel_ptr, sel_len)));\n")
		out.WriteString("      },\n")
	}
	if needs.setText {
		out.WriteString("      __rsx_dom_set_text(handle, text_ptr, text_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el) el.textContent = __read_str(text_ptr, text_len);\n")
		out.WriteString("      },\n")
	}
	if needs.getValue {
		out.WriteString("      __rsx_dom_get_value(handle) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        const [ptr, len] = __write_str(el ? el.value : \"\");\n")
		out.WriteString("        __out_lens.set(\"value:\" + handle, len);\n")
		out.WriteString("        return ptr;\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_dom_get_value_len(handle) {\n")
		out.WriteString("        return __out_lens.get(\"value:\" + handle) || 0;\n")
		out.WriteString("      },\n")
	}
	if needs.setAttr {
		out.WriteString("      __rsx_dom_set_attr(handle, name_ptr, name_len, val_ptr, val_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el) el.setAttribute(__read_str(name_ptr, name_len), __read_str(val_ptr, val_len));\n")
		out.WriteString("      },\n")
	}
	if needs.addClass {
		out.WriteString("      __rsx_dom_add_class(handle, cls_ptr, cls_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el) el.classList.add(__read_str(cls_ptr, cls_len));\n")
		out.WriteString("      },\n")
	}
	if needs.removeClass {
		out.WriteString("      __rsx_dom_remove_class(handle, cls_ptr, cls_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el) el.classList.remove(__read_str(cls_ptr, cls_len));\n")
		out.WriteString("      },\n")
	}
	if needs.log {
		out.WriteString("      __rsx_console_log(msg_ptr, msg_len) {\n")
		out.WriteString("        console.log(__read_str(msg_ptr, msg_len));\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_console_log_i32(value) {\n")
		out.WriteString("        console.log(value);\n")
		out.WriteString("      },\n")
	}
	if needs.create {
		out.WriteString("      __rsx_dom_create(tag_ptr, tag_len) {\n")
		out.WriteString("        return __handle(document.createElement(__read_str(tag_ptr, tag_len)));\n")
		out.WriteString("      },\n")
	}
	if needs.createText {
		out.WriteString("      __rsx_dom_create_text(text_ptr, text_len) {\n")
		out.WriteString("        return __handle(document.createTextNode(__read_str(text_ptr, text_len)));\n")
		out.WriteString("      },\n")
	}
	if needs.appendNode {
		out.WriteString("      __rsx_dom_append(parent, child) {\n")
		out.WriteString("        const p = __el(parent);\n")
		out.WriteString("        const c = __el(child);\n")
		out.WriteString("        if (p && c) p.appendChild(c);\n")
		out.WriteString("      },\n")
	}
	if needs.removeNode {
		out.WriteString("      __rsx_dom_remove(handle) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el && el.parentNode) el.parentNode.removeChild(el);\n")
		out.WriteString("      },\n")
	}
	if needs.setHTML {
		out.WriteString("      __rsx_dom_set_html(handle, html_ptr, html_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el) el.innerHTML = __read_str(html_ptr, html_len);\n")
		out.WriteString("      },\n")
	}
	if needs.toggleClass {
		out.WriteString("      __rsx_dom_toggle_class(handle, cls_ptr, cls_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el) el.classList.toggle(__read_str(cls_ptr, cls_len));\n")
		out.WriteString("      },\n")
	}
	if needs.getAttr {
		out.WriteString("      __rsx_dom_get_attr(handle, name_ptr, name_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        const name = __read_str(name_ptr, name_len);\n")
		out.WriteString("        const [ptr, len] = __write_str(el ? el.getAttribute(name) || \"\" : \"\");\n")
		out.WriteString("        __out_lens.set(\"attr:\" + handle + \":\" + name, len);\n")
		out.WriteString("        return ptr;\n")
		out.WriteString("      },\n")
		out.WriteString("      __rsx_dom_get_attr_len(handle, name_ptr, name_len) {\n")
		out.WriteString("        const name = __read_str(name_ptr, name_len);\n")
		out.WriteString("        return __out_lens.get(\"attr:\" + handle + \":\" + name) || 0;\n")
		out.WriteString("      },\n")
	}
	if needs.removeAttr {
		out.WriteString("      __rsx_dom_remove_attr(handle, name_ptr, name_len) {\n")
		out.WriteString("        const el = __el(handle);\n")
		out.WriteString("        if (el) el.removeAttribute(__read_str(name_ptr, name_len));\n")
		out.WriteString("      },\n")
	}
	if needs.queryAllCount {
		out.WriteString("      __rsx_dom_query_all_count(sel_ptr, sel_len) {\n")
		out.WriteString("        return document.querySelectorAll(__read_str(sel_ptr, sel_len)).length;\n")
		out.WriteString("      },\n")
	}
	if needs.queryAllGet {
		out.WriteString("      __rsx_dom_query_all_get(sel_ptr, sel_len, idx) {\n")
		out.WriteString("        const list = document.querySelectorAll(__read_str(sel_ptr, sel_len));\n")
		out.WriteString("        return __handle(list[idx] || null);\n")
		out.WriteString("      },\n")
	}

	// User-declared externs get warning stubs; the page author is expected
	// to patch __imports.env before the module loads.
	for _, ext := range userExterns {
		name := userExternName(ext)
		if name == "" {
			continue
		}
		fmt.Fprintf(out, "      %s() {\n", name)
		fmt.Fprintf(out, "        console.warn(\"unimplemented import: %s\");\n", name)
		out.WriteString("        return 0;\n")
		out.WriteString("      },\n")
	}

	out.WriteString("    },\n")
	out.WriteString("  };\n\n")
}

// userExternName pulls the function name out of a declaration like
// `fn beep(freq: i32) -> i32;`.
func userExternName(decl string) string {
	rest, ok := strings.CutPrefix(strings.TrimSpace(decl), "fn ")
	if !ok {
		return ""
	}
	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:open])
}

// writeHandlers emits one wrapper per exported handler. Wrapper parameters
// use the declared names; string parameters are copied into wasm memory and
// passed as a pointer/length pair.
func writeHandlers(out *strings.Builder, clientFns []scanner.Function) {
	out.WriteString("  const __rsx_handlers = {};\n")
	for _, f := range clientFns {
		if f.Name == "" {
			continue
		}
		sig := BuildSignature(f.Name, f.Params)

		var jsParams []string
		for _, p := range sig.Params {
			jsParams = append(jsParams, p.Name)
		}
		fmt.Fprintf(out, "  __rsx_handlers[%q] = function (%s) {\n", f.Name, strings.Join(jsParams, ", "))
		out.WriteString("    if (!__wasm) return;\n")

		var callArgs []string
		for _, p := range sig.Params {
			switch {
			case p.Kind == AbiStringPair:
				fmt.Fprintf(out, "    const [%s_ptr, %s_len] = __write_str(%s);\n", p.Name, p.Name, p.Name)
				callArgs = append(callArgs, p.Name+"_ptr", p.Name+"_len")
			case p.DeclType == "bool":
				callArgs = append(callArgs, "("+p.Name+" ? 1 : 0)")
			default:
				callArgs = append(callArgs, p.Name)
			}
		}
		fmt.Fprintf(out, "    __wasm.exports.%s(%s);\n", f.Name, strings.Join(callArgs, ", "))
		out.WriteString("    __wasm.exports.__rsx_dealloc();\n")
		out.WriteString("  };\n")
	}
	out.WriteString("\n")
}

func writeBinder(out *strings.Builder) {
	out.WriteString("  function __event_arg(ev) {\n")
	out.WriteString("    const t = ev.target;\n")
	out.WriteString("    if (t instanceof HTMLInputElement || t instanceof HTMLTextAreaElement || t instanceof HTMLSelectElement) {\n")
	out.WriteString("      if (t.type === \"checkbox\") return t.checked;\n")
	out.WriteString("      return t.value;\n")
	out.WriteString("    }\n")
	out.WriteString("    return t.id ? \"#\" + t.id : t.tagName.toLowerCase();\n")
	out.WriteString("  }\n\n")

	out.WriteString("  function __bind_rsx_handlers() {\n")
	out.WriteString("    document.querySelectorAll(\"*\").forEach((el) => {\n")
	out.WriteString("      for (const attr of Array.from(el.attributes)) {\n")
	out.WriteString("        if (!attr.name.startsWith(\"data-rsx-on\")) continue;\n")
	out.WriteString("        el.__rsx_bound = el.__rsx_bound || {};\n")
	out.WriteString("        if (el.__rsx_bound[attr.name]) continue;\n")
	out.WriteString("        el.__rsx_bound[attr.name] = true;\n")
	out.WriteString("        const event = attr.name.slice(\"data-rsx-on\".length);\n")
	out.WriteString("        const name = attr.value;\n")
	out.WriteString("        el.addEventListener(event, (ev) => {\n")
	out.WriteString("          const handler = __rsx_handlers[name];\n")
	out.WriteString("          if (handler) handler(__event_arg(ev));\n")
	out.WriteString("        });\n")
	out.WriteString("      }\n")
	out.WriteString("    });\n")
	out.WriteString("  }\n\n")
}

func writeLoader(out *strings.Builder, wasmURL string, ids []componentID, componentFns []scanner.Function) {
	fmt.Fprintf(out, "  fetch(%q)\n", wasmURL)
	out.WriteString("    .then((res) => res.arrayBuffer())\n")
	out.WriteString("    .then((bytes) => WebAssembly.instantiate(bytes, __imports))\n")
	out.WriteString("    .then((result) => {\n")
	out.WriteString("      __wasm = result.instance;\n")
	for _, c := range ids {
		fmt.Fprintf(out, "      __wasm.exports.__rsx_component_%s();\n", c.name)
	}
	if len(componentFns) > 0 {
		out.WriteString("      __wasm.exports.__rsx_dealloc();\n")
	}
	out.WriteString("      __bind_rsx_handlers();\n")
	out.WriteString("    })\n")
	out.WriteString("    .catch((err) => console.error(\"wasm load failed:\", err));\n")
}
