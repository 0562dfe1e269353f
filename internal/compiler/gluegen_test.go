package compiler

import (
	"strings"
	"testing"

	"rsxc/internal/scanner"
)

func glueFromSource(t *testing.T, source string) string {
	t.Helper()
	clients, components := splitByKind(scanner.Scan(source))
	return GenerateGlueScript(clients, components, source, "/wasm/test_client.wasm", nil)
}

func TestGlueStringParamFlattening(t *testing.T) {
	source := `pub fn on_click(target: &str) -> Client {
    dom::log(target);
}
`
	glue := glueFromSource(t, source)

	if !strings.Contains(glue, "__rsx_handlers[\"on_click\"] = function (target) {") {
		t.Error("handler wrapper missing or wrong parameter list")
	}
	if !strings.Contains(glue, "const [target_ptr, target_len] = __write_str(target);") {
		t.Error("string param not copied into wasm memory")
	}
	if !strings.Contains(glue, "__wasm.exports.on_click(target_ptr, target_len);") {
		t.Error("export call not flattened")
	}
}

func TestGlueMixedParams(t *testing.T) {
	source := `pub fn update(id: i32, text: &str) -> Client {
    dom::log(text);
}
`
	glue := glueFromSource(t, source)

	if !strings.Contains(glue, "__rsx_handlers[\"update\"] = function (id, text) {") {
		t.Error("handler wrapper missing mixed parameter list")
	}
	if !strings.Contains(glue, "__wasm.exports.update(id, text_ptr, text_len);") {
		t.Error("direct param not passed through")
	}
}

func TestGlueBoolParamConversion(t *testing.T) {
	source := `pub fn toggle(checked: bool) -> Client {
    dom::log("x");
}
`
	glue := glueFromSource(t, source)
	if !strings.Contains(glue, "__wasm.exports.toggle((checked ? 1 : 0));") {
		t.Error("bool param not converted to i32")
	}
}

func TestGlueOnlyNeededShims(t *testing.T) {
	source := `pub fn on_click() -> Client {
    let el = dom::query("#a");
    el.set_text("x");
}
`
	glue := glueFromSource(t, source)

	if !strings.Contains(glue, "__rsx_dom_query(sel_ptr, sel_len)") {
		t.Error("query shim missing")
	}
	if !strings.Contains(glue, "__rsx_dom_set_text(handle, text_ptr, text_len)") {
		t.Error("set_text shim missing")
	}
	if strings.Contains(glue, "__rsx_dom_add_class(") {
		t.Error("unused add_class shim emitted")
	}
	if strings.Contains(glue, "__rsx_state_init_i32(") {
		t.Error("unused state shim emitted")
	}
	if strings.Contains(glue, "const __components") {
		t.Error("component runtime emitted without components")
	}
}

func TestGlueBinder(t *testing.T) {
	source := `pub fn on_click() -> Client {
    dom::log("x");
}
`
	glue := glueFromSource(t, source)

	for _, want := range []string{
		"function __bind_rsx_handlers() {",
		"attr.name.startsWith(\"data-rsx-on\")",
		"el.addEventListener(event",
		"__bind_rsx_handlers();",
	} {
		if !strings.Contains(glue, want) {
			t.Errorf("glue missing %q", want)
		}
	}
}

func TestGlueLoader(t *testing.T) {
	source := `pub fn on_click() -> Client {
    dom::log("x");
}
`
	glue := glueFromSource(t, source)

	for _, want := range []string{
		"fetch(\"/wasm/test_client.wasm\")",
		".then((res) => res.arrayBuffer())",
		"WebAssembly.instantiate(bytes, __imports)",
		"__wasm = result.instance;",
	} {
		if !strings.Contains(glue, want) {
			t.Errorf("glue missing %q", want)
		}
	}
}

func TestGlueComponentRuntime(t *testing.T) {
	source := `pub fn counter() -> Component {
    let count = use_state(0_i32);
    let el = dom::query("#count");
    el.set_text(state::fmt_i32(count));
}
`
	glue := glueFromSource(t, source)

	for _, want := range []string{
		"const __components = new Map();",
		"function __register_component(id, name, export_name) {",
		"function __schedule_rerender(comp_id) {",
		"__register_component(0, \"counter\", \"__rsx_component_counter\");",
		"__wasm.exports.__rsx_component_counter();",
		"__rsx_component_begin(id)",
		"__rsx_component_end()",
	} {
		if !strings.Contains(glue, want) {
			t.Errorf("glue missing %q", want)
		}
	}
}

func TestGlueStateRerenderOnSet(t *testing.T) {
	source := `pub fn counter() -> Component {
    let count = use_state(0_i32);
    let el = dom::query("#count");
    el.set_text(state::fmt_i32(count));
}

pub fn bump() -> Client {
    let count = state::get_i32("counter", 0);
    state::set_i32("counter", 0, count + 1);
}
`
	glue := glueFromSource(t, source)

	if !strings.Contains(glue, "__rsx_xstate_set_i32(comp_id, slot, value)") {
		t.Error("xstate set shim missing")
	}
	if !strings.Contains(glue, "__schedule_rerender(comp_id);") {
		t.Error("state write does not schedule a rerender")
	}
}

func TestGlueRefOnlyComponentDefinesSlotKey(t *testing.T) {
	source := `pub fn ticker() -> Component {
    let r = use_ref(0_i32);
    let el = dom::query("#tick");
    ref::set_i32(0, 5);
    el.set_text("tick");
}
`
	glue := glueFromSource(t, source)

	if !strings.Contains(glue, "__rsx_ref_init_i32(slot, initial)") {
		t.Fatal("ref init shim missing")
	}
	if strings.Contains(glue, "__slot_key(") && !strings.Contains(glue, "function __slot_key(comp_id, slot) {") {
		t.Error("ref shims call __slot_key without a definition")
	}
	if !strings.Contains(glue, "let __current_component = 0;") {
		t.Error("ref shims read __current_component without a definition")
	}
	if strings.Contains(glue, "const __state = new Map();") {
		t.Error("state table emitted for a stateless component")
	}
}

func TestGlueEffectMemoOnlyComponentDefinesSlotKey(t *testing.T) {
	source := `pub fn summary() -> Component {
    let total = use_memo_i32(2 + 3, &[2, 3]);
    use_effect(&[total]);
    let el = dom::query("#total");
    el.set_text("done");
}
`
	glue := glueFromSource(t, source)

	if !strings.Contains(glue, "__rsx_memo_begin(slot, dep_count)") {
		t.Fatal("memo shim missing")
	}
	if !strings.Contains(glue, "__rsx_effect_register(slot, dep_count)") {
		t.Fatal("effect shim missing")
	}
	if strings.Contains(glue, "__slot_key(") && !strings.Contains(glue, "function __slot_key(comp_id, slot) {") {
		t.Error("effect/memo shims call __slot_key without a definition")
	}
}

func TestGlueUserExternStub(t *testing.T) {
	source := `pub fn play() -> Client {
    extern "C" {
        fn beep(freq: i32) -> i32;
    }
    dom::log("beep");
}
`
	glue := glueFromSource(t, source)
	if !strings.Contains(glue, "beep() {") {
		t.Error("user extern stub missing")
	}
	if !strings.Contains(glue, "unimplemented import: beep") {
		t.Error("user extern stub missing warning")
	}
}

func TestGlueEventArgDerivation(t *testing.T) {
	source := `pub fn on_input(value: &str) -> Client {
    dom::log(value);
}
`
	glue := glueFromSource(t, source)
	if !strings.Contains(glue, "function __event_arg(ev) {") {
		t.Error("event arg helper missing")
	}
	if !strings.Contains(glue, "return t.checked;") {
		t.Error("checkbox handling missing")
	}
	if !strings.Contains(glue, "return t.value;") {
		t.Error("input value handling missing")
	}
}
