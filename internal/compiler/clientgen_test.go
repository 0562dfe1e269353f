package compiler

import (
	"strings"
	"testing"

	"rsxc/internal/ast"
	"rsxc/internal/scanner"
)

func splitByKind(fns []scanner.Function) (clients, components []scanner.Function) {
	for _, f := range fns {
		switch f.Kind {
		case scanner.Client:
			clients = append(clients, f)
		case scanner.Component:
			components = append(components, f)
		}
	}
	return clients, components
}

func generateFromSource(t *testing.T, source string) string {
	t.Helper()
	clients, components := splitByKind(scanner.Scan(source))
	markup := make([][]ast.Node, len(components))
	out, _ := GenerateClientModule(clients, components, source, markup)
	return out
}

func TestGenerateSimpleClientFn(t *testing.T) {
	source := `
pub fn on_click(target: &str) -> Client {
    let el = dom::query(target);
    el.set_text("Clicked!");
}
`
	wasm := generateFromSource(t, source)

	for _, want := range []string{
		"#![no_std]",
		"fn __rsx_alloc(",
		"fn __rsx_dom_query(",
		"fn __rsx_dom_set_text(",
		`pub extern "C" fn on_click(target_ptr: i32, target_len: i32)`,
		"core::str::from_utf8_unchecked",
	} {
		if !strings.Contains(wasm, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateClientFnNoParams(t *testing.T) {
	source := `
pub fn init() -> Client {
    dom::log("initialized");
}
`
	wasm := generateFromSource(t, source)
	if !strings.Contains(wasm, `pub extern "C" fn init()`) {
		t.Errorf("missing zero-arg export, got:\n%s", wasm)
	}
	if !strings.Contains(wasm, "fn __rsx_console_log(") {
		t.Error("missing console_log import")
	}
}

func TestGenerateClientFnMixedParams(t *testing.T) {
	source := `
pub fn update(id: i32, text: &str) -> Client {
    let el = dom::query("#item");
    el.set_text(text);
}
`
	wasm := generateFromSource(t, source)
	if !strings.Contains(wasm, `pub extern "C" fn update(id: i32, text_ptr: i32, text_len: i32)`) {
		t.Errorf("flattened signature wrong, got:\n%s", wasm)
	}
}

func TestOnlyNeededImports(t *testing.T) {
	source := `
pub fn log_it() -> Client {
    dom::log("hello");
}
`
	wasm := generateFromSource(t, source)
	if !strings.Contains(wasm, "fn __rsx_console_log(") {
		t.Error("missing console_log import")
	}
	if !strings.Contains(wasm, "fn __rsx_console_log_i32(") {
		t.Error("missing console_log_i32 import")
	}
	if strings.Contains(wasm, "fn __rsx_dom_query(") {
		t.Error("dom_query imported without use")
	}
	if strings.Contains(wasm, "fn __rsx_dom_set_text(") {
		t.Error("dom_set_text imported without use")
	}
}

func TestUserExternHoisting(t *testing.T) {
	source := `
pub fn custom(msg: &str) -> Client {
    extern "C" {
        fn alert(s_ptr: i32, s_len: i32);
    }
    unsafe { alert(msg.as_ptr() as i32, msg.len() as i32); }
}
`
	wasm := generateFromSource(t, source)
	if !strings.Contains(wasm, "fn alert(s_ptr: i32, s_len: i32);") {
		t.Errorf("user extern not hoisted, got:\n%s", wasm)
	}
}

func TestTransformDomQueryLiteral(t *testing.T) {
	got, ok := transformDomQuery(`let el = dom::query("#btn");`)
	if !ok {
		t.Fatal("no transform")
	}
	if !strings.Contains(got, "__rsx_dom_query(") || !strings.Contains(got, `"#btn"`) {
		t.Errorf("got %q", got)
	}
}

func TestTransformDomQueryVariable(t *testing.T) {
	got, ok := transformDomQuery("let el = dom::query(sel);")
	if !ok {
		t.Fatal("no transform")
	}
	if !strings.Contains(got, "sel.as_ptr() as i32") || !strings.Contains(got, "sel.len() as i32") {
		t.Errorf("got %q", got)
	}
}

func TestTransformSetText(t *testing.T) {
	counter := 0
	got, ok := transformMethodCall(`el.set_text("hello");`, ".set_text(", "__rsx_dom_set_text", &counter)
	if !ok {
		t.Fatal("no transform")
	}
	if !strings.Contains(got, "__rsx_dom_set_text(el") {
		t.Errorf("got %q", got)
	}
}

func TestTransformGetValue(t *testing.T) {
	got, ok := transformGetValue("let term = input.get_value();")
	if !ok {
		t.Fatal("no transform")
	}
	for _, want := range []string{
		"__rsx_dom_get_value(input)",
		"__rsx_dom_get_value_len(input)",
		"let term = core::str::from_utf8_unchecked",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestTransformGetAttr(t *testing.T) {
	counter := 0
	got, ok := transformGetAttr(`let href = link.get_attr("href");`, &counter)
	if !ok {
		t.Fatal("no transform")
	}
	for _, want := range []string{
		"__rsx_dom_get_attr(link",
		"__rsx_dom_get_attr_len(link",
		"let href = core::str::from_utf8_unchecked",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestTransformUseStateI32(t *testing.T) {
	slot := 0
	got, ok := transformUseState("let count = use_state(0_i32);", &slot)
	if !ok {
		t.Fatal("no transform")
	}
	if got != "let count = __rsx_state_init_i32(0, 0);" {
		t.Errorf("got %q", got)
	}
	if slot != 1 {
		t.Errorf("slot = %d, want 1", slot)
	}
}

func TestTransformUseStateF32(t *testing.T) {
	slot := 0
	got, ok := transformUseState("let temp = use_state(0.0_f32);", &slot)
	if !ok {
		t.Fatal("no transform")
	}
	if got != "let temp = __rsx_state_init_f32(0, 0.0);" {
		t.Errorf("got %q", got)
	}
}

func TestTransformUseStateBool(t *testing.T) {
	slot := 2
	got, ok := transformUseState("let active = use_state(false);", &slot)
	if !ok {
		t.Fatal("no transform")
	}
	if got != "let active = __rsx_state_init_i32(2, 0);" {
		t.Errorf("got %q", got)
	}
	if slot != 3 {
		t.Errorf("slot = %d, want 3", slot)
	}
}

func TestTransformUseStateIncrementsSlots(t *testing.T) {
	slot := 0
	transformUseState("let a = use_state(0_i32);", &slot)
	if slot != 1 {
		t.Fatalf("slot = %d, want 1", slot)
	}
	transformUseState("let b = use_state(false);", &slot)
	if slot != 2 {
		t.Fatalf("slot = %d, want 2", slot)
	}
}

func TestTransformStateGet(t *testing.T) {
	g := &clientGen{componentIDs: []componentID{{"counter", 0}, {"timer", 1}}}
	got, ok := g.transformStateGet(`let count = state::get_i32("counter", 0);`)
	if !ok {
		t.Fatal("no transform")
	}
	if got != "let count = __rsx_xstate_get_i32(0, 0);" {
		t.Errorf("got %q", got)
	}
}

func TestTransformStateSet(t *testing.T) {
	g := &clientGen{componentIDs: []componentID{{"counter", 0}}}
	got, ok := g.transformStateSet(`state::set_i32("counter", 0, count + 1);`)
	if !ok {
		t.Fatal("no transform")
	}
	if got != "__rsx_xstate_set_i32(0, 0, count + 1);" {
		t.Errorf("got %q", got)
	}
}

func TestUnknownComponentNameWarns(t *testing.T) {
	g := &clientGen{componentIDs: []componentID{{"counter", 0}}}
	if _, ok := g.transformStateGet(`let v = state::get_i32("missing", 0);`); !ok {
		t.Fatal("no transform")
	}
	if len(g.warnings) != 1 {
		t.Fatalf("warnings = %v, want one", g.warnings)
	}
	if !strings.Contains(g.warnings[0], "missing") {
		t.Errorf("warning does not name the component: %q", g.warnings[0])
	}
}

func TestGenerateComponentFn(t *testing.T) {
	source := `
pub fn counter() -> Component {
    let count = use_state(0_i32);
    let el = dom::query("#count");
    el.set_text(state::fmt_i32(count));
}
`
	wasm := generateFromSource(t, source)

	for _, want := range []string{
		"fn __rsx_component_begin(id: i32);",
		"fn __rsx_component_end();",
		"fn __rsx_state_init_i32(slot: i32, initial: i32) -> i32;",
		"fn __rsx_state_fmt_i32(value: i32, buf_ptr: i32, buf_len: i32) -> i32;",
		`pub extern "C" fn __rsx_component_counter()`,
		"__rsx_component_begin(0)",
		"__rsx_component_end()",
		"__rsx_state_init_i32(0, 0)",
	} {
		if !strings.Contains(wasm, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestCrossFunctionStateAccess(t *testing.T) {
	source := `
pub fn counter() -> Component {
    let count = use_state(0_i32);
    let el = dom::query("#count");
    el.set_text(state::fmt_i32(count));
}

pub fn on_increment() -> Client {
    let count = state::get_i32("counter", 0);
    state::set_i32("counter", 0, count + 1);
}
`
	wasm := generateFromSource(t, source)

	for _, want := range []string{
		"fn __rsx_xstate_get_i32(",
		"fn __rsx_xstate_set_i32(",
		"__rsx_xstate_get_i32(0, 0)",
		"__rsx_xstate_set_i32(0, 0, count + 1)",
	} {
		if !strings.Contains(wasm, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTransformClientBodyIfElse(t *testing.T) {
	body := `
            let status = dom::query("#conn-status");
            if visible == 1 {
                status.set_text("visible");
            } else {
                status.set_text("hidden");
            }
        `
	g := &clientGen{}
	got := g.transformClientBody(body)
	if !strings.Contains(got, "} else {") {
		t.Errorf("else branch lost:\n%s", got)
	}
	if !strings.Contains(got, "if visible == 1 {") {
		t.Errorf("condition lost:\n%s", got)
	}
}

func TestTransformComponentBodyIfElse(t *testing.T) {
	body := `
            let visible = use_state(0_i32);
            let overlay = dom::query("#dialog");
            if visible == 1 {
                overlay.add_class("visible");
            } else {
                overlay.remove_class("visible");
            }
        `
	g := &clientGen{}
	got := g.transformComponentBody(body, 0)
	if !strings.Contains(got, "} else {") {
		t.Errorf("else branch lost:\n%s", got)
	}
	if !strings.Contains(got, "__rsx_state_init_i32(0, 0)") {
		t.Errorf("use_state not lowered:\n%s", got)
	}
}

func TestTransformClientBodyExternStripped(t *testing.T) {
	body := `
            extern "C" {
                fn custom_fn(x: i32);
            }
            let el = dom::query("#btn");
            el.set_text("hi");
        `
	g := &clientGen{}
	got := g.transformClientBody(body)
	if strings.Contains(got, "custom_fn") || strings.Contains(got, "extern") {
		t.Errorf("extern block leaked:\n%s", got)
	}
	if !strings.Contains(got, "__rsx_dom_query(") || !strings.Contains(got, "__rsx_dom_set_text(") {
		t.Errorf("transforms skipped:\n%s", got)
	}
}

func TestTransformUseStateTupleDecl(t *testing.T) {
	slot := 0
	got, ok := transformUseStateTuple("let (count, set_count) = use_state(0_i32);", &slot, 3)
	if !ok {
		t.Fatal("no transform")
	}
	for _, want := range []string{
		"let count = __rsx_state_init_i32(0, 0);",
		"let set_count = |value: i32| {",
		"__rsx_xstate_set_i32(3, 0, value);",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestStateHelperGeneration(t *testing.T) {
	source := `
pub fn counter() -> Component {
    let (count, set_count) = use_state(0_i32);
    let el = dom::query("#count");
    el.set_text(state::fmt_i32(count));
}

pub fn reset() -> Client {
    set_count(0);
    dom::log(get_count());
}
`
	wasm := generateFromSource(t, source)

	for _, want := range []string{
		"fn get_count() -> i32 {",
		"unsafe { __rsx_xstate_get_i32(0, 0) }",
		"fn set_count(value: i32) {",
		"unsafe { __rsx_xstate_set_i32(0, 0, value); }",
		"__rsx_log_i32(get_count());",
	} {
		if !strings.Contains(wasm, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestTransformUseEffect(t *testing.T) {
	slot := 0
	got, ok := transformUseEffect("use_effect(&[count, total]);", &slot)
	if !ok {
		t.Fatal("no transform")
	}
	for _, want := range []string{
		"__rsx_effect_register(0, 2);",
		"__rsx_effect_set_dep(0, 0, count);",
		"__rsx_effect_set_dep(0, 1, total);",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestTransformUseMemo(t *testing.T) {
	slot := 0
	got, ok := transformUseMemo("let sum = use_memo_i32(a + b, &[a, b]);", &slot)
	if !ok {
		t.Fatal("no transform")
	}
	for _, want := range []string{
		"__rsx_memo_begin(0, 2);",
		"__rsx_memo_set_dep(0, 0, a);",
		"__rsx_memo_set_dep(0, 1, b);",
		"let sum = if __rsx_memo_changed(0) == 1 {",
		"let __mv = a + b;",
		"__rsx_memo_store_i32(0, __mv);",
		"__rsx_memo_load_i32(0)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestTransformUseRefAndRefOps(t *testing.T) {
	slot := 0
	got, ok := transformUseRef("let prev = use_ref(0_i32);", &slot)
	if !ok {
		t.Fatal("no transform")
	}
	if got != "let prev = __rsx_ref_init_i32(0, 0);" {
		t.Errorf("got %q", got)
	}

	got, ok = transformRefGet("let v = ref::get_i32(0);")
	if !ok {
		t.Fatal("no ref get transform")
	}
	if got != "let v = __rsx_ref_get_i32(0);" {
		t.Errorf("got %q", got)
	}

	got, ok = transformRefSet("ref::set_i32(0, v + 1);")
	if !ok {
		t.Fatal("no ref set transform")
	}
	if got != "__rsx_ref_set_i32(0, v + 1);" {
		t.Errorf("got %q", got)
	}
}

func TestTransformUseRefEl(t *testing.T) {
	slot := 0
	got, ok := transformUseRefEl(`let box_el = use_ref_el("#box");`, &slot)
	if !ok {
		t.Fatal("no transform")
	}
	if !strings.Contains(got, `let __rsel = "#box";`) {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "__rsx_ref_init_el(0, __rsel.as_ptr() as i32, __rsel.len() as i32);") {
		t.Errorf("got %q", got)
	}
}

func TestTransformUseStateStr(t *testing.T) {
	slot := 0
	got, ok := transformUseStateStr(`let name = use_state("ada");`, &slot)
	if !ok {
		t.Fatal("no transform")
	}
	for _, want := range []string{
		`let __sinit0 = "ada";`,
		"__rsx_state_init_str(0, __sinit0.as_ptr() as i32, __sinit0.len() as i32);",
		"__rsx_state_init_str_len(0);",
		"let name = core::str::from_utf8_unchecked",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestTransformStateFmtLineSetText(t *testing.T) {
	fmtCounter := 0
	got, ok := transformStateFmtLine("el.set_text(state::fmt_i32(count));", &fmtCounter)
	if !ok {
		t.Fatal("no transform")
	}
	for _, want := range []string{
		"let __fb0 = __rsx_alloc(20);",
		"let __fl0 = __rsx_state_fmt_i32(count, __fb0, 20);",
		"__rsx_dom_set_text(el, __fb0, __fl0);",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestComponentMarkupMountAndUpdate(t *testing.T) {
	source := `
pub fn counter() -> Component {
    let (count, set_count) = use_state(0_i32);
    return (
        <div class="counter">
            <span>{state::fmt_i32(count)}</span>
            <button onclick={on_increment}>{"+"}</button>
        </div>
    );
}

pub fn on_increment() -> Client {
    set_count(get_count() + 1);
}
`
	clients, components := splitByKind(scanner.Scan(source))
	if len(components) != 1 {
		t.Fatalf("components = %d, want 1", len(components))
	}

	markup := make([][]ast.Node, len(components))
	split, ok := scanner.SplitComponentBody(source, components[0].BodySpan)
	if !ok {
		t.Fatal("component body did not split")
	}
	nodes := parseMarkup(t, strings.TrimSpace(source[split.Rsx.Start:split.Rsx.End]))
	markup[0] = nodes

	wasm, warnings := GenerateClientModule(clients, components, source, markup)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	for _, want := range []string{
		"if __rsx_component_is_mounted(0) == 0 {",
		"__rsx_component_mount_point(0);",
		`__rsx_dom_create("div".as_ptr() as i32, 3);`,
		`__rsx_dom_add_class(__rn0, "counter".as_ptr() as i32, 7);`,
		"__rsx_ref_set_i32(0,",
		"__rsx_ref_get_i32(0);",
		"__rsx_state_fmt_i32(count,",
		"data-rsx-onclick",
		"__rsx_component_end();",
	} {
		if !strings.Contains(wasm, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
