package starbind_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.starlark.net/starlark"

	"github.com/podhmo/scriptreflect"
	"github.com/podhmo/scriptreflect/classdef"
	"github.com/podhmo/scriptreflect/reflecttest"
	"github.com/podhmo/scriptreflect/starbind"
)

const actorTOML = `
[[classes]]
name = "Actor"

  [[classes.members]]
  name = "health"
  type = "int"

  [[classes.members]]
  kind = "method"
  name = "Tick"

  [[classes.members]]
  name = "target"
  type = "Actor*"

[[classes]]
name = "Monster"
parent = "Actor"
abstract = true

  [[classes.members]]
  name = "prey"
  type = "Monster"
  access = "private"
`

func loadActor(t *testing.T) *classdef.Registry {
	t.Helper()
	return reflecttest.Load(t, map[string]string{"actor.toml": actorTOML})
}

func TestScript_ActorScenario(t *testing.T) {
	reg := loadActor(t)
	res, err := reflecttest.Run(t, reg, `
info = reflection.GetClassInfo(Actor)
fields = []
result = info.GetFields(fields)
names = [f.GetName() for f in fields]
target_type = fields[1].GetFieldType().GetName()
`)
	if err != nil {
		t.Fatalf("script failed: %+v", err)
	}

	if got := res.Globals["result"]; got != starlark.None {
		t.Errorf("GetFields(fields) should return None, got %v", got)
	}
	names := res.Globals["names"].(*starlark.List)
	var got []string
	for i := 0; i < names.Len(); i++ {
		got = append(got, string(names.Index(i).(starlark.String)))
	}
	if diff := cmp.Diff([]string{"health", "target"}, got); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}
	if got := res.Globals["target_type"]; got != starlark.String("Actor") {
		t.Errorf("target type: want Actor, got %v", got)
	}

	info, ok := res.Globals["info"].(*starbind.ClassInfo)
	if !ok {
		t.Fatalf("info is %T, want *starbind.ClassInfo", res.Globals["info"])
	}
	actor, _ := reg.Lookup("Actor")
	if info.Descriptor().Class() != actor {
		t.Errorf("ClassInfo should wrap the registered Actor class")
	}
	target, ok := res.Globals["fields"].(*starlark.List).Index(1).(*starbind.FieldInfo)
	if !ok {
		t.Fatalf("fields[1] is not a *starbind.FieldInfo")
	}
	if got := target.Descriptor().Field().Type.TypeName(); got != "Actor" {
		t.Errorf("target field type: want Actor, got %q", got)
	}
}

func TestScript_UnhandledFieldTypePanics(t *testing.T) {
	reg := loadActor(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	b := starbind.New(scriptreflect.New(reg, scriptreflect.WithLogger(logger)))

	script := `
fields = []
reflection.GetClassInfo(Actor).GetFields(fields)
fields[0].GetFieldType()
`
	reflecttest.AssertPanics(t, scriptreflect.ErrUnhandledType, func() {
		b.Exec(context.Background(), starbind.Options{Filename: "health.star", Source: []byte(script)})
	})
	if !strings.Contains(logs.String(), "field type resolution failed") || !strings.Contains(logs.String(), "field=health") {
		t.Errorf("expected an error log for the health field, got:\n%s", logs.String())
	}
}

func TestScript_GetClassInfo(t *testing.T) {
	reg := loadActor(t)

	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "default", script: `v = reflection.GetClassInfo().GetName()`, want: "Object"},
		{name: "none", script: `v = reflection.GetClassInfo(None).GetName()`, want: "Object"},
		{name: "class reference", script: `v = reflection.GetClassInfo(Monster).GetName()`, want: "Monster"},
		{name: "keyword", script: `v = reflection.GetClassInfo(type=Actor).GetName()`, want: "Actor"},
		{name: "class name", script: `v = reflection.GetClassInfo("Monster").GetName()`, want: "Monster"},
		{name: "root reference", script: `v = reflection.GetClassInfo(Object).GetName()`, want: "Object"},
		{name: "field type is a class", script: `
fs = reflection.GetClassInfo(Monster).GetFields()
v = fs[0].GetFieldType().GetName()
`, want: "Monster"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := reflecttest.Run(t, reg, tt.script)
			if err != nil {
				t.Fatalf("script failed: %+v", err)
			}
			if got := res.Globals["v"]; got != starlark.String(tt.want) {
				t.Errorf("want %q, got %v", tt.want, got)
			}
		})
	}
}

func TestScript_Errors(t *testing.T) {
	reg := loadActor(t)

	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "unknown class name", script: `reflection.GetClassInfo("Nope")`, want: `unknown class: "Nope"`},
		{name: "wrong argument type", script: `reflection.GetClassInfo(1)`, want: "got int, want class"},
		{name: "fields not a list", script: `reflection.GetClassInfo(Actor).GetFields({})`, want: "got dict, want list"},
		{name: "tuple instead of list", script: `
def f(xs):
    reflection.GetClassInfo(Actor).GetFields(xs)
f(())
`, want: "got tuple, want list"},
		{name: "extra args", script: `reflection.GetClassInfo(Actor).GetName(1)`, want: "GetName: got 1"},
		{name: "unknown attribute", script: `reflection.GetClassInfo(Actor).fields`, want: "has no .fields field or method"},
		{name: "unhashable", script: `{reflection.GetClassInfo(Actor): 1}`, want: "unhashable type: ClassInfo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reflecttest.Run(t, reg, tt.script)
			if err == nil {
				t.Fatalf("expected an error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestScript_FreshValuesPerCall(t *testing.T) {
	reg := loadActor(t)
	res, err := reflecttest.Run(t, reg, `
a = reflection.GetClassInfo(Actor)
b = reflection.GetClassInfo(Actor)
same_info = a == b
same_name = a.GetName() == b.GetName()
first = a.GetFields()
second = a.GetFields()
same_field = first[0] == second[0]
count = len(first) + len(second)
`)
	if err != nil {
		t.Fatalf("script failed: %+v", err)
	}
	want := map[string]starlark.Value{
		"same_info":  starlark.False,
		"same_name":  starlark.True,
		"same_field": starlark.False,
		"count":      starlark.MakeInt(4),
	}
	for name, w := range want {
		eq, err := starlark.Equal(res.Globals[name], w)
		if err != nil || !eq {
			t.Errorf("%s: want %v, got %v", name, w, res.Globals[name])
		}
	}
}

func TestScript_AppendsToExistingList(t *testing.T) {
	reg := loadActor(t)
	res, err := reflecttest.Run(t, reg, `
fields = ["marker"]
reflection.GetClassInfo(Actor).GetFields(fields)
reflection.GetClassInfo(Monster).GetFields(fields)
n = len(fields)
print(fields[0], fields[1].GetName(), fields[3].GetName())
`)
	if err != nil {
		t.Fatalf("script failed: %+v", err)
	}
	if got := res.Globals["n"]; got.String() != "4" {
		t.Errorf("want 4 entries, got %v", got)
	}
	if diff := cmp.Diff("marker health prey\n", res.Stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestScript_Flags(t *testing.T) {
	reg := loadActor(t)
	res, err := reflecttest.Run(t, reg, `
monster = reflection.GetClassInfo(Monster)
class_flags = monster.GetFlags()
field_flags = monster.GetFields()[0].GetFlags()
`)
	if err != nil {
		t.Fatalf("script failed: %+v", err)
	}
	tests := []struct {
		global string
		want   scriptreflect.TypeFlags
	}{
		{"class_flags", scriptreflect.FlagClass | scriptreflect.FlagPublic | scriptreflect.FlagAbstract},
		{"field_flags", scriptreflect.FlagField | scriptreflect.FlagPrivate},
	}
	for _, tt := range tests {
		v, ok := res.Globals[tt.global].(starlark.Int).Uint64()
		if !ok || scriptreflect.TypeFlags(v) != tt.want {
			t.Errorf("%s: want %s, got %v", tt.global, tt.want, res.Globals[tt.global])
		}
	}
}

func TestExec_Cancelled(t *testing.T) {
	reg := loadActor(t)
	b := starbind.New(scriptreflect.New(reg))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Exec(ctx, starbind.Options{Filename: "loop.star", Source: []byte(`
def spin():
    for i in range(1000000000):
        reflection.GetClassInfo(Actor)
spin()
`)})
	if err == nil || !strings.Contains(err.Error(), "context canceled") {
		t.Errorf("expected cancellation, got %v", err)
	}
	var evalErr *starlark.EvalError
	if !errors.As(err, &evalErr) {
		t.Errorf("expected a wrapped *starlark.EvalError, got %T", err)
	}
}

func TestPredeclared(t *testing.T) {
	reg := loadActor(t)
	d := starbind.New(scriptreflect.New(reg)).Predeclared()

	var names []string
	for name := range d {
		names = append(names, name)
	}
	want := []string{"Actor", "Monster", "Object", "reflection"}
	slices.Sort(names)
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("predeclared mismatch (-want +got):\n%s", diff)
	}
	if got := d["Actor"].String(); got != "<class Actor>" {
		t.Errorf("class reference String: got %q", got)
	}
}

func TestScript_FrozenList(t *testing.T) {
	reg := loadActor(t)
	frozen := starlark.NewList(nil)
	frozen.Freeze()

	_, err := starbind.New(scriptreflect.New(reg)).Exec(context.Background(), starbind.Options{
		Filename: "frozen.star",
		Source:   []byte(`reflection.GetClassInfo(Actor).GetFields(frozen)`),
		Globals:  starlark.StringDict{"frozen": frozen},
	})
	if err == nil || !strings.Contains(err.Error(), "cannot append to frozen list") {
		t.Errorf("unexpected error: %v", err)
	}
	if frozen.Len() != 0 {
		t.Errorf("frozen list was modified: %v", frozen)
	}
}
