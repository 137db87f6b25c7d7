package reflecttest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/podhmo/scriptreflect"
)

// AssertPanics fails the test unless fn panics. It returns the panic value.
// If target is non-nil, the panic value must be an error matching it.
func AssertPanics(t *testing.T, target error, fn func()) (recovered any) {
	t.Helper()
	func() {
		defer func() {
			recovered = recover()
		}()
		fn()
	}()

	if recovered == nil {
		t.Fatalf("expected a panic, but the call returned normally")
	}
	if target != nil {
		err, ok := recovered.(error)
		if !ok {
			t.Fatalf("expected panic with error matching %v, got %T (%v)", target, recovered, recovered)
		}
		if !errors.Is(err, target) {
			t.Fatalf("expected panic matching %v, got %v", target, err)
		}
	}
	return recovered
}

// Names returns the GetName of each descriptor.
func Names(descs []scriptreflect.TypeDescriptor) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.GetName()
	}
	return names
}

// AssertNames fails the test if descs are not named want, in order.
func AssertNames(t *testing.T, descs []scriptreflect.TypeDescriptor, want ...string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, Names(descs)); diff != "" {
		t.Errorf("descriptor names mismatch (-want +got):\n%s", diff)
	}
}

// AssertClass fails the test unless d is a ClassDescriptor named name.
func AssertClass(t *testing.T, d scriptreflect.TypeDescriptor, name string) *scriptreflect.ClassDescriptor {
	t.Helper()
	cd, ok := d.(*scriptreflect.ClassDescriptor)
	if !ok {
		t.Fatalf("expected *ClassDescriptor, got %s", describe(d))
	}
	if got := cd.GetName(); got != name {
		t.Errorf("class name: want %q, got %q", name, got)
	}
	return cd
}

func describe(d scriptreflect.TypeDescriptor) string {
	if d == nil {
		return "nil"
	}
	return fmt.Sprintf("%T (%s)", d, d.GetName())
}
