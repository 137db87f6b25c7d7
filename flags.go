package scriptreflect

import (
	"fmt"
	"strings"
)

// TypeFlags classifies a reflected entity. The groups occupy disjoint bit
// ranges; bits above FlagAction are reserved.
type TypeFlags uint32

const (
	// Kind
	FlagClass TypeFlags = 1 << iota
	FlagStruct
	FlagMethod
	FlagField

	// Access
	FlagPublic
	FlagPrivate
	FlagProtected
	FlagNative

	// Class modifiers
	FlagAbstract

	// Method modifiers
	FlagAction
)

const (
	KindMask      = FlagClass | FlagStruct | FlagMethod | FlagField
	AccessMask    = FlagPublic | FlagPrivate | FlagProtected | FlagNative
	ClassModMask  = FlagAbstract
	MethodModMask = FlagAction
	ReservedMask  = ^(KindMask | AccessMask | ClassModMask | MethodModMask)
)

var flagNames = []struct {
	flag TypeFlags
	name string
}{
	{FlagClass, "Class"},
	{FlagStruct, "Struct"},
	{FlagMethod, "Method"},
	{FlagField, "Field"},
	{FlagPublic, "Public"},
	{FlagPrivate, "Private"},
	{FlagProtected, "Protected"},
	{FlagNative, "Native"},
	{FlagAbstract, "Abstract"},
	{FlagAction, "Action"},
}

// Has reports whether all bits of mask are set.
func (f TypeFlags) Has(mask TypeFlags) bool { return f&mask == mask }

// Kind returns only the kind bits.
func (f TypeFlags) Kind() TypeFlags { return f & KindMask }

// Access returns only the access bits.
func (f TypeFlags) Access() TypeFlags { return f & AccessMask }

func (f TypeFlags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if rest := f & ReservedMask; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}
