package classdef

// File is the decoded form of one declaration file.
type File struct {
	// Version is the semantic version of the declaration schema, e.g. "v1.0.0".
	Version string      `toml:"version" yaml:"version"`
	Root    string      `toml:"root" yaml:"root"`
	Enums   []EnumDecl  `toml:"enums" yaml:"enums" validate:"dive"`
	Classes []ClassDecl `toml:"classes" yaml:"classes" validate:"dive"`
}

// EnumDecl declares a named enumeration.
type EnumDecl struct {
	Name   string   `toml:"name" yaml:"name" validate:"required"`
	Values []string `toml:"values" yaml:"values" validate:"dive,required"`
}

// ClassDecl declares a class and its members.
// An empty Parent means the root class.
type ClassDecl struct {
	Name     string       `toml:"name" yaml:"name" validate:"required"`
	Parent   string       `toml:"parent" yaml:"parent"`
	Abstract bool         `toml:"abstract" yaml:"abstract"`
	Native   bool         `toml:"native" yaml:"native"`
	Members  []MemberDecl `toml:"members" yaml:"members" validate:"dive"`
}

// Member kinds accepted in MemberDecl.Kind.
const (
	MemberField    = "field"
	MemberMethod   = "method"
	MemberConstant = "const"
)

// MemberDecl declares one entry of a class's symbol table.
// Members are registered in the order they are declared.
type MemberDecl struct {
	Kind     string `toml:"kind" yaml:"kind" validate:"omitempty,oneof=field method const"`
	Name     string `toml:"name" yaml:"name" validate:"required"`
	Type     string `toml:"type" yaml:"type"` // fields only
	Access   string `toml:"access" yaml:"access" validate:"omitempty,oneof=public private protected"`
	Native   bool   `toml:"native" yaml:"native"`
	Action   bool   `toml:"action" yaml:"action"`     // methods only
	Abstract bool   `toml:"abstract" yaml:"abstract"` // methods only
	Value    any    `toml:"value" yaml:"value"`       // constants only
}
