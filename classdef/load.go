package classdef

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	i_fs "io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/podhmo/scriptreflect/fs"
)

// SchemaVersion is the newest declaration schema this package understands.
// Files with the same major version are accepted.
const SchemaVersion = "v1.0.0"

// maxParallelLoads bounds the number of files decoded at once.
const maxParallelLoads = 8

var declExtensions = []string{".toml", ".yaml", ".yml"}

// DecodeFile decodes declarations from data. The format is chosen by the
// extension of name: .toml, .yaml or .yml.
func DecodeFile(name string, data []byte) (*File, error) {
	var f File
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		var keys []string
		for _, k := range md.Undecoded() {
			// Keys inside a table-valued constant are reported by validateFile.
			if len(k) > 3 && k[0] == "classes" && k[1] == "members" && k[2] == "value" {
				continue
			}
			keys = append(keys, k.String())
		}
		if len(keys) > 0 {
			return nil, fmt.Errorf("decoding %s: unknown keys %s", name, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("decoding %s: unsupported file extension %q", name, ext)
	}
	if err := checkVersion(f.Version); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if err := validateFile(&f); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &f, nil
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid schema version %q", v)
	}
	if semver.Major(v) != semver.Major(SchemaVersion) {
		return fmt.Errorf("unsupported schema version %s, want %s.x", v, semver.Major(SchemaVersion))
	}
	return nil
}

// LoadFile reads and decodes a single declaration file.
func LoadFile(path string) (*File, error) {
	return loadFile(fs.NewOSFS(), path)
}

func loadFile(fsys fs.FS, path string) (*File, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading declarations: %w", err)
	}
	return DecodeFile(path, data)
}

// LoadFiles reads the given files concurrently and merges them in argument order.
func LoadFiles(ctx context.Context, paths ...string) (*File, error) {
	return LoadFilesFS(ctx, fs.NewOSFS(), paths...)
}

// LoadFilesFS is LoadFiles reading from fsys.
func LoadFilesFS(ctx context.Context, fsys fs.FS, paths ...string) (*File, error) {
	files := make([]*File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := loadFile(fsys, path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Merge(files...)
}

// ExpandPaths replaces every directory in paths with the declaration files
// beneath it, in lexical order. Other paths are kept as given.
func ExpandPaths(fsys fs.FS, paths []string) ([]string, error) {
	var expanded []string
	for _, path := range paths {
		info, err := fsys.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading declarations: %w", err)
		}
		if !info.IsDir() {
			expanded = append(expanded, path)
			continue
		}
		err = fsys.WalkDir(path, func(p string, d i_fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && slices.Contains(declExtensions, strings.ToLower(filepath.Ext(p))) {
				expanded = append(expanded, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading declarations: %w", err)
		}
	}
	return expanded, nil
}

// Merge concatenates the enums and classes of files. All files that name a
// root class must agree on it.
func Merge(files ...*File) (*File, error) {
	merged := &File{}
	for _, f := range files {
		if f.Root != "" {
			if merged.Root != "" && merged.Root != f.Root {
				return nil, fmt.Errorf("conflicting root classes %q and %q", merged.Root, f.Root)
			}
			merged.Root = f.Root
		}
		if f.Version != "" && (merged.Version == "" || semver.Compare(f.Version, merged.Version) > 0) {
			merged.Version = f.Version
		}
		merged.Enums = append(merged.Enums, f.Enums...)
		merged.Classes = append(merged.Classes, f.Classes...)
	}
	return merged, nil
}

// Load reads the declaration files and builds a registry from them.
// Directories are searched for declaration files.
func Load(ctx context.Context, paths []string, options ...Option) (*Registry, error) {
	cfg := newBuildConfig(options)
	paths, err := ExpandPaths(cfg.fsys, paths)
	if err != nil {
		return nil, err
	}
	f, err := LoadFilesFS(ctx, cfg.fsys, paths...)
	if err != nil {
		return nil, err
	}
	r, err := Build(f, options...)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}
	return r, nil
}
