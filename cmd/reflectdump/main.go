package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/podhmo/scriptreflect"
	"github.com/podhmo/scriptreflect/classdef"
	"github.com/podhmo/scriptreflect/starbind"
)

// stringSlice is a flag that can be given several times.
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ", ")
}

func (s *stringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type options struct {
	decls      []string
	classes    []string
	scriptPath string
	flatten    bool
	root       string
}

func main() {
	var opts options
	var decls, classes stringSlice
	flag.Var(&decls, "decl", "class declaration file (.toml, .yaml) or directory of them. Can be specified multiple times.")
	flag.Var(&classes, "class", "class to dump (default: all). Can be specified multiple times.")
	flag.StringVar(&opts.scriptPath, "script", "", "Starlark script to run against the classes instead of dumping them")
	flag.BoolVar(&opts.flatten, "flatten", false, "include inherited fields in each class")
	flag.StringVar(&opts.root, "root", "", "root class name when the declarations do not set one")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if len(decls) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	opts.decls = decls
	opts.classes = classes

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("Unknown log level: %s", *logLevel)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(context.Background(), os.Stdout, logger, opts); err != nil {
		log.Fatalf("!! %+v", err)
	}
}

func run(ctx context.Context, w io.Writer, logger *slog.Logger, opts options) error {
	buildOpts := []classdef.Option{classdef.WithLogger(logger)}
	if opts.flatten {
		buildOpts = append(buildOpts, classdef.WithFlattenedInheritance())
	}
	if opts.root != "" {
		buildOpts = append(buildOpts, classdef.WithRootName(opts.root))
	}
	reg, err := classdef.Load(ctx, opts.decls, buildOpts...)
	if err != nil {
		return err
	}
	logger.Info("loaded declarations", "files", len(opts.decls), "classes", reg.Len())

	r := scriptreflect.New(reg, scriptreflect.WithLogger(logger))

	if opts.scriptPath != "" {
		src, err := os.ReadFile(opts.scriptPath)
		if err != nil {
			return fmt.Errorf("reading script: %w", err)
		}
		_, err = starbind.New(r, starbind.WithStdout(w)).Exec(ctx, starbind.Options{
			Filename: opts.scriptPath,
			Source:   src,
		})
		return err
	}

	dump, err := dumpClasses(r, opts.classes)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dump)
}

type classDump struct {
	Name   string      `json:"name"`
	Parent string      `json:"parent,omitempty"`
	Flags  string      `json:"flags"`
	Fields []fieldDump `json:"fields"`
}

type fieldDump struct {
	Name  string `json:"name"`
	Flags string `json:"flags"`
	Type  string `json:"type"`
	// Class is the reflected field type, set only for fields GetFieldType can describe.
	Class string `json:"class,omitempty"`
}

func dumpClasses(r *scriptreflect.Reflector, names []string) ([]classDump, error) {
	var descs []*scriptreflect.ClassDescriptor
	if len(names) == 0 {
		for _, c := range r.Registry().Classes() {
			d, err := r.GetClassInfo(c)
			if err != nil {
				return nil, err
			}
			descs = append(descs, d)
		}
	}
	for _, name := range names {
		d, err := r.GetClassInfoByName(name)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}

	dump := make([]classDump, 0, len(descs))
	for _, d := range descs {
		cd := classDump{Name: d.GetName(), Flags: d.Flags().String(), Fields: []fieldDump{}}
		if p := d.Class().Parent; p != nil {
			cd.Parent = p.Name
		}
		for _, f := range d.GetFields(nil) {
			fd := f.(*scriptreflect.FieldDescriptor)
			entry := fieldDump{Name: fd.GetName(), Flags: fd.Flags().String(), Type: fd.Field().Type.TypeName()}
			// GetFieldType is fatal for anything but a restricted object pointer.
			if _, ok := classdef.ClassRestriction(fd.Field().Type); ok {
				entry.Class = fd.GetFieldType().GetName()
			}
			cd.Fields = append(cd.Fields, entry)
		}
		dump = append(dump, cd)
	}
	return dump, nil
}
