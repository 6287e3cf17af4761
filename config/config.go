// Package config reads tangara.toml, the project manifest that tells the
// generator where metadata lives and where generated code goes.
//
//	[package]
//	name = "MyLib"
//	metadata = "mylib.tgm"
//
//	[generate]
//	entrypoint = "plugin/tangara_entry.go"
//	package_name = "main"
//	bindings = "mylib/tangara_bindings.go"
//	bindings_package = "mylib"
//	library_import = "example.com/mylib/impl"
//	enable_internal = false
//	load_name = "Load"
//
// Paths are relative to the directory holding the manifest.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/tangara/bindgen"
	"github.com/wippyai/tangara/errors"
)

// FileName is the manifest's file name.
const FileName = "tangara.toml"

// Defaults for the [generate] table.
const (
	DefaultEntrypoint  = "tangara_entry.go"
	DefaultPackageName = "main"
)

// Manifest is a loaded tangara.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the manifest's tables.
type Config struct {
	Package  Package  `toml:"package"`
	Generate Generate `toml:"generate"`
}

// Package describes the library.
type Package struct {
	Name     string `toml:"name"`
	Metadata string `toml:"metadata"`
}

// Generate configures the generator. Empty fields take defaults.
type Generate struct {
	Entrypoint      string   `toml:"entrypoint"`
	PackageName     string   `toml:"package_name"`
	Bindings        string   `toml:"bindings"`
	BindingsPackage string   `toml:"bindings_package"`
	LibraryImport   string   `toml:"library_import"`
	EnableInternal  bool     `toml:"enable_internal"`
	LoadName        string   `toml:"load_name"`
	Imports         []string `toml:"imports"`
}

// Find walks up from startDir to the first directory holding a manifest.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "resolve start directory")
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !stderrors.Is(err, os.ErrNotExist) {
			return "", false, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "stat "+candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest governing startDir. A missing
// manifest is errors.KindNotFound.
func Discover(startDir string) (*Manifest, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Detail("no %s found in %s or its parents", FileName, startDir).
			Build()
	}
	return Load(path)
}

// Load reads the manifest at path and fills defaults.
func Load(path string) (*Manifest, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NotFound(errors.PhaseConfig, "manifest", path)
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, path+": parse TOML")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Detail("%s: unknown key %s", path, undecoded[0].String()).
			Build()
	}
	if !md.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, missing(path, "[package].name")
	}
	if !md.IsDefined("package", "metadata") || strings.TrimSpace(cfg.Package.Metadata) == "" {
		return nil, missing(path, "[package].metadata")
	}
	cfg.Generate = cfg.Generate.withDefaults(cfg.Package.Name)
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

func missing(path, key string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Detail("%s: missing %s", path, key).
		Build()
}

func (g Generate) withDefaults(pkgName string) Generate {
	if g.Entrypoint == "" {
		g.Entrypoint = DefaultEntrypoint
	}
	if g.PackageName == "" {
		g.PackageName = DefaultPackageName
	}
	if g.BindingsPackage == "" {
		g.BindingsPackage = bindgen.PackageName(pkgName)
	}
	if g.Bindings == "" {
		g.Bindings = filepath.Join(g.BindingsPackage, "tangara_bindings.go")
	}
	if g.LoadName == "" {
		g.LoadName = bindgen.DefaultLoadName
	}
	return g
}

// Resolve returns rel anchored at the manifest's directory.
func (m *Manifest) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel))
}

// MetadataPath returns the metadata file location.
func (m *Manifest) MetadataPath() string {
	return m.Resolve(m.Config.Package.Metadata)
}

// EntrypointConfig is the generator configuration for the library glue.
func (m *Manifest) EntrypointConfig() bindgen.Config {
	g := m.Config.Generate
	return bindgen.Config{
		PackageName:    g.PackageName,
		LibraryPackage: g.LibraryImport,
		EnableInternal: g.EnableInternal,
		LoadName:       g.LoadName,
		Imports:        g.Imports,
	}
}

// BindingsConfig is the generator configuration for the host bindings.
func (m *Manifest) BindingsConfig() bindgen.Config {
	cfg := m.EntrypointConfig()
	cfg.PackageName = m.Config.Generate.BindingsPackage
	return cfg
}
