package config

import "fmt"

// Usage is an in-memory name->typed-property bag. Document.ToUsage
// populates one from a decoded TOML document so construction paths that
// expect a property bag keep working, while the typed structs in this
// package are the source of truth for anything new.
type Usage struct {
	Name        string
	StringProps map[string]string
	IntProps    map[string]int
	BoolProps   map[string]bool
	FloatProps  map[string]float32
	Linked      *Usage
}

// NewUsage builds an empty, named Usage bag with defaultSize-capacity
// property maps.
func NewUsage(name string, defaultSize uint) *Usage {
	return &Usage{
		Name:        name,
		StringProps: make(map[string]string, defaultSize),
		IntProps:    make(map[string]int, defaultSize),
		BoolProps:   make(map[string]bool, defaultSize),
		FloatProps:  make(map[string]float32, defaultSize),
	}
}

// HasNext reports whether this Usage links to another (chained usage
// trees, e.g. per-subsystem bags hanging off a root).
func (u *Usage) HasNext() bool { return u.Linked != nil }

// GetLinkedUsage returns the next Usage in the chain.
func (u *Usage) GetLinkedUsage() (*Usage, error) {
	if !u.HasNext() {
		return nil, fmt.Errorf("config: usage %q has no linked usage", u.Name)
	}
	return u.Linked, nil
}

// ToUsage flattens the document's Vulkan/Window sections into a single
// Usage bag ("app_name", "width", "height", ...), so a TOML-driven
// document can still feed a constructor that only knows how to read a
// property bag.
func (d *Document) ToUsage() *Usage {
	u := NewUsage("root", 16)
	u.StringProps["app_name"] = d.Vulkan.AppName
	u.StringProps["title"] = d.Window.Title
	u.StringProps["log_verbosity"] = d.Vulkan.LogVerbosity
	u.IntProps["width"] = d.Window.Width
	u.IntProps["height"] = d.Window.Height
	u.IntProps["version_major"] = d.Vulkan.VersionMajor
	u.IntProps["version_minor"] = d.Vulkan.VersionMinor
	u.IntProps["version_patch"] = d.Vulkan.VersionPatch
	u.BoolProps["resizable"] = d.Window.ResolveFlags()&WindowResizable != 0
	u.BoolProps["fullscreen"] = d.Window.ResolveFlags()&WindowFullscreen != 0
	return u
}
