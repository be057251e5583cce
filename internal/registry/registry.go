// Package registry holds the placement specifications offered by each
// ad-delivery network and the detected-format allowlist.
//
// The registry is immutable once loaded. Every accessor returns copies, so
// callers can never change the process-wide table.
package registry

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/adfit/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed specs.yaml
var embeddedSpecs []byte

// document is the on-disk registry layout
type document struct {
	Version   string                                     `yaml:"version"`
	Networks  map[string]map[string]models.PlacementSpec `yaml:"networks"`
	Allowlist map[string][]string                        `yaml:"format_allowlist"`
}

// LoadError lists every problem found while loading
type LoadError struct {
	Source string
	Errors []string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("invalid registry %s:\n  - %s", e.Source, strings.Join(e.Errors, "\n  - "))
}

// Registry is a read-only view of network placement specs
type Registry struct {
	version   string
	networks  map[string]map[string]models.PlacementSpec
	allowlist map[models.FormatTag][]string
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry embedded in the binary. It is parsed once
// per process.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := Parse(embeddedSpecs, "embedded")
		if err != nil {
			panic(err)
		}
		defaultReg = reg
	})
	return defaultReg
}

// LoadFile reads and validates a registry from a YAML file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a registry document
func Parse(data []byte, source string) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", source, err)
	}

	var errs []string
	if doc.Version == "" {
		errs = append(errs, "missing required field: 'version'")
	}
	if len(doc.Networks) == 0 {
		errs = append(errs, "no networks declared")
	}

	for network, placements := range doc.Networks {
		if len(placements) == 0 {
			errs = append(errs, fmt.Sprintf("network '%s' declares no placements", network))
		}
		for key, spec := range placements {
			for _, e := range spec.Check() {
				errs = append(errs, fmt.Sprintf("%s/%s: %s", network, key, e))
			}
		}
	}

	allowlist := make(map[models.FormatTag][]string, len(doc.Allowlist))
	for rawTag, networks := range doc.Allowlist {
		tag, err := models.ParseFormatTag(rawTag)
		if err != nil || (tag == models.FormatNone && rawTag != string(models.FormatStandard)) {
			errs = append(errs, fmt.Sprintf("format_allowlist: unknown tag '%s'", rawTag))
			continue
		}
		if tag == models.FormatNone {
			tag = models.FormatStandard
		}
		for _, n := range networks {
			if _, ok := doc.Networks[n]; !ok {
				errs = append(errs, fmt.Sprintf("format_allowlist.%s: unknown network '%s'", rawTag, n))
			}
		}
		sorted := slices.Clone(networks)
		sort.Strings(sorted)
		allowlist[tag] = sorted
	}

	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, &LoadError{Source: source, Errors: errs}
	}

	return &Registry{
		version:   doc.Version,
		networks:  doc.Networks,
		allowlist: allowlist,
	}, nil
}

// Version returns the registry document version
func (r *Registry) Version() string {
	return r.version
}

// Networks returns all network identifiers in sorted order
func (r *Registry) Networks() []string {
	names := make([]string, 0, len(r.networks))
	for name := range r.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasNetwork reports whether the network is declared
func (r *Registry) HasNetwork(network string) bool {
	_, ok := r.networks[network]
	return ok
}

// PlacementKeys returns the placement keys of a network in sorted order
func (r *Registry) PlacementKeys(network string) []string {
	placements := r.networks[network]
	keys := make([]string, 0, len(placements))
	for key := range placements {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Placement returns a copy of one placement spec
func (r *Registry) Placement(network, key string) (models.PlacementSpec, bool) {
	spec, ok := r.networks[network][key]
	if !ok {
		return models.PlacementSpec{}, false
	}
	return cloneSpec(spec), true
}

// FindPlacement returns the first network (in sorted order) that carries
// the placement key, along with its spec.
func (r *Registry) FindPlacement(key string) (string, models.PlacementSpec, bool) {
	for _, network := range r.Networks() {
		if spec, ok := r.Placement(network, key); ok {
			return network, spec, true
		}
	}
	return "", models.PlacementSpec{}, false
}

// AllowedNetworks returns the networks permitted to carry a detected
// format. Tags without an allowlist entry may go to every network.
func (r *Registry) AllowedNetworks(tag models.FormatTag) []string {
	if tag == models.FormatNone {
		tag = models.FormatStandard
	}
	if networks, ok := r.allowlist[tag]; ok {
		return slices.Clone(networks)
	}
	return r.Networks()
}

// HasAllowlistEntry reports whether the tag is restricted by the allowlist
func (r *Registry) HasAllowlistEntry(tag models.FormatTag) bool {
	if tag == models.FormatNone {
		tag = models.FormatStandard
	}
	_, ok := r.allowlist[tag]
	return ok
}

func cloneSpec(spec models.PlacementSpec) models.PlacementSpec {
	out := spec
	out.Dimensions = slices.Clone(spec.Dimensions)
	out.AllowedFormats = slices.Clone(spec.AllowedFormats)
	out.Tiers = slices.Clone(spec.Tiers)
	if spec.MultiFile != nil {
		mf := *spec.MultiFile
		mf.Roles = slices.Clone(spec.MultiFile.Roles)
		out.MultiFile = &mf
	}
	return out
}
