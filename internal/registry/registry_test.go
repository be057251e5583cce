package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/adfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistryLoads(t *testing.T) {
	reg := Default()
	require.NotNil(t, reg)

	assert.Equal(t, "2025.1", reg.Version())
	assert.Equal(t, []string{"google", "interia", "onet", "wp"}, reg.Networks())
	assert.Same(t, reg, Default(), "default registry must be parsed once")
}

func TestDefaultRegistryInvariants(t *testing.T) {
	reg := Default()
	for _, network := range reg.Networks() {
		for _, key := range reg.PlacementKeys(network) {
			spec, ok := reg.Placement(network, key)
			require.True(t, ok)
			assert.Empty(t, spec.Check(), "%s/%s", network, key)
		}
	}
}

func TestPlacementReturnsCopy(t *testing.T) {
	reg := Default()

	spec, ok := reg.Placement("onet", "spincube")
	require.True(t, ok)
	spec.Dimensions[0] = "1x1"
	spec.MultiFile.Roles[0] = "mutated"

	again, _ := reg.Placement("onet", "spincube")
	assert.Equal(t, "480x480", again.Dimensions[0])
	assert.Equal(t, "front", again.MultiFile.Roles[0])
}

func TestAllowedNetworks(t *testing.T) {
	reg := Default()

	assert.Equal(t, []string{"onet"}, reg.AllowedNetworks(models.FormatSpincube))
	assert.Equal(t, []string{"onet", "wp"}, reg.AllowedNetworks(models.FormatBranding))
	assert.Equal(t, []string{"interia", "onet", "wp"}, reg.AllowedNetworks(models.FormatNone))
	assert.True(t, reg.HasAllowlistEntry(models.FormatNone))
}

func TestAllowedNetworksDefaultsToAll(t *testing.T) {
	reg, err := Parse([]byte(`
version: "1"
networks:
  a:
    rect: {display_name: R, dimensions: ["300x250"], max_size_kb: 100, allowed_formats: [jpg]}
  b:
    rect: {display_name: R, dimensions: ["300x250"], max_size_kb: 100, allowed_formats: [jpg]}
`), "inline")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, reg.AllowedNetworks(models.FormatSpincube))
	assert.False(t, reg.HasAllowlistEntry(models.FormatSpincube))
}

func TestFindPlacement(t *testing.T) {
	reg := Default()

	network, spec, ok := reg.FindPlacement("kombi")
	require.True(t, ok)
	assert.Equal(t, "wp", network)
	assert.Equal(t, []string{"trigger", "banner"}, spec.MultiFile.Roles)

	_, _, ok = reg.FindPlacement("nope")
	assert.False(t, ok)
}

func TestParseRejectsInvalidSpecs(t *testing.T) {
	_, err := Parse([]byte(`
version: "1"
networks:
  a:
    bad:
      display_name: Bad
      dimensions: []
      max_size_kb: 0
      allowed_formats: []
      tiers: [MEDIUM]
      multi_file: {required_count: 1, roles: [x, y]}
format_allowlist:
  hologram: [a]
  spincube: [zzz]
`), "inline")
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Error(), "a/bad: dimensions must not be empty")
	assert.Contains(t, loadErr.Error(), "a/bad: allowed_formats must not be empty")
	assert.Contains(t, loadErr.Error(), "a/bad: max_size_kb must be positive, got 0")
	assert.Contains(t, loadErr.Error(), `a/bad: invalid tier "MEDIUM"`)
	assert.Contains(t, loadErr.Error(), "required_count must be at least 2")
	assert.Contains(t, loadErr.Error(), "unknown tag 'hologram'")
	assert.Contains(t, loadErr.Error(), "format_allowlist.spincube: unknown network 'zzz'")
}

func TestParseRejectsMissingVersion(t *testing.T) {
	_, err := Parse([]byte(`networks: {}`), "inline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field: 'version'")
	assert.Contains(t, err.Error(), "no networks declared")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specs.yaml")
	require.NoError(t, os.WriteFile(path, embeddedSpecs, 0644))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Networks(), reg.Networks())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
