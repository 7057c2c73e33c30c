package export

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sym(name string, value any) Symbol {
	return Symbol{Name: name, Value: value}
}

// TestComposerLastWins tests name resolution across the manifest order
func TestComposerLastWins(t *testing.T) {
	manifest := []Entry{{Module: "st_net"}, {Module: "st_instance"}, {Module: "util"}}

	ns, err := NewComposer(manifest).
		WithModules(
			NewModule("util", sym("Net", "util.Net"), sym("Pad", "util.Pad")),
			NewModule("st_net", sym("Net", "st_net.Net"), sym("Bus", "st_net.Bus")),
			NewModule("st_instance", sym("Inst", "st_instance.Inst"), sym("Bus", "st_instance.Bus")),
		).
		Build()
	require.NoError(t, err)

	net, ok := ns.Lookup("Net")
	require.True(t, ok)
	assert.Equal(t, "util.Net", net)

	origin, ok := ns.Origin("Bus")
	require.True(t, ok)
	assert.Equal(t, "st_instance", origin)

	assert.Equal(t, []string{"Bus", "Inst", "Net", "Pad"}, ns.Names())
	assert.Equal(t, 4, ns.Len())
	assert.Equal(t, []string{"st_net", "st_instance", "util"}, ns.Order())

	want := []Shadow{
		{Name: "Bus", From: "st_net", To: "st_instance"},
		{Name: "Net", From: "st_net", To: "util"},
	}
	if diff := cmp.Diff(want, ns.Shadowed()); diff != "" {
		t.Errorf("Shadowed() mismatch (-want +got):\n%s", diff)
	}

	_, ok = ns.Lookup("Missing")
	assert.False(t, ok)
}

// TestComposerOnly tests restricted imports
func TestComposerOnly(t *testing.T) {
	realmodel := NewModule("st_getrealmodel",
		sym("GetWeightTime", 1),
		sym("GetWeightArea", 2),
		sym("GetWeightPower", 3),
		sym("GetRealModel", 4),
	)

	t.Run("SelectedNamesOnly", func(t *testing.T) {
		manifest := []Entry{{Module: "st_getrealmodel", Only: []string{"GetWeightTime", "GetWeightArea", "GetWeightPower"}}}

		ns, err := NewComposer(manifest).WithModules(realmodel).Build()
		require.NoError(t, err)

		assert.Equal(t, []string{"GetWeightArea", "GetWeightPower", "GetWeightTime"}, ns.Names())
		_, ok := ns.Lookup("GetRealModel")
		assert.False(t, ok)
	})

	t.Run("SelectedNameAbsent", func(t *testing.T) {
		manifest := []Entry{{Module: "st_getrealmodel", Only: []string{"GetWeightDelay"}}}

		_, err := NewComposer(manifest).WithModules(realmodel).Build()
		assert.ErrorIs(t, err, ErrSymbolMissing)
	})

	t.Run("OnlyDoesNotShadowUnselected", func(t *testing.T) {
		manifest := []Entry{
			{Module: "st_model", Only: nil},
			{Module: "st_getrealmodel", Only: []string{"GetWeightTime"}},
		}
		model := NewModule("st_model", sym("GetRealModel", "model"))

		ns, err := NewComposer(manifest).WithModules(model, realmodel).Build()
		require.NoError(t, err)

		v, _ := ns.Lookup("GetRealModel")
		assert.Equal(t, "model", v)
		assert.Empty(t, ns.Shadowed())
	})
}

// TestComposerErrors tests fatal composition failures
func TestComposerErrors(t *testing.T) {
	manifest := []Entry{{Module: "st_model"}, {Module: "st_net"}, {Module: "patterns"}}

	t.Run("MissingModules", func(t *testing.T) {
		c := NewComposer(manifest).WithModules(NewModule("st_net", sym("Net", 1)))
		assert.Equal(t, []string{"st_model", "patterns"}, c.Missing())

		ns, err := c.Build()
		assert.Nil(t, ns)
		require.ErrorIs(t, err, ErrModuleMissing)
		assert.Contains(t, err.Error(), "st_model")
		assert.Contains(t, err.Error(), "patterns")
	})

	t.Run("DuplicateModule", func(t *testing.T) {
		_, err := NewComposer(manifest).
			WithModules(
				NewModule("st_model"),
				NewModule("st_model"),
				NewModule("st_net"),
				NewModule("patterns"),
			).
			Build()
		assert.ErrorIs(t, err, ErrDuplicateModule)
	})

	t.Run("ManifestListsModuleTwice", func(t *testing.T) {
		twice := []Entry{{Module: "st_model"}, {Module: "st_model"}}
		_, err := NewComposer(twice).WithModules(NewModule("st_model")).Build()
		assert.ErrorIs(t, err, ErrDuplicateModule)
	})

	t.Run("DuplicateSymbol", func(t *testing.T) {
		_, err := NewComposer(manifest).
			WithModules(
				NewModule("st_model", sym("Model", 1), sym("Model", 2)),
				NewModule("st_net"),
				NewModule("patterns"),
			).
			Build()
		assert.ErrorIs(t, err, ErrDuplicateSymbol)
	})

	t.Run("ExtraModulesIgnored", func(t *testing.T) {
		ns, err := NewComposer(manifest).
			WithModules(
				NewModule("st_model"),
				NewModule("st_net"),
				NewModule("patterns"),
				NewModule("st_extra", sym("Extra", 1)),
			).
			Build()
		require.NoError(t, err)
		_, ok := ns.Lookup("Extra")
		assert.False(t, ok)
	})

	t.Run("NilModuleSkipped", func(t *testing.T) {
		c := NewComposer(manifest).WithModules(nil)
		assert.Len(t, c.Missing(), 3)
	})
}

// TestAttach tests modules bound by name without merging
func TestAttach(t *testing.T) {
	manifest := []Entry{{Module: "st_model"}}
	settings := NewModule("st_config", sym("TECHNO", "cmos045"))

	ns, err := NewComposer(manifest).
		WithModules(NewModule("st_model", sym("Model", 1))).
		Attach(settings).
		Build()
	require.NoError(t, err)

	m, ok := ns.Module("st_config")
	require.True(t, ok)
	assert.Equal(t, "st_config", m.Name())
	assert.Equal(t, []Symbol{sym("TECHNO", "cmos045")}, m.Exports())

	_, ok = ns.Lookup("TECHNO")
	assert.False(t, ok)

	_, err = NewComposer(manifest).
		WithModules(NewModule("st_model")).
		Attach(settings).
		Attach(settings).
		Build()
	assert.True(t, errors.Is(err, ErrDuplicateModule))
}

// TestStaticModule tests the fixed symbol list module
func TestStaticModule(t *testing.T) {
	symbols := []Symbol{sym("Const", 1)}
	m := NewModule("st_const", symbols...)

	symbols[0].Value = 2
	exports := m.Exports()
	assert.Equal(t, 1, exports[0].Value)

	exports[0].Value = 3
	assert.Equal(t, 1, m.Exports()[0].Value)
}

// TestIsPublic tests exported name detection
func TestIsPublic(t *testing.T) {
	assert.True(t, IsPublic("Net"))
	assert.True(t, IsPublic("TECHNO"))
	assert.True(t, IsPublic("Éclair"))
	assert.True(t, IsPublic("place"))
	assert.True(t, IsPublic("net_"))
	assert.False(t, IsPublic("_Net"))
	assert.False(t, IsPublic("_helper"))
	assert.False(t, IsPublic(""))
}

// TestPrivateNames tests that underscore names are skipped, not rejected
func TestPrivateNames(t *testing.T) {
	manifest := []Entry{{Module: "st_model"}, {Module: "st_getrealmodel", Only: []string{"_weight"}}}

	ns, err := NewComposer(manifest).
		WithModules(
			NewModule("st_model", sym("Inst", 1), sym("place", 2), sym("_cache", 3)),
			NewModule("st_getrealmodel", sym("_weight", 4), sym("GetRealModel", 5)),
		).
		Build()
	require.NoError(t, err)

	place, ok := ns.Lookup("place")
	require.True(t, ok)
	assert.Equal(t, 2, place)
	origin, _ := ns.Origin("place")
	assert.Equal(t, "st_model", origin)

	_, ok = ns.Lookup("_cache")
	assert.False(t, ok)

	weight, ok := ns.Lookup("_weight")
	require.True(t, ok)
	assert.Equal(t, 4, weight)
	_, ok = ns.Lookup("GetRealModel")
	assert.False(t, ok)
}
