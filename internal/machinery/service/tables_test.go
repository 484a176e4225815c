package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTables_Clean(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	assert.Empty(t, tables.Issues)
	assert.Len(t, tables.Critical, 13)
	assert.Equal(t, 331, tables.Aliases.Len())
	assert.Equal(t, 62, tables.Aliases.CanonicalCount())
}

const messyTables = `
critical: ["Boiler", "  ", "Fire  Pump"]
aliases:
  "Anchor":
    - "AnchorP"
    - "anchorp "
  "Windlass":
    - "AnchorP"
  "Fire Pump X":
    - "FPX"
  "Pump":
    - "Fire Pump X"
`

func TestParseTables_Issues(t *testing.T) {
	tables, err := ParseTables([]byte(messyTables))
	require.NoError(t, err)

	assert.Equal(t, []string{"Boiler", "Fire Pump"}, tables.Critical)

	want := []AliasIssue{
		{Kind: IssueCollision, Raw: "AnchorP", Canonical: "Windlass", Kept: "Anchor"},
		{Kind: IssueDuplicate, Raw: "anchorp ", Canonical: "Anchor", Kept: "Anchor"},
		{Kind: IssueUnstable, Raw: "Fire Pump X", Canonical: "Pump"},
	}
	if diff := cmp.Diff(want, tables.Issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}

	c := NewCanonicalizer(tables)
	assert.Equal(t, "Anchor", c.Canonicalize("ANCHORP"), "первое по порядку имя сохраняется")
	assert.Equal(t, "Pump", c.Canonicalize("fire pump x"))
	assert.Equal(t, "Pump", c.Canonicalize("FPX"), "написания нестабильного имени ведут к цели")
	assert.Equal(t, "Windlass", c.Canonicalize("windlass"))
}

func TestParseTables_BadYAML(t *testing.T) {
	_, err := ParseTables([]byte("aliases: [unclosed"))
	require.Error(t, err)
}

func TestLoadTables(t *testing.T) {
	t.Run("empty path uses embedded", func(t *testing.T) {
		tables, err := LoadTables("")
		require.NoError(t, err)
		assert.Equal(t, 331, tables.Aliases.Len())
	})

	t.Run("external file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "machinery.yaml")
		require.NoError(t, os.WriteFile(path, []byte("critical: [Boiler]\naliases:\n  Boiler:\n    - BoilerAux1\n"), 0o644))

		tables, err := LoadTables(path)
		require.NoError(t, err)
		assert.Equal(t, 1, tables.Aliases.Len())
		assert.Equal(t, "Boiler", NewCanonicalizer(tables).Canonicalize("boileraux1"))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTables(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestAliasIssue_String(t *testing.T) {
	assert.Equal(t, `collision: "a" -> "B" (kept "A")`,
		AliasIssue{Kind: IssueCollision, Raw: "a", Canonical: "B", Kept: "A"}.String())
	assert.Equal(t, `unstable: "x" -> "Y"`,
		AliasIssue{Kind: IssueUnstable, Raw: "x", Canonical: "Y"}.String())
}
