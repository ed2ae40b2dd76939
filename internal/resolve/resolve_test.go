package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romscan/internal/dat"
	"romscan/internal/scan"
)

func game(name, cloneOf, romOf string, roms ...dat.Rom) *dat.Game {
	g := &dat.Game{Name: name, CloneOf: cloneOf, RomOf: romOf, Roms: make(map[string]dat.Rom, len(roms))}
	for _, r := range roms {
		g.Roms[r.Name] = r
	}
	return g
}

func catalog(games ...*dat.Game) dat.Catalog {
	cat := make(dat.Catalog, len(games))
	for _, g := range games {
		cat[g.Name] = g
	}
	return cat
}

var (
	hashA = dat.ContentHash{Size: 4, CRC: 0x1}
	hashB = dat.ContentHash{Size: 8, CRC: 0x2}
)

func TestStandaloneGameSatisfied(t *testing.T) {
	cat := catalog(game("pacman", "", "", dat.Rom{Name: "pac.bin", Hash: hashA}))
	files := scan.FileIndex{"pacman": {"pac.bin": hashA}}

	outcomes := Resolve(cat, files, scan.ContentIndex{}, false)
	assert.Empty(t, outcomes)
}

func TestStandaloneGameMissing(t *testing.T) {
	cat := catalog(game("pacman", "", "", dat.Rom{Name: "pac.bin", Hash: hashA}))

	outcomes := Resolve(cat, scan.FileIndex{}, scan.ContentIndex{}, false)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "pacman", outcomes[0].Game)
	assert.Equal(t, "pac.bin", outcomes[0].Rom)
	assert.False(t, outcomes[0].SizeMismatch)
	assert.Nil(t, outcomes[0].Found)
}

func TestNoDumpSkipped(t *testing.T) {
	cat := catalog(game("pacman", "", "",
		dat.Rom{Name: "undumped.bin", Hash: dat.ContentHash{Size: 16, CRC: 0}}))

	outcomes := Resolve(cat, scan.FileIndex{}, scan.ContentIndex{}, false)
	assert.Empty(t, outcomes, "nodump entries carry no obligation")
}

func TestSizeMismatchFlaggedWithAlternate(t *testing.T) {
	cat := catalog(game("pacman", "", "", dat.Rom{Name: "pac.bin", Hash: hashA}))
	wrongSize := dat.ContentHash{Size: 99, CRC: hashA.CRC}
	files := scan.FileIndex{"pacman": {"pac.bin": wrongSize}}
	contents := scan.ContentIndex{
		hashA: {Archive: "stash", Path: "/aux/stash.zip", File: "pac.bin"},
	}

	outcomes := Resolve(cat, files, contents, false)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].SizeMismatch)
	require.NotNil(t, outcomes[0].Found)
	assert.Equal(t, "/aux/stash.zip", outcomes[0].Found.Path)
	assert.Equal(t, "pac.bin", outcomes[0].Found.File)
}

func TestCloneMergeResolvesToParent(t *testing.T) {
	cat := catalog(
		game("base", "", "", dat.Rom{Name: "base.bin", Hash: hashA}),
		game("clone", "base", "", dat.Rom{Name: "shared.bin", Hash: hashA, Merge: "base.bin"}),
	)
	files := scan.FileIndex{"base": {"base.bin": hashA}}

	outcomes := Resolve(cat, files, scan.ContentIndex{}, false)
	assert.Empty(t, outcomes, "merge-linked clone rom is satisfied by the parent archive")
}

func TestCloneWithoutMergeEmbedsUnderCompositePath(t *testing.T) {
	cat := catalog(
		game("base", "", "", dat.Rom{Name: "base.bin", Hash: hashA}),
		game("clone", "base", "", dat.Rom{Name: "own.bin", Hash: hashB}),
	)
	files := scan.FileIndex{"base": {
		"base.bin":      hashA,
		"clone/own.bin": hashB,
	}}

	outcomes := Resolve(cat, files, scan.ContentIndex{}, false)
	assert.Empty(t, outcomes, "merged set keeps unrenamed clone roms under clone/name in the parent archive")
}

func TestUnmergedKeepsRomInOwnArchive(t *testing.T) {
	cat := catalog(
		game("base", "", "", dat.Rom{Name: "base.bin", Hash: hashA}),
		game("clone", "base", "", dat.Rom{Name: "own.bin", Hash: hashB}),
	)
	files := scan.FileIndex{
		"base":  {"base.bin": hashA, "clone/own.bin": hashB},
		"clone": {},
	}

	// Unmerged: the obligation is checked against clone's own archive, so
	// the copy sitting in base does not satisfy it.
	outcomes := Resolve(cat, files, scan.ContentIndex{}, true)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "clone", outcomes[0].Game)
	assert.Equal(t, "own.bin", outcomes[0].Rom)

	files["clone"]["own.bin"] = hashB
	assert.Empty(t, Resolve(cat, files, scan.ContentIndex{}, true))
}

func TestUnmergedStillFollowsExplicitMerge(t *testing.T) {
	cat := catalog(
		game("base", "", "", dat.Rom{Name: "base.bin", Hash: hashA}),
		game("clone", "base", "", dat.Rom{Name: "shared.bin", Hash: hashA, Merge: "base.bin"}),
	)
	files := scan.FileIndex{"base": {"base.bin": hashA}}

	assert.Empty(t, Resolve(cat, files, scan.ContentIndex{}, true))
}

func TestRomOfFallbackForAliasedBiosRom(t *testing.T) {
	cat := catalog(
		game("bios", "", "", dat.Rom{Name: "bios.bin", Hash: hashA}),
		game("board", "", "bios", dat.Rom{Name: "bios.bin", Hash: hashA, Merge: "bios.bin"}),
	)
	files := scan.FileIndex{"bios": {"bios.bin": hashA}}

	assert.Empty(t, Resolve(cat, files, scan.ContentIndex{}, false))
}

func TestRomOfNotFollowedForUnaliasedOwnRom(t *testing.T) {
	cat := catalog(
		game("bios", "", "", dat.Rom{Name: "bios.bin", Hash: hashA}),
		game("board", "", "bios", dat.Rom{Name: "game.bin", Hash: hashB}),
	)
	// game.bin has no merge alias, so it stays a board obligation even
	// though the bytes exist in the bios archive.
	files := scan.FileIndex{"bios": {"bios.bin": hashA, "game.bin": hashB}}

	outcomes := Resolve(cat, files, scan.ContentIndex{}, false)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "board", outcomes[0].Game)
	assert.Equal(t, "game.bin", outcomes[0].Rom)
}

func TestCloneChainThenRomOfParent(t *testing.T) {
	// clone -> (merge) -> parent, whose shared rom is aliased into the bios set.
	cat := catalog(
		game("bios", "", "", dat.Rom{Name: "sys.bin", Hash: hashA}),
		game("parent", "", "bios", dat.Rom{Name: "sys.bin", Hash: hashA, Merge: "sys.bin"}),
		game("clone", "parent", "", dat.Rom{Name: "sys.bin", Hash: hashA, Merge: "sys.bin"}),
	)
	files := scan.FileIndex{"bios": {"sys.bin": hashA}}

	assert.Empty(t, Resolve(cat, files, scan.ContentIndex{}, false))
}

func TestMissingIntermediateParentReportsMiss(t *testing.T) {
	cat := catalog(
		game("clone", "ghost", "", dat.Rom{Name: "own.bin", Hash: hashB}),
	)

	outcomes := Resolve(cat, scan.FileIndex{}, scan.ContentIndex{}, false)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "clone", outcomes[0].Game)
}

func TestCyclicCloneChainTerminates(t *testing.T) {
	cat := catalog(
		game("a", "b", "", dat.Rom{Name: "a.bin", Hash: hashA}),
		game("b", "a", "", dat.Rom{Name: "b.bin", Hash: hashB}),
	)

	outcomes := Resolve(cat, scan.FileIndex{}, scan.ContentIndex{}, false)
	assert.Len(t, outcomes, 2, "a cyclic catalog must degrade to reported misses, not hang")
}

func TestOutcomesSortedByGameThenRom(t *testing.T) {
	cat := catalog(
		game("zaxxon", "", "",
			dat.Rom{Name: "z2.bin", Hash: hashB},
			dat.Rom{Name: "z1.bin", Hash: hashA}),
		game("asteroid", "", "", dat.Rom{Name: "a.bin", Hash: hashA}),
	)

	outcomes := Resolve(cat, scan.FileIndex{}, scan.ContentIndex{}, false)
	require.Len(t, outcomes, 3)
	assert.Equal(t, "asteroid", outcomes[0].Game)
	assert.Equal(t, "zaxxon", outcomes[1].Game)
	assert.Equal(t, "z1.bin", outcomes[1].Rom)
	assert.Equal(t, "z2.bin", outcomes[2].Rom)
}
