// Package resolve implements the verification core: it maps every
// (game, rom) obligation through the catalog's derivation links to the one
// canonical (archive, entry) location that should hold its bytes, compares
// against the scanned indices, and classifies the outcome.
//
// The chain walk exists because merged collections omit duplicate bytes
// from clones and derived games: a clone's rom may live in the parent
// archive under a merge name, stay embedded under a composite path, or — for
// shared BIOS files — live in a separate rom-of parent. The resolver
// reconstructs that single expected location rather than searching every
// archive.
package resolve

import (
	"path"
	"sort"

	"romscan/internal/dat"
	"romscan/internal/logger"
	"romscan/internal/scan"
)

// Outcome classifies one unmet obligation. Fully satisfied obligations
// produce no Outcome.
type Outcome struct {
	Game         string
	Rom          string
	SizeMismatch bool           // checksum matched under the resolved name but size differed
	Found        *scan.Location // alternate source holding the exact bytes, if any
}

// Resolve walks every non-NODUMP obligation in the catalog and returns the
// unmet ones, ordered by game name then rom name so repeated runs emit
// byte-identical reports. unmerged selects unmerged-set semantics: roms
// without an explicit merge link stay in their own archive instead of
// ascending the clone chain.
func Resolve(cat dat.Catalog, files scan.FileIndex, contents scan.ContentIndex, unmerged bool) []Outcome {
	games := make([]string, 0, len(cat))
	for name := range cat {
		games = append(games, name)
	}
	sort.Strings(games)

	var outcomes []Outcome
	for _, gname := range games {
		game := cat[gname]
		roms := make([]string, 0, len(game.Roms))
		for name := range game.Roms {
			roms = append(roms, name)
		}
		sort.Strings(roms)
		for _, rname := range roms {
			if o := resolveOne(cat, files, contents, game, game.Roms[rname], unmerged); o != nil {
				outcomes = append(outcomes, *o)
			}
		}
	}
	return outcomes
}

// resolveOne returns nil when the obligation is satisfied.
func resolveOne(cat dat.Catalog, files scan.FileIndex, contents scan.ContentIndex, game *dat.Game, rom dat.Rom, unmerged bool) *Outcome {
	if rom.Hash.IsNoDump() {
		return nil
	}

	endGame := game.Name
	endRom := rom.Name
	endName := endRom

	// Clone-chain ascent: find the topmost archive expected to hold the
	// bytes. Ascent is bounded by the catalog size so a cyclic cloneof
	// chain degrades to a reported miss instead of looping forever.
	for steps := 0; ; steps++ {
		cur, ok := cat[endGame]
		if !ok || cur.CloneOf == "" {
			break
		}
		if steps >= len(cat) {
			logger.Warnf("cloneof chain from game %q never terminates; cycle suspected at %q", game.Name, endGame)
			break
		}
		if r, ok := cur.Roms[endRom]; ok && r.Merge != "" {
			// Merged into the parent under a different name.
			endRom = r.Merge
			endName = endRom
			endGame = cur.CloneOf
		} else if !unmerged {
			// Merged sets keep unrenamed clone roms embedded under the
			// clone's own directory inside the parent archive.
			endName = path.Join(endGame, endRom)
			endGame = cur.CloneOf
		} else {
			break
		}
	}

	// Rom-of fallback: shared/BIOS files live in a separate parent archive.
	// Only applies when the clone ascent did not already rename the rom and
	// the current game does not itself carry an unaliased copy.
	if cur, ok := cat[endGame]; ok && cur.RomOf != "" {
		r, present := cur.Roms[endRom]
		if endName == endRom && (!present || r.Merge != "") {
			if present {
				endRom = r.Merge
				endName = endRom
			}
			endGame = cur.RomOf
		}
	}

	sizeMismatch := false
	if tbl, ok := files[endGame]; ok {
		if h, ok := tbl[endName]; ok {
			if h == rom.Hash {
				return nil
			}
			if h.CRC == rom.Hash.CRC {
				sizeMismatch = true
			}
		}
	}

	o := &Outcome{Game: game.Name, Rom: rom.Name, SizeMismatch: sizeMismatch}
	if loc, ok := contents[rom.Hash]; ok {
		o.Found = &loc
	}
	return o
}
