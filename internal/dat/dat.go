// Package dat parses a reference catalog (DAT file) into an in-memory
// catalog of games, their expected ROMs, and their derivation links.
package dat

// ContentHash identifies file content by its declared size and CRC-32
// checksum. Equality is pairwise on both fields; equal CRC with differing
// size is a size mismatch, not a match.
type ContentHash struct {
	Size uint64
	CRC  uint32
}

// IsNoDump reports whether the hash carries the zero-CRC sentinel marking a
// ROM with no verified dump. NODUMP entries carry no verification
// obligation and must never be treated as real content.
func (h ContentHash) IsNoDump() bool { return h.CRC == 0 }

// Rom is one expected file within a game.
type Rom struct {
	Name  string
	Hash  ContentHash
	Merge string // name under which the bytes live in the parent archive; empty = same name
}

// Game is one cataloged game. At most one of CloneOf/RomOf is set: when a
// DAT carries both attributes, cloneof wins at capture time.
type Game struct {
	Name        string
	CloneOf     string // parent this game is a variant of
	RomOf       string // parent supplying shared/BIOS files
	Description string
	Year        string
	Roms        map[string]Rom
}

// Catalog maps game name to game. Built once per run, read-only afterward.
type Catalog map[string]*Game
