package migration

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// soundpackContentExtensions are the file types tracked when diffing the
// contents of a soundpack present in both versions. Everything else
// (readmes, declaration files) is ignored.
var soundpackContentExtensions = map[string]bool{
	".json": true,
	".ogg":  true,
	".wav":  true,
	".mp3":  true,
	".flac": true,
}

// ScanMods reads the immediate subdirectories of modsDir and returns a map
// of mod ID to ModInfo. Directories without a readable declaration are
// skipped. First occurrence wins on duplicate IDs.
func ScanMods(modsDir string) map[string]ModInfo {
	mods := make(map[string]ModInfo)

	entries, err := os.ReadDir(modsDir)
	if err != nil {
		return mods
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if info := ParseModIdent(filepath.Join(modsDir, entry.Name())); info != nil {
			if _, seen := mods[info.ID]; !seen {
				mods[info.ID] = *info
			}
		}
	}

	return mods
}

// ScanTilesets reads the immediate subdirectories of gfxDir and returns a
// map of tileset NAME to TilesetInfo. First occurrence wins.
func ScanTilesets(gfxDir string) map[string]TilesetInfo {
	tilesets := make(map[string]TilesetInfo)

	entries, err := os.ReadDir(gfxDir)
	if err != nil {
		return tilesets
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if info := ParseTilesetInfo(filepath.Join(gfxDir, entry.Name())); info != nil {
			if _, seen := tilesets[info.Name]; !seen {
				tilesets[info.Name] = *info
			}
		}
	}

	return tilesets
}

// ScanSoundpacks reads the immediate subdirectories of soundDir and returns
// a map of soundpack NAME to SoundpackInfo. First occurrence wins.
func ScanSoundpacks(soundDir string) map[string]SoundpackInfo {
	soundpacks := make(map[string]SoundpackInfo)

	entries, err := os.ReadDir(soundDir)
	if err != nil {
		return soundpacks
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if info := ParseSoundpackInfo(filepath.Join(soundDir, entry.Name())); info != nil {
			if _, seen := soundpacks[info.Name]; !seen {
				soundpacks[info.Name] = *info
			}
		}
	}

	return soundpacks
}

// ScanFonts returns the set of entry names (files or directories) directly
// under fontDir. Fonts have no embedded declaration, so the file name is
// the identity.
func ScanFonts(fontDir string) map[string]bool {
	fonts := make(map[string]bool)

	entries, err := os.ReadDir(fontDir)
	if err != nil {
		return fonts
	}

	for _, entry := range entries {
		fonts[entry.Name()] = true
	}

	return fonts
}

// scanSoundpackFiles returns the set of relative paths of content files
// (audio and JSON) under a soundpack directory.
func scanSoundpackFiles(soundpackDir string) map[string]bool {
	files := make(map[string]bool)

	_ = filepath.WalkDir(soundpackDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !soundpackContentExtensions[ext] {
			return nil
		}
		rel, err := filepath.Rel(soundpackDir, path)
		if err != nil {
			return nil
		}
		files[rel] = true
		return nil
	})

	return files
}
