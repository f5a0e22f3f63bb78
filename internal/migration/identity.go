// Package migration computes which user content survives an update.
//
// Content units (mods, tilesets, soundpacks) are identified by a declaration
// embedded in the unit, never by folder name, so a renamed folder still
// matches its official counterpart and a custom unit is recognized even when
// it shadows an official folder name.
package migration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	modInfoFile         = "modinfo.json"
	modInfoDisabledFile = "modinfo.json.disabled"
	tilesetInfoFile     = "tileset.txt"
	soundpackInfoFile   = "soundpack.txt"
	nameField           = "NAME"
	disabledSuffix      = ".disabled"
	UserDefaultModsFile = "user-default-mods.json"
)

// ModInfo is one mod directory and its declared identifier.
type ModInfo struct {
	ID   string
	Path string
}

// TilesetInfo is one tileset directory and its declared display name.
type TilesetInfo struct {
	Name string
	Path string
}

// SoundpackInfo is one soundpack directory and its declared display name.
type SoundpackInfo struct {
	Name string
	Path string
}

// modInfoEntry is the subset of a modinfo.json object we read.
type modInfoEntry struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ParseModIdent reads the mod identifier declared in a mod directory's
// modinfo.json (or its .disabled variant). The file may be a single object
// or an array of objects; only the first MOD_INFO entry counts. Returns nil
// when no declaration exists or the declaration is malformed — either way
// the unit is invisible to migration, not an error.
func ParseModIdent(modDir string) *ModInfo {
	path := filepath.Join(modDir, modInfoFile)
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(modDir, modInfoDisabledFile)
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var single modInfoEntry
	if err := json.Unmarshal(data, &single); err == nil {
		if single.Type == "MOD_INFO" && single.ID != "" {
			return &ModInfo{ID: single.ID, Path: modDir}
		}
	}

	var entries []modInfoEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		for _, e := range entries {
			if e.Type == "MOD_INFO" && e.ID != "" {
				return &ModInfo{ID: e.ID, Path: modDir}
			}
		}
	}

	return nil
}

// ParseTilesetInfo reads the NAME declared in a tileset directory's
// tileset.txt (or its .disabled variant).
func ParseTilesetInfo(tilesetDir string) *TilesetInfo {
	name := parseAssetName(tilesetDir, tilesetInfoFile)
	if name == "" {
		return nil
	}
	return &TilesetInfo{Name: name, Path: tilesetDir}
}

// ParseSoundpackInfo reads the NAME declared in a soundpack directory's
// soundpack.txt (or its .disabled variant).
func ParseSoundpackInfo(soundpackDir string) *SoundpackInfo {
	name := parseAssetName(soundpackDir, soundpackInfoFile)
	if name == "" {
		return nil
	}
	return &SoundpackInfo{Name: name, Path: soundpackDir}
}

// parseAssetName extracts the value of the first "NAME <value>" line from an
// asset declaration file. Commas are stripped from the value; the comparison
// against other declarations stays byte-exact otherwise.
func parseAssetName(assetDir, filename string) string {
	path := filepath.Join(assetDir, filename)
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(assetDir, filename+disabledSuffix)
		if _, err := os.Stat(path); err != nil {
			return ""
		}
	}

	// Declarations in the wild are occasionally latin1; a byte-level read
	// with string conversion tolerates that for the NAME line.
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, nameField) {
			continue
		}
		idx := strings.Index(line, " ")
		if idx < 0 {
			continue
		}
		name := strings.ReplaceAll(strings.TrimSpace(line[idx:]), ",", "")
		if name != "" {
			return name
		}
	}

	return ""
}
