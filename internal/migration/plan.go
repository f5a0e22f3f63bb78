package migration

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
)

// SoundpackMerge tracks custom files inside a soundpack that exists in both
// the old and new installation under the same NAME. The files listed are
// present in the old pack and absent from the new one.
type SoundpackMerge struct {
	Name        string
	OldPath     string
	NewPath     string
	CustomFiles []string
}

// Plan is the computed set of user content to carry forward into a freshly
// extracted installation. It is a pure description: computing a plan never
// touches disk beyond read-only scans.
type Plan struct {
	// CustomMods come from data/mods/ in the old installation.
	CustomMods []ModInfo
	// CustomUserMods come from the user-level mods/ directory.
	CustomUserMods []ModInfo
	CustomTilesets []TilesetInfo
	// CustomSoundpacks are absent from the new version entirely.
	CustomSoundpacks []SoundpackInfo
	// SoundpackMerges cover packs present in both versions with custom files.
	SoundpackMerges []SoundpackMerge
	// CustomFonts and CustomDataFonts are absolute paths into the old
	// installation's font/ and data/font/ directories.
	CustomFonts     []string
	CustomDataFonts []string
	// RestoreUserDefaultMods is set when the old data/mods/ holds a
	// user-default-mods.json and the new one does not.
	RestoreUserDefaultMods bool
}

// Compute scans the old (archived) and new (freshly extracted) installation
// roots and returns the migration plan. Identity comparison is strict:
// names that differ in case or whitespace are distinct identities.
func Compute(oldRoot, newRoot string) *Plan {
	plan := &Plan{}

	oldModsDir := filepath.Join(oldRoot, "data", "mods")
	newModsDir := filepath.Join(newRoot, "data", "mods")

	oldMods := ScanMods(oldModsDir)
	newMods := ScanMods(newModsDir)
	plan.CustomMods = customMods(oldMods, newMods)
	log.Info().
		Int("custom", len(plan.CustomMods)).
		Int("total", len(oldMods)).
		Msg("Scanned data mods")

	oldUserMods := ScanMods(filepath.Join(oldRoot, "mods"))
	newUserMods := ScanMods(filepath.Join(newRoot, "mods"))
	plan.CustomUserMods = customMods(oldUserMods, newUserMods)

	oldTilesets := ScanTilesets(filepath.Join(oldRoot, "gfx"))
	newTilesets := ScanTilesets(filepath.Join(newRoot, "gfx"))
	for _, name := range slices.Sorted(maps.Keys(oldTilesets)) {
		if _, exists := newTilesets[name]; !exists {
			plan.CustomTilesets = append(plan.CustomTilesets, oldTilesets[name])
		}
	}

	oldSoundpacks := ScanSoundpacks(filepath.Join(oldRoot, "data", "sound"))
	newSoundpacks := ScanSoundpacks(filepath.Join(newRoot, "data", "sound"))
	for _, name := range slices.Sorted(maps.Keys(oldSoundpacks)) {
		old := oldSoundpacks[name]
		newer, exists := newSoundpacks[name]
		if !exists {
			plan.CustomSoundpacks = append(plan.CustomSoundpacks, old)
			continue
		}
		if custom := customSoundpackFiles(old.Path, newer.Path); len(custom) > 0 {
			log.Debug().Str("soundpack", name).Int("files", len(custom)).
				Msg("Soundpack has custom files to merge")
			plan.SoundpackMerges = append(plan.SoundpackMerges, SoundpackMerge{
				Name:        name,
				OldPath:     old.Path,
				NewPath:     newer.Path,
				CustomFiles: custom,
			})
		}
	}

	oldFontDir := filepath.Join(oldRoot, "font")
	plan.CustomFonts = customFonts(ScanFonts(oldFontDir), ScanFonts(filepath.Join(newRoot, "font")), oldFontDir)

	oldDataFontDir := filepath.Join(oldRoot, "data", "font")
	plan.CustomDataFonts = customFonts(ScanFonts(oldDataFontDir), ScanFonts(filepath.Join(newRoot, "data", "font")), oldDataFontDir)

	oldDefaults := filepath.Join(oldModsDir, UserDefaultModsFile)
	newDefaults := filepath.Join(newModsDir, UserDefaultModsFile)
	plan.RestoreUserDefaultMods = exists(oldDefaults) && !exists(newDefaults)

	log.Info().
		Int("mods", len(plan.CustomMods)).
		Int("user_mods", len(plan.CustomUserMods)).
		Int("tilesets", len(plan.CustomTilesets)).
		Int("soundpacks", len(plan.CustomSoundpacks)).
		Int("soundpack_merges", len(plan.SoundpackMerges)).
		Int("fonts", len(plan.CustomFonts)+len(plan.CustomDataFonts)).
		Bool("user_default_mods", plan.RestoreUserDefaultMods).
		Msg("Migration plan computed")

	return plan
}

// customMods returns mods whose ID is present in old and absent from new,
// in a deterministic order.
func customMods(old, newer map[string]ModInfo) []ModInfo {
	var custom []ModInfo
	for _, id := range slices.Sorted(maps.Keys(old)) {
		if _, exists := newer[id]; !exists {
			custom = append(custom, old[id])
		}
	}
	return custom
}

// customFonts returns absolute paths of font entries present in old and
// absent from new.
func customFonts(old, newer map[string]bool, oldDir string) []string {
	var custom []string
	for _, name := range slices.Sorted(maps.Keys(old)) {
		if !newer[name] {
			custom = append(custom, filepath.Join(oldDir, name))
		}
	}
	return custom
}

// customSoundpackFiles returns relative paths of content files present in
// the old pack and absent from the new one.
func customSoundpackFiles(oldPack, newPack string) []string {
	oldFiles := scanSoundpackFiles(oldPack)
	newFiles := scanSoundpackFiles(newPack)

	var custom []string
	for _, rel := range slices.Sorted(maps.Keys(oldFiles)) {
		if !newFiles[rel] {
			custom = append(custom, rel)
		}
	}
	return custom
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
