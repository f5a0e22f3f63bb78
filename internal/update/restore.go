package update

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/phoenix-launcher/phoenix/internal/migration"
)

// alwaysRestoreDirs are exclusively user data with no official counterpart,
// so the archived version always replaces whatever the release shipped.
var alwaysRestoreDirs = []string{saveDirName, "backups", "templates", "memorial", "graveyard"}

// configSkipFiles are never carried forward from the old config directory.
var configSkipFiles = []string{"debug.log", "debug.log.prev"}

// restoreUserData re-applies user content from the archived snapshot onto
// the freshly extracted installation: whole-copy for the always-restore
// directories, filtered copy for config, and plan-driven copy for mods,
// tilesets, soundpacks and fonts. Any failure aborts the phase; the caller
// rolls back, so partial restoration is never left in place.
func restoreUserData(archiveDir, gameDir string, preventSaveMove bool) error {
	for _, name := range alwaysRestoreDirs {
		if preventSaveMove && name == saveDirName {
			// Saves never left the live directory.
			continue
		}

		src := filepath.Join(archiveDir, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}

		dst := filepath.Join(gameDir, name)
		if _, err := os.Stat(dst); err == nil {
			if err := os.RemoveAll(dst); err != nil {
				return fmt.Errorf("removing extracted %s: %w", name, err)
			}
		}
		if err := copyDir(src, dst); err != nil {
			return fmt.Errorf("restoring %s: %w", name, err)
		}
		log.Debug().Str("dir", name).Msg("Restored user directory")
	}

	if err := restoreConfigDir(archiveDir, gameDir); err != nil {
		return err
	}

	plan := migration.Compute(archiveDir, gameDir)
	if err := applyPlan(plan, archiveDir, gameDir); err != nil {
		return err
	}

	return nil
}

// restoreConfigDir copies the settings directory wholesale, minus the debug
// log denylist.
func restoreConfigDir(archiveDir, gameDir string) error {
	src := filepath.Join(archiveDir, "config")
	if _, err := os.Stat(src); err != nil {
		return nil
	}

	dst := filepath.Join(gameDir, "config")
	if _, err := os.Stat(dst); err == nil {
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("removing extracted config: %w", err)
		}
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading archived config: %w", err)
	}

	skipped := 0
	for _, entry := range entries {
		if isConfigSkipFile(entry.Name()) {
			skipped++
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	if skipped > 0 {
		log.Debug().Int("files", skipped).Msg("Skipped debug files from config")
	}
	return nil
}

func isConfigSkipFile(name string) bool {
	for _, skip := range configSkipFiles {
		if name == skip {
			return true
		}
	}
	return false
}

// applyPlan copies plan-selected units into the new installation. A unit is
// only copied when no destination of the same folder name exists, so
// official content shipped by the release always wins over a stale custom
// copy with the same folder name.
func applyPlan(plan *migration.Plan, archiveDir, gameDir string) error {
	restored := 0

	copyUnits := func(paths []string, destDir string) error {
		if len(paths) == 0 {
			return nil
		}
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", destDir, err)
		}
		for _, src := range paths {
			target := filepath.Join(destDir, filepath.Base(src))
			if _, err := os.Stat(target); err == nil {
				continue
			}
			info, err := os.Stat(src)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if err := copyDir(src, target); err != nil {
					return err
				}
			} else {
				if err := copyFile(src, target); err != nil {
					return err
				}
			}
			restored++
		}
		return nil
	}

	modPaths := func(mods []migration.ModInfo) []string {
		paths := make([]string, 0, len(mods))
		for _, m := range mods {
			paths = append(paths, m.Path)
		}
		return paths
	}

	if err := copyUnits(modPaths(plan.CustomMods), filepath.Join(gameDir, "data", "mods")); err != nil {
		return err
	}
	if err := copyUnits(modPaths(plan.CustomUserMods), filepath.Join(gameDir, "mods")); err != nil {
		return err
	}

	tilesetPaths := make([]string, 0, len(plan.CustomTilesets))
	for _, t := range plan.CustomTilesets {
		tilesetPaths = append(tilesetPaths, t.Path)
	}
	if err := copyUnits(tilesetPaths, filepath.Join(gameDir, "gfx")); err != nil {
		return err
	}

	soundpackPaths := make([]string, 0, len(plan.CustomSoundpacks))
	for _, s := range plan.CustomSoundpacks {
		soundpackPaths = append(soundpackPaths, s.Path)
	}
	if err := copyUnits(soundpackPaths, filepath.Join(gameDir, "data", "sound")); err != nil {
		return err
	}

	if err := applySoundpackMerges(plan.SoundpackMerges); err != nil {
		return err
	}

	if err := copyUnits(plan.CustomFonts, filepath.Join(gameDir, "font")); err != nil {
		return err
	}
	if err := copyUnits(plan.CustomDataFonts, filepath.Join(gameDir, "data", "font")); err != nil {
		return err
	}

	if plan.RestoreUserDefaultMods {
		src := filepath.Join(archiveDir, "data", "mods", migration.UserDefaultModsFile)
		dst := filepath.Join(gameDir, "data", "mods", migration.UserDefaultModsFile)
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("creating mods directory: %w", err)
			}
			if err := copyFile(src, dst); err != nil {
				return err
			}
			restored++
		}
	}

	if restored > 0 {
		log.Info().Int("units", restored).Msg("Restored custom content")
	}
	return nil
}

// applySoundpackMerges copies custom files into soundpacks that exist in
// both versions. Files the new pack already ships are never overwritten.
func applySoundpackMerges(merges []migration.SoundpackMerge) error {
	copied := 0
	for _, merge := range merges {
		for _, rel := range merge.CustomFiles {
			src := filepath.Join(merge.OldPath, rel)
			dst := filepath.Join(merge.NewPath, rel)

			if _, err := os.Stat(src); err != nil {
				continue
			}
			if _, err := os.Stat(dst); err == nil {
				continue
			}
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("creating soundpack subdirectory: %w", err)
			}
			if err := copyFile(src, dst); err != nil {
				return err
			}
			copied++
		}
	}
	if copied > 0 {
		log.Debug().Int("files", copied).Msg("Merged custom soundpack files")
	}
	return nil
}
