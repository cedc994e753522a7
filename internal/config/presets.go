package config

import "github.com/shadefuzz/shadefuzz/internal/generator"

// KnownPresets lists the named generator.Options overlays the CLI accepts
// for --preset, mirroring generator.Options.ApplyPreset's switch. Kept here
// (rather than only in internal/generator) so cmd/shadefuzz can validate
// and list preset names without generating a module first.
var KnownPresets = []generator.Preset{
	generator.PresetTint,
}

// IsKnownPreset reports whether name matches a preset generator.Options
// knows how to apply.
func IsKnownPreset(name string) bool {
	for _, p := range KnownPresets {
		if string(p) == name {
			return true
		}
	}
	return false
}
