package cmd

import (
	"testing"

	"github.com/phoenix-launcher/phoenix/internal/config"
)

func TestApplySetting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
		check   func(*config.Settings) bool
	}{
		{
			name:  "game dir",
			key:   "game-dir",
			value: "/games/cdda",
			check: func(s *config.Settings) bool { return s.GameDir == "/games/cdda" },
		},
		{
			name:  "channel normalized",
			key:   "channel",
			value: "Experimental",
			check: func(s *config.Settings) bool { return s.Channel == "experimental" },
		},
		{
			name:    "invalid channel",
			key:     "channel",
			value:   "nightly",
			wantErr: true,
		},
		{
			name:  "bool setting",
			key:   "prevent-save-move",
			value: "true",
			check: func(s *config.Settings) bool { return s.PreventSaveMove },
		},
		{
			name:    "bad bool",
			key:     "backup-before-update",
			value:   "maybe",
			wantErr: true,
		},
		{
			name:  "compression level",
			key:   "backup-compression-level",
			value: "9",
			check: func(s *config.Settings) bool { return s.BackupCompressionLevel == 9 },
		},
		{
			name:    "compression level out of range",
			key:     "backup-compression-level",
			value:   "11",
			wantErr: true,
		},
		{
			name:    "keep last must be positive",
			key:     "backup-keep-last",
			value:   "0",
			wantErr: true,
		},
		{
			name:    "unknown key",
			key:     "no-such-setting",
			value:   "x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := config.Default()
			err := applySetting(s, tt.key, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("applySetting(%q, %q) succeeded, want error", tt.key, tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("applySetting(%q, %q): %v", tt.key, tt.value, err)
			}
			if !tt.check(s) {
				t.Fatalf("setting %q not applied: %+v", tt.key, s)
			}
		})
	}
}
