package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/TilePack/internal/gcode"
)

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profiles.json")

	profiles := []gcode.Profile{
		{
			Name:          "Plotter A3",
			Description:   "Slow pen for A3 paper",
			IsBuiltIn:     true,
			Units:         "mm",
			StartCode:     []string{"G90", "G21"},
			RapidMove:     "G0",
			FeedMove:      "G1",
			EndCode:       []string{"G0 Z[SafeZ]", "M2"},
			CommentPrefix: ";",
			DecimalPlaces: 2,
		},
	}

	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles failed: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles failed: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(loaded))
	}
	if loaded[0].Name != "Plotter A3" || loaded[0].DecimalPlaces != 2 {
		t.Errorf("unexpected profile: %+v", loaded[0])
	}
	if loaded[0].IsBuiltIn {
		t.Error("loaded profiles must not be marked built-in")
	}
	if len(loaded[0].EndCode) != 2 {
		t.Errorf("expected 2 end codes, got %d", len(loaded[0].EndCode))
	}
}

func TestLoadCustomProfiles_Missing(t *testing.T) {
	loaded, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected no profiles, got %d", len(loaded))
	}
}

func TestLoadCustomProfiles_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}

	unnamed := filepath.Join(dir, "unnamed.json")
	if err := os.WriteFile(unnamed, []byte(`[{"rapid_move":"G0"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(unnamed); err == nil {
		t.Error("expected error for profile without a name")
	}
}

func TestDefaultProfilesPath(t *testing.T) {
	if filepath.Base(DefaultProfilesPath()) != "profiles.json" {
		t.Errorf("unexpected path %s", DefaultProfilesPath())
	}
}
