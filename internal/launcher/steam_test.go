package launcher

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func writeManifest(t *testing.T, fs afero.Fs, steamapps, appID, name string) {
	t.Helper()
	path := filepath.Join(steamapps, "appmanifest_"+appID+".acf")
	content := `"AppState"
{
	"appid"		"` + appID + `"
	"Universe"		"1"
	"name"		"` + name + `"
	"StateFlags"		"4"
}
`
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
}

func newTestSteam(t *testing.T) (*Steam, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	root := filepath.Join("steam")
	if err := fs.MkdirAll(filepath.Join(root, "steamapps"), 0o755); err != nil {
		t.Fatal(err)
	}
	return NewSteam(fs, root, zap.NewNop()), fs
}

func TestInstalledGamesAcrossLibraries(t *testing.T) {
	steam, fs := newTestSteam(t)

	writeManifest(t, fs, filepath.Join("steam", "steamapps"), "252950", "Rocket League")

	extra := filepath.Join("library2")
	fs.MkdirAll(filepath.Join(extra, "steamapps"), 0o755)
	writeManifest(t, fs, filepath.Join(extra, "steamapps"), "489830", "The Elder Scrolls V: Skyrim Special Edition")

	vdf := `"libraryfolders"
{
	"0"
	{
		"path"		"steam"
	}
	"1"
	{
		"path"		"library2"
	}
}
`
	afero.WriteFile(fs, filepath.Join("steam", "steamapps", "libraryfolders.vdf"), []byte(vdf), 0o644)

	games, err := steam.InstalledGames()
	if err != nil {
		t.Fatalf("InstalledGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2: %v", len(games), games)
	}
	if games["252950"] != "Rocket League" {
		t.Errorf("appid 252950 = %q", games["252950"])
	}
	if games["489830"] != "The Elder Scrolls V: Skyrim Special Edition" {
		t.Errorf("appid 489830 = %q", games["489830"])
	}
}

func TestLaunchMatchesSpokenTitles(t *testing.T) {
	steam, fs := newTestSteam(t)
	writeManifest(t, fs, filepath.Join("steam", "steamapps"), "252950", "Rocket League")
	writeManifest(t, fs, filepath.Join("steam", "steamapps"), "489830", "The Elder Scrolls V: Skyrim Special Edition")

	var launched []string
	steam.run = func(appID string) error {
		launched = append(launched, appID)
		return nil
	}

	tests := []struct {
		query     string
		wantAppID string
		wantMsg   string
	}{
		{"rocket league", "252950", "Launching Rocket League"},
		{"rl", "252950", "Launching Rocket League"},
		{"skyrim", "489830", "Launching The Elder Scrolls V: Skyrim Special Edition"},
		{"skyrim se", "489830", "Launching The Elder Scrolls V: Skyrim Special Edition"},
		{"the rocket league", "252950", "Launching Rocket League"},
	}

	for _, tt := range tests {
		launched = nil
		msg, err := steam.Launch(tt.query)
		if err != nil {
			t.Errorf("Launch(%q) error: %v", tt.query, err)
			continue
		}
		if msg != tt.wantMsg {
			t.Errorf("Launch(%q) = %q, want %q", tt.query, msg, tt.wantMsg)
		}
		if len(launched) != 1 || launched[0] != tt.wantAppID {
			t.Errorf("Launch(%q) started %v, want [%s]", tt.query, launched, tt.wantAppID)
		}
	}
}

func TestLaunchUnknownTitle(t *testing.T) {
	steam, fs := newTestSteam(t)
	writeManifest(t, fs, filepath.Join("steam", "steamapps"), "252950", "Rocket League")

	steam.run = func(appID string) error {
		t.Errorf("unexpected launch of %s", appID)
		return nil
	}

	msg, err := steam.Launch("microsoft flight simulator")
	if err != nil {
		t.Fatalf("Launch error: %v", err)
	}
	if msg != "Game not found." {
		t.Errorf("msg = %q, want Game not found.", msg)
	}
}

func TestAcronymAlias(t *testing.T) {
	games := map[string]string{"12345": "Grand Theft Auto V"}
	alias := buildAliasIndex(games)
	if alias["gtav"] != "12345" && alias["gta"] != "12345" {
		t.Errorf("expected acronym alias for GTA V, got %v", alias)
	}
}
