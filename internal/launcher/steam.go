// Package launcher finds locally installed Steam games from their
// manifests and starts them from a spoken title.
package launcher

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const minMatchScore = 0.58

// Steam scans steamapps manifests across every configured library root
// and launches games through the steam:// URL scheme.
type Steam struct {
	fs     afero.Fs
	root   string
	logger *zap.Logger

	// run starts the game process. Swappable in tests.
	run func(appID string) error
}

func NewSteam(fs afero.Fs, root string, logger *zap.Logger) *Steam {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Steam{fs: fs, root: root, logger: logger}
	s.run = s.open
	return s
}

// Launch implements repositories.AppLauncher. An unknown title is not
// an error; the sentence reports it.
func (s *Steam) Launch(query string) (string, error) {
	games, err := s.InstalledGames()
	if err != nil {
		return "", err
	}
	aliases := buildAliasIndex(games)

	appID, name, score, ok := searchGame(query, games, aliases)
	if !ok {
		return "Game not found.", nil
	}
	s.logger.Info("launching game",
		zap.String("query", query),
		zap.String("name", name),
		zap.String("appID", appID),
		zap.Float64("score", score))

	if err := s.run(appID); err != nil {
		return "", err
	}
	return "Launching " + name, nil
}

func (s *Steam) open(appID string) error {
	url := "steam://rungameid/" + appID
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("steam", url)
	}
	return cmd.Start()
}

// InstalledGames returns appid -> title for every manifest found.
func (s *Steam) InstalledGames() (map[string]string, error) {
	root, err := s.findRoot()
	if err != nil {
		return nil, err
	}

	games := make(map[string]string)
	for _, lib := range s.libraryRoots(root) {
		steamapps := filepath.Join(lib, "steamapps")
		for id, name := range s.scanManifests(steamapps) {
			games[id] = name
		}
	}
	return games, nil
}

func (s *Steam) findRoot() (string, error) {
	candidates := []string{}
	if s.root != "" {
		candidates = append(candidates, s.root)
	}
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		candidates = append(candidates,
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		)
	case "darwin":
		candidates = append(candidates, filepath.Join(home, "Library", "Application Support", "Steam"))
	default:
		candidates = append(candidates,
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
		)
	}

	for _, c := range candidates {
		if ok, _ := afero.DirExists(s.fs, c); ok {
			return c, nil
		}
	}
	return "", os.ErrNotExist
}

var (
	// New format blocks: "1" { "path" "D:\\SteamLibrary" ... }
	libPathBlockRe = regexp.MustCompile(`(?is)"\d+"\s*\{[^}]*?"path"\s*"([^"]+)"`)
	// Old format lines: "1" "D:\\SteamLibrary"
	libPathLineRe = regexp.MustCompile(`"\d+"\s*"([^"]+)"`)

	manifestKVRe = regexp.MustCompile(`"([^"]+)"\s+"([^"]+)"`)
)

// libraryRoots lists every Steam library containing a steamapps dir,
// the main root included.
func (s *Steam) libraryRoots(root string) []string {
	libs := map[string]bool{root: true}

	vdf := filepath.Join(root, "steamapps", "libraryfolders.vdf")
	if data, err := afero.ReadFile(s.fs, vdf); err == nil {
		text := string(data)
		matches := libPathBlockRe.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			matches = libPathLineRe.FindAllStringSubmatch(text, -1)
		}
		for _, m := range matches {
			libs[filepath.FromSlash(strings.ReplaceAll(m[1], `\\`, `\`))] = true
		}
	}

	var out []string
	for lib := range libs {
		if ok, _ := afero.DirExists(s.fs, filepath.Join(lib, "steamapps")); ok {
			out = append(out, lib)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Steam) scanManifests(steamapps string) map[string]string {
	out := make(map[string]string)
	manifests, err := afero.Glob(s.fs, filepath.Join(steamapps, "appmanifest_*.acf"))
	if err != nil {
		return out
	}
	for _, acf := range manifests {
		data, err := afero.ReadFile(s.fs, acf)
		if err != nil {
			continue
		}
		var appID, name string
		for _, kv := range manifestKVRe.FindAllStringSubmatch(string(data), -1) {
			switch kv[1] {
			case "appid":
				appID = kv[2]
			case "name":
				name = kv[2]
			}
		}
		if appID != "" && name != "" {
			out[appID] = name
		}
	}
	return out
}
