package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

// seedDirs are the fixture trees of the other packages.
var seedDirs = []string{
	filepath.Join("..", "treeio", "testdata"),
	filepath.Join("..", "driver", "testdata"),
}

func addCorpusSeeds(f *testing.F) {
	for _, root := range seedDirs {
		addTreeSeeds(f, root)
	}
	// минимальные примеры на случай пустого testdata
	f.Add([]byte{})
	f.Add([]byte("package: p\ndecls:\n  - fun: main\n    expr: f(1)\n"))
}

func addTreeSeeds(f *testing.F, root string) {
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
