package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Directories never worth reading when gathering configuration.
var skippedDirs = map[string]bool{
	".terraform": true,
	".git":       true,
}

// CollectConfig gathers the .tf and .tfvars files under the plan's directory
// into one labeled bundle:
//
//	=== relative/path.tf ===
//	<content>
//
// Files are visited in sorted order and collection stops before the first
// block that would push the bundle over maxChars, so the budget is a hard
// ceiling. Returns "" when nothing was collected.
func CollectConfig(planPath string, maxChars int) string {
	workDir, err := filepath.Abs(filepath.Dir(planPath))
	if err != nil {
		return ""
	}

	var files []string
	err = filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep walking
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] && path != workDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".tf") || strings.HasSuffix(path, ".tfvars") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return ""
	}
	sort.Strings(files)

	var collected []string
	total := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		relPath, err := filepath.Rel(workDir, path)
		if err != nil {
			continue
		}

		block := "=== " + relPath + " ===\n" + string(content)
		if total+len(block) > maxChars {
			break
		}
		collected = append(collected, block)
		total += len(block)
	}

	return strings.Join(collected, "\n\n")
}
