package manifest

import (
	"fmt"
	"path"
	"strings"

	"github.com/MKhiriev/go-secure-folder/models"
)

// Validate checks the structural rules every manifest must satisfy.
// Failures wrap models.ErrCorruptManifest.
func (m Manifest) Validate() error {
	if err := validateName(m.Name); err != nil {
		return err
	}

	switch m.Kind {
	case KindFile:
		if m.File.Kind != models.EntryFile {
			return corrupt("single-file descriptor has kind %s", m.File.Kind)
		}
		if m.File.Path != m.Name {
			return corrupt("descriptor path %q does not match name %q", m.File.Path, m.Name)
		}
		if m.File.Size < 0 {
			return corrupt("negative size for %q", m.File.Path)
		}
		return nil
	case KindFolder:
		return validateEntries(m.Entries)
	default:
		return corrupt("unknown manifest kind %d", m.Kind)
	}
}

func validateEntries(entries []models.ManifestEntry) error {
	if len(entries) == 0 {
		return corrupt("folder manifest has no entries")
	}

	root := entries[0]
	if root.Path != models.RootPath || root.Kind != models.EntryDir {
		return corrupt("first entry must be the root directory, got %q", root.Path)
	}

	dirs := map[string]struct{}{models.RootPath: {}}
	for i := 1; i < len(entries); i++ {
		e := entries[i]

		if !e.Kind.Valid() {
			return corrupt("entry %q has unknown kind %d", e.Path, e.Kind)
		}
		if err := ValidatePath(e.Path); err != nil {
			return err
		}
		if comparePaths(entries[i-1].Path, e.Path) >= 0 {
			return corrupt("entries not sorted or duplicated at %q", e.Path)
		}
		if _, ok := dirs[path.Dir(e.Path)]; !ok {
			return corrupt("entry %q has no parent directory entry", e.Path)
		}

		switch e.Kind {
		case models.EntryFile:
			if e.Size < 0 {
				return corrupt("negative size for %q", e.Path)
			}
		case models.EntryDir:
			dirs[e.Path] = struct{}{}
			fallthrough
		default:
			if e.Size != 0 {
				return corrupt("%s entry %q has non-zero size", e.Kind, e.Path)
			}
		}
	}

	return nil
}

// ValidatePath reports whether p is a clean, relative, slash-separated path
// that stays inside the root.
func ValidatePath(p string) error {
	switch {
	case p == "" || p == models.RootPath:
		return corrupt("empty entry path")
	case len(p) > maxPathLen:
		return corrupt("path too long")
	case strings.ContainsRune(p, 0):
		return corrupt("path %q contains NUL", p)
	case path.IsAbs(p):
		return corrupt("absolute path %q", p)
	case path.Clean(p) != p:
		return corrupt("path %q is not clean", p)
	case p == ".." || strings.HasPrefix(p, "../"):
		return corrupt("path %q escapes the root", p)
	}
	return nil
}

func validateName(name string) error {
	switch {
	case name == "" || name == "." || name == "..":
		return corrupt("invalid container name %q", name)
	case len(name) > maxPathLen:
		return corrupt("container name too long")
	case strings.ContainsAny(name, "/\x00"):
		return corrupt("container name %q contains a separator", name)
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{models.ErrCorruptManifest}, args...)...)
}
