package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/stand/internal/errors"
	"github.com/PolarWolf314/stand/internal/utils"
)

// LoadOptions tunes Load.
type LoadOptions struct {
	// OnDeprecation is called with a human-readable notice when the legacy
	// format is loaded. May be nil.
	OnDeprecation func(msg string)
}

// strategy reads one on-disk layout. Strategies are tried in order and the
// first whose file exists wins.
type strategy struct {
	format Format
	path   func(root string) string
	decode func(root, path string, data []byte) (*Document, error)
}

var strategies = []strategy{
	{
		format: FormatPrimary,
		path:   PrimaryPath,
		decode: func(_, path string, data []byte) (*Document, error) { return DecodeTOML(path, data) },
	},
	{
		format: FormatLegacy,
		path:   LegacyPath,
		decode: DecodeLegacy,
	},
}

// PrimaryPath returns the location of the primary document under root.
func PrimaryPath(root string) string {
	return filepath.Join(root, PrimaryFileName)
}

// LegacyPath returns the location of the legacy document under root.
func LegacyPath(root string) string {
	return filepath.Join(root, LegacyDirName, LegacyFileName)
}

// Load reads the configuration document for the project at root.
//
// Returns kerrors.ErrFileNotFound if neither format exists,
// kerrors.ErrPermissionDenied if the file cannot be read, and a
// *kerrors.ParseError if it is malformed.
func Load(root string) (*Document, error) {
	return LoadWithOptions(root, LoadOptions{})
}

// LoadWithOptions is Load with hooks.
func LoadWithOptions(root string, opts LoadOptions) (*Document, error) {
	for _, s := range strategies {
		path := s.path(root)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, readError(path, err)
		}

		doc, err := s.decode(root, path, data)
		if err != nil {
			return nil, err
		}
		if s.format == FormatLegacy && opts.OnDeprecation != nil {
			opts.OnDeprecation(fmt.Sprintf("%s uses the legacy format and is read-only; run 'stand migrate' to convert it to %s", path, PrimaryFileName))
		}
		return doc, nil
	}

	return nil, fmt.Errorf("%w: neither %s nor %s exists in %s", kerrors.ErrFileNotFound, PrimaryFileName, filepath.Join(LegacyDirName, LegacyFileName), root)
}

// Exists reports whether root holds a document in either format.
func Exists(root string) bool {
	for _, s := range strategies {
		if _, err := os.Stat(s.path(root)); err == nil {
			return true
		}
	}
	return false
}

// Save writes doc to its primary-format path atomically. Legacy documents
// cannot be saved.
func Save(doc *Document) error {
	if doc.Format == FormatLegacy {
		return fmt.Errorf("%w: run 'stand migrate' first", kerrors.ErrLegacyFormat)
	}
	data, err := EncodeTOML(doc)
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(doc.Path, data, documentMode(doc.Path)); err != nil {
		return readError(doc.Path, err)
	}
	return nil
}

// documentMode keeps the mode of an existing document. New documents are
// owner-only since they may hold plain-text secrets.
func documentMode(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0600
}

func readError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", kerrors.ErrPermissionDenied, path)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, path)
	}
	return fmt.Errorf("accessing %s: %w", path, err)
}
