package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/ollyhq/olly-cli/internal/adapter"
	m "github.com/ollyhq/olly-cli/internal/model"
)

// ComputeID derives the SourceMapID for the map file at mapPath. The id is a
// pure function of the file's bytes: the first 128 bits of the SHA-256
// digest rendered in the 8-4-4-4-12 form. Renaming a map file never changes
// its id.
func ComputeID(fs adapter.SourceFSAdapter, mapPath m.Path) (m.SourceMapID, error) {
	sum, err := fs.HashFile(mapPath)
	if err != nil {
		return "", translateFileError("hash map file", mapPath, err,
			"the map file no longer exists; regenerate your source maps and retry",
			"permission denied; fix the permissions on your build directory")
	}

	raw, err := hex.DecodeString(sum[:32])
	if err != nil {
		return "", fmt.Errorf("decode digest for %s: %w", mapPath, err)
	}

	id, err := uuid.FromBytes(raw)
	if err != nil {
		return "", fmt.Errorf("format id for %s: %w", mapPath, err)
	}

	return m.SourceMapID(id.String()), nil
}
