package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/node4good/gypninja/internal/sys"
)

// HashBytes returns the hex SHA256 of data
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashFile returns the hex SHA256 of a file's content
func HashFile(fsys sys.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", err
	}

	return HashBytes(data), nil
}
