package configs

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/envault/internal/utils"

	"github.com/BurntSushi/toml"
)

// SaveTOML saves a struct to a TOML file. The file is replaced atomically.
func SaveTOML(filePath string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return err
	}

	return utils.WriteFileAtomic(filePath, buf.Bytes(), 0600)
}

// LoadTOML loads a TOML file into a struct.
func LoadTOML(filePath string, data interface{}) error {
	_, err := toml.DecodeFile(filePath, data)
	return err
}
