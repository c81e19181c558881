package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// readDotEnv reads a KEY=VALUE secret file without touching the process
// environment. The bool reports whether the file exists; a missing file is
// not an error.
func readDotEnv(path string) (map[string]string, bool, error) {
	if path == "" {
		return map[string]string{}, false, nil
	}

	values, err := godotenv.Read(path)
	switch {
	case err == nil:
		return values, true, nil
	case errors.Is(err, fs.ErrNotExist):
		return map[string]string{}, false, nil
	default:
		return nil, true, err
	}
}
