package config

import (
	"log"

	"github.com/spf13/afero"
)

// Initialize writes a default configuration into the directory and
// returns the loaded result. An existing config.yaml is left
// untouched.
func Initialize(path string, logger *log.Logger) (*Configuration, error) {
	return InitializeFs(afero.NewOsFs(), path, logger)
}

// InitializeFs is Initialize over an arbitrary filesystem, for tests.
func InitializeFs(fs afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	dirFs := afero.NewBasePathFs(fs, path)

	exists, err := afero.Exists(dirFs, ConfigurationName)
	switch {
	case err != nil:
		return nil, err
	case exists:
		logger.Printf("%s already exists, leaving it unchanged", ConfigurationName)
	default:
		logger.Printf("writing default %s", ConfigurationName)
		if err := afero.WriteFile(dirFs, ConfigurationName, defaultConfigData, 0644); err != nil {
			return nil, err
		}
	}

	return LoadFs(fs, path)
}
