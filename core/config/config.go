// Package config loads and validates the pipesh configuration
// directory.
package config

import (
	_ "embed"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	// ConfigurationName is the file name inside the configuration
	// directory.
	ConfigurationName = "config.yaml"
)

// Configuration controls the interactive loop.
type Configuration struct {
	// configFs is rooted at the configuration directory.
	configFs afero.Fs

	// Prompt is printed before each command line is read.
	Prompt string `json:"prompt"`

	// PipeSeparator is the standalone word that splits a line into a
	// two-stage pipeline.
	PipeSeparator string `json:"pipe_separator" validate:"required"`

	// EventLog is the newline-delimited JSON log of dispatched lines,
	// relative to the configuration directory.
	EventLog string `json:"event_log" validate:"required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// OpenEventLog opens the event log for appending, creating it if
// needed.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.configFs.OpenFile(c.EventLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.configFs.Open(c.EventLog)
}
