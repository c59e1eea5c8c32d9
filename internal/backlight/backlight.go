// Package backlight provides access to sysfs backlight device files.
package backlight

import (
	"fmt"
	"os"
)

// Endpoint is one backlight device's sysfs file pair: the current brightness
// attribute and the (fixed) maximum brightness attribute.
type Endpoint struct {
	BrightnessPath string
	MaxPath        string
}

// Accessor is the capability needed to talk to backlight files. The sync loop
// depends on this interface only, so it can run against in-memory fakes.
type Accessor interface {
	ReadInt(path string) (int, error)
	WriteInt(path string, value int) error
}

// Range reads the endpoint's maximum brightness through acc and validates it.
// A maximum that is not a positive integer would make scaling meaningless
// (and division by zero possible), so anything else is an error.
func (e Endpoint) Range(acc Accessor) (int, error) {
	max, err := acc.ReadInt(e.MaxPath)
	if err != nil {
		return 0, fmt.Errorf("read maximum brightness: %w", err)
	}
	if max <= 0 {
		return 0, fmt.Errorf("invalid maximum brightness %d in %s", max, e.MaxPath)
	}
	return max, nil
}

// ValidateReadable checks that both endpoint files exist and are readable.
// Used for the source endpoint, which is never written.
func (e Endpoint) ValidateReadable() error {
	for _, path := range []string{e.BrightnessPath, e.MaxPath} {
		if err := checkReadable(path); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWritable checks that the max file is readable and the brightness
// file is writable. Used for the target endpoint.
func (e Endpoint) ValidateWritable() error {
	if err := checkReadable(e.MaxPath); err != nil {
		return err
	}
	f, err := os.OpenFile(e.BrightnessPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("backlight file not writable: %w", err)
	}
	return f.Close()
}

func checkReadable(path string) error {
	// Opening covers both existence and read permission.
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("backlight file not readable: %w", err)
	}
	return f.Close()
}
