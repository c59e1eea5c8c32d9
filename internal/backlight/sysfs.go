package backlight

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Sysfs is the production Accessor backed by real sysfs attribute files.
// Files are opened and closed per operation; no handles are held across
// poll iterations.
type Sysfs struct{}

// ReadInt reads a sysfs attribute and parses it as a base-10 integer.
// Sysfs attributes carry a trailing newline, which is stripped before parsing.
func (Sysfs) ReadInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

// WriteInt writes value as decimal text to a sysfs attribute.
func (Sysfs) WriteInt(path string, value int) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strconv.Itoa(value)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
