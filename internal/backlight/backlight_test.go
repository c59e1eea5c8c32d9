package backlight

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSysfsReadInt(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected int
		wantErr  bool
	}{
		{name: "plain_value", content: "937", expected: 937},
		{name: "trailing_newline", content: "468\n", expected: 468},
		{name: "zero", content: "0\n", expected: 0},
		{name: "negative", content: "-5\n", expected: -5},
		{name: "garbage", content: "abc\n", wantErr: true},
		{name: "empty", content: "", wantErr: true},
	}

	var acc Sysfs
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name, tt.content)
			got, err := acc.ReadInt(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ReadInt(%q) = %d, want error", tt.content, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("ReadInt(%q) = %d, want %d", tt.content, got, tt.expected)
			}
		})
	}
}

func TestSysfsReadInt_MissingFile(t *testing.T) {
	var acc Sysfs
	if _, err := acc.ReadInt(filepath.Join(t.TempDir(), "brightness")); err == nil {
		t.Fatal("ReadInt on a missing file should fail")
	}
}

func TestSysfsWriteInt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "brightness", "0\n")

	var acc Sysfs
	if err := acc.WriteInt(path, 127); err != nil {
		t.Fatal(err)
	}

	got, err := acc.ReadInt(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != 127 {
		t.Errorf("read back %d, want 127", got)
	}
}

func TestSysfsWriteInt_MissingFile(t *testing.T) {
	var acc Sysfs
	if err := acc.WriteInt(filepath.Join(t.TempDir(), "brightness"), 10); err == nil {
		t.Fatal("WriteInt on a missing file should fail")
	}
}

func TestEndpointRange(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected int
		wantErr  bool
	}{
		{name: "valid", content: "255\n", expected: 255},
		{name: "zero_is_invalid", content: "0\n", wantErr: true},
		{name: "negative_is_invalid", content: "-5\n", wantErr: true},
		{name: "garbage_is_invalid", content: "abc\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Endpoint{MaxPath: writeFile(t, dir, tt.name, tt.content)}
			got, err := e.Range(Sysfs{})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Range accepted %q (= %d)", tt.content, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("Range = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestValidateReadable(t *testing.T) {
	dir := t.TempDir()
	e := Endpoint{
		BrightnessPath: writeFile(t, dir, "brightness", "100\n"),
		MaxPath:        writeFile(t, dir, "max_brightness", "255\n"),
	}
	if err := e.ValidateReadable(); err != nil {
		t.Fatal(err)
	}

	e.MaxPath = filepath.Join(dir, "missing")
	if err := e.ValidateReadable(); err == nil {
		t.Fatal("ValidateReadable passed with a missing max file")
	}
}

func TestValidateWritable(t *testing.T) {
	dir := t.TempDir()
	e := Endpoint{
		BrightnessPath: writeFile(t, dir, "brightness", "100\n"),
		MaxPath:        writeFile(t, dir, "max_brightness", "255\n"),
	}
	if err := e.ValidateWritable(); err != nil {
		t.Fatal(err)
	}

	e.BrightnessPath = filepath.Join(dir, "missing")
	if err := e.ValidateWritable(); err == nil {
		t.Fatal("ValidateWritable passed with a missing brightness file")
	}
}
