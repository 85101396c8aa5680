package fighter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProfileFile is the on-disk YAML form of a competitor.
//
// Stats may use the full skills format, the legacy six-stat format, or
// snake_case keys; it is normalised by FromRaw when converted to a Profile.
type ProfileFile struct {
	ID        string         `yaml:"id,omitempty"`
	Name      string         `yaml:"name"`
	Archetype string         `yaml:"archetype,omitempty"`
	Stats     map[string]any `yaml:"stats"`
}

// Profile converts the file into an engine Profile.
func (f *ProfileFile) Profile() Profile {
	return FromRaw(f.ID, f.Name, f.Stats)
}

// Validate applies the registration rules to the file's name and stats.
func (f *ProfileFile) Validate() (BudgetReport, error) {
	if _, err := SanitizeName(f.Name); err != nil {
		return BudgetReport{}, err
	}
	_, report, err := ValidateStats(f.Stats)
	return report, err
}

// LoadProfileFile reads and parses a YAML profile file.
//
// Precondition: path must be a readable file.
// Postcondition: Returns a non-nil *ProfileFile or a non-nil error.
func LoadProfileFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}
	var f ProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("profile %s: name is required", path)
	}
	if f.Stats == nil {
		f.Stats = map[string]any{}
	}
	return &f, nil
}

// WriteProfileFile writes f to path as YAML, refusing to overwrite an existing file.
func WriteProfileFile(path string, f *ProfileFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating profile %s: %w", path, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("writing profile %s: %w", path, err)
	}
	return out.Close()
}
