package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/miekg/dns"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
)

// Section names used in the rules document.
const (
	SiteSection = "geosite_files"
	IPSection   = "geoip_files"
)

// ErrInvalidConfig is returned when the rules document cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed rules.schema.json
var rulesSchema []byte

// FileSpec describes one data file that has to carry a set of tags.
type FileSpec struct {
	Name         string       `mapstructure:"-"`
	Kind         geodata.Kind `mapstructure:"-"`
	URL          string       `mapstructure:"url"`
	Source       string       `mapstructure:"source"`
	RequiredTags []string     `mapstructure:"required_tags"`
}

// Required returns the required tags as a set.
func (f FileSpec) Required() geodata.TagSet {
	return geodata.NewTagSet(f.RequiredTags...)
}

// Rules is the parsed rules document. Files keeps the geosite section
// before the geoip section, each in declared order.
type Rules struct {
	Files []FileSpec
}

// ByKind returns the files of one section.
func (r *Rules) ByKind(kind geodata.Kind) []FileSpec {
	var out []FileSpec
	for _, f := range r.Files {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// SectionName returns the rules document key holding files of kind.
func SectionName(kind geodata.Kind) string {
	switch kind {
	case geodata.KindSite:
		return SiteSection
	case geodata.KindIP:
		return IPSection
	default:
		return string(kind) + "_files"
	}
}

// LoadRules reads and validates the rules document at path.
func LoadRules(fs afero.Fs, path string) (*Rules, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, path, err)
	}
	rules, err := ParseRules(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}

// ParseRules parses a rules document in the given format.
func ParseRules(data []byte, format Format) (*Rules, error) {
	doc, order, err := decodeDocument(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	top, _ := doc.(map[string]any)
	rules := &Rules{}
	seen := make(map[string]string)
	for _, kind := range geodata.Kinds {
		section := SectionName(kind)
		files, _ := top[section].(map[string]any)
		for _, name := range order[section] {
			if prev, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %s.%s: duplicate file name (already declared in %s)", ErrInvalidConfig, section, name, prev)
			}
			seen[name] = section

			spec, err := buildFileSpec(kind, name, files[name])
			if err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %w", ErrInvalidConfig, section, name, err)
			}
			rules.Files = append(rules.Files, spec)
		}
	}
	return rules, nil
}

func validateSchema(doc any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(rulesSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return errors.New(strings.Join(problems, "; "))
}

func buildFileSpec(kind geodata.Kind, name string, raw any) (FileSpec, error) {
	spec := FileSpec{}
	if err := mapstructure.Decode(raw, &spec); err != nil {
		return spec, fmt.Errorf("decode: %w", err)
	}
	spec.Name = name
	spec.Kind = kind

	if err := validateFileName(name); err != nil {
		return spec, err
	}

	spec.URL = strings.TrimSpace(spec.URL)
	spec.Source = strings.TrimSpace(spec.Source)
	if spec.URL == "" {
		def, ok := geodata.Catalog[spec.Source]
		if !ok {
			return spec, fmt.Errorf("unknown source %q", spec.Source)
		}
		if def.Kind != kind {
			return spec, fmt.Errorf("source %q is a %s list", spec.Source, def.Kind)
		}
		spec.URL = def.URL
	}
	if err := ValidateURL(spec.URL); err != nil {
		return spec, err
	}

	tags, err := normalizeTags(spec.RequiredTags)
	if err != nil {
		return spec, err
	}
	spec.RequiredTags = tags
	return spec, nil
}

func validateFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("file name is empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("file name %q must not contain path elements", name)
	}
	return nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a valid host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", raw)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("invalid url %q: missing host", raw)
	}
	if net.ParseIP(host) != nil {
		return nil
	}
	if _, ok := dns.IsDomainName(host); !ok {
		return fmt.Errorf("invalid url %q: bad host name", raw)
	}
	return nil
}

func normalizeTags(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, tag := range raw {
		norm := geodata.NormalizeTag(tag)
		if norm == "" {
			return nil, errors.New("required_tags contains an empty tag")
		}
		if seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out, nil
}
