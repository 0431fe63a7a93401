package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-templateset/pkg/templates"
)

// Suffixes recognised as manifest files.
var manifestSuffixes = []string{
	".templates.json",
	".templates.yaml",
	".templates.yml",
	".templates.toml",
}

// IsManifest reports whether name looks like a manifest file.
func IsManifest(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range manifestSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Parse decodes and validates one manifest. The format is chosen from the
// extension of source; unknown fields are rejected.
func Parse(data []byte, source string) (Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, fmt.Errorf("%w: file %s is empty", ErrInvalidManifest, source)
	}

	var doc Document
	var err error
	switch strings.ToLower(path.Ext(source)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	default:
		return Document{}, fmt.Errorf("%w: file %s has an unsupported extension", ErrInvalidManifest, source)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidManifest, source, err)
	}

	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("%w: file %s: %v", ErrInvalidManifest, source, err)
	}
	return doc, nil
}

// LoadFS walks fsys, parses every manifest file and returns a builder
// populated with their templates and groups. opts configure the builder.
func LoadFS(fsys fs.FS, opts ...templates.Option) (*templates.Builder, error) {
	builder := templates.NewBuilder(opts...)
	if err := LoadInto(builder, fsys); err != nil {
		return nil, err
	}
	return builder, nil
}

// LoadInto adds the manifests found in fsys to an existing builder. Keys
// already present in the builder, or declared by two manifests, are
// rejected. A nil fsys adds nothing.
func LoadInto(builder *templates.Builder, fsys fs.FS) error {
	if fsys == nil {
		return nil
	}

	groups := make(map[string]string)
	owners := make(map[string]string)

	return fs.WalkDir(fsys, ".", func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !IsManifest(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("manifest: read %s: %w", p, err)
		}
		doc, err := Parse(data, p)
		if err != nil {
			return err
		}

		for _, key := range sortedKeys(doc.Templates) {
			id := strings.TrimSpace(key)
			if owner, exists := owners[id]; exists {
				return fmt.Errorf("%w: duplicate template %q (files %s and %s)", ErrInvalidManifest, id, owner, p)
			}
			if _, exists := builder.Template(id); exists {
				return fmt.Errorf("%w: template %q (file %s) is already defined", ErrInvalidManifest, id, p)
			}

			tpl, err := buildTemplate(fsys, p, id, doc.Templates[key])
			if err != nil {
				return err
			}
			owners[id] = p
			builder.AddTemplate(id, tpl)
		}

		for _, key := range sortedKeys(doc.Groups) {
			id := strings.TrimSpace(key)
			if owner, exists := groups[id]; exists {
				return fmt.Errorf("%w: duplicate group %q (files %s and %s)", ErrInvalidManifest, id, owner, p)
			}
			if _, exists := builder.Group(id); exists {
				return fmt.Errorf("%w: group %q (file %s) is already defined", ErrInvalidManifest, id, p)
			}

			gb := templates.NewGroupBuilder()
			for member, target := range doc.Groups[key] {
				gb.AddMember(strings.TrimSpace(member), strings.TrimSpace(target))
			}
			groups[id] = p
			builder.AddGroup(id, gb.Build())
		}

		return nil
	})
}

func buildTemplate(fsys fs.FS, source, key string, spec TemplateSpec) (*templates.Template, error) {
	tpl := templates.NewTemplate()
	for idx, variant := range spec.Variants {
		body := variant.Body
		if file := strings.TrimSpace(variant.File); file != "" {
			data, err := readVariant(fsys, source, file)
			if err != nil {
				return nil, fmt.Errorf("manifest: template %q (file %s) variant %d: %w", key, source, idx, err)
			}
			body = string(data)
		}

		content, err := templates.NewContent(body, trimAll(variant.Locales)...)
		if err != nil {
			return nil, fmt.Errorf("%w: template %q (file %s) variant %d: %v", ErrInvalidManifest, key, source, idx, err)
		}
		tpl.AddContent(content.WithName(variant.Name))
	}
	return tpl, nil
}

func readVariant(fsys fs.FS, source, file string) ([]byte, error) {
	target := path.Join(path.Dir(source), file)
	if !fs.ValidPath(target) {
		return nil, fmt.Errorf("%w: file %q escapes the manifest root", ErrInvalidManifest, file)
	}
	return fs.ReadFile(fsys, target)
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for idx, value := range values {
		out[idx] = strings.TrimSpace(value)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
