package backoffice

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recliq/go-backoffice/components/backoffice/tableview"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// TableManifestDocument models a YAML manifest adjusting registered tables.
type TableManifestDocument struct {
	Version string          `json:"version" yaml:"version"`
	Name    string          `json:"name,omitempty" yaml:"name,omitempty"`
	Tables  []TableOverride `json:"tables" yaml:"tables"`
	Source  string          `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest from disk, applies it to the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*TableManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument applies every table override in the manifest.
func (r *Registry) LoadManifestDocument(doc *TableManifestDocument) error {
	if doc == nil {
		return fmt.Errorf("backoffice: manifest document is nil")
	}
	for _, table := range doc.Tables {
		if err := r.ApplyOverride(table); err != nil {
			return fmt.Errorf("backoffice: apply table %s from %s: %w", table.Code, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without applying it.
func ReadManifest(path string) (*TableManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("backoffice: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("backoffice: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*TableManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc TableManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("backoffice: manifest is empty")
		}
		return nil, fmt.Errorf("backoffice: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ManifestFromRegistry describes the registry's current tables as a manifest.
func ManifestFromRegistry(reg *Registry) *TableManifestDocument {
	doc := &TableManifestDocument{Version: ManifestVersion, Tables: []TableOverride{}}
	for _, desc := range reg.Descriptors() {
		doc.Tables = append(doc.Tables, TableOverride{
			Code:        desc.Code,
			Name:        desc.Name,
			Description: desc.Description,
			Category:    desc.Category,
			PageSize:    desc.PageSize,
			DefaultSort: desc.DefaultSort,
		})
	}
	return doc
}

// WriteManifest encodes doc as YAML.
func WriteManifest(w io.Writer, doc *TableManifestDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("backoffice: write manifest: %w", err)
	}
	return encoder.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *TableManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("backoffice: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Tables))
	for idx, table := range doc.Tables {
		if table.Code == "" {
			return fmt.Errorf("backoffice: manifest table at index %d is missing code", idx)
		}
		if _, exists := seen[table.Code]; exists {
			return fmt.Errorf("backoffice: manifest duplicates table code %s", table.Code)
		}
		if table.PageSize < 0 || table.PageSize > tableview.MaxPageSize {
			return fmt.Errorf("backoffice: manifest table %s: %w", table.Code, tableview.ErrInvalidPageSize)
		}
		seen[table.Code] = struct{}{}
	}
	return nil
}

func (doc *TableManifestDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
}
