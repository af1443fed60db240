package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"sort"
	"time"

	"github.com/dendrascience/tabarchive/version"
)

const (
	manifestName    = "manifest.json"
	tablesDir       = "tables"
	manifestVersion = 1
)

type (
	// Manifest describes every table held by an archive.
	Manifest struct {
		FormatVersion int                   `json:"format_version"`
		ToolVersion   string                `json:"tool_version"`
		Created       time.Time             `json:"created"`
		Updated       time.Time             `json:"updated"`
		Tables        map[string]*TableInfo `json:"tables"`
	}
	// TableInfo describes one table.
	TableInfo struct {
		Key         string     `json:"key"`
		Format      Format     `json:"format"`
		Columns     []string   `json:"columns"`
		DataColumns []string   `json:"data_columns,omitempty"`
		Rows        int        `json:"rows"`
		Parts       []PartInfo `json:"parts"`
	}
	// PartInfo describes one appended write unit.
	PartInfo struct {
		ID      string    `json:"id"`
		Rows    int       `json:"rows"`
		Written time.Time `json:"written"`
	}
)

func newManifest(now time.Time) *Manifest {
	return &Manifest{
		FormatVersion: manifestVersion,
		ToolVersion:   version.GetVersion(),
		Created:       now,
		Updated:       now,
		Tables:        make(map[string]*TableInfo),
	}
}

// Keys returns the table keys in sorted order.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Tables))
	for k := range m.Tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TotalRows sums the rows of every table.
func (m *Manifest) TotalRows() int {
	total := 0
	for _, t := range m.Tables {
		total += t.Rows
	}
	return total
}

// IsDataColumn reports whether column has a per-part index.
func (t *TableInfo) IsDataColumn(column string) bool {
	for _, c := range t.DataColumns {
		if c == column {
			return true
		}
	}
	return false
}

func (t *TableInfo) columnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (t *TableInfo) clone() TableInfo {
	c := *t
	c.Columns = append([]string(nil), t.Columns...)
	c.DataColumns = append([]string(nil), t.DataColumns...)
	c.Parts = append([]PartInfo(nil), t.Parts...)
	return c
}

// tablePrefix is the directory of all entries belonging to key.
func tablePrefix(key string) string {
	return path.Join(tablesDir, url.PathEscape(key)) + "/"
}

func columnEntry(key, part string, col int) string {
	return path.Join(tablesDir, url.PathEscape(key), part, fmt.Sprintf("%d.col", col))
}

func indexEntry(key, part string, col int) string {
	return path.Join(tablesDir, url.PathEscape(key), part, fmt.Sprintf("%d.idx", col))
}

func readManifest(zr *zip.Reader) (*Manifest, error) {
	f, err := zr.Open(manifestName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, manifestName, err)
	}
	defer f.Close()
	m := &Manifest{}
	if err := json.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptArchive, manifestName, err)
	}
	if m.Tables == nil {
		m.Tables = make(map[string]*TableInfo)
	}
	return m, nil
}

func writeManifest(zw *zip.Writer, m *Manifest) error {
	w, err := zw.Create(manifestName)
	if err != nil {
		return err
	}
	je := json.NewEncoder(w)
	je.SetIndent("", "  ")
	return je.Encode(m)
}
