package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"freestyle/internal/services"
)

const sidecarSuffix = ".json"

// Record is one raw input unit: a video locator plus its caption metadata.
type Record struct {
	VideoPath   string
	SidecarPath string
	Caption     string
	Date        string
	MediaID     string
}

// VideoName returns the base filename of the paired video.
func (r Record) VideoName() string {
	return filepath.Base(r.VideoPath)
}

type sidecar struct {
	Description *text `json:"description"`
	Date        *text `json:"date"`
	PostDate    *text `json:"post_date"`
	MediaID     *text `json:"media_id"`
}

// text accepts JSON strings and numbers; downloaders disagree on whether
// media identifiers are quoted.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*t = text(n.String())
	return nil
}

func (t *text) value() string {
	if t == nil {
		return ""
	}
	return string(*t)
}

// Load reads every <video>.json sidecar in metadataDir and pairs it with
// videoDir/<video>. A missing metadataDir yields no records.
func Load(metadataDir, videoDir string) ([]Record, error) {
	entries, err := os.ReadDir(metadataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrConfiguration, "load", "read metadata dir", metadataDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, sidecarSuffix) {
			continue
		}
		if strings.TrimSuffix(name, sidecarSuffix) == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]Record, 0, len(names))
	for _, name := range names {
		rec, err := ReadSidecar(filepath.Join(metadataDir, name))
		if err != nil {
			return nil, err
		}
		rec.VideoPath = filepath.Join(videoDir, strings.TrimSuffix(name, sidecarSuffix))
		records = append(records, rec)
	}
	return records, nil
}

// ReadSidecar parses one sidecar file. VideoPath is left empty.
func ReadSidecar(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, services.Wrap(services.ErrNotFound, "load", "read sidecar", path, err)
	}
	var raw sidecar
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, services.Wrap(services.ErrValidation, "load", "parse sidecar", path, err)
	}

	date := raw.PostDate.value()
	if raw.Date != nil {
		date = raw.Date.value()
	}
	return Record{
		SidecarPath: path,
		Caption:     raw.Description.value(),
		Date:        date,
		MediaID:     raw.MediaID.value(),
	}, nil
}
