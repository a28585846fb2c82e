package analytics

import (
	"encoding/json"
	"fmt"
	"os"
)

// File references an uploaded file kept on disk
type File struct {
	Path       string
	ClientName string
}

type fileProxy struct {
	IsProxy    bool   `json:"__is_proxy"`
	Path       string `json:"__file_path"`
	ClientName string `json:"__file_client_name"`
}

func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file %s: %w", f.ClientName, err)
	}
	return data, nil
}

func (f File) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileProxy{IsProxy: true, Path: f.Path, ClientName: f.ClientName})
}

func (f *File) UnmarshalJSON(data []byte) error {
	var proxy fileProxy
	if err := json.Unmarshal(data, &proxy); err != nil {
		return err
	}
	if proxy.Path == "" {
		return fmt.Errorf("file value has no %s", "__file_path")
	}
	f.Path = proxy.Path
	f.ClientName = proxy.ClientName
	return nil
}

// FileFromValue accepts a *File, a File or a decoded proxy map
func FileFromValue(value any) (*File, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *File:
		return v, nil
	case File:
		return &v, nil
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var f File
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return &f, nil
	}
	return nil, fmt.Errorf("unsupported file value %T", value)
}
