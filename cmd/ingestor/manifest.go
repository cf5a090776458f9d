package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samirrijal/geoexport/internal/core/domain"
)

// Manifest lists the supplier place sources to ingest for one client.
type Manifest struct {
	Source    string          `json:"source"`
	ClientID  string          `json:"client_id"`
	Suppliers []SupplierEntry `json:"suppliers"`
}

// SupplierEntry is one supplier and the location of its FeatureCollection.
type SupplierEntry struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Country     string     `json:"country"`
	Commodity   string     `json:"commodity"`
	Places      string     `json:"places"`
	CollectedAt *time.Time `json:"collected_at,omitempty"`
}

// Supplier returns the domain supplier owned by clientID.
func (e SupplierEntry) Supplier(clientID string) *domain.Supplier {
	return &domain.Supplier{
		ID:        e.ID,
		ClientID:  clientID,
		Name:      strings.TrimSpace(e.Name),
		Country:   strings.ToUpper(e.Country),
		Commodity: e.Commodity,
	}
}

func parseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.ClientID == "" {
		return nil, fmt.Errorf("manifest has no client_id")
	}
	for i, s := range m.Suppliers {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("supplier %d has no name", i)
		}
		if s.Places == "" {
			return nil, fmt.Errorf("supplier %q has no places source", s.Name)
		}
		if s.Commodity != "" && !domain.IsCommodity(s.Commodity) {
			return nil, fmt.Errorf("supplier %q: unknown commodity %q", s.Name, s.Commodity)
		}
	}
	return &m, nil
}

// fetchPlaces reads a places document from an http(s) URL or from a path
// relative to the manifest directory.
func fetchPlaces(ctx context.Context, client *http.Client, baseDir, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		return os.ReadFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, src)
	}
	return io.ReadAll(resp.Body)
}
