package esgevidence

import (
	"strings"
	"testing"
)

func TestLoadOrgCatalogValid(t *testing.T) {
	yaml := `
orgs:
  - org_id: acme
    year: 2024
    provider: local
    pdf_path: /data/acme_2024.pdf
  - org_id: globex
    year: 2023
    provider: sec_edgar
`
	catalog, err := LoadOrgCatalog(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadOrgCatalog: %v", err)
	}
	if len(catalog.Orgs) != 2 {
		t.Fatalf("expected 2 org entries, got %d", len(catalog.Orgs))
	}
	if catalog.Orgs[0].DocID() != "acme_2024" {
		t.Fatalf("expected local doc_id acme_2024, got %s", catalog.Orgs[0].DocID())
	}
	if catalog.Orgs[1].DocID() != "sec-edgar-globex-2023" {
		t.Fatalf("expected sec_edgar-prefixed doc_id, got %s", catalog.Orgs[1].DocID())
	}
}

func TestLoadOrgCatalogRejectsMissingOrgID(t *testing.T) {
	yaml := `
orgs:
  - year: 2024
    provider: local
    pdf_path: /data/x.pdf
`
	if _, err := LoadOrgCatalog(strings.NewReader(yaml)); err == nil {
		t.Fatalf("expected error for missing org_id")
	}
}

func TestLoadOrgCatalogRejectsUnknownProvider(t *testing.T) {
	yaml := `
orgs:
  - org_id: acme
    year: 2024
    provider: carrier_pigeon
`
	if _, err := LoadOrgCatalog(strings.NewReader(yaml)); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestLoadOrgCatalogRejectsLocalWithoutPathOrURL(t *testing.T) {
	yaml := `
orgs:
  - org_id: acme
    year: 2024
    provider: local
`
	if _, err := LoadOrgCatalog(strings.NewReader(yaml)); err == nil {
		t.Fatalf("expected error for local provider missing pdf_path/source_url")
	}
}
