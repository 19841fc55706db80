package artifactscan

import (
	"testing"

	"github.com/duskline/robin-smesh/pkg/models"
)

func hasType(artifacts []models.Artifact, t models.ArtifactType) bool {
	for _, a := range artifacts {
		if a.Type == t {
			return true
		}
	}
	return false
}

func TestExtractBitcoin(t *testing.T) {
	got := Extract("Send payment to 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", "")
	if !hasType(got, models.ArtifactBitcoin) {
		t.Fatal("expected a bitcoin artifact")
	}
}

func TestExtractOnion(t *testing.T) {
	got := Extract("Visit our forum at dreadytofatroptsdj6io7l3xptbet6onoyno2yv7jicoxknyazubrad.onion", "")
	if !hasType(got, models.ArtifactOnion) {
		t.Fatal("expected an onion address artifact")
	}
}

func TestExtractCVE(t *testing.T) {
	got := Extract("Exploiting CVE-2023-12345 for initial access", "")
	if !hasType(got, models.ArtifactCVE) {
		t.Fatal("expected a CVE artifact")
	}
}

func TestExtractEmail(t *testing.T) {
	got := Extract("Contact admin@darkmarket.onion for support", "")
	if !hasType(got, models.ArtifactEmail) {
		t.Fatal("expected an email artifact")
	}
}

func TestSha256PreemptsSha1(t *testing.T) {
	hash := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := Extract(hash, "")
	if !hasType(got, models.ArtifactSHA256) {
		t.Fatal("expected a sha256 artifact")
	}
	if hasType(got, models.ArtifactSHA1) {
		t.Fatal("64-char hash should not also be classified as sha1")
	}
}

func TestCommonDomainsFiltered(t *testing.T) {
	got := Extract("See https://github.com/example for details", "report.onion")
	if hasType(got, models.ArtifactDomain) {
		t.Fatal("github.com should be filtered as a common domain")
	}
	if !hasType(got, models.ArtifactURL) {
		t.Fatal("expected the URL itself to still be extracted")
	}
}

func TestDeduplicatesWithinPass(t *testing.T) {
	got := Extract("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa and 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa again", "")
	count := 0
	for _, a := range got {
		if a.Type == models.ArtifactBitcoin {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 deduplicated bitcoin artifact, got %d", count)
	}
}
