package persona

import "testing"

func TestLoadEmbedded(t *testing.T) {
	r, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	if r.Len() < 9 {
		t.Fatalf("expected at least 9 personas, got %d", r.Len())
	}
	if _, ok := r.Get("refiner"); !ok {
		t.Fatalf("expected refiner persona")
	}
	if _, ok := r.Get("analyst_lead"); !ok {
		t.Fatalf("expected analyst_lead persona")
	}
}

func TestSpecialistAnalysts(t *testing.T) {
	r, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	specialists := r.SpecialistAnalysts()
	if len(specialists) < 6 {
		t.Fatalf("expected at least 6 specialists, got %d", len(specialists))
	}
}

func TestLeadAnalyst(t *testing.T) {
	r, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	lead, ok := r.LeadAnalyst()
	if !ok {
		t.Fatalf("expected a lead analyst")
	}
	if lead.Persona.ID != "analyst_lead" {
		t.Fatalf("expected analyst_lead, got %s", lead.Persona.ID)
	}
}

func TestHandlesArtifact(t *testing.T) {
	r, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded: %v", err)
	}
	crypto, ok := r.Get("analyst_crypto")
	if !ok {
		t.Fatalf("expected analyst_crypto persona")
	}
	if !crypto.HandlesArtifact("bitcoin") {
		t.Fatalf("expected analyst_crypto to handle bitcoin")
	}
	if crypto.HandlesArtifact("cve") {
		t.Fatalf("did not expect analyst_crypto to handle cve")
	}
}
