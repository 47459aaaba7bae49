package graph

import (
	"slices"
	"testing"

	"github.com/matzehuels/geoset/pkg/errors"
	"github.com/matzehuels/geoset/pkg/label"
	"github.com/matzehuels/geoset/pkg/tier"
)

func scenarioSets() label.Sets {
	return label.Parse([3]string{"US, UK", "West, East", "Zone1, Zone2"})
}

func TestAddEdgeCanonicalDirection(t *testing.T) {
	tests := []struct {
		name       string
		src        string
		srcTier    tier.Tier
		dst        string
		dstTier    tier.Tier
		wantSource Node
		wantTarget string
	}{
		{"countries first", "US", tier.Countries, "West", tier.Regions, Node{tier.Countries, "US"}, "West"},
		{"regions first", "West", tier.Regions, "US", tier.Countries, Node{tier.Countries, "US"}, "West"},
		{"regions to areas", "West", tier.Regions, "Zone1", tier.Areas, Node{tier.Regions, "West"}, "Zone1"},
		{"areas to regions", "Zone1", tier.Areas, "West", tier.Regions, Node{tier.Regions, "West"}, "Zone1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(PolicyLatent)
			if err := g.AddEdge(tt.src, tt.srcTier, tt.dst, tt.dstTier); err != nil {
				t.Fatalf("AddEdge: %v", err)
			}
			got := g.Targets(tt.wantSource.Tier, tt.wantSource.Label)
			if !slices.Equal(got, []string{tt.wantTarget}) {
				t.Errorf("Targets(%v) = %v, want [%s]", tt.wantSource, got, tt.wantTarget)
			}
			if g.Len() != 1 {
				t.Errorf("Len() = %d, want 1", g.Len())
			}
		})
	}
}

func TestAddEdgeRejections(t *testing.T) {
	tests := []struct {
		name    string
		a       string
		aTier   tier.Tier
		b       string
		bTier   tier.Tier
		wantErr errors.Code
	}{
		{"same tier countries", "US", tier.Countries, "UK", tier.Countries, errors.ErrCodeSameTier},
		{"same tier areas", "Zone1", tier.Areas, "Zone2", tier.Areas, errors.ErrCodeSameTier},
		{"countries to areas", "US", tier.Countries, "Zone1", tier.Areas, errors.ErrCodeNonAdjacentTier},
		{"areas to countries", "Zone1", tier.Areas, "US", tier.Countries, errors.ErrCodeNonAdjacentTier},
		{"empty label", "", tier.Countries, "West", tier.Regions, errors.ErrCodeInvalidLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(PolicyLatent)
			err := g.AddEdge(tt.a, tt.aTier, tt.b, tt.bTier)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge error = %v, want %s", err, tt.wantErr)
			}
			if g.Len() != 0 {
				t.Errorf("rejected edge was stored: Len() = %d", g.Len())
			}
		})
	}
}

func TestAddEdgeIdempotent(t *testing.T) {
	g := New(PolicyLatent)
	_, added, err := g.AddEdgeReport("US", tier.Countries, "West", tier.Regions)
	if err != nil || !added {
		t.Fatalf("first add: added=%v err=%v", added, err)
	}
	_, added, err = g.AddEdgeReport("West", tier.Regions, "US", tier.Countries)
	if err != nil || added {
		t.Fatalf("second add: added=%v err=%v", added, err)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New(PolicyLatent)
	_ = g.AddEdge("US", tier.Countries, "West", tier.Regions)
	_ = g.AddEdge("US", tier.Countries, "East", tier.Regions)

	removed, err := g.RemoveEdge("West", tier.Regions, "US", tier.Countries)
	if err != nil || !removed {
		t.Fatalf("RemoveEdge: removed=%v err=%v", removed, err)
	}
	if g.HasEdge("US", tier.Countries, "West", tier.Regions) {
		t.Error("edge still present after removal")
	}
	if !g.HasEdge("US", tier.Countries, "East", tier.Regions) {
		t.Error("unrelated edge was removed")
	}

	removed, _ = g.RemoveEdge("US", tier.Countries, "West", tier.Regions)
	if removed {
		t.Error("removing a missing edge should report false")
	}

	_, err = g.RemoveEdge("US", tier.Countries, "UK", tier.Countries)
	if !errors.Is(err, errors.ErrCodeSameTier) {
		t.Errorf("RemoveEdge same tier error = %v", err)
	}

	_, _ = g.RemoveEdge("US", tier.Countries, "East", tier.Regions)
	if g.Len() != 0 || len(g.Edges()) != 0 {
		t.Errorf("graph should be empty, got %v", g.Edges())
	}
}

func TestEdgesOrder(t *testing.T) {
	g := New(PolicyLatent)
	_ = g.AddEdge("West", tier.Regions, "Zone2", tier.Areas)
	_ = g.AddEdge("US", tier.Countries, "West", tier.Regions)
	_ = g.AddEdge("West", tier.Regions, "Zone1", tier.Areas)

	want := []Edge{
		{From: Node{tier.Regions, "West"}, To: Node{tier.Areas, "Zone2"}},
		{From: Node{tier.Regions, "West"}, To: Node{tier.Areas, "Zone1"}},
		{From: Node{tier.Countries, "US"}, To: Node{tier.Regions, "West"}},
	}
	if got := g.Edges(); !slices.Equal(got, want) {
		t.Errorf("Edges() = %v, want %v", got, want)
	}
}

func TestRebuildScenario(t *testing.T) {
	g := New(PolicyLatent)
	if err := g.AddEdge("US", tier.Countries, "West", tier.Regions); err != nil {
		t.Fatal(err)
	}

	var drawn []Edge
	s := g.Rebuild(scenarioSets(), func(e Edge) { drawn = append(drawn, e) })

	if got := s.Links(tier.Countries, "US"); !slices.Equal(got, []string{"West"}) {
		t.Errorf(`snapshot["countries"]["US"] = %v, want [West]`, got)
	}
	if got := s.Links(tier.Countries, "UK"); got == nil || len(got) != 0 {
		t.Errorf(`snapshot["countries"]["UK"] = %v, want []`, got)
	}
	for _, l := range []string{"Zone1", "Zone2"} {
		if !s.Has(tier.Areas, l) {
			t.Errorf("areas entry %s missing", l)
		}
	}
	if len(drawn) != 1 || drawn[0].From.Label != "US" || drawn[0].To.Label != "West" {
		t.Errorf("drawn = %v, want one US→West", drawn)
	}
}

func TestRebuildLatentEdges(t *testing.T) {
	g := New(PolicyLatent)
	_ = g.AddEdge("US", tier.Countries, "West", tier.Regions)
	_ = g.AddEdge("West", tier.Regions, "Zone1", tier.Areas)

	// West removed from the regions input
	without := label.Parse([3]string{"US, UK", "East", "Zone1, Zone2"})
	s := g.Rebuild(without, nil)
	if len(s.Links(tier.Countries, "US")) != 0 {
		t.Errorf("edge to vanished label emitted: %v", s.Links(tier.Countries, "US"))
	}
	if s.Stats().Links != 0 {
		t.Errorf("no links expected, got %d", s.Stats().Links)
	}
	if g.Len() != 2 {
		t.Errorf("latent edges should stay stored, Len() = %d", g.Len())
	}

	// West retyped identically
	s = g.Rebuild(scenarioSets(), nil)
	if got := s.Links(tier.Countries, "US"); !slices.Equal(got, []string{"West"}) {
		t.Errorf("latent edge did not reappear: %v", got)
	}
	if got := s.Links(tier.Regions, "West"); !slices.Equal(got, []string{"Zone1"}) {
		t.Errorf("latent edge did not reappear: %v", got)
	}
}

func TestRebuildPrune(t *testing.T) {
	g := New(PolicyPrune)
	_ = g.AddEdge("US", tier.Countries, "West", tier.Regions)
	_ = g.AddEdge("UK", tier.Countries, "East", tier.Regions)

	g.Rebuild(label.Parse([3]string{"US, UK", "East", ""}), nil)
	if g.Len() != 1 || !g.HasEdge("UK", tier.Countries, "East", tier.Regions) {
		t.Fatalf("prune kept wrong edges: %v", g.Edges())
	}

	s := g.Rebuild(scenarioSets(), nil)
	if len(s.Links(tier.Countries, "US")) != 0 {
		t.Error("pruned edge reappeared")
	}
}

func TestRebuildTierScopedIdentity(t *testing.T) {
	g := New(PolicyLatent)
	_ = g.AddEdge("Denmark", tier.Countries, "Denmark", tier.Regions)

	// "Denmark" present only as a country and an area: the region endpoint is gone.
	s := g.Rebuild(label.Parse([3]string{"Denmark", "", "Denmark"}), nil)
	if s.Stats().Links != 0 {
		t.Errorf("edge should not resolve against another tier: %v", s.AllLinks())
	}

	s = g.Rebuild(label.Parse([3]string{"Denmark", "Denmark", ""}), nil)
	if got := s.Links(tier.Countries, "Denmark"); !slices.Equal(got, []string{"Denmark"}) {
		t.Errorf("Links = %v", got)
	}
}

func TestReset(t *testing.T) {
	g := New(PolicyLatent)
	_ = g.AddEdge("US", tier.Countries, "West", tier.Regions)
	g.Reset()
	if g.Len() != 0 || len(g.Edges()) != 0 {
		t.Error("Reset should clear all edges")
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyLatent, false},
		{"latent", PolicyLatent, false},
		{"prune", PolicyPrune, false},
		{"merge", PolicyLatent, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, %v", tt.in, got, err)
		}
		if err == nil && tt.in != "" && got.String() != tt.in {
			t.Errorf("String() = %q, want %q", got.String(), tt.in)
		}
	}
}
