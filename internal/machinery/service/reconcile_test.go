package service

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"machinery-service/internal/machinery/model"
)

func newTestReconciler(t *testing.T, threshold float64) *Reconciler {
	t.Helper()
	return NewReconciler(defaultCanonicalizer(t), threshold)
}

func TestBuildEquipmentSet(t *testing.T) {
	r := newTestReconciler(t, 0)

	got := r.BuildEquipmentSet([]string{"Main Engine#1", "main engine #2", "", "   ", "AnchorPort1", "AnchorS"})
	assert.Equal(t, []string{"anchor", "main engine"}, got.Sorted())
}

func TestBuildEquipmentSet_NullMarkers(t *testing.T) {
	r := newTestReconciler(t, 0)

	vessel := r.BuildEquipmentSet([]string{"Main Engine#1", "nan", "None", "NULL", " NaN "})
	assert.Equal(t, []string{"main engine"}, vessel.Sorted())

	res := r.Reconcile(vessel, r.BuildEquipmentSet([]string{"main engine"}), model.NewEquipmentSet(), model.NewEquipmentSet())
	assert.Empty(t, res.DifferentDisplay)
	assert.Empty(t, res.MissingDisplay)
}

func TestEquipmentSetFromRows(t *testing.T) {
	r := newTestReconciler(t, 0)

	rows := []map[string]string{
		{"Machinery Location": "Steering Gear"},
		{"Other": "Boiler"},
		{"Machinery Location": ""},
	}
	assert.Equal(t, []string{"steering gear"}, r.EquipmentSetFromRows(rows, "Machinery Location").Sorted())
}

func TestReconcile_EndToEnd(t *testing.T) {
	r := newTestReconciler(t, 0)

	vessel := r.BuildEquipmentSet([]string{"Main Engine#1", "AnchorPort1", "Mooring WinchAft-Stbd1"})
	reference := r.BuildEquipmentSet([]string{"main engine", "anchor", "steering gear"})
	critical := r.BuildEquipmentSet([]string{"steering gear"})

	res := r.Reconcile(vessel, reference, critical, model.NewEquipmentSet())

	assert.Equal(t, []string{"Mooring Winch"}, res.DifferentDisplay)
	assert.Equal(t, []string{"Steering Gear"}, res.MissingDisplay)
	assert.Empty(t, res.Suggestions)
}

func TestReconcile_EmptyVessel(t *testing.T) {
	r := newTestReconciler(t, 0)

	reference := model.NewEquipmentSet("main engine", "boiler")
	critical := model.NewEquipmentSet("steering gear")
	specific := model.NewEquipmentSet("boiler", "scrubber")

	res := r.Reconcile(model.NewEquipmentSet(), reference, critical, specific)
	assert.Empty(t, res.DifferentDisplay)
	assert.Equal(t, []string{"Boiler", "Main Engine", "Scrubber", "Steering Gear"}, res.MissingDisplay)
}

func TestReconcile_Partition(t *testing.T) {
	r := newTestReconciler(t, 0)

	vessel := model.NewEquipmentSet("a", "b", "c", "d")
	reference := model.NewEquipmentSet("a", "x")
	critical := model.NewEquipmentSet("b", "y")
	specific := model.NewEquipmentSet("c")
	union := reference.Union(critical, specific)

	res := r.Reconcile(vessel, reference, critical, specific)

	assert.Zero(t, res.Different.Intersect(res.Missing).Len(), "different и missing не пересекаются")
	assert.Zero(t, res.Different.Intersect(union).Len())
	assert.Equal(t, union.Len(), res.Missing.Len()+vessel.Intersect(union).Len())
	assert.Equal(t, vessel.Sorted(), res.Different.Union(vessel.Intersect(union)).Sorted())
	assert.Equal(t, []string{"d"}, res.Different.Sorted())
	assert.Equal(t, []string{"x", "y"}, res.Missing.Sorted())
}

func TestReconcile_Suggestions(t *testing.T) {
	r := newTestReconciler(t, 0.8)

	vessel := model.NewEquipmentSet("ballast pmp", "pump fire", "galley oven")
	reference := model.NewEquipmentSet("ballast pump", "fire pump", "scrubber")

	res := r.Reconcile(vessel, reference, model.NewEquipmentSet(), model.NewEquipmentSet())
	require.Len(t, res.Suggestions, 2)

	want := []model.Suggestion{
		{Different: "Ballast Pmp", Missing: "Ballast Pump", Score: 1 - 1.0/12},
		{Different: "Pump Fire", Missing: "Fire Pump", Score: 1},
	}
	if diff := cmp.Diff(want, res.Suggestions, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("abc", "abc"))
	assert.Equal(t, 0.0, similarity("", "abc"))
	assert.Equal(t, 1, damerauLevenshtein("ab", "ba"))
	assert.Equal(t, 3, damerauLevenshtein("kitten", "sitting"))
	assert.Equal(t, 1.0, bestSimilarity("ballast pump", "pump ballast"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Main Engine", TitleCase("MAIN engine"))
	assert.Equal(t, "Lifeboat/Rescue Boat", TitleCase("lifeboat/rescue boat"))
}
