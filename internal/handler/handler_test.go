package handler

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/registry"
	"github.com/floorplan-layout/analyzer/internal/result"
)

func element(t *testing.T, class, src string) *floorplan.Element {
	t.Helper()
	n, err := floorplan.Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return &floorplan.Element{Class: class, Node: n}
}

func messages(errs []result.Error) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

func warnings(warns []result.Warning) []string {
	var out []string
	for _, w := range warns {
		out = append(out, w.Message)
	}
	return out
}

func TestRegistered(t *testing.T) {
	if diff := cmp.Diff([]string{"rack", "row"}, registry.Default.ListSupportedClasses()); diff != "" {
		t.Errorf("classes (-want +got):\n%s", diff)
	}
	for _, class := range []string{floorplan.ClassRow, floorplan.ClassRack} {
		h, ok := registry.Default.Get(class)
		if !ok || h.Class() != class {
			t.Errorf("Get(%q) = %v, %v", class, h, ok)
		}
	}
}

func TestRowValidate(t *testing.T) {
	el := element(t, "row", `{"id":"row-one","label":5,"position":{"x":0},"height":0,"width":110.5,"selectable":"no","class":"row"}`)
	errs, warns := rowHandler{}.Validate(el)

	wantErrs := []string{
		"label must be a string",
		"position.y is required",
		"width must be an integer",
		"height must be positive, got 0",
		"selectable must be a boolean",
	}
	if diff := cmp.Diff(wantErrs, messages(errs)); diff != "" {
		t.Errorf("errors (-want +got):\n%s", diff)
	}
	wantWarns := []string{
		"connectable was missing, set to false",
		"row id row-one does not follow r{row_number}",
	}
	if diff := cmp.Diff(wantWarns, warnings(warns)); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}
	if v, ok := floorplan.GetBool(el.Node, "connectable"); !ok || v {
		t.Errorf("connectable = %v, %v; want defaulted false", v, ok)
	}
}

func TestRackValidateAndDecode(t *testing.T) {
	el := element(t, "rack", `{"id":"r1-1","label":"AHU-1","position":{"x":10,"y":20},"width":90,"height":60,"parentNode":"r1","connectable":true,"selectable":false,"class":"rack","type":"REF"}`)
	errs, warns := rackHandler{}.Validate(el)
	if len(errs) != 0 || len(warns) != 0 {
		t.Fatalf("Validate = %+v, %+v; want clean", errs, warns)
	}

	var l floorplan.Layout
	rackHandler{}.Decode(el, &l)
	if len(l.Racks) != 1 {
		t.Fatalf("decoded %d racks", len(l.Racks))
	}
	got := *l.Racks[0]
	got.Source = nil
	want := floorplan.Rack{
		ID: "r1-1", Label: "AHU-1", Position: floorplan.Position{X: 10, Y: 20},
		Width: 90, Height: 60, ParentNode: "r1", Connectable: true,
		Class: "rack", Type: floorplan.RackREF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rack (-want +got):\n%s", diff)
	}
}

func TestRackValidateErrors(t *testing.T) {
	el := element(t, "rack", `{"id":"x7","label":"A1","position":[10,20],"width":90,"height":60,"parentNode":"r1","connectable":false,"selectable":false,"class":"rack"}`)
	errs, warns := rackHandler{}.Validate(el)
	wantErrs := []string{"position must be an object", "type is required"}
	if diff := cmp.Diff(wantErrs, messages(errs)); diff != "" {
		t.Errorf("errors (-want +got):\n%s", diff)
	}
	wantWarns := []string{"rack id x7 does not follow {parentNode}-{rack_number}"}
	if diff := cmp.Diff(wantWarns, warnings(warns)); diff != "" {
		t.Errorf("warnings (-want +got):\n%s", diff)
	}
	for _, e := range errs {
		if e.NodeID != "x7" || e.Type != "schema_error" {
			t.Errorf("error %+v not attributed to x7", e)
		}
	}
}
