package service

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/utils"
)

func TestBuildProjection_OrdersByTypeTitle(t *testing.T) {
	rows := []models.OptionRow{
		{SKUID: "s1", VariantTypeID: "t2", TypeTitle: "Size", ValueTitle: "M"},
		{SKUID: "s1", VariantTypeID: "t1", TypeTitle: "Color", ValueTitle: "Red"},
		{SKUID: "s1", VariantTypeID: "t3", TypeTitle: "Material", ValueTitle: "Cotton"},
	}
	p, err := BuildProjection(rows)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 3 {
		t.Fatalf("Len = %d", p.Len())
	}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"Color":"Red","Material":"Cotton","Size":"M"}`; string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}
	if v, ok := p.Get("Size"); !ok || v != "M" {
		t.Fatalf(`Get("Size") = %q, %v`, v, ok)
	}
	if _, ok := p.Get("Weight"); ok {
		t.Fatal(`Get("Weight") found a value`)
	}
	if m := p.Map(); len(m) != 3 || m["Color"] != "Red" {
		t.Fatalf("Map = %v", m)
	}
}

func TestBuildProjection_Empty(t *testing.T) {
	p, err := BuildProjection(nil)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "{}" {
		t.Fatalf("json = %s, want {}", raw)
	}

	var zero Projection
	raw, _ = json.Marshal(zero)
	if string(raw) != "{}" {
		t.Fatalf("zero projection json = %s", raw)
	}
}

func TestBuildProjection_DuplicateTypeIsCorrupt(t *testing.T) {
	rows := []models.OptionRow{
		{SKUID: "s1", VariantTypeID: "t1", TypeTitle: "Color", ValueTitle: "Red"},
		{SKUID: "s1", VariantTypeID: "t2", TypeTitle: "Size", ValueTitle: "S"},
		{SKUID: "s1", VariantTypeID: "t1", TypeTitle: "Color", ValueTitle: "Blue"},
	}
	_, err := BuildProjection(rows)
	if !errors.Is(err, utils.ErrCorruptState) {
		t.Fatalf("err = %v, want ErrCorruptState", err)
	}
}

func TestProjection_EscapesKeys(t *testing.T) {
	p, err := BuildProjection([]models.OptionRow{{TypeTitle: `Size "EU"`, ValueTitle: "42"}})
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(SKUProjection{SKUID: "s1", Options: p})
	if want := `{"skuId":"s1","options":{"Size \"EU\"":"42"}}`; string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}
}

func TestProjection_EntriesIsACopy(t *testing.T) {
	p, _ := BuildProjection([]models.OptionRow{{TypeTitle: "Color", ValueTitle: "Red"}})
	e := p.Entries()
	e[0].Value = "Blue"
	if v, _ := p.Get("Color"); v != "Red" {
		t.Fatalf("projection mutated through Entries: %q", v)
	}
}
