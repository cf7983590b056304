package sphindex

import "testing"

type article struct {
	ID    uint64 `sphindex:"id,id"`
	Title string `sphindex:"title,field"`
	Body  string `sphindex:"body,field"`
	Year  uint32 `sphindex:"year,attr"`
	Note  string `sphindex:"note"`
	Skip  string
}

func TestParseSchema(t *testing.T) {
	meta, err := parseSchema[article]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(meta.fields) != 2 || meta.fields[0] != "title" || meta.fields[1] != "body" {
		t.Errorf("fields = %v", meta.fields)
	}
	if len(meta.attributes) != 1 || meta.attributes[0] != "year" {
		t.Errorf("attributes = %v", meta.attributes)
	}
	if len(meta.mapped) != 4 {
		t.Errorf("mapped len = %d, want 4", len(meta.mapped))
	}
}

func TestParseSchema_Errors(t *testing.T) {
	type noID struct {
		Title string `sphindex:"title,field"`
	}
	if _, err := parseSchema[noID](); err == nil {
		t.Error("expected error for missing id tag")
	}

	type noFields struct {
		ID uint64 `sphindex:"id,id"`
	}
	if _, err := parseSchema[noFields](); err == nil {
		t.Error("expected error for missing field tags")
	}

	type badID struct {
		ID    string `sphindex:"id,id"`
		Title string `sphindex:"title,field"`
	}
	if _, err := parseSchema[badID](); err == nil {
		t.Error("expected error for non-uint64 id")
	}

	type badModifier struct {
		ID    uint64 `sphindex:"id,id"`
		Title string `sphindex:"title,vector"`
	}
	if _, err := parseSchema[badModifier](); err == nil {
		t.Error("expected error for unknown modifier")
	}

	if _, err := parseSchema[int](); err == nil {
		t.Error("expected error for non-struct type")
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	meta, err := parseSchema[article]()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	in := article{ID: 7, Title: "hello", Body: "world", Year: 2024, Note: "n"}
	id, fields := meta.toFields(in)
	if id != 7 {
		t.Errorf("id = %d, want 7", id)
	}
	if fields["title"] != "hello" || fields["year"] != "2024" {
		t.Errorf("fields = %v", fields)
	}
	if _, ok := fields["Skip"]; ok {
		t.Error("untagged field leaked into the document")
	}

	out, ok := meta.fromDocument(Document{
		Identifier: 7, Class: "Article", Fields: fields,
	}).(article)
	if !ok {
		t.Fatal("type assertion failed")
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestSchemaIndexConfig(t *testing.T) {
	meta, err := parseSchema[article]()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg := meta.indexConfig("Article", 24)
	if cfg.Class != "Article" || cfg.IDBits != 24 {
		t.Errorf("config = %+v", cfg)
	}
	if len(cfg.Fields) != 2 || len(cfg.Attributes) != 1 {
		t.Errorf("fields/attrs = %v/%v", cfg.Fields, cfg.Attributes)
	}
}
