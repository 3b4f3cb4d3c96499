package headers

import "testing"

func parseCC(t *testing.T, values ...string) CacheControl {
	t.Helper()
	r := Analyze("Cache-Control", values, nil)
	cc, ok := r.Value.(CacheControl)
	if !ok {
		t.Fatalf("value is %T", r.Value)
	}
	return cc
}

func TestMaxAge(t *testing.T) {
	cc := parseCC(t, "max-age=60")
	val, ok := cc.Get("max-age")
	if !ok {
		t.Fatal("Could not get directive")
	}
	if val != "60" {
		t.Fatalf("Value is %s", val)
	}
	if secs, ok := cc.Seconds("max-age"); !ok || secs != 60 {
		t.Fatalf("Seconds: %d, %v", secs, ok)
	}
}

func TestReal(t *testing.T) {
	cc := parseCC(t, "public, max-age=0, s-maxage=600")
	if val, ok := cc.Get("public"); !ok || val != "" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("max-age"); !ok || val != "0" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
	if val, ok := cc.Get("s-maxage"); !ok || val != "600" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
}

func TestQuotedArgument(t *testing.T) {
	cc := parseCC(t, `private="set-cookie"`)
	if val, ok := cc.Get("private"); !ok || val != "set-cookie" {
		t.Fatalf("val: '%s', ok: %v", val, ok)
	}
}

func TestRepeatedFieldLines(t *testing.T) {
	cc := parseCC(t, "max-age=60", "no-transform")
	if !cc.Has("max-age") || !cc.Has("no-transform") {
		t.Fatal("directives from both lines expected")
	}
}

func TestMiscapitalizedDirective(t *testing.T) {
	r := Analyze("Cache-Control", []string{"Max-Age=60"}, nil)
	cc := r.Value.(CacheControl)
	// still usable, compared case-insensitively
	if secs, ok := cc.Seconds("max-age"); !ok || secs != 60 {
		t.Fatalf("Seconds: %d, %v", secs, ok)
	}
	if len(r.Notes) != 1 || r.Notes[0].ID != "CC_MISCAPITALIZED" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestDuplicateDirective(t *testing.T) {
	r := Analyze("Cache-Control", []string{"max-age=60, max-age=120"}, nil)
	cc := r.Value.(CacheControl)
	// the first occurrence wins
	if secs, _ := cc.Seconds("max-age"); secs != 60 {
		t.Fatalf("Seconds: %d", secs)
	}
	if len(r.Notes) != 1 || r.Notes[0].ID != "CC_DUPLICATE_DIRECTIVE" {
		t.Fatalf("notes: %v", r.Notes)
	}
}

func TestBadDeltaArgument(t *testing.T) {
	r := Analyze("Cache-Control", []string{"max-age=forever"}, nil)
	cc := r.Value.(CacheControl)
	if cc.Has("max-age") {
		t.Fatal("invalid directive kept")
	}
	if len(r.Notes) != 1 || r.Notes[0].ID != "CC_DIRECTIVE_BAD_ARG" {
		t.Fatalf("notes: %v", r.Notes)
	}
}
