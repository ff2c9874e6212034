package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/meteomap/pkg/errors"
)

func TestBuiltin(t *testing.T) {
	c := Builtin()
	if len(c.Icons) == 0 {
		t.Fatal("builtin catalog has no icons")
	}
	r := NewResolver(c, nil)
	sun := r.Resolve("sun")
	if sun.Glyph != "☀" || sun.Label != "Soleil" {
		t.Errorf("Resolve(sun) = %+v", sun)
	}
}

func TestResolveDegradesToDefault(t *testing.T) {
	r := NewResolver(Builtin(), nil)
	if got := r.Resolve("does-not-exist"); got != DefaultIcon {
		t.Errorf("Resolve(dangling) = %+v, want DefaultIcon", got)
	}
	if _, ok := r.Lookup("does-not-exist"); ok {
		t.Error("Lookup(dangling) should report false")
	}
}

func TestCustomIconsShadowBuiltins(t *testing.T) {
	r := NewResolver(Builtin(), []Icon{
		{ID: "sun", Glyph: "S", Label: "Mon soleil"},
		{ID: "hail", Glyph: "H", Label: "Grêle"},
	})
	if got := r.Resolve("sun"); got.Glyph != "S" {
		t.Errorf("custom icon should shadow builtin, got %+v", got)
	}
	if got := r.Resolve("hail"); got.Label != "Grêle" {
		t.Errorf("Resolve(hail) = %+v", got)
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	if got := r.Resolve("sun"); got != DefaultIcon {
		t.Errorf("nil resolver Resolve = %+v", got)
	}
}

func TestBackgroundFallback(t *testing.T) {
	c := Builtin()
	bg, ok := c.Background("europe")
	if !ok || bg.AspectRatio != "4:3" {
		t.Errorf("Background(europe) = %+v, %v", bg, ok)
	}
	bg, ok = c.Background("atlantis")
	if ok {
		t.Error("Background(atlantis) should not be found")
	}
	if bg.ID != c.Backgrounds[0].ID {
		t.Errorf("fallback = %q, want first background", bg.ID)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not toml", "[[icons]\nid ="},
		{"duplicate icon", "[[icons]]\nid='a'\n[[icons]]\nid='a'\n[[backgrounds]]\nid='b'"},
		{"icon without id", "[[icons]]\nglyph='x'\n[[backgrounds]]\nid='b'"},
		{"no backgrounds", "[[icons]]\nid='a'"},
		{"bad aspect", "[[backgrounds]]\nid='b'\naspect_ratio='wide'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidCatalog) {
				t.Errorf("Parse error = %v, want INVALID_CATALOG", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	data := "[[icons]]\nid = 'x'\nglyph = 'X'\nlabel = 'Ex'\n\n[[backgrounds]]\nid = 'plain'\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Icons) != 1 || c.Icons[0].Glyph != "X" {
		t.Errorf("Load icons = %+v", c.Icons)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) should fail")
	}
}
