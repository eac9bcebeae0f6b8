//go:build v8

package v8engine

import (
	"strings"
	"testing"

	"github.com/cryguy/ssr/internal/core"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		payload string
		want    string
	}{
		{"iife object", `(function() { return { render: function(p) { return '<p>' + p + '</p>'; } }; })()`, "hi", "<p>hi</p>"},
		{"esm default export", "export default { render(p) { return 'esm:' + p; } };", "d", "esm:d"},
		{"async render", `({ render: async function(p) { await null; return 'async:' + p; } })`, "a", "async:a"},
		{"timer", `({ render: function(p) { return new Promise(function(r) { setTimeout(function() { r('t:' + p); }, 5); }); } })`, "t", "t:t"},
		{"btoa round trip", `({ render: function(p) { return atob(btoa(p)); } })`, "plain", "plain"},
		{"random uuid", `({ render: function() { return String(crypto.randomUUID().length); } })`, "", "36"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewEngine(core.EngineConfig{}).Compile(tt.source)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			defer r.Close()

			got, err := r.Render(tt.payload)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_NoRenderFunction(t *testing.T) {
	_, err := NewEngine(core.EngineConfig{}).Compile("({ version: 1 })")
	if err == nil || !strings.Contains(err.Error(), "no render function") {
		t.Errorf("expected missing render function error, got %v", err)
	}
}
