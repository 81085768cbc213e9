package provider

import (
	"strings"
	"testing"
)

func TestResolveActionURL(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{
			name: "plain base gets default path",
			base: "https://sanalpos2.ziraatbank.com.tr",
			want: "https://sanalpos2.ziraatbank.com.tr/fim/est3Dgate",
		},
		{
			name: "trailing slash trimmed",
			base: "https://sanalpos2.ziraatbank.com.tr/",
			want: "https://sanalpos2.ziraatbank.com.tr/fim/est3Dgate",
		},
		{
			name: "servlet base gets variant path",
			base: "https://entegrasyon.asseco-see.com.tr/servlet",
			want: "https://entegrasyon.asseco-see.com.tr/servlet/est3Dgate",
		},
		{
			name:    "empty base is a config error",
			base:    "",
			wantErr: true,
		},
		{
			name:    "whitespace base is a config error",
			base:    "   ",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveActionURL(tt.base, "servlet", "/est3Dgate", "/fim/est3Dgate")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !IsConfigError(err) {
					t.Errorf("expected config error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveActionURL: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolveActionURL(%q) = %q, want %q", tt.base, got, tt.want)
			}
		})
	}
}

func TestAutoSubmitHTML(t *testing.T) {
	html := AutoSubmitHTML("https://bank.example/fim/est3Dgate", map[string]string{
		"clientid": "190001000",
		"amount":   "123.45",
		"okurl":    "https://shop.example/ok?a=1&b=2",
	})

	for _, want := range []string{
		`action="https://bank.example/fim/est3Dgate"`,
		`name="clientid" value="190001000"`,
		`name="amount" value="123.45"`,
		`value="https://shop.example/ok?a=1&amp;b=2"`,
		`onload="document.getElementById('threeDForm').submit();"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("form HTML missing %q", want)
		}
	}
	if strings.Contains(html, "a=1&b=2") {
		t.Error("field values must be HTML escaped")
	}

	// Sorted field order keeps the output stable across runs.
	if strings.Index(html, `name="amount"`) > strings.Index(html, `name="clientid"`) {
		t.Error("fields must render in sorted name order")
	}
}
