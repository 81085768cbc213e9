package provider

import (
	"fmt"
	"html"
	"sort"
	"strings"
)

// ResolveActionURL builds the 3D gate endpoint from a configured base URL.
// Trailing slashes on the base are trimmed, then the path is chosen by a
// substring marker: when the base already contains the marker the variant
// path is appended, otherwise the default path.
func ResolveActionURL(baseURL, marker, variantPath, defaultPath string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", NewConfigError("gateway base URL is not configured", nil)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.Contains(baseURL, marker) {
		return baseURL + variantPath, nil
	}
	return baseURL + defaultPath, nil
}

// AutoSubmitHTML renders a self-posting form that forwards the customer to
// the bank's 3D secure page. Field names and values are HTML escaped;
// fields render in sorted name order so output is deterministic.
func AutoSubmitHTML(actionURL string, fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>3D Secure Yönlendirme</title>
</head>
<body onload="document.getElementById('threeDForm').submit();">
    <div style="text-align:center;margin-top:100px;">
        <p>3D Secure doğrulama sayfasına yönlendiriliyorsunuz...</p>
        <p>Lütfen bekleyiniz.</p>
    </div>
`)
	sb.WriteString(fmt.Sprintf(`    <form id="threeDForm" method="POST" action="%s">`, html.EscapeString(actionURL)))
	sb.WriteString("\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf(`        <input type="hidden" name="%s" value="%s">`,
			html.EscapeString(name), html.EscapeString(fields[name])))
		sb.WriteString("\n")
	}
	sb.WriteString(`    </form>
</body>
</html>`)
	return sb.String()
}
