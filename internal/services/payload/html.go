package payload

import (
	"fmt"
	"strings"
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", ">", "&gt;")

// FormHTML renders a self-submitting checkout page: a hidden form carrying
// every payload field that posts itself to the gateway on load. The noscript
// fallback leaves a visible submit button.
func (p *ResolvedPayload) FormHTML() string {
	var inputs strings.Builder
	for _, f := range p.Fields {
		inputs.WriteString(fmt.Sprintf("    <input type=\"hidden\" name=\"%s\" value=\"%s\">\n",
			htmlEscaper.Replace(f.Name), htmlEscaper.Replace(f.Value)))
	}

	return fmt.Sprintf(`<!doctype html>
<html><head><meta charset="utf-8"><title>Redirecting to PayU</title></head>
<body>
  <form id="paymentForm" name="paymentForm" method="POST" enctype="application/x-www-form-urlencoded" action="%s">
%s    <noscript><p>JavaScript disabled. Click continue to proceed.</p><button type="submit">Continue</button></noscript>
  </form>
  <script>document.getElementById('paymentForm').submit();</script>
</body></html>`, htmlEscaper.Replace(p.Endpoint), inputs.String())
}
