package payload

import "strings"

// primaryFieldCount is the fixed lead of every payload: key, txnid, amount,
// productinfo, firstname, email, phone, surl, furl, hash.
const primaryFieldCount = 10

// CurlCommand renders the payload as a curl invocation carrying the ten
// primary fields only. Flow-specific fields (si_details, splitRequest,
// cart_details) are deliberately left out: the command is a hash
// verification aid, not a full submission, and sub-document flows need the
// browser form to complete.
func (p *ResolvedPayload) CurlCommand() string {
	var b strings.Builder
	b.WriteString(`curl -X POST "` + p.Endpoint + `" \` + "\n")
	b.WriteString(`  -H "Content-Type: application/x-www-form-urlencoded"`)
	for _, f := range p.Fields[:primaryFieldCount] {
		b.WriteString(" \\\n")
		b.WriteString(`  -d "` + f.Name + `=` + f.Value + `"`)
	}
	return b.String()
}
