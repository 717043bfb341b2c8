package payload

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// hashPreviewLen bounds how much of the digest the parameter table shows;
// the full value is printed separately below it.
const hashPreviewLen = 20

// DebugRows returns the parameter table for the debug view: flow, endpoint,
// and the ten primary request fields with the hash truncated.
func (p *ResolvedPayload) DebugRows() [][]string {
	rows := [][]string{
		{"Flow", strings.ToUpper(string(p.Flow))},
		{"Endpoint", p.Endpoint},
	}
	for _, f := range p.Fields[:primaryFieldCount] {
		value := f.Value
		if f.Name == "hash" && len(value) > hashPreviewLen {
			value = value[:hashPreviewLen] + "... (truncated)"
		}
		rows = append(rows, []string{f.Name, value})
	}
	return rows
}

// WriteDebug renders the full debug report: parameter table, hash formula,
// and the untruncated digest.
func (p *ResolvedPayload) WriteDebug(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Parameter", "Value"})
	table.SetAutoWrapText(false)
	for _, row := range p.DebugRows() {
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(w, "\nHash Formula:\n%s\n", p.Hash.Formula)
	fmt.Fprintf(w, "\nGenerated Hash:\n%s\n", p.Hash.Digest)
	if p.Hash.SubDocumentJSON != "" {
		fmt.Fprintf(w, "\nSub-document:\n%s\n", p.Hash.SubDocumentJSON)
	}
}
