package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitType governs validation and nothing else in the emitted JSON besides
// the type field: absolute rows are rupee amounts, percentage rows must sum
// to at most 100.
type SplitType string

const (
	SplitTypeAbsolute   SplitType = "absolute"
	SplitTypePercentage SplitType = "percentage"
)

// SplitRow is one operator-entered sub-merchant allocation
type SplitRow struct {
	MerchantKey string
	ChildTxnID  string
	Amount      string
	Charges     string
}

// complete reports whether the row has every required value filled in.
// Incomplete rows are skipped, matching the form behavior of ignoring
// half-filled rows rather than failing on them.
func (r SplitRow) complete() bool {
	return r.MerchantKey != "" && r.ChildTxnID != "" && r.Amount != ""
}

// SplitRequest is the ordered allocation map for a split payment. Row order
// is preserved in the emitted JSON; a duplicate merchant key keeps its first
// position and takes the last row's values, mirroring object-assignment
// semantics the gateway already accepts.
type SplitRequest struct {
	Type SplitType
	Rows []SplitRow
}

func (r *SplitRequest) Kind() SubDocumentKind { return SubDocumentSplit }

// completeRows returns the filled-in rows with duplicate merchant keys
// collapsed (first position, last values)
func (r *SplitRequest) completeRows() []SplitRow {
	index := make(map[string]int)
	out := make([]SplitRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		row.MerchantKey = strings.TrimSpace(row.MerchantKey)
		row.ChildTxnID = strings.TrimSpace(row.ChildTxnID)
		row.Amount = strings.TrimSpace(row.Amount)
		row.Charges = strings.TrimSpace(row.Charges)
		if row.Charges == "" {
			row.Charges = "0.00"
		}
		if !row.complete() {
			continue
		}
		if i, ok := index[row.MerchantKey]; ok {
			out[i] = row
			continue
		}
		index[row.MerchantKey] = len(out)
		out = append(out, row)
	}
	return out
}

// Validate enforces presence and, for percentage splits, the 100% ceiling.
// The ceiling sums the raw rows as entered, duplicates included and
// non-numeric amounts counted as zero; the complete-row filter and key
// dedup apply to the emitted JSON only.
func (r *SplitRequest) Validate() error {
	if len(r.completeRows()) == 0 {
		return NewDomainError(ErrorCodeSubDocSplitEmpty,
			"at least one complete split merchant row is required")
	}
	if r.Type != SplitTypePercentage {
		return nil
	}
	total := decimal.Zero
	for _, row := range r.Rows {
		amt, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
		if err != nil {
			continue
		}
		total = total.Add(amt)
	}
	if total.GreaterThan(decimal.NewFromInt(100)) {
		return NewDomainError(ErrorCodeValidationSplitTotal,
			fmt.Sprintf("split percentages cannot exceed 100%%, got %s%%", total.String()))
	}
	return nil
}

// CanonicalJSON hand-builds the splitInfo object so row order survives;
// encoding/json would sort map keys and change the hashed bytes.
func (r *SplitRequest) CanonicalJSON() (string, error) {
	rows := r.completeRows()
	if len(rows) == 0 {
		return "", NewDomainError(ErrorCodeSubDocSplitEmpty,
			"at least one complete split merchant row is required")
	}

	var b strings.Builder
	b.WriteString(`{"type":`)
	typ, err := encodeJSONString(string(r.Type))
	if err != nil {
		return "", err
	}
	b.WriteString(typ)
	b.WriteString(`,"splitInfo":{`)
	for i, row := range rows {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := encodeJSONString(row.MerchantKey)
		if err != nil {
			return "", err
		}
		txn, err := encodeJSONString(row.ChildTxnID)
		if err != nil {
			return "", err
		}
		amt, err := encodeJSONString(row.Amount)
		if err != nil {
			return "", err
		}
		chg, err := encodeJSONString(row.Charges)
		if err != nil {
			return "", err
		}
		b.WriteString(key)
		b.WriteString(`:{"aggregatorSubTxnId":`)
		b.WriteString(txn)
		b.WriteString(`,"aggregatorSubAmt":`)
		b.WriteString(amt)
		b.WriteString(`,"aggregatorCharges":`)
		b.WriteString(chg)
		b.WriteByte('}')
	}
	b.WriteString("}}")
	return b.String(), nil
}
