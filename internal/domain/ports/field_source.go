package ports

import "github.com/payuvarun82/payu-multiflow/internal/domain"

// FieldSource is the key-value collaborator the resolver reads operator
// input from. Implementations must be pure reads: resolving fields never
// mutates the source. Absent values resolve to empty strings.
type FieldSource interface {
	// Value returns the resolved value for a flow field, "" when unset
	Value(flow domain.Flow, field domain.FieldName) string

	// UDF returns the value of UDF slot 1..5. Cross-border reads a
	// different input namespace per payment sub-mode; swapping the branch
	// silently produces a hash mismatch against what the operator sees.
	UDF(flow domain.Flow, mode domain.PaymentMode, slot int) string

	// TransactionID returns the current transaction id for the flow
	TransactionID(flow domain.Flow) string

	// Credentials returns the credential pair and the mode it came from
	Credentials(flow domain.Flow) (domain.Credentials, domain.CredentialMode)

	// PaymentMode returns the active sub-mode (meaningful for cross-border)
	PaymentMode(flow domain.Flow) domain.PaymentMode

	// SplitType and SplitRows expose the split allocation inputs
	SplitType(flow domain.Flow) domain.SplitType
	SplitRows(flow domain.Flow) []domain.SplitRow

	// SkuCart returns the bank-offer cart, nil when SKU mode is disabled
	SkuCart(flow domain.Flow) *domain.SkuCart

	// PayMethods returns the enforced payment methods in selection order
	PayMethods(flow domain.Flow) []string
}
