package domain

import (
	"encoding/json"
	"strings"

	"github.com/payuvarun82/payu-multiflow/pkg/encoding"
)

// SubDocumentKind tags the sub-document union
type SubDocumentKind string

const (
	SubDocumentSI          SubDocumentKind = "si_details"
	SubDocumentUPIWindow   SubDocumentKind = "upi_window"
	SubDocumentBeneficiary SubDocumentKind = "beneficiarydetail"
	SubDocumentSplit       SubDocumentKind = "splitRequest"
	SubDocumentCart        SubDocumentKind = "cart_details"
)

// SubDocument is the flow-specific JSON blob embedded in the canonical hash
// string. Implementations must produce byte-stable output: the digest is
// sensitive to JSON text, not just semantic equality.
type SubDocument interface {
	Kind() SubDocumentKind
	CanonicalJSON() (string, error)
}

// marshalCanonical marshals without HTML escaping so the embedded JSON
// matches what the gateway verifies byte for byte.
func marshalCanonical(v interface{}) (string, error) {
	buf := encoding.GetBuffer()
	defer encoding.PutBuffer(buf)

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", WrapError(ErrorCodeSubDocEncoding, "marshal sub-document", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// encodeJSONString encodes a single string as a JSON literal
func encodeJSONString(s string) (string, error) {
	return marshalCanonical(s)
}

// SIDetails is the standing-instruction configuration for subscription and
// cross-border-subscription flows. PaymentEndDate is omitted from the JSON
// entirely when blank; an empty-string value would change the bytes and
// break gateway-side verification.
type SIDetails struct {
	BillingAmount    string `json:"billingAmount"`
	BillingCurrency  string `json:"billingCurrency"`
	BillingCycle     string `json:"billingCycle"`
	BillingInterval  int    `json:"billingInterval"`
	PaymentStartDate string `json:"paymentStartDate"`
	PaymentEndDate   string `json:"paymentEndDate,omitempty"`
}

// NewSIDetails builds SI details with the fixed INR billing currency
func NewSIDetails(billingAmount, billingCycle string, billingInterval int, start, end string) *SIDetails {
	return &SIDetails{
		BillingAmount:    billingAmount,
		BillingCurrency:  "INR",
		BillingCycle:     billingCycle,
		BillingInterval:  billingInterval,
		PaymentStartDate: start,
		PaymentEndDate:   end,
	}
}

func (d *SIDetails) Kind() SubDocumentKind { return SubDocumentSI }

func (d *SIDetails) CanonicalJSON() (string, error) { return marshalCanonical(d) }

// UPIWindow is the bounded mandate window for UPI OTM. Both dates are always
// present, empty strings allowed.
type UPIWindow struct {
	PaymentStartDate string `json:"paymentStartDate"`
	PaymentEndDate   string `json:"paymentEndDate"`
}

func (w *UPIWindow) Kind() SubDocumentKind { return SubDocumentUPIWindow }

func (w *UPIWindow) CanonicalJSON() (string, error) { return marshalCanonical(w) }

// BeneficiaryDetail carries the TPV payer/beneficiary bank account cross-check
type BeneficiaryDetail struct {
	BeneficiaryAccountNumber string `json:"beneficiaryAccountNumber"`
	IFSCCode                 string `json:"ifscCode"`
}

func (b *BeneficiaryDetail) Kind() SubDocumentKind { return SubDocumentBeneficiary }

func (b *BeneficiaryDetail) CanonicalJSON() (string, error) { return marshalCanonical(b) }
