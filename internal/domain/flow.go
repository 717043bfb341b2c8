package domain

import "fmt"

// Flow identifies one of the supported payment integration flows
type Flow string

const (
	FlowCrossBorder  Flow = "crossborder"
	FlowNonSeamless  Flow = "nonseamless"
	FlowSubscription Flow = "subscription"
	FlowTPV          Flow = "tpv"
	FlowUPIOTM       Flow = "upiotm"
	FlowPreAuth      Flow = "preauth"
	FlowCheckoutPlus Flow = "checkoutplus"
	FlowSplit        Flow = "split"
	FlowBankOffer    Flow = "bankoffer"
)

// PaymentMode distinguishes the cross-border sub-modes
type PaymentMode string

const (
	PaymentModeOneTime      PaymentMode = "onetime"
	PaymentModeSubscription PaymentMode = "subscription"
)

// HashLayout tags the canonical-string variant a flow hashes with
type HashLayout string

const (
	LayoutStandard     HashLayout = "standard"
	LayoutCrossBorder  HashLayout = "crossborder"
	LayoutSubscription HashLayout = "subscription"
	LayoutTPV          HashLayout = "tpv"
	LayoutUPIOTM       HashLayout = "upiotm"
	LayoutSplit        HashLayout = "split"
	LayoutBankOffer    HashLayout = "bankoffer"
)

// FlowDescriptor is the static configuration for a flow. Descriptors are
// defined once at process start and never mutated.
type FlowDescriptor struct {
	Flow       Flow
	Name       string
	TxnCode    string // short code embedded in generated transaction ids
	Prefix     string // element-namespace prefix for field keys
	Layout     HashLayout
	APIVersion string // gateway api_version sent with the form, "" if none
	Required   []FieldName
}

var flowRegistry = map[Flow]FlowDescriptor{
	FlowCrossBorder: {
		Flow:    FlowCrossBorder,
		Name:    "Cross Border Payment",
		TxnCode: "CB",
		Prefix:  "cb",
		Layout:  LayoutCrossBorder,
		// api_version "7" applies to the subscription sub-mode only
		APIVersion: "7",
		Required: []FieldName{
			FieldAmount, FieldProductInfo, FieldFirstName, FieldEmail, FieldPhone,
			FieldAddress1, FieldCity, FieldState, FieldCountry, FieldZipcode, FieldLastName,
		},
	},
	FlowNonSeamless: {
		Flow:     FlowNonSeamless,
		Name:     "Pre-built Checkout",
		TxnCode:  "NS",
		Prefix:   "ns",
		Layout:   LayoutStandard,
		Required: commonRequired,
	},
	FlowSubscription: {
		Flow:       FlowSubscription,
		Name:       "Subscription Payment",
		TxnCode:    "SUB",
		Prefix:     "sub",
		Layout:     LayoutSubscription,
		APIVersion: "7",
		Required: append(commonRequired,
			FieldBillingAmount, FieldPaymentStartDate, FieldPaymentEndDate,
			FieldBillingCycle, FieldBillingInterval),
	},
	FlowTPV: {
		Flow:       FlowTPV,
		Name:       "TPV Payment",
		TxnCode:    "TPV",
		Prefix:     "tpv",
		Layout:     LayoutTPV,
		APIVersion: "6",
		Required:   append(commonRequired, FieldBeneficiaryAccount, FieldIFSCCode),
	},
	FlowUPIOTM: {
		Flow:       FlowUPIOTM,
		Name:       "UPI OTM",
		TxnCode:    "UPI",
		Prefix:     "upi",
		Layout:     LayoutUPIOTM,
		APIVersion: "7",
		Required:   append(commonRequired, FieldPaymentStartDate, FieldPaymentEndDate),
	},
	FlowPreAuth: {
		Flow:     FlowPreAuth,
		Name:     "PreAuth Card Flow",
		TxnCode:  "PRE",
		Prefix:   "preauth",
		Layout:   LayoutStandard,
		Required: commonRequired,
	},
	FlowCheckoutPlus: {
		Flow:     FlowCheckoutPlus,
		Name:     "Checkout Plus",
		TxnCode:  "CP",
		Prefix:   "cp",
		Layout:   LayoutStandard,
		Required: commonRequired,
	},
	FlowSplit: {
		Flow:     FlowSplit,
		Name:     "Split Payment",
		TxnCode:  "SPL",
		Prefix:   "split",
		Layout:   LayoutSplit,
		Required: commonRequired,
	},
	FlowBankOffer: {
		Flow:    FlowBankOffer,
		Name:    "Bank Offers",
		TxnCode: "BO",
		Prefix:  "bo",
		Layout:  LayoutBankOffer,
		// api_version "19" is sent only when a SKU cart is present
		APIVersion: "19",
		Required:   commonRequired,
	},
}

var commonRequired = []FieldName{
	FieldAmount, FieldProductInfo, FieldFirstName, FieldEmail, FieldPhone,
}

// flowOrder keeps Flows() deterministic for listings and tests
var flowOrder = []Flow{
	FlowCrossBorder, FlowNonSeamless, FlowSubscription, FlowTPV, FlowUPIOTM,
	FlowPreAuth, FlowCheckoutPlus, FlowSplit, FlowBankOffer,
}

// Descriptor returns the static descriptor for a flow
func Descriptor(f Flow) (FlowDescriptor, error) {
	d, ok := flowRegistry[f]
	if !ok {
		return FlowDescriptor{}, NewDomainError(ErrorCodeFlowUnknown, fmt.Sprintf("unknown flow %q", f))
	}
	return d, nil
}

// Flows returns all flow descriptors in registration order
func Flows() []FlowDescriptor {
	out := make([]FlowDescriptor, 0, len(flowOrder))
	for _, f := range flowOrder {
		out = append(out, flowRegistry[f])
	}
	return out
}

// ParseFlow validates a flow identifier from external input
func ParseFlow(s string) (Flow, error) {
	f := Flow(s)
	if _, ok := flowRegistry[f]; !ok {
		return "", NewDomainError(ErrorCodeFlowUnknown, fmt.Sprintf("unknown flow %q", s))
	}
	return f, nil
}

// RequiredFields returns the required-field list for a flow, extended with
// the sub-mode specific requirements for cross-border subscription.
func RequiredFields(f Flow, mode PaymentMode) []FieldName {
	d := flowRegistry[f]
	if f == FlowCrossBorder && mode == PaymentModeSubscription {
		return append(append([]FieldName{}, d.Required...),
			FieldBillingAmount, FieldPaymentStartDate, FieldPaymentEndDate,
			FieldBillingCycle, FieldBillingInterval)
	}
	if f == FlowCrossBorder {
		return append(append([]FieldName{}, d.Required...), FieldUDF5)
	}
	return d.Required
}
