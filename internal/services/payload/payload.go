// Package payload turns a hashed transaction context into the concrete
// artifacts an operator consumes: the ordered gateway form, an auto-submit
// checkout page, a curl command, and a debug report. Every emitter reads
// from the same resolved payload so they can never drift apart.
package payload

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/config"
	"github.com/payuvarun82/payu-multiflow/internal/domain"
)

// Field is one ordered form parameter. Order matters: the gateway form is
// emitted exactly in append order.
type Field struct {
	Name  string
	Value string
}

// ResolvedPayload is the single source of truth for every emitter
type ResolvedPayload struct {
	Flow     domain.Flow
	Endpoint string
	Fields   []Field
	Hash     *domain.HashResult
	Context  *domain.TransactionContext
}

// Get returns the value of the first field with the given name, "" if absent
func (p *ResolvedPayload) Get(name string) string {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// FormValues returns the fields as url.Values for encoding
func (p *ResolvedPayload) FormValues() url.Values {
	values := make(url.Values, len(p.Fields))
	for _, f := range p.Fields {
		values.Set(f.Name, f.Value)
	}
	return values
}

// Service assembles gateway payloads from hashed contexts
type Service struct {
	gateway config.GatewayConfig
	logger  *zap.Logger
}

// NewService creates a new payload service
func NewService(gateway config.GatewayConfig, logger *zap.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// paymethodAliases maps checkbox shorthands to gateway method names. The
// netbanking slot becomes enach on standing-instruction payments.
var (
	paymethodOneTime = map[string]string{
		"nb": "netbanking", "cc": "creditcard", "dc": "debitcard", "upi": "upi",
	}
	paymethodSubscription = map[string]string{
		"nb": "enach", "cc": "creditcard", "dc": "debitcard", "upi": "upi",
	}
)

// Build produces the ordered gateway form for a hashed context. The first
// ten fields are fixed for every flow; optional and flow-specific fields
// follow in the order the gateway documents them.
func (s *Service) Build(tc *domain.TransactionContext, hash *domain.HashResult) (*ResolvedPayload, error) {
	d, err := domain.Descriptor(tc.Flow)
	if err != nil {
		return nil, err
	}

	surl := tc.Fields.SURL
	if surl == "" {
		surl = s.gateway.SuccessURL
	}
	furl := tc.Fields.FURL
	if furl == "" {
		furl = s.gateway.FailureURL
	}

	fields := []Field{
		{"key", tc.Credentials.Key},
		{"txnid", tc.TxnID},
		{"amount", tc.Fields.Amount},
		{"productinfo", tc.Fields.ProductInfo},
		{"firstname", tc.Fields.FirstName},
		{"email", tc.Fields.Email},
		{"phone", tc.Fields.Phone},
		{"surl", surl},
		{"furl", furl},
		{"hash", hash.Digest},
	}

	appendIf := func(name, value string) {
		if value != "" {
			fields = append(fields, Field{name, value})
		}
	}

	appendIf("lastname", tc.Fields.LastName)
	appendIf("address1", tc.Fields.Address1)
	appendIf("address2", tc.Fields.Address2)
	appendIf("city", tc.Fields.City)
	appendIf("state", tc.Fields.State)
	appendIf("country", tc.Fields.Country)
	appendIf("zipcode", tc.Fields.Zipcode)
	for i, name := range domain.UDFFields() {
		appendIf(string(name), tc.Fields.UDF[i])
	}

	switch {
	case tc.Flow == domain.FlowCrossBorder && tc.Mode == domain.PaymentModeSubscription:
		fields = append(fields,
			Field{"si", "1"},
			Field{"api_version", d.APIVersion},
			Field{"si_details", hash.SubDocumentJSON})
		appendIf("buyer_type_business", tc.BuyerType)

	case tc.Flow == domain.FlowCrossBorder:
		appendIf("buyer_type_business", tc.BuyerType)

	case tc.Flow == domain.FlowSubscription:
		fields = append(fields,
			Field{"si", "1"},
			Field{"api_version", d.APIVersion},
			Field{"si_details", hash.SubDocumentJSON})

	case tc.Flow == domain.FlowTPV:
		fields = append(fields,
			Field{"api_version", d.APIVersion},
			Field{"beneficiarydetail", hash.SubDocumentJSON})

	case tc.Flow == domain.FlowUPIOTM:
		fields = append(fields,
			Field{"api_version", d.APIVersion},
			Field{"si_details", hash.SubDocumentJSON},
			Field{"pre_authorize", "1"})

	case tc.Flow == domain.FlowPreAuth:
		fields = append(fields, Field{"pre_authorize", "1"})

	case tc.Flow == domain.FlowSplit:
		fields = append(fields, Field{"splitRequest", hash.SubDocumentJSON})

	case tc.Flow == domain.FlowBankOffer:
		if hash.SubDocumentJSON != "" {
			fields = append(fields,
				Field{"cart_details", hash.SubDocumentJSON},
				Field{"api_version", d.APIVersion})
		}
		appendIf("offer_key", tc.OfferKey)
		appendIf("user_token", tc.UserToken)
	}

	if methods := s.mapPayMethods(tc); methods != "" {
		fields = append(fields, Field{"enforce_paymethod", methods})
	}

	s.logger.Debug("built gateway payload",
		zap.String("flow", string(tc.Flow)),
		zap.String("txnid", tc.TxnID),
		zap.Int("fields", len(fields)))

	return &ResolvedPayload{
		Flow:     tc.Flow,
		Endpoint: s.gateway.PaymentURL,
		Fields:   fields,
		Hash:     hash,
		Context:  tc,
	}, nil
}

// mapPayMethods pipe-joins the selected methods using the alias table for
// the context's payment kind
func (s *Service) mapPayMethods(tc *domain.TransactionContext) string {
	if len(tc.PayMethods) == 0 {
		return ""
	}
	aliases := paymethodOneTime
	if tc.IsSubscription() {
		aliases = paymethodSubscription
	}
	mapped := make([]string, 0, len(tc.PayMethods))
	for _, m := range tc.PayMethods {
		if v, ok := aliases[m]; ok {
			mapped = append(mapped, v)
		} else {
			mapped = append(mapped, strings.ToLower(m))
		}
	}
	return strings.Join(mapped, "|")
}
