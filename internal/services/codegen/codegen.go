// Package codegen emits ready-to-run integration snippets (Java, PHP,
// Python, Node.js) from a resolved transaction context. Snippets always
// carry placeholder credentials and generate their own transaction id; the
// operator's real key and salt never leave the sandbox.
package codegen

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/config"
	"github.com/payuvarun82/payu-multiflow/internal/domain"
)

// Language selects the snippet target
type Language string

const (
	LanguageJava   Language = "java"
	LanguagePHP    Language = "php"
	LanguagePython Language = "python"
	LanguageNodeJS Language = "nodejs"
)

// Languages returns the supported targets in tab order
func Languages() []Language {
	return []Language{LanguageJava, LanguagePHP, LanguagePython, LanguageNodeJS}
}

// ParseLanguage validates a language identifier from external input
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageJava, LanguagePHP, LanguagePython, LanguageNodeJS:
		return Language(s), nil
	}
	return "", domain.NewDomainError(domain.ErrorCodeValidationFailed,
		fmt.Sprintf("unsupported code language %q", s))
}

// FileExtension returns the download extension for a language
func (l Language) FileExtension() string {
	switch l {
	case LanguageJava:
		return "java"
	case LanguagePHP:
		return "php"
	case LanguagePython:
		return "py"
	case LanguageNodeJS:
		return "js"
	}
	return "txt"
}

// HashType labels which canonical layout the context would hash with. The
// label only appears in the generated header comment; every snippet body
// implements the standard layout and the label tells the integrator which
// variant still needs wiring.
type HashType string

const (
	HashTypeStandard     HashType = "standard"
	HashTypeCrossBorder  HashType = "crossborder"
	HashTypeCBSub        HashType = "crossborder_subscription"
	HashTypeSubscription HashType = "subscription"
	HashTypeTPV          HashType = "tpv"
	HashTypeUPIOTM       HashType = "upiotm"
	HashTypeSplit        HashType = "split"
	HashTypeBankOfferSku HashType = "bankoffer_sku"
	HashTypeBankOfferStd HashType = "bankoffer_standard"
)

// ClassifyHashType derives the hash-type label from a resolved context
func ClassifyHashType(tc *domain.TransactionContext) HashType {
	hasBuyerType := tc.Flow == domain.FlowCrossBorder && tc.BuyerType != ""
	switch {
	case tc.IsSubscription() && hasBuyerType:
		return HashTypeCBSub
	case tc.IsSubscription():
		return HashTypeSubscription
	case tc.Flow == domain.FlowTPV:
		return HashTypeTPV
	case tc.Flow == domain.FlowUPIOTM:
		return HashTypeUPIOTM
	case tc.Flow == domain.FlowSplit:
		return HashTypeSplit
	case tc.Flow == domain.FlowBankOffer && tc.SubDocument != nil:
		return HashTypeBankOfferSku
	case tc.Flow == domain.FlowBankOffer:
		return HashTypeBankOfferStd
	case hasBuyerType:
		return HashTypeCrossBorder
	}
	return HashTypeStandard
}

// param is one emitted key-value pair, in insertion order
type param struct {
	Key   string
	Value string
}

// Service generates integration snippets
type Service struct {
	gateway config.GatewayConfig
	logger  *zap.Logger
}

// NewService creates a new codegen service
func NewService(gateway config.GatewayConfig, logger *zap.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// Generate renders the snippet for a language from a resolved context
func (s *Service) Generate(lang Language, tc *domain.TransactionContext) (string, error) {
	params := s.extractParams(tc)
	hashType := ClassifyHashType(tc)
	flowName := capitalize(string(tc.Flow))

	var code string
	switch lang {
	case LanguageJava:
		code = generateJava(flowName, hashType, params)
	case LanguagePHP:
		code = generatePHP(flowName, hashType, params)
	case LanguagePython:
		code = generatePython(flowName, hashType, params)
	case LanguageNodeJS:
		code = generateNodeJS(flowName, hashType, params)
	default:
		return "", domain.NewDomainError(domain.ErrorCodeValidationFailed,
			fmt.Sprintf("unsupported code language %q", lang))
	}

	s.logger.Debug("generated integration snippet",
		zap.String("flow", string(tc.Flow)),
		zap.String("language", string(lang)),
		zap.String("hash_type", string(hashType)))

	return code, nil
}

// extractParams collects the emitted parameters in form order. The
// transaction id is excluded: every snippet generates its own.
func (s *Service) extractParams(tc *domain.TransactionContext) []param {
	surl := tc.Fields.SURL
	if surl == "" {
		surl = s.gateway.SuccessURL
	}
	furl := tc.Fields.FURL
	if furl == "" {
		furl = s.gateway.FailureURL
	}

	params := []param{
		{"amount", tc.Fields.Amount},
		{"productinfo", tc.Fields.ProductInfo},
		{"firstname", tc.Fields.FirstName},
		{"email", tc.Fields.Email},
		{"phone", tc.Fields.Phone},
		{"surl", surl},
		{"furl", furl},
	}

	appendIf := func(key, value string) {
		if value != "" {
			params = append(params, param{key, value})
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

	if tc.Flow == domain.FlowPreAuth {
		params = append(params, param{"pre_authorize", "1"})
	}
	if tc.Flow == domain.FlowBankOffer {
		appendIf("user_token", tc.UserToken)
	}
	return params
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
