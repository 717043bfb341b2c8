// Package hashing resolves operator input into a transaction context and
// computes the gateway hash: canonical pipe-delimited string, formula, and
// SHA-512 digest. Resolution is fail-closed: no digest is produced from a
// context that fails validation.
package hashing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/domain"
	"github.com/payuvarun82/payu-multiflow/internal/domain/ports"
	"github.com/payuvarun82/payu-multiflow/pkg/observability"
	"github.com/payuvarun82/payu-multiflow/pkg/timeutil"
)

// Service resolves fields from a FieldSource and assembles hashes
type Service struct {
	source ports.FieldSource
	logger *zap.Logger
}

// NewService creates a new hashing service
func NewService(source ports.FieldSource, logger *zap.Logger) *Service {
	return &Service{source: source, logger: logger}
}

// Resolve reads every input the flow needs, validates it, and returns an
// immutable transaction context ready for hashing. A validation failure
// returns a nil context; partial contexts are never handed out.
func (s *Service) Resolve(f domain.Flow) (*domain.TransactionContext, error) {
	d, err := domain.Descriptor(f)
	if err != nil {
		return nil, err
	}

	mode := s.source.PaymentMode(f)
	creds, credMode := s.source.Credentials(f)

	txnid := s.source.TransactionID(f)
	if verr := domain.ValidateTxnID(txnid); verr != nil {
		return nil, s.reject(f, domain.WrapError(domain.ErrorCodeValidationTxnID, "invalid transaction id", verr))
	}

	fields := domain.CoreFields{
		Amount:      s.source.Value(f, domain.FieldAmount),
		ProductInfo: s.source.Value(f, domain.FieldProductInfo),
		FirstName:   s.source.Value(f, domain.FieldFirstName),
		LastName:    s.source.Value(f, domain.FieldLastName),
		Email:       s.source.Value(f, domain.FieldEmail),
		Phone:       domain.NormalizePhone(s.source.Value(f, domain.FieldPhone)),
		SURL:        s.source.Value(f, domain.FieldSURL),
		FURL:        s.source.Value(f, domain.FieldFURL),
		Address1:    s.source.Value(f, domain.FieldAddress1),
		Address2:    s.source.Value(f, domain.FieldAddress2),
		City:        s.source.Value(f, domain.FieldCity),
		State:       s.source.Value(f, domain.FieldState),
		Country:     s.source.Value(f, domain.FieldCountry),
		Zipcode:     s.source.Value(f, domain.FieldZipcode),
	}
	for i := range fields.UDF {
		fields.UDF[i] = s.source.UDF(f, mode, i+1)
	}

	if err := s.checkRequired(f, mode, fields); err != nil {
		return nil, s.reject(f, err)
	}
	if f == domain.FlowPreAuth && len(s.source.PayMethods(f)) == 0 {
		return nil, s.reject(f, domain.NewDomainError(domain.ErrorCodeValidationMissingField,
			"pre-auth requires at least one payment method"))
	}
	if verr := domain.ValidatePhone(fields.Phone); verr != nil {
		return nil, s.reject(f, domain.WrapError(domain.ErrorCodeValidationPhone, "invalid phone", verr))
	}
	if verr := domain.ValidateEmail(fields.Email); verr != nil {
		return nil, s.reject(f, domain.WrapError(domain.ErrorCodeValidationEmail, "invalid email", verr))
	}

	tc := &domain.TransactionContext{
		ID:          uuid.New(),
		Flow:        f,
		Mode:        mode,
		TxnID:       txnid,
		Credentials: creds,
		CredMode:    credMode,
		Fields:      fields,
		PayMethods:  s.source.PayMethods(f),
	}

	if f == domain.FlowCrossBorder {
		tc.BuyerType = s.source.Value(f, domain.FieldBuyerType)
	}

	if err := s.attachSubDocument(tc); err != nil {
		return nil, s.reject(f, err)
	}

	s.logger.Debug("resolved transaction context",
		zap.String("flow", string(f)),
		zap.String("txnid", txnid),
		zap.String("cred_mode", string(credMode)),
		zap.String("layout", string(d.Layout)))

	return tc, nil
}

// Hash assembles the canonical string and digest for a resolved context
func (s *Service) Hash(tc *domain.TransactionContext) (*domain.HashResult, error) {
	result, err := Assemble(tc)
	if err != nil {
		return nil, s.reject(tc.Flow, err)
	}

	d, _ := domain.Descriptor(tc.Flow)
	observability.RecordHashComputation(string(tc.Flow), string(d.Layout))
	s.logger.Info("computed payment hash",
		zap.String("flow", string(tc.Flow)),
		zap.String("txnid", tc.TxnID),
		zap.String("formula", result.Formula))

	return result, nil
}

// ResolveAndHash is the common resolve-then-hash pipeline
func (s *Service) ResolveAndHash(f domain.Flow) (*domain.TransactionContext, *domain.HashResult, error) {
	tc, err := s.Resolve(f)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.Hash(tc)
	if err != nil {
		return nil, nil, err
	}
	return tc, result, nil
}

// checkRequired reports every missing required field at once
func (s *Service) checkRequired(f domain.Flow, mode domain.PaymentMode, fields domain.CoreFields) error {
	resolved := map[domain.FieldName]string{
		domain.FieldAmount:      fields.Amount,
		domain.FieldProductInfo: fields.ProductInfo,
		domain.FieldFirstName:   fields.FirstName,
		domain.FieldLastName:    fields.LastName,
		domain.FieldEmail:       fields.Email,
		domain.FieldPhone:       fields.Phone,
		domain.FieldAddress1:    fields.Address1,
		domain.FieldCity:        fields.City,
		domain.FieldState:       fields.State,
		domain.FieldCountry:     fields.Country,
		domain.FieldZipcode:     fields.Zipcode,
		domain.FieldUDF5:        fields.UDF[4],
	}

	var missing []string
	for _, name := range domain.RequiredFields(f, mode) {
		value, ok := resolved[name]
		if !ok {
			value = s.source.Value(f, name)
		}
		if strings.TrimSpace(value) == "" {
			missing = append(missing, string(name))
		}
	}
	if len(missing) > 0 {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField,
			fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))).
			WithDetail("fields", missing)
	}
	return nil
}

// attachSubDocument builds and validates the flow-specific sub-document
func (s *Service) attachSubDocument(tc *domain.TransactionContext) error {
	f := tc.Flow
	switch {
	case tc.IsSubscription():
		si, err := s.buildSIDetails(f)
		if err != nil {
			return err
		}
		tc.SubDocument = si

	case f == domain.FlowUPIOTM:
		start := s.source.Value(f, domain.FieldPaymentStartDate)
		end := s.source.Value(f, domain.FieldPaymentEndDate)
		if verr := domain.ValidateStartDate(start, timeutil.Now()); verr != nil {
			return domain.WrapError(domain.ErrorCodeValidationDateWindow, "invalid mandate start", verr)
		}
		if _, werr := domain.ValidateMandateWindow(start, end); werr != nil {
			return werr
		}
		tc.SubDocument = &domain.UPIWindow{PaymentStartDate: start, PaymentEndDate: end}

	case f == domain.FlowTPV:
		tc.SubDocument = &domain.BeneficiaryDetail{
			BeneficiaryAccountNumber: s.source.Value(f, domain.FieldBeneficiaryAccount),
			IFSCCode:                 s.source.Value(f, domain.FieldIFSCCode),
		}

	case f == domain.FlowSplit:
		split := &domain.SplitRequest{
			Type: s.source.SplitType(f),
			Rows: s.source.SplitRows(f),
		}
		if err := split.Validate(); err != nil {
			return err
		}
		tc.SubDocument = split

	case f == domain.FlowBankOffer:
		tc.UserToken = strings.TrimSpace(s.source.Value(f, domain.FieldUserToken))
		tc.OfferKey = strings.TrimSpace(s.source.Value(f, domain.FieldOfferKey))
		cart := s.source.SkuCart(f)
		if cart == nil {
			return nil
		}
		if err := cart.Validate(); err != nil {
			return err
		}
		tc.SubDocument = cart
	}
	return nil
}

// buildSIDetails assembles the standing instruction for subscription and
// cross-border subscription
func (s *Service) buildSIDetails(f domain.Flow) (*domain.SIDetails, error) {
	billingAmount := s.source.Value(f, domain.FieldBillingAmount)
	billingCycle := s.source.Value(f, domain.FieldBillingCycle)
	rawInterval := strings.TrimSpace(s.source.Value(f, domain.FieldBillingInterval))
	start := s.source.Value(f, domain.FieldPaymentStartDate)
	end := s.source.Value(f, domain.FieldPaymentEndDate)

	amount, aerr := strconv.ParseFloat(strings.TrimSpace(billingAmount), 64)
	if aerr != nil || amount <= 0 {
		return nil, domain.NewValidationError(domain.FieldBillingAmount,
			fmt.Sprintf("billing amount %q must be greater than zero", billingAmount))
	}

	interval, err := strconv.Atoi(rawInterval)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationFailed,
			fmt.Sprintf("billing interval %q is not a number", rawInterval), err)
	}
	if verr := domain.ValidateStartDate(start, timeutil.Now()); verr != nil {
		return nil, domain.WrapError(domain.ErrorCodeValidationDateWindow, "invalid billing start", verr)
	}

	return domain.NewSIDetails(billingAmount, billingCycle, interval, start, end), nil
}

// reject logs and counts a failed resolution before passing the error up
func (s *Service) reject(f domain.Flow, err error) error {
	code := domain.GetErrorCode(err)
	if code == "" {
		code = domain.ErrorCodeValidationFailed
	}
	observability.RecordValidationFailure(string(f), string(code))
	s.logger.Warn("hash request rejected",
		zap.String("flow", string(f)),
		zap.String("code", string(code)),
		zap.Error(err))
	return err
}
