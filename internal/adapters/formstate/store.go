// Package formstate is the in-memory key-value flow state backing the
// sandbox: per-flow field values, dynamic split and SKU rows, credential
// mode, and the cross-border payment sub-mode. It is the only persistence
// the sandbox has; nothing outlives the process.
package formstate

import (
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/domain"
	"github.com/payuvarun82/payu-multiflow/pkg/timeutil"
)

// Store implements ports.FieldSource. Writes go through the typed field
// schema, and every mutation of a monitored value clears the flow's cached
// hash so a stale digest can never be reused.
type Store struct {
	mu     sync.RWMutex
	logger *zap.Logger

	values map[string]string // "<prefix>_<field>"
	udfs   map[string]string // "<prefix>_udfN" / "cb_udfN_input" / "cb_sub_udfN_input"

	txnids    map[domain.Flow]string
	creds     map[domain.Flow]domain.Credentials
	credModes map[domain.Flow]domain.CredentialMode
	modes     map[domain.Flow]domain.PaymentMode

	splitTypes map[domain.Flow]domain.SplitType
	splitRows  map[domain.Flow][]domain.SplitRow

	skuEnabled map[domain.Flow]bool
	skuRows    map[domain.Flow][]domain.SkuRow

	payMethods map[domain.Flow][]string

	lastHash map[domain.Flow]string
}

// NewStore creates an empty store and seeds a fresh transaction id for every
// flow, the same way a page load does.
func NewStore(logger *zap.Logger) *Store {
	s := &Store{
		logger:     logger,
		values:     make(map[string]string),
		udfs:       make(map[string]string),
		txnids:     make(map[domain.Flow]string),
		creds:      make(map[domain.Flow]domain.Credentials),
		credModes:  make(map[domain.Flow]domain.CredentialMode),
		modes:      make(map[domain.Flow]domain.PaymentMode),
		splitTypes: make(map[domain.Flow]domain.SplitType),
		splitRows:  make(map[domain.Flow][]domain.SplitRow),
		skuEnabled: make(map[domain.Flow]bool),
		skuRows:    make(map[domain.Flow][]domain.SkuRow),
		payMethods: make(map[domain.Flow][]string),
		lastHash:   make(map[domain.Flow]string),
	}
	for _, d := range domain.Flows() {
		s.txnids[d.Flow] = domain.GenerateTxnID(d.Flow, timeutil.Now())
		s.credModes[d.Flow] = domain.CredentialModeDefault
		s.modes[d.Flow] = domain.PaymentModeOneTime
		s.splitTypes[d.Flow] = domain.SplitTypeAbsolute
	}
	s.splitRows[domain.FlowSplit] = defaultSplitRows()
	return s
}

// Sandbox sub-merchant keys pre-configured against the default merchant pair
var defaultSplitMerchantKeys = []string{"gYoEaY", "5rgA73"}

// defaultSplitRows pre-fills one row per sandbox sub-merchant with a fresh
// child transaction id. Amounts stay empty until the operator fills them in.
func defaultSplitRows() []domain.SplitRow {
	rows := make([]domain.SplitRow, 0, len(defaultSplitMerchantKeys))
	for _, key := range defaultSplitMerchantKeys {
		rows = append(rows, domain.SplitRow{
			MerchantKey: key,
			ChildTxnID:  domain.GenerateChildTxnID(timeutil.Now()),
		})
	}
	return rows
}

// defaultSkuRows pre-fills the two SKUs provisioned on the sandbox merchant
func defaultSkuRows() []domain.SkuRow {
	return []domain.SkuRow{
		{SkuID: "testProduct11", SkuName: "SkuTest11"},
		{SkuID: "testProduct12", SkuName: "SkuTest12"},
	}
}

func fieldKey(f domain.Flow, name domain.FieldName) string {
	d, _ := domain.Descriptor(f)
	return d.Prefix + "_" + string(name)
}

// Set stores a field value. Unknown (flow, field) pairs are rejected rather
// than silently accepted and later read back as empty.
func (s *Store) Set(f domain.Flow, name domain.FieldName, value string) error {
	if !domain.KnownField(f, name) {
		return domain.NewDomainError(domain.ErrorCodeFlowFieldUnknown,
			fmt.Sprintf("flow %s has no field %q", f, name))
	}
	if name == domain.FieldPhone {
		value = domain.NormalizePhone(value)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[fieldKey(f, name)] = value
	s.invalidateLocked(f)
	return nil
}

// SetUDF stores a UDF slot value in the namespace the given sub-mode reads
func (s *Store) SetUDF(f domain.Flow, mode domain.PaymentMode, slot int, value string) error {
	if slot < 1 || slot > 5 {
		return domain.NewDomainError(domain.ErrorCodeFlowFieldUnknown,
			fmt.Sprintf("udf slot %d out of range", slot))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.udfs[udfKey(f, mode, slot)] = value
	s.invalidateLocked(f)
	return nil
}

func udfKey(f domain.Flow, mode domain.PaymentMode, slot int) string {
	d, _ := domain.Descriptor(f)
	if f == domain.FlowCrossBorder {
		if mode == domain.PaymentModeSubscription {
			return fmt.Sprintf("cb_sub_udf%d_input", slot)
		}
		return fmt.Sprintf("cb_udf%d_input", slot)
	}
	return fmt.Sprintf("%s_udf%d", d.Prefix, slot)
}

// SetPaymentMode switches the cross-border sub-mode and drops the stale hash
func (s *Store) SetPaymentMode(f domain.Flow, mode domain.PaymentMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.modes[f] == mode {
		return
	}
	s.modes[f] = mode
	s.invalidateLocked(f)
}

// SetTransactionID stores an operator-entered transaction id (custom
// credential mode only)
func (s *Store) SetTransactionID(f domain.Flow, txnid string) error {
	if err := domain.ValidateTxnID(txnid); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txnids[f] = txnid
	s.invalidateLocked(f)
	return nil
}

// RegenerateTransactionID issues a fresh auto-generated id for the flow
func (s *Store) RegenerateTransactionID(f domain.Flow) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := domain.GenerateTxnID(f, timeutil.Now())
	s.txnids[f] = id
	s.invalidateLocked(f)
	return id
}

// UseCustomCredentials switches the flow to an operator-supplied pair
func (s *Store) UseCustomCredentials(f domain.Flow, key, salt string) error {
	if key == "" || salt == "" {
		return domain.NewDomainError(domain.ErrorCodeCredentialsIncomplete,
			"both custom merchant key and salt are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[f] = domain.Credentials{Key: key, Salt: salt}
	s.credModes[f] = domain.CredentialModeCustom
	s.invalidateLocked(f)
	return nil
}

// UseDefaultCredentials switches back to the sandbox pair and regenerates
// the transaction id, since operator-entered ids only exist in custom mode
func (s *Store) UseDefaultCredentials(f domain.Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credModes[f] == domain.CredentialModeDefault {
		return
	}
	delete(s.creds, f)
	s.credModes[f] = domain.CredentialModeDefault
	s.txnids[f] = domain.GenerateTxnID(f, timeutil.Now())
	s.invalidateLocked(f)
}

// SetSplitType sets the allocation mode for the split flow
func (s *Store) SetSplitType(f domain.Flow, t domain.SplitType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.splitTypes[f] = t
	s.invalidateLocked(f)
}

// SetSplitRows replaces the split allocation rows
func (s *Store) SetSplitRows(f domain.Flow, rows []domain.SplitRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.splitRows[f] = append([]domain.SplitRow{}, rows...)
	s.invalidateLocked(f)
}

// RegenerateChildTxnIDs refreshes auto-generated child transaction ids.
// Custom-credential mode keeps operator-entered ids untouched.
func (s *Store) RegenerateChildTxnIDs(f domain.Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.credModes[f] == domain.CredentialModeCustom {
		return
	}
	rows := s.splitRows[f]
	for i := range rows {
		rows[i].ChildTxnID = domain.GenerateChildTxnID(timeutil.Now())
	}
	s.invalidateLocked(f)
}

// SetSkuEnabled toggles bank-offer SKU mode; disabling clears the rows so a
// later hash omits the cart segment entirely
func (s *Store) SetSkuEnabled(f domain.Flow, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skuEnabled[f] = enabled
	if !enabled {
		delete(s.skuRows, f)
	} else if len(s.skuRows[f]) == 0 && s.credModes[f] == domain.CredentialModeDefault {
		s.skuRows[f] = defaultSkuRows()
	}
	s.invalidateLocked(f)
}

// SetSkuRows replaces the cart rows, enforcing the SKU limit
func (s *Store) SetSkuRows(f domain.Flow, rows []domain.SkuRow) error {
	if len(rows) > domain.MaxSkuItems {
		return domain.NewDomainError(domain.ErrorCodeSubDocCartInvalid,
			fmt.Sprintf("at most %d SKU items are allowed", domain.MaxSkuItems))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skuRows[f] = append([]domain.SkuRow{}, rows...)
	s.invalidateLocked(f)
	return nil
}

// SetPayMethods stores the enforced payment methods in selection order
func (s *Store) SetPayMethods(f domain.Flow, methods []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payMethods[f] = append([]string{}, methods...)
	s.invalidateLocked(f)
}

// SetLastHash records the digest of the most recent computation for the flow
func (s *Store) SetLastHash(f domain.Flow, digest string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHash[f] = digest
}

// LastHash returns the cached digest, "" once any monitored value changed
func (s *Store) LastHash(f domain.Flow) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastHash[f]
}

func (s *Store) invalidateLocked(f domain.Flow) {
	if s.lastHash[f] != "" {
		s.logger.Debug("invalidating cached hash", zap.String("flow", string(f)))
	}
	delete(s.lastHash, f)
}

// --- ports.FieldSource ---

// Value returns the stored field value, "" (logged at debug) when absent
func (s *Store) Value(f domain.Flow, name domain.FieldName) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[fieldKey(f, name)]
	if !ok {
		s.logger.Debug("field not set, defaulting to empty",
			zap.String("flow", string(f)), zap.String("field", string(name)))
	}
	return v
}

// UDF returns the UDF slot value for the namespace the sub-mode reads
func (s *Store) UDF(f domain.Flow, mode domain.PaymentMode, slot int) string {
	if slot < 1 || slot > 5 {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.udfs[udfKey(f, mode, slot)]
}

// TransactionID returns the flow's current transaction id
func (s *Store) TransactionID(f domain.Flow) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txnids[f]
}

// Credentials returns the active pair. Custom mode with an incomplete pair
// degrades to the sandbox defaults rather than hashing with a half-entered
// secret.
func (s *Store) Credentials(f domain.Flow) (domain.Credentials, domain.CredentialMode) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.credModes[f] == domain.CredentialModeCustom {
		c := s.creds[f]
		if c.Key == "" || c.Salt == "" {
			s.logger.Warn("custom credentials incomplete, using defaults",
				zap.String("flow", string(f)))
			return domain.DefaultCredentials(), domain.CredentialModeDefault
		}
		return c, domain.CredentialModeCustom
	}
	return domain.DefaultCredentials(), domain.CredentialModeDefault
}

// PaymentMode returns the active sub-mode for the flow
func (s *Store) PaymentMode(f domain.Flow) domain.PaymentMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modes[f]
}

// SplitType returns the allocation mode for the split flow
func (s *Store) SplitType(f domain.Flow) domain.SplitType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.splitTypes[f]
}

// SplitRows returns a copy of the allocation rows in entry order
func (s *Store) SplitRows(f domain.Flow) []domain.SplitRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.SplitRow{}, s.splitRows[f]...)
}

// SkuCart assembles the bank-offer cart from stored rows, nil when SKU mode
// is disabled
func (s *Store) SkuCart(f domain.Flow) *domain.SkuCart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.skuEnabled[f] {
		return nil
	}
	var preDiscount float64
	if v := s.values[fieldKey(f, domain.FieldPreDiscount)]; v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			preDiscount = parsed
		}
	}
	return &domain.SkuCart{
		Surcharges:  s.values[fieldKey(f, domain.FieldSurcharges)],
		PreDiscount: preDiscount,
		Rows:        append([]domain.SkuRow{}, s.skuRows[f]...),
	}
}

// PayMethods returns the enforced payment methods in selection order
func (s *Store) PayMethods(f domain.Flow) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.payMethods[f]...)
}
