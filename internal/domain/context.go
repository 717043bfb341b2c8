package domain

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Sandbox merchant credentials published by the gateway for UAT testing.
// These are not secrets.
const (
	DefaultMerchantKey  = "a4vGC2"
	DefaultMerchantSalt = "hKvGJP28d2ZUuCRz5BnDag58QBdCxBli"
)

// MaxTxnIDLength is the gateway limit on transaction id length
const MaxTxnIDLength = 25

// CredentialMode selects between the fixed sandbox pair and an
// operator-supplied pair
type CredentialMode string

const (
	CredentialModeDefault CredentialMode = "default"
	CredentialModeCustom  CredentialMode = "custom"
)

// Credentials is a merchant key + salt pair. It is fixed for the lifetime of
// one hash computation; toggling the mode invalidates any prior hash.
type Credentials struct {
	Key  string
	Salt string
}

// DefaultCredentials returns the fixed sandbox pair
func DefaultCredentials() Credentials {
	return Credentials{Key: DefaultMerchantKey, Salt: DefaultMerchantSalt}
}

var txnIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateTxnID checks the gateway's transaction-id constraints
func ValidateTxnID(txnid string) error {
	if txnid == "" {
		return NewValidationError("txnid", "transaction id is required")
	}
	if !txnIDPattern.MatchString(txnid) {
		return NewValidationError("txnid",
			"transaction id can only contain letters, numbers, underscores, and hyphens")
	}
	if len(txnid) > MaxTxnIDLength {
		return NewValidationError("txnid",
			fmt.Sprintf("transaction id cannot exceed %d characters (got %d)", MaxTxnIDLength, len(txnid)))
	}
	return nil
}

// GenerateTxnID produces a fresh transaction id for a flow:
// TXN_<CODE>_<unix-seconds>_<rand>. Stays within the 25-char limit for any
// timestamp before year 2286.
func GenerateTxnID(f Flow, now time.Time) string {
	d := flowRegistry[f]
	code := d.TxnCode
	if code == "" {
		code = "NS"
	}
	return fmt.Sprintf("TXN_%s_%d_%d", code, now.Unix(), rand.Intn(10000))
}

// GenerateChildTxnID produces a child transaction id for a split row
func GenerateChildTxnID(now time.Time) string {
	return fmt.Sprintf("child_%d_%d", now.UnixMilli(), rand.Intn(10000))
}

// TransactionContext carries everything one hash computation needs: resolved
// fields, credentials, and the flow-specific sub-document. It is built fresh
// per action and treated as read-only by every consumer.
type TransactionContext struct {
	ID          uuid.UUID
	Flow        Flow
	Mode        PaymentMode
	TxnID       string
	Credentials Credentials
	CredMode    CredentialMode
	Fields      CoreFields

	// SubDocument is the tagged sub-document for the flow, nil when the
	// layout embeds none (standard, cross-border one-time, bank offer
	// without cart)
	SubDocument SubDocument

	// BuyerType is the cross-border buyer classification; included in the
	// hash tail only when explicitly chosen (non-empty)
	BuyerType string

	// Bank-offer extras hashed alongside the cart
	UserToken string
	OfferKey  string

	// PayMethods feeds the enforce_paymethod form field
	PayMethods []string
}

// IsSubscription reports whether the context hashes with a standing
// instruction (subscription flow, or cross-border in subscription sub-mode)
func (tc *TransactionContext) IsSubscription() bool {
	return tc.Flow == FlowSubscription ||
		(tc.Flow == FlowCrossBorder && tc.Mode == PaymentModeSubscription)
}

// HashResult is the ephemeral outcome of one hash computation. It is
// recomputed on every action and never cached across field edits.
type HashResult struct {
	CanonicalString string
	Formula         string
	Digest          string // 128-char lowercase hex SHA-512
	SubDocumentJSON string // verbatim JSON embedded in the canonical string, "" if none
}
