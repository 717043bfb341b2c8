package hashing

import (
	"strings"

	"github.com/payuvarun82/payu-multiflow/internal/domain"
)

// Human-readable formulas surfaced next to the hash so an operator can see
// which layout produced it. The text mirrors the canonical string segment
// for segment.
const (
	formulaStandard          = "SHA512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||SALT)"
	formulaStandardBuyer     = "SHA512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||SALT|buyer_type_business)"
	formulaSubDocument       = "SHA512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||si_details|SALT)"
	formulaSubDocBuyer       = "SHA512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||si_details|SALT|buyer_type_business)"
	formulaTPV               = "SHA512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||beneficiarydetail|SALT)"
	formulaSplit             = "SHA512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||SALT|splitRequest)"
	formulaBankOfferWithCart = "SHA512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||user_token|offer_key|offer_auto_apply|cart_details|extra_charges|phone|SALT)"
)

// head builds the fixed leading segment shared by every layout: eleven
// pipe-joined values followed by the six-pipe empty block. The UDF slots are
// always present, empty or not.
func head(tc *domain.TransactionContext) string {
	f := tc.Fields
	parts := []string{
		tc.Credentials.Key, tc.TxnID, f.Amount, f.ProductInfo, f.FirstName, f.Email,
		f.UDF[0], f.UDF[1], f.UDF[2], f.UDF[3], f.UDF[4],
	}
	return strings.Join(parts, "|") + "||||||"
}

// Assemble produces the canonical string, its formula, and the SHA-512
// digest for a resolved transaction context. The context must already be
// validated; Assemble never mutates it.
func Assemble(tc *domain.TransactionContext) (*domain.HashResult, error) {
	prefix := head(tc)
	salt := tc.Credentials.Salt

	var subJSON string
	if tc.SubDocument != nil {
		var err error
		subJSON, err = tc.SubDocument.CanonicalJSON()
		if err != nil {
			return nil, err
		}
	}

	var canonical, formula string
	switch {
	case tc.Flow == domain.FlowCrossBorder && tc.Mode == domain.PaymentModeSubscription:
		canonical = prefix + subJSON + "|" + salt
		formula = formulaSubDocument
		if tc.BuyerType != "" {
			canonical += "|" + tc.BuyerType
			formula = formulaSubDocBuyer
		}

	case tc.Flow == domain.FlowCrossBorder:
		canonical = prefix + salt
		formula = formulaStandard
		if tc.BuyerType != "" {
			canonical += "|" + tc.BuyerType
			formula = formulaStandardBuyer
		}

	case tc.Flow == domain.FlowSubscription, tc.Flow == domain.FlowUPIOTM:
		canonical = prefix + subJSON + "|" + salt
		formula = formulaSubDocument

	case tc.Flow == domain.FlowTPV:
		canonical = prefix + subJSON + "|" + salt
		formula = formulaTPV

	case tc.Flow == domain.FlowSplit:
		canonical = prefix + salt + "|" + subJSON
		formula = formulaSplit

	case tc.Flow == domain.FlowBankOffer && tc.SubDocument != nil:
		// offer_auto_apply and extra_charges hash as empty segments; the
		// gateway derives both from the cart itself.
		canonical = prefix + tc.UserToken + "|" + tc.OfferKey + "||" + subJSON + "||" + tc.Fields.Phone + "|" + salt
		formula = formulaBankOfferWithCart

	default:
		canonical = prefix + salt
		formula = formulaStandard
	}

	return &domain.HashResult{
		CanonicalString: canonical,
		Formula:         formula,
		Digest:          Digest(canonical),
		SubDocumentJSON: subJSON,
	}, nil
}
