package hashing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payuvarun82/payu-multiflow/internal/domain"
)

const (
	testSalt = domain.DefaultMerchantSalt

	// Independently computed SHA-512 of the standard canonical string below
	pinnedStandardDigest = "9e9b4a1432ad296b8b37fff9e61532831d17c0d5be382906ffcadd3b9c172d847f914aae55e14d59b0e5d9eb1ea72b4be77a8e106b5dcc1620a9c5d59bbb3ce6"
	pinnedStandardString = "a4vGC2|TXN1|100.00|Test|John|john@test.com|||||||||||" + testSalt

	pinnedSubscriptionDigest = "bdec3f3845f7204a38a4895a45b0d08fe96eb0524c654efd80bf3e49399815ee1835249d1d4a645ca40bda643d6ac19670f688dd31ec575c95b22653212242cb"
)

func baseContext(f domain.Flow, txnid string) *domain.TransactionContext {
	return &domain.TransactionContext{
		Flow:        f,
		Mode:        domain.PaymentModeOneTime,
		TxnID:       txnid,
		Credentials: domain.DefaultCredentials(),
		CredMode:    domain.CredentialModeDefault,
		Fields: domain.CoreFields{
			Amount:      "100.00",
			ProductInfo: "Test",
			FirstName:   "John",
			Email:       "john@test.com",
		},
	}
}

func TestDigest_PinnedVector(t *testing.T) {
	assert.Equal(t, pinnedStandardDigest, Digest(pinnedStandardString))
}

func TestDigest_LowercaseHexLength(t *testing.T) {
	d := Digest("anything")

	assert.Len(t, d, 128)
	assert.Equal(t, strings.ToLower(d), d)
}

func TestAssemble_Standard(t *testing.T) {
	for _, f := range []domain.Flow{domain.FlowNonSeamless, domain.FlowPreAuth, domain.FlowCheckoutPlus} {
		t.Run(string(f), func(t *testing.T) {
			tc := baseContext(f, "TXN1")

			result, err := Assemble(tc)

			require.NoError(t, err)
			assert.Equal(t, pinnedStandardString, result.CanonicalString)
			assert.Equal(t, pinnedStandardDigest, result.Digest)
			assert.Equal(t, formulaStandard, result.Formula)
			assert.Empty(t, result.SubDocumentJSON)
		})
	}
}

func TestAssemble_EmptyBlockPosition(t *testing.T) {
	tc := baseContext(domain.FlowNonSeamless, "TXN1")
	tc.Fields.UDF = [5]string{"u1", "u2", "u3", "u4", "u5"}

	result, err := Assemble(tc)

	require.NoError(t, err)
	// Six reserved empty segments sit between udf5 and the salt even when
	// every UDF slot is filled.
	assert.Equal(t,
		"a4vGC2|TXN1|100.00|Test|John|john@test.com|u1|u2|u3|u4|u5||||||"+testSalt,
		result.CanonicalString)
}

func TestAssemble_CrossBorderOneTime(t *testing.T) {
	t.Run("without buyer type", func(t *testing.T) {
		tc := baseContext(domain.FlowCrossBorder, "TXN1")

		result, err := Assemble(tc)

		require.NoError(t, err)
		assert.Equal(t, pinnedStandardString, result.CanonicalString)
		assert.Equal(t, formulaStandard, result.Formula)
	})

	t.Run("with buyer type", func(t *testing.T) {
		tc := baseContext(domain.FlowCrossBorder, "TXN1")
		tc.BuyerType = "business"

		result, err := Assemble(tc)

		require.NoError(t, err)
		assert.Equal(t, pinnedStandardString+"|business", result.CanonicalString)
		assert.Equal(t, formulaStandardBuyer, result.Formula)
	})
}

func TestAssemble_Subscription(t *testing.T) {
	tc := baseContext(domain.FlowSubscription, "TXN2")
	tc.Fields.ProductInfo = "Plan"
	tc.SubDocument = domain.NewSIDetails("100.00", "MONTHLY", 1, "2026-09-01", "2027-09-01")

	result, err := Assemble(tc)

	require.NoError(t, err)
	wantJSON := `{"billingAmount":"100.00","billingCurrency":"INR","billingCycle":"MONTHLY","billingInterval":1,"paymentStartDate":"2026-09-01","paymentEndDate":"2027-09-01"}`
	assert.Equal(t, wantJSON, result.SubDocumentJSON)
	assert.Equal(t,
		"a4vGC2|TXN2|100.00|Plan|John|john@test.com|||||||||||"+wantJSON+"|"+testSalt,
		result.CanonicalString)
	assert.Equal(t, pinnedSubscriptionDigest, result.Digest)
	assert.Equal(t, formulaSubDocument, result.Formula)
}

func TestAssemble_SubscriptionOpenEnded(t *testing.T) {
	tc := baseContext(domain.FlowSubscription, "TXN2")
	tc.SubDocument = domain.NewSIDetails("100.00", "MONTHLY", 1, "2026-09-01", "")

	result, err := Assemble(tc)

	require.NoError(t, err)
	assert.NotContains(t, result.SubDocumentJSON, "paymentEndDate",
		"a blank end date is omitted, not emitted as an empty string")
}

func TestAssemble_CrossBorderSubscription(t *testing.T) {
	tc := baseContext(domain.FlowCrossBorder, "TXN3")
	tc.Mode = domain.PaymentModeSubscription
	tc.SubDocument = domain.NewSIDetails("50.00", "WEEKLY", 2, "2026-09-01", "")

	t.Run("without buyer type", func(t *testing.T) {
		result, err := Assemble(tc)

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.CanonicalString, result.SubDocumentJSON+"|"+testSalt))
		assert.Equal(t, formulaSubDocument, result.Formula)
	})

	t.Run("with buyer type", func(t *testing.T) {
		tc.BuyerType = "business"

		result, err := Assemble(tc)

		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(result.CanonicalString, "|"+testSalt+"|business"))
		assert.Equal(t, formulaSubDocBuyer, result.Formula)
	})
}

func TestAssemble_TPV(t *testing.T) {
	tc := baseContext(domain.FlowTPV, "TXN4")
	tc.SubDocument = &domain.BeneficiaryDetail{
		BeneficiaryAccountNumber: "1234567890",
		IFSCCode:                 "HDFC0000123",
	}

	result, err := Assemble(tc)

	require.NoError(t, err)
	wantJSON := `{"beneficiaryAccountNumber":"1234567890","ifscCode":"HDFC0000123"}`
	assert.Equal(t,
		"a4vGC2|TXN4|100.00|Test|John|john@test.com|||||||||||"+wantJSON+"|"+testSalt,
		result.CanonicalString)
	assert.Equal(t, formulaTPV, result.Formula)
}

func TestAssemble_UPIOTM(t *testing.T) {
	tc := baseContext(domain.FlowUPIOTM, "TXN5")
	tc.SubDocument = &domain.UPIWindow{
		PaymentStartDate: "2026-09-01",
		PaymentEndDate:   "2026-09-10",
	}

	result, err := Assemble(tc)

	require.NoError(t, err)
	wantJSON := `{"paymentStartDate":"2026-09-01","paymentEndDate":"2026-09-10"}`
	assert.Equal(t,
		"a4vGC2|TXN5|100.00|Test|John|john@test.com|||||||||||"+wantJSON+"|"+testSalt,
		result.CanonicalString)
	assert.Equal(t, formulaSubDocument, result.Formula)
}

func TestAssemble_Split(t *testing.T) {
	tc := baseContext(domain.FlowSplit, "TXN6")
	tc.SubDocument = &domain.SplitRequest{
		Type: domain.SplitTypeAbsolute,
		Rows: []domain.SplitRow{
			{MerchantKey: "gYoEaY", ChildTxnID: "child_1_1", Amount: "60.00", Charges: "0.00"},
			{MerchantKey: "5rgA73", ChildTxnID: "child_1_2", Amount: "40.00", Charges: "0.00"},
		},
	}

	result, err := Assemble(tc)

	require.NoError(t, err)
	wantJSON := `{"type":"absolute","splitInfo":{"gYoEaY":{"aggregatorSubTxnId":"child_1_1","aggregatorSubAmt":"60.00","aggregatorCharges":"0.00"},"5rgA73":{"aggregatorSubTxnId":"child_1_2","aggregatorSubAmt":"40.00","aggregatorCharges":"0.00"}}}`
	assert.Equal(t, wantJSON, result.SubDocumentJSON)
	// The split document trails the salt instead of preceding it.
	assert.Equal(t,
		"a4vGC2|TXN6|100.00|Test|John|john@test.com|||||||||||"+testSalt+"|"+wantJSON,
		result.CanonicalString)
	assert.Equal(t, formulaSplit, result.Formula)
}

func TestAssemble_BankOffer(t *testing.T) {
	t.Run("without cart hashes standard", func(t *testing.T) {
		tc := baseContext(domain.FlowBankOffer, "TXN1")

		result, err := Assemble(tc)

		require.NoError(t, err)
		assert.Equal(t, pinnedStandardString, result.CanonicalString)
		assert.Equal(t, formulaStandard, result.Formula)
	})

	t.Run("with cart", func(t *testing.T) {
		tc := baseContext(domain.FlowBankOffer, "TXN7")
		tc.Fields.Phone = "9876543210"
		tc.UserToken = "1234567890"
		tc.OfferKey = "flat500@2022"
		tc.SubDocument = &domain.SkuCart{
			Rows: []domain.SkuRow{
				{SkuID: "testProduct11", SkuName: "SkuTest11", AmountPerSku: 20000, Quantity: 1},
			},
		}

		result, err := Assemble(tc)

		require.NoError(t, err)
		wantJSON := `{"amount":20000,"items":1,"surcharges":"","pre_discount":0,"sku_details":[{"sku_id":"testProduct11","sku_name":"SkuTest11","amount_per_sku":20000,"quantity":1,"offer_key":null,"offer_auto_apply":true}]}`
		assert.Equal(t, wantJSON, result.SubDocumentJSON)
		assert.Equal(t,
			"a4vGC2|TXN7|100.00|Test|John|john@test.com|||||||||||"+
				"1234567890|flat500@2022||"+wantJSON+"||9876543210|"+testSalt,
			result.CanonicalString)
		assert.Equal(t, formulaBankOfferWithCart, result.Formula)
	})
}

func TestAssemble_Deterministic(t *testing.T) {
	tc := baseContext(domain.FlowSubscription, "TXN2")
	tc.SubDocument = domain.NewSIDetails("100.00", "MONTHLY", 1, "2026-09-01", "2027-09-01")

	first, err := Assemble(tc)
	require.NoError(t, err)
	second, err := Assemble(tc)
	require.NoError(t, err)

	assert.Equal(t, first.CanonicalString, second.CanonicalString)
	assert.Equal(t, first.Digest, second.Digest)
}
