package payload

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/adapters/formstate"
	"github.com/payuvarun82/payu-multiflow/internal/config"
	"github.com/payuvarun82/payu-multiflow/internal/domain"
	"github.com/payuvarun82/payu-multiflow/internal/services/hashing"
	"github.com/payuvarun82/payu-multiflow/pkg/timeutil"
)

func testGateway() config.GatewayConfig {
	return config.Default().Gateway
}

func newFixture(t *testing.T) (*Service, *hashing.Service, *formstate.Store) {
	t.Helper()
	store := formstate.NewStore(zap.NewNop())
	return NewService(testGateway(), zap.NewNop()), hashing.NewService(store, zap.NewNop()), store
}

func fillCommon(t *testing.T, store *formstate.Store, f domain.Flow) {
	t.Helper()
	require.NoError(t, store.SetTransactionID(f, "TXN1"))
	require.NoError(t, store.Set(f, domain.FieldAmount, "100.00"))
	require.NoError(t, store.Set(f, domain.FieldProductInfo, "Test"))
	require.NoError(t, store.Set(f, domain.FieldFirstName, "John"))
	require.NoError(t, store.Set(f, domain.FieldEmail, "john@test.com"))
	require.NoError(t, store.Set(f, domain.FieldPhone, "9876543210"))
}

func build(t *testing.T, svc *Service, hasher *hashing.Service, f domain.Flow) *ResolvedPayload {
	t.Helper()
	tc, hash, err := hasher.ResolveAndHash(f)
	require.NoError(t, err)
	p, err := svc.Build(tc, hash)
	require.NoError(t, err)
	return p
}

func fieldNames(p *ResolvedPayload) []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}

func TestBuild_PrimaryFieldOrder(t *testing.T) {
	svc, hasher, store := newFixture(t)
	fillCommon(t, store, domain.FlowNonSeamless)

	p := build(t, svc, hasher, domain.FlowNonSeamless)

	assert.Equal(t,
		[]string{"key", "txnid", "amount", "productinfo", "firstname", "email", "phone", "surl", "furl", "hash"},
		fieldNames(p)[:10])
	assert.Equal(t, "https://test.payu.in/_payment", p.Endpoint)
	assert.Equal(t, p.Hash.Digest, p.Get("hash"))
}

func TestBuild_ReturnURLDefaults(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowNonSeamless
	fillCommon(t, store, f)

	p := build(t, svc, hasher, f)
	assert.Equal(t, "https://test.payu.in/admin/test_response", p.Get("surl"))
	assert.Equal(t, "https://test.payu.in/admin/test_response", p.Get("furl"))

	require.NoError(t, store.Set(f, domain.FieldSURL, "https://merchant.example/ok"))
	p = build(t, svc, hasher, f)
	assert.Equal(t, "https://merchant.example/ok", p.Get("surl"))
	assert.Equal(t, "https://test.payu.in/admin/test_response", p.Get("furl"))
}

func TestBuild_OptionalFieldsOnlyWhenSet(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowNonSeamless
	fillCommon(t, store, f)

	p := build(t, svc, hasher, f)
	names := fieldNames(p)
	assert.NotContains(t, names, "lastname")
	assert.NotContains(t, names, "address1")
	assert.NotContains(t, names, "udf1")

	require.NoError(t, store.Set(f, domain.FieldLastName, "Kumar"))
	require.NoError(t, store.Set(f, domain.FieldCity, "Delhi"))
	require.NoError(t, store.SetUDF(f, domain.PaymentModeOneTime, 2, "Testing UDF2"))

	p = build(t, svc, hasher, f)
	assert.Equal(t, "Kumar", p.Get("lastname"))
	assert.Equal(t, "Delhi", p.Get("city"))
	assert.Equal(t, "Testing UDF2", p.Get("udf2"))
	assert.NotContains(t, fieldNames(p), "udf1", "empty UDF slots stay out of the form")
}

func fillSubscription(t *testing.T, store *formstate.Store) {
	t.Helper()
	f := domain.FlowSubscription
	fillCommon(t, store, f)
	require.NoError(t, store.Set(f, domain.FieldBillingAmount, "100.00"))
	require.NoError(t, store.Set(f, domain.FieldBillingCycle, "MONTHLY"))
	require.NoError(t, store.Set(f, domain.FieldBillingInterval, "1"))
	require.NoError(t, store.Set(f, domain.FieldPaymentStartDate, timeutil.DaysFromNow(1)))
	require.NoError(t, store.Set(f, domain.FieldPaymentEndDate, timeutil.DaysFromNow(365)))
}

func TestBuild_SubscriptionExtras(t *testing.T) {
	svc, hasher, store := newFixture(t)
	fillSubscription(t, store)

	p := build(t, svc, hasher, domain.FlowSubscription)

	assert.Equal(t, "1", p.Get("si"))
	assert.Equal(t, "7", p.Get("api_version"))
	assert.Equal(t, p.Hash.SubDocumentJSON, p.Get("si_details"))
	assert.Contains(t, p.Get("si_details"), `"billingCurrency":"INR"`)
}

func TestBuild_TPVExtras(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowTPV
	fillCommon(t, store, f)
	require.NoError(t, store.Set(f, domain.FieldBeneficiaryAccount, "1234567890"))
	require.NoError(t, store.Set(f, domain.FieldIFSCCode, "HDFC0000123"))

	p := build(t, svc, hasher, f)

	assert.Equal(t, "6", p.Get("api_version"))
	assert.Equal(t, `{"beneficiaryAccountNumber":"1234567890","ifscCode":"HDFC0000123"}`,
		p.Get("beneficiarydetail"))
}

func TestBuild_UPIOTMExtras(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowUPIOTM
	fillCommon(t, store, f)
	require.NoError(t, store.Set(f, domain.FieldPaymentStartDate, timeutil.DaysFromNow(1)))
	require.NoError(t, store.Set(f, domain.FieldPaymentEndDate, timeutil.DaysFromNow(8)))

	p := build(t, svc, hasher, f)

	assert.Equal(t, "7", p.Get("api_version"))
	assert.Equal(t, "1", p.Get("pre_authorize"))
	assert.Contains(t, p.Get("si_details"), "paymentStartDate")
}

func TestBuild_PreAuthExtras(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowPreAuth
	fillCommon(t, store, f)
	store.SetPayMethods(f, []string{"cc", "dc"})

	p := build(t, svc, hasher, f)

	assert.Equal(t, "1", p.Get("pre_authorize"))
	assert.Equal(t, "creditcard|debitcard", p.Get("enforce_paymethod"))
}

func TestBuild_SplitExtras(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowSplit
	fillCommon(t, store, f)
	store.SetSplitRows(f, []domain.SplitRow{
		{MerchantKey: "gYoEaY", ChildTxnID: "child_1_1", Amount: "60.00"},
	})

	p := build(t, svc, hasher, f)

	assert.Equal(t, p.Hash.SubDocumentJSON, p.Get("splitRequest"))
	assert.Contains(t, p.Get("splitRequest"), `"aggregatorSubTxnId":"child_1_1"`)
}

func TestBuild_BankOfferExtras(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowBankOffer
	fillCommon(t, store, f)

	t.Run("without cart", func(t *testing.T) {
		p := build(t, svc, hasher, f)
		names := fieldNames(p)
		assert.NotContains(t, names, "cart_details")
		assert.NotContains(t, names, "api_version")
	})

	t.Run("with cart", func(t *testing.T) {
		store.SetSkuEnabled(f, true)
		require.NoError(t, store.SetSkuRows(f, []domain.SkuRow{
			{SkuID: "testProduct11", SkuName: "SkuTest11", AmountPerSku: 20000, Quantity: 1},
		}))
		require.NoError(t, store.Set(f, domain.FieldOfferKey, "flat500@2022"))
		require.NoError(t, store.Set(f, domain.FieldUserToken, "1234567890"))

		p := build(t, svc, hasher, f)

		assert.Equal(t, "19", p.Get("api_version"))
		assert.Equal(t, p.Hash.SubDocumentJSON, p.Get("cart_details"))
		assert.Equal(t, "flat500@2022", p.Get("offer_key"))
		assert.Equal(t, "1234567890", p.Get("user_token"))
	})
}

func TestBuild_PayMethodAliases(t *testing.T) {
	t.Run("one-time maps nb to netbanking", func(t *testing.T) {
		svc, hasher, store := newFixture(t)
		f := domain.FlowNonSeamless
		fillCommon(t, store, f)
		store.SetPayMethods(f, []string{"nb", "upi"})

		p := build(t, svc, hasher, f)

		assert.Equal(t, "netbanking|upi", p.Get("enforce_paymethod"))
	})

	t.Run("subscription maps nb to enach", func(t *testing.T) {
		svc, hasher, store := newFixture(t)
		fillSubscription(t, store)
		store.SetPayMethods(domain.FlowSubscription, []string{"nb", "cc"})

		p := build(t, svc, hasher, domain.FlowSubscription)

		assert.Equal(t, "enach|creditcard", p.Get("enforce_paymethod"))
	})
}

func TestCurlCommand(t *testing.T) {
	svc, hasher, store := newFixture(t)
	fillCommon(t, store, domain.FlowNonSeamless)

	p := build(t, svc, hasher, domain.FlowNonSeamless)
	cmd := p.CurlCommand()

	assert.True(t, strings.HasPrefix(cmd, `curl -X POST "https://test.payu.in/_payment" \`))
	assert.Contains(t, cmd, `-H "Content-Type: application/x-www-form-urlencoded"`)
	assert.Contains(t, cmd, `-d "key=a4vGC2"`)
	assert.Contains(t, cmd, `-d "txnid=TXN1"`)
	assert.Contains(t, cmd, `-d "hash=`+p.Hash.Digest+`"`)
	assert.Equal(t, 10, strings.Count(cmd, `-d "`), "exactly the ten primary fields")
	assert.False(t, strings.HasSuffix(cmd, "\\"), "last line has no continuation")
}

func TestCurlCommand_IsSubsetOfForm(t *testing.T) {
	svc, hasher, store := newFixture(t)
	fillSubscription(t, store)

	p := build(t, svc, hasher, domain.FlowSubscription)
	cmd := p.CurlCommand()

	for _, f := range p.Fields[:10] {
		assert.Contains(t, cmd, `-d "`+f.Name+`=`)
	}
	assert.NotContains(t, cmd, "si_details", "sub-documents never ride the curl command")
}

func TestFormHTML(t *testing.T) {
	svc, hasher, store := newFixture(t)
	f := domain.FlowNonSeamless
	fillCommon(t, store, f)
	require.NoError(t, store.Set(f, domain.FieldProductInfo, `A "quoted" <product> & more`))

	p := build(t, svc, hasher, f)
	html := p.FormHTML()

	assert.Contains(t, html, `action="https://test.payu.in/_payment"`)
	assert.Contains(t, html, `name="hash" value="`+p.Hash.Digest+`"`)
	assert.Contains(t, html, "A &quot;quoted&quot; &lt;product&gt; &amp; more")
	assert.Contains(t, html, "document.getElementById('paymentForm').submit()")
	assert.Contains(t, html, "<noscript>")
}

func TestWriteDebug(t *testing.T) {
	svc, hasher, store := newFixture(t)
	fillCommon(t, store, domain.FlowNonSeamless)

	p := build(t, svc, hasher, domain.FlowNonSeamless)
	var buf bytes.Buffer
	p.WriteDebug(&buf)
	out := buf.String()

	assert.Contains(t, out, "NONSEAMLESS")
	assert.Contains(t, out, p.Hash.Digest[:20]+"... (truncated)")
	assert.Contains(t, out, p.Hash.Formula)
	assert.Contains(t, out, p.Hash.Digest)
}
