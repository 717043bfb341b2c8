package flows

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/config"
	"github.com/payuvarun82/payu-multiflow/pkg/timeutil"
)

const standardDigest = "9e9b4a1432ad296b8b37fff9e61532831d17c0d5be382906ffcadd3b9c172d847f914aae55e14d59b0e5d9eb1ea72b4be77a8e106b5dcc1620a9c5d59bbb3ce6"

func newTestRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	router := httprouter.New()
	NewHandler(config.Default(), zap.NewNop()).Register(router)
	return router
}

func postJSON(t *testing.T, router *httprouter.Router, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func standardRequest() FlowRequest {
	return FlowRequest{
		TxnID: "TXN1",
		Fields: map[string]string{
			"amount":      "100.00",
			"productinfo": "Test",
			"firstname":   "John",
			"email":       "john@test.com",
			"phone":       "9876543210",
		},
	}
}

func TestListFlows(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/flows", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	flows, ok := body["flows"].([]interface{})
	require.True(t, ok)
	assert.Len(t, flows, 9)

	ids := make([]string, 0, len(flows))
	for _, f := range flows {
		entry := f.(map[string]interface{})
		ids = append(ids, entry["id"].(string))
	}
	assert.Contains(t, ids, "nonseamless")
	assert.Contains(t, ids, "bankoffer")
}

func TestComputeHash_Standard(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/hash", standardRequest())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, standardDigest, body["hash"])
	assert.Equal(t, "TXN1", body["txnid"])
	assert.Equal(t, "default", body["credential_mode"])
	canonical, _ := body["canonical_string"].(string)
	assert.True(t, strings.HasPrefix(canonical, "a4vGC2|TXN1|100.00|"))
}

func TestComputeHash_CustomCredentials(t *testing.T) {
	router := newTestRouter(t)

	req := standardRequest()
	req.Credentials = &CredentialsBody{Key: "myKey", Salt: "mySalt"}
	rec := postJSON(t, router, "/v1/flows/nonseamless/hash", req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "custom", body["credential_mode"])
	assert.NotEqual(t, standardDigest, body["hash"])
}

func TestComputeHash_UnknownFlow(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nosuchflow/hash", standardRequest())

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeJSON(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "FLOW_UNKNOWN", errObj["code"])
}

func TestComputeHash_MissingFields(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/hash", FlowRequest{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_MISSING_FIELD", errObj["code"])
}

func TestComputeHash_UnknownField(t *testing.T) {
	router := newTestRouter(t)

	req := standardRequest()
	req.Fields["bogus_field"] = "x"
	rec := postJSON(t, router, "/v1/flows/nonseamless/hash", req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "FLOW_FIELD_UNKNOWN", errObj["code"])
}

func TestComputeHash_Subscription(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/subscription/hash", FlowRequest{
		TxnID: "TXN2",
		Fields: map[string]string{
			"amount":             "100.00",
			"productinfo":        "Plan",
			"firstname":          "John",
			"email":              "john@test.com",
			"phone":              "9876543210",
			"billing_amount":     "100.00",
			"billing_cycle":      "MONTHLY",
			"billing_interval":   "1",
			"payment_start_date": timeutil.DaysFromNow(1),
			"payment_end_date":   timeutil.DaysFromNow(365),
		},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	sub, _ := body["sub_document"].(string)
	assert.Contains(t, sub, `"billingCycle":"MONTHLY"`)
	assert.Contains(t, sub, `"billingCurrency":"INR"`)
	canonical, _ := body["canonical_string"].(string)
	assert.Contains(t, canonical, "||||||"+sub+"|")
}

func TestBuildPayload_FieldOrder(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/payload", standardRequest())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "https://test.payu.in/_payment", body["endpoint"])

	fields := body["fields"].([]interface{})
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.(map[string]interface{})["name"].(string)
	}
	assert.Equal(t, []string{
		"key", "txnid", "amount", "productinfo", "firstname",
		"email", "phone", "surl", "furl", "hash",
	}, names)
}

func TestCheckoutPage(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/checkout", standardRequest())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	html := rec.Body.String()
	assert.Contains(t, html, `action="https://test.payu.in/_payment"`)
	assert.Contains(t, html, standardDigest)
	assert.Contains(t, html, "paymentForm")
}

func TestCurlCommand(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/curl", standardRequest())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	out := rec.Body.String()
	assert.True(t, strings.HasPrefix(out, `curl -X POST "https://test.payu.in/_payment"`))
	assert.Equal(t, 10, strings.Count(out, `-d "`))
}

func TestGenerateCode(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/code?lang=python", standardRequest())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "python", body["language"])
	assert.Equal(t, "standard", body["hash_type"])
	assert.Equal(t, "PayUIntegration.py", body["filename"])
	code, _ := body["code"].(string)
	assert.Contains(t, code, "YOUR_MERCHANT_KEY")
	assert.NotContains(t, code, "hKvGJP28d2ZUuCRz5BnDag58QBdCxBli")
}

func TestGenerateCode_DefaultLanguage(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/code", standardRequest())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "java", body["language"])
}

func TestGenerateCode_UnknownLanguage(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/nonseamless/code?lang=cobol", standardRequest())

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSplitFlow_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	req := standardRequest()
	req.Split = &SplitBody{
		Type: "absolute",
		Rows: []SplitRowBody{
			{MerchantKey: "gYoEaY", ChildTxnID: "child_1", Amount: "60.00", Charges: "0.00"},
			{MerchantKey: "5rgA73", ChildTxnID: "child_2", Amount: "40.00", Charges: "0.00"},
		},
	}
	rec := postJSON(t, router, "/v1/flows/split/payload", req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	fields := body["fields"].([]interface{})
	var splitRequest string
	for _, f := range fields {
		entry := f.(map[string]interface{})
		if entry["name"] == "splitRequest" {
			splitRequest = entry["value"].(string)
		}
	}
	assert.Contains(t, splitRequest, `"gYoEaY"`)
	assert.Contains(t, splitRequest, `"aggregatorSubTxnId":"child_1"`)
}

func TestPreAuth_RequiresPayMethod(t *testing.T) {
	router := newTestRouter(t)

	rec := postJSON(t, router, "/v1/flows/preauth/hash", standardRequest())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := standardRequest()
	req.PayMethods = []string{"cc"}
	rec = postJSON(t, router, "/v1/flows/preauth/hash", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/flows/nonseamless/hash",
		strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_FAILED", errObj["code"])
}
