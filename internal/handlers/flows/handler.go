// Package flows exposes the sandbox over HTTP. Every request carries the
// complete flow state in its body and is resolved against a fresh store, so
// the service holds no session state between calls.
package flows

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/payuvarun82/payu-multiflow/internal/adapters/formstate"
	"github.com/payuvarun82/payu-multiflow/internal/config"
	"github.com/payuvarun82/payu-multiflow/internal/domain"
	"github.com/payuvarun82/payu-multiflow/internal/services/codegen"
	"github.com/payuvarun82/payu-multiflow/internal/services/hashing"
	"github.com/payuvarun82/payu-multiflow/internal/services/payload"
	"github.com/payuvarun82/payu-multiflow/pkg/observability"
)

// Handler serves the flow endpoints
type Handler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandler creates a new flows handler
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, logger: logger}
}

// Register wires the flow routes into the router
func (h *Handler) Register(router *httprouter.Router) {
	route := func(method, path string, fn http.HandlerFunc) {
		router.Handler(method, path, observability.Middleware(path, fn))
	}
	route(http.MethodGet, "/v1/flows", h.listFlows)
	route(http.MethodPost, "/v1/flows/:flow/hash", h.computeHash)
	route(http.MethodPost, "/v1/flows/:flow/payload", h.buildPayload)
	route(http.MethodPost, "/v1/flows/:flow/checkout", h.checkoutPage)
	route(http.MethodPost, "/v1/flows/:flow/curl", h.curlCommand)
	route(http.MethodPost, "/v1/flows/:flow/code", h.generateCode)
}

// CredentialsBody is an operator-supplied merchant pair
type CredentialsBody struct {
	Key  string `json:"key"`
	Salt string `json:"salt"`
}

// SplitRowBody is one sub-merchant allocation row
type SplitRowBody struct {
	MerchantKey string `json:"merchant_key"`
	ChildTxnID  string `json:"child_txnid"`
	Amount      string `json:"amount"`
	Charges     string `json:"charges"`
}

// SplitBody is the split allocation section of a request
type SplitBody struct {
	Type string         `json:"type"`
	Rows []SplitRowBody `json:"rows"`
}

// SkuRowBody is one cart line
type SkuRowBody struct {
	SkuID        string  `json:"sku_id"`
	SkuName      string  `json:"sku_name"`
	AmountPerSku float64 `json:"amount_per_sku"`
	Quantity     int     `json:"quantity"`
	OfferKey     string  `json:"offer_key"`
}

// SkuBody is the bank-offer cart section of a request
type SkuBody struct {
	Enabled bool         `json:"enabled"`
	Rows    []SkuRowBody `json:"rows"`
}

// FlowRequest is the complete flow state carried by every POST
type FlowRequest struct {
	PaymentMode string            `json:"payment_mode,omitempty"`
	TxnID       string            `json:"txnid,omitempty"`
	Credentials *CredentialsBody  `json:"credentials,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	UDFs        map[string]string `json:"udfs,omitempty"`
	PayMethods  []string          `json:"pay_methods,omitempty"`
	Split       *SplitBody        `json:"split,omitempty"`
	Sku         *SkuBody          `json:"sku,omitempty"`
}

// errorBody is the uniform error envelope
type errorBody struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	} `json:"error"`
}

func flowParam(r *http.Request) (domain.Flow, error) {
	params := httprouter.ParamsFromContext(r.Context())
	return domain.ParseFlow(params.ByName("flow"))
}

// buildStore materializes a fresh store from the request body
func (h *Handler) buildStore(f domain.Flow, req *FlowRequest) (*formstate.Store, error) {
	store := formstate.NewStore(h.logger)

	mode := domain.PaymentModeOneTime
	if req.PaymentMode == string(domain.PaymentModeSubscription) {
		mode = domain.PaymentModeSubscription
	}
	store.SetPaymentMode(f, mode)

	if req.Credentials != nil {
		if err := store.UseCustomCredentials(f, req.Credentials.Key, req.Credentials.Salt); err != nil {
			return nil, err
		}
	}
	if req.TxnID != "" {
		if err := store.SetTransactionID(f, req.TxnID); err != nil {
			return nil, err
		}
	}

	for name, value := range req.Fields {
		if err := store.Set(f, domain.FieldName(name), value); err != nil {
			return nil, err
		}
	}
	for slot, value := range req.UDFs {
		n, err := strconv.Atoi(slot)
		if err != nil {
			return nil, domain.NewDomainError(domain.ErrorCodeFlowFieldUnknown,
				fmt.Sprintf("invalid udf slot %q", slot))
		}
		if err := store.SetUDF(f, mode, n, value); err != nil {
			return nil, err
		}
	}
	if len(req.PayMethods) > 0 {
		store.SetPayMethods(f, req.PayMethods)
	}

	if req.Split != nil {
		if req.Split.Type == string(domain.SplitTypePercentage) {
			store.SetSplitType(f, domain.SplitTypePercentage)
		}
		rows := make([]domain.SplitRow, len(req.Split.Rows))
		for i, r := range req.Split.Rows {
			rows[i] = domain.SplitRow{
				MerchantKey: r.MerchantKey,
				ChildTxnID:  r.ChildTxnID,
				Amount:      r.Amount,
				Charges:     r.Charges,
			}
		}
		store.SetSplitRows(f, rows)
	}

	if req.Sku != nil && req.Sku.Enabled {
		store.SetSkuEnabled(f, true)
		if len(req.Sku.Rows) > 0 {
			rows := make([]domain.SkuRow, len(req.Sku.Rows))
			for i, r := range req.Sku.Rows {
				rows[i] = domain.SkuRow{
					SkuID:        r.SkuID,
					SkuName:      r.SkuName,
					AmountPerSku: r.AmountPerSku,
					Quantity:     r.Quantity,
					OfferKey:     r.OfferKey,
				}
			}
			if err := store.SetSkuRows(f, rows); err != nil {
				return nil, err
			}
		}
	}

	return store, nil
}

// resolve runs the full request pipeline: body to store to hashed payload
func (h *Handler) resolve(r *http.Request) (*payload.ResolvedPayload, error) {
	f, err := flowParam(r)
	if err != nil {
		return nil, err
	}

	var req FlowRequest
	if r.Body != nil {
		// an absent body means an empty request, not a malformed one
		if derr := json.NewDecoder(r.Body).Decode(&req); derr != nil && !errors.Is(derr, io.EOF) {
			return nil, domain.WrapError(domain.ErrorCodeValidationFailed, "invalid request body", derr)
		}
	}

	store, err := h.buildStore(f, &req)
	if err != nil {
		return nil, err
	}

	hasher := hashing.NewService(store, h.logger)
	tc, hash, err := hasher.ResolveAndHash(f)
	if err != nil {
		return nil, err
	}
	store.SetLastHash(f, hash.Digest)

	return payload.NewService(h.cfg.Gateway, h.logger).Build(tc, hash)
}

func (h *Handler) listFlows(w http.ResponseWriter, r *http.Request) {
	type flowInfo struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		TxnCode    string   `json:"txn_code"`
		Layout     string   `json:"hash_layout"`
		APIVersion string   `json:"api_version,omitempty"`
		Required   []string `json:"required_fields"`
	}

	flows := make([]flowInfo, 0, len(domain.Flows()))
	for _, d := range domain.Flows() {
		required := make([]string, len(d.Required))
		for i, f := range d.Required {
			required[i] = string(f)
		}
		flows = append(flows, flowInfo{
			ID:         string(d.Flow),
			Name:       d.Name,
			TxnCode:    d.TxnCode,
			Layout:     string(d.Layout),
			APIVersion: d.APIVersion,
			Required:   required,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"flows": flows})
}

func (h *Handler) computeHash(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolve(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"flow":             string(p.Flow),
		"txnid":            p.Context.TxnID,
		"hash":             p.Hash.Digest,
		"hash_formula":     p.Hash.Formula,
		"canonical_string": p.Hash.CanonicalString,
		"sub_document":     p.Hash.SubDocumentJSON,
		"credential_mode":  string(p.Context.CredMode),
	})
}

func (h *Handler) buildPayload(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolve(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	fields := make([]map[string]string, len(p.Fields))
	for i, f := range p.Fields {
		fields[i] = map[string]string{"name": f.Name, "value": f.Value}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"flow":     string(p.Flow),
		"endpoint": p.Endpoint,
		"fields":   fields,
	})
}

func (h *Handler) checkoutPage(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolve(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, p.FormHTML())
}

func (h *Handler) curlCommand(w http.ResponseWriter, r *http.Request) {
	p, err := h.resolve(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, p.CurlCommand())
}

func (h *Handler) generateCode(w http.ResponseWriter, r *http.Request) {
	lang := codegen.LanguageJava
	if q := r.URL.Query().Get("lang"); q != "" {
		parsed, err := codegen.ParseLanguage(q)
		if err != nil {
			h.writeError(w, err)
			return
		}
		lang = parsed
	}

	p, err := h.resolve(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	code, err := codegen.NewService(h.cfg.Gateway, h.logger).Generate(lang, p.Context)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"flow":      string(p.Flow),
		"language":  string(lang),
		"hash_type": string(codegen.ClassifyHashType(p.Context)),
		"filename":  "PayUIntegration." + lang.FileExtension(),
		"code":      code,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

// writeError maps domain error codes onto HTTP statuses
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	code := domain.GetErrorCode(err)
	switch code {
	case domain.ErrorCodeFlowUnknown:
		status = http.StatusNotFound
	case domain.ErrorCodeInternalError:
		status = http.StatusInternalServerError
	case "":
		code = domain.ErrorCodeValidationFailed
	}

	var body errorBody
	body.Error.Code = string(code)
	body.Error.Message = err.Error()
	var derr *domain.DomainError
	if errors.As(err, &derr) && len(derr.Details) > 0 {
		body.Error.Details = derr.Details
	}
	h.writeJSON(w, status, body)
}
