package domain

// FieldName is a typed form-field identifier. Field values are resolved
// through the per-flow schema rather than by string-concatenated element ids,
// so unknown (flow, field) pairs are rejected at write time instead of
// silently reading as empty.
type FieldName string

const (
	FieldAmount      FieldName = "amount"
	FieldProductInfo FieldName = "productinfo"
	FieldFirstName   FieldName = "firstname"
	FieldLastName    FieldName = "lastname"
	FieldEmail       FieldName = "email"
	FieldPhone       FieldName = "phone"
	FieldSURL        FieldName = "surl"
	FieldFURL        FieldName = "furl"

	FieldAddress1 FieldName = "address1"
	FieldAddress2 FieldName = "address2"
	FieldCity     FieldName = "city"
	FieldState    FieldName = "state"
	FieldCountry  FieldName = "country"
	FieldZipcode  FieldName = "zipcode"

	FieldUDF1 FieldName = "udf1"
	FieldUDF2 FieldName = "udf2"
	FieldUDF3 FieldName = "udf3"
	FieldUDF4 FieldName = "udf4"
	FieldUDF5 FieldName = "udf5"

	FieldBillingAmount    FieldName = "billing_amount"
	FieldBillingCycle     FieldName = "billing_cycle"
	FieldBillingInterval  FieldName = "billing_interval"
	FieldPaymentStartDate FieldName = "payment_start_date"
	FieldPaymentEndDate   FieldName = "payment_end_date"

	FieldBeneficiaryAccount FieldName = "beneficiary_account"
	FieldIFSCCode           FieldName = "ifsc_code"

	FieldBuyerType FieldName = "buyer_type"

	FieldOfferKey    FieldName = "offer_key"
	FieldUserToken   FieldName = "user_token"
	FieldSurcharges  FieldName = "surcharges"
	FieldPreDiscount FieldName = "pre_discount"
)

// udfFields indexes the five UDF slots in hash order
var udfFields = [5]FieldName{FieldUDF1, FieldUDF2, FieldUDF3, FieldUDF4, FieldUDF5}

// UDFFields returns the five UDF field names in hash order
func UDFFields() [5]FieldName { return udfFields }

var commonFields = []FieldName{
	FieldAmount, FieldProductInfo, FieldFirstName, FieldLastName, FieldEmail,
	FieldPhone, FieldSURL, FieldFURL,
	FieldAddress1, FieldAddress2, FieldCity, FieldState, FieldCountry, FieldZipcode,
	FieldUDF1, FieldUDF2, FieldUDF3, FieldUDF4, FieldUDF5,
}

var subscriptionFields = []FieldName{
	FieldBillingAmount, FieldBillingCycle, FieldBillingInterval,
	FieldPaymentStartDate, FieldPaymentEndDate,
}

// fieldSchema lists the fields each flow accepts beyond the common set
var fieldSchema = map[Flow][]FieldName{
	FlowCrossBorder:  append([]FieldName{FieldBuyerType}, subscriptionFields...),
	FlowNonSeamless:  nil,
	FlowSubscription: subscriptionFields,
	FlowTPV:          {FieldBeneficiaryAccount, FieldIFSCCode},
	FlowUPIOTM:       {FieldPaymentStartDate, FieldPaymentEndDate},
	FlowPreAuth:      nil,
	FlowCheckoutPlus: nil,
	FlowSplit:        nil,
	FlowBankOffer:    {FieldOfferKey, FieldUserToken, FieldSurcharges, FieldPreDiscount},
}

// KnownField reports whether a flow accepts the given field
func KnownField(f Flow, name FieldName) bool {
	for _, n := range commonFields {
		if n == name {
			return true
		}
	}
	for _, n := range fieldSchema[f] {
		if n == name {
			return true
		}
	}
	return false
}

// CoreFields is the resolved field set every hash layout starts from.
// Missing inputs resolve to empty strings; the five UDF slots are always
// present in the canonical string.
type CoreFields struct {
	Amount      string
	ProductInfo string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	SURL        string
	FURL        string

	Address1 string
	Address2 string
	City     string
	State    string
	Country  string
	Zipcode  string

	UDF [5]string
}
