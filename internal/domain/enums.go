package domain

// ParseStatus represents the parsing lifecycle of a report.
type ParseStatus string

const (
	ParseStatusInProgress ParseStatus = "in_progress"
	ParseStatusParsed     ParseStatus = "parsed"
	ParseStatusNotParsed  ParseStatus = "not_parsed"
)

// PaymentStatus represents the payment lifecycle of a report.
type PaymentStatus string

const (
	PaymentStatusNotPayed   PaymentStatus = "not_payed"
	PaymentStatusInProgress PaymentStatus = "in_progress"
	PaymentStatusPayed      PaymentStatus = "payed"
	PaymentStatusError      PaymentStatus = "error"
)

// Broker identifies the brokerage that produced an uploaded report.
type Broker string

const (
	BrokerTinkoff Broker = "tinkoff"
	BrokerAlfa    Broker = "alfa"
	BrokerBCS     Broker = "bcs"
	BrokerOpen    Broker = "open"
	BrokerFinam   Broker = "finam"
	BrokerVTB     Broker = "vtb"
	BrokerSber    Broker = "sber"
)

// KnownBroker reports whether s names a supported brokerage.
func KnownBroker(s string) bool {
	switch Broker(s) {
	case BrokerTinkoff, BrokerAlfa, BrokerBCS, BrokerOpen,
		BrokerFinam, BrokerVTB, BrokerSber:
		return true
	}
	return false
}

// UserRole distinguishes end users from internal service callers.
type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleService UserRole = "service"
)

// PromocodeUsage classifies the outcome of applying a promo code to a price.
type PromocodeUsage string

const (
	PromocodeUsageNotSet   PromocodeUsage = "not_set"
	PromocodeUsageSuccess  PromocodeUsage = "success"
	PromocodeUsageNotExist PromocodeUsage = "not_exist"
	PromocodeUsageExpired  PromocodeUsage = "expired"
)
