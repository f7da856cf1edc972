package model

// Size is the garment size of one product size entry
type Size string

const (
	SizeXS       Size = "XS"
	SizeS        Size = "S"
	SizeM        Size = "M"
	SizeL        Size = "L"
	SizeXL       Size = "XL"
	SizeXXL      Size = "XXL"
	SizeFreeSize Size = "Free Size"
)

// AllSizes lists every accepted size in display order
var AllSizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeFreeSize}

// Valid reports whether s is one of AllSizes
func (s Size) Valid() bool { return contains(AllSizes, s) }

// Condition describes the wear level of a rental item
type Condition string

const (
	ConditionExcellent Condition = "Excellent"
	ConditionVeryGood  Condition = "Very Good"
	ConditionGood      Condition = "Good"
	ConditionFair      Condition = "Fair"
)

var AllConditions = []Condition{ConditionExcellent, ConditionVeryGood, ConditionGood, ConditionFair}

func (c Condition) Valid() bool { return contains(AllConditions, c) }

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderConfirmed  OrderStatus = "Confirmed"
	OrderProcessing OrderStatus = "Processing"
	OrderShipped    OrderStatus = "Shipped"
	OrderDelivered  OrderStatus = "Delivered"
	OrderReturned   OrderStatus = "Returned"
	OrderCancelled  OrderStatus = "Cancelled"
)

var AllOrderStatuses = []OrderStatus{
	OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
	OrderDelivered, OrderReturned, OrderCancelled,
}

func (s OrderStatus) Valid() bool { return contains(AllOrderStatuses, s) }

// PaymentStatus is the payment state of an order
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

var AllPaymentStatuses = []PaymentStatus{PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded}

func (s PaymentStatus) Valid() bool { return contains(AllPaymentStatuses, s) }

// Role is the account role of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var AllRoles = []Role{RoleUser, RoleAdmin}

func (r Role) Valid() bool { return contains(AllRoles, r) }

func contains[T comparable](all []T, v T) bool {
	for _, candidate := range all {
		if candidate == v {
			return true
		}
	}
	return false
}
