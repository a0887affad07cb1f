package models

// Payment methods accepted by the backend.
const (
	PaymentMethodDirectDeposit = "Direct Deposit"
	PaymentMethodMobileMoney   = "Mobile Money"
)

// FeeStructure is the fee breakdown charged to a class. TotalFee is computed by the backend.
type FeeStructure struct {
	ID               ID      `json:"id"`
	ClassID          ID      `json:"class_id"`
	TuitionFee       float64 `json:"tuition_fee"`
	BooksFee         float64 `json:"books_fee"`
	MiscellaneousFee float64 `json:"miscellaneous_fee"`
	BoardingFee      float64 `json:"boarding_fee"`
	PrizeGivingFee   float64 `json:"prize_giving_fee"`
	ExamFee          float64 `json:"exam_fee"`
	TotalFee         float64 `json:"total_fee"`
}

// EntityKey implements Entity.
func (f FeeStructure) EntityKey() ID { return f.ID }

// FeeStructureRow is a fee structure with the class resolved.
type FeeStructureRow struct {
	FeeStructure
	ClassName string `json:"class_name"`
}

// FeePayment records money received from a student. Balance is computed by the backend.
type FeePayment struct {
	ID               ID      `json:"id"`
	StudentID        ID      `json:"student_id"`
	Amount           float64 `json:"amount"`
	PaymentDate      string  `json:"payment_date"`
	Term             string  `json:"term"`
	Year             ID      `json:"year"`
	Method           string  `json:"method"`
	PickupLocationID ID      `json:"pickup_location_id"`
	Balance          float64 `json:"balance"`
}

// EntityKey implements Entity.
func (f FeePayment) EntityKey() ID { return f.ID }

// FeePaymentRow is a payment with the pickup location resolved.
type FeePaymentRow struct {
	FeePayment
	PickupLocationName string `json:"pickup_location_name"`
}

// PickupLocation is a transport pickup point.
type PickupLocation struct {
	ID           ID      `json:"id"`
	LocationName string  `json:"location_name"`
	TransportFee float64 `json:"transport_fee"`
}

// EntityKey implements Entity.
func (p PickupLocation) EntityKey() ID { return p.ID }
