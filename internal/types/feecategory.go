package types

// Well-known fee category names. Category names in a fee structure are free
// form data, but the tuition line is special: category multipliers and
// scholarship discounts apply to it and to nothing else.
const (
	FeeCategoryTuition = "tuition"
	FeeCategoryLibrary = "library"
	FeeCategoryLab     = "lab"
	FeeCategoryExam    = "exam"
	FeeCategoryOther   = "other"
)

// Keys used in the fee breakdown maps. These are part of the serialization
// contract consumed by invoice rendering.
const (
	AdditionalFeeHostel    = "hostel"
	AdditionalFeeTransport = "transport"
	DiscountScholarship    = "scholarship"
)
