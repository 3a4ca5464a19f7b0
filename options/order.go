package options

type OrderEnum int

const (
	OrderFewestParamsFirst OrderEnum = iota // cheapest constructors first
	OrderMostParamsFirst                    // most specific constructors first
)

// Reverse returns the opposite ordering.
func (o OrderEnum) Reverse() OrderEnum {
	if o == OrderMostParamsFirst {
		return OrderFewestParamsFirst
	}

	return OrderMostParamsFirst
}

func (o OrderEnum) String() string {
	switch o {
	case OrderFewestParamsFirst:
		return "fewest-params-first"
	case OrderMostParamsFirst:
		return "most-params-first"
	default:
		return "unknown"
	}
}
