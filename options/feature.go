package options

type FeatureEnum int

const (
	FeatureRejectEmptyContainers FeatureEnum = 1 << iota // a candidate returning an empty slice/map/list is a soft failure
	FeatureFactoryMethods                                // exported methods on the zero value returning the shape are candidates
	FeatureZeroAllocation                                // reflect.New is the last-resort candidate for structs
	FeatureSetterMethods                                 // single-argument SetX methods on *T are members
	FeaturePromotedFields                                // fields promoted from embedded structs are members

	FeatureAll  FeatureEnum = (1 << iota) - 1 // all features combined
	FeatureNone FeatureEnum = 0               // no features selected
)

// Has reports whether every bit of f is enabled.
func (e FeatureEnum) Has(f FeatureEnum) bool {
	return e&f == f
}

// With returns a copy with f enabled.
func (e FeatureEnum) With(f FeatureEnum) FeatureEnum {
	return e | f
}

// Without returns a copy with f disabled.
func (e FeatureEnum) Without(f FeatureEnum) FeatureEnum {
	return e &^ f
}
