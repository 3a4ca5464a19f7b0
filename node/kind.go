package node

type DispatcherEnum int

const (
	DispatcherUnknown DispatcherEnum = iota
	DispatcherScalar
	DispatcherEnumeration
	DispatcherInterface
	DispatcherSlice
	DispatcherArray
	DispatcherMap
	DispatcherSet
	DispatcherList
	DispatcherSyncMap
	DispatcherChan
	DispatcherMethodContainer
	DispatcherStruct

	// DispatcherTotal is a constant that represents the total number of kinds defined
	DispatcherTotal = int(iota)
)

var dispatcherNames = [DispatcherTotal]string{
	"Unknown", "Scalar", "Enumeration", "Interface", "Slice", "Array",
	"Map", "Set", "List", "SyncMap", "Chan", "MethodContainer", "Struct",
}

func (d DispatcherEnum) String() string {
	if d < 0 || int(d) >= DispatcherTotal {
		return "Dispatcher(?)"
	}

	return dispatcherNames[d]
}

// IsContainer reports whether the dispatched kind holds elements.
func (d DispatcherEnum) IsContainer() bool {
	switch d {
	case DispatcherSlice, DispatcherArray, DispatcherMap, DispatcherSet,
		DispatcherList, DispatcherSyncMap, DispatcherChan, DispatcherMethodContainer:
		return true
	default:
		return false
	}
}
