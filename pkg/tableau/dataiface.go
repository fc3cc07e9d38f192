package tableau

// DataReasoner is the concrete-domain (datatype) constraint-solver
// plug-in interface (spec §6): the tableau core only ever calls these
// four methods, never inspecting a datatype constraint's internal
// representation itself. Out of scope for this package beyond the
// interface — a real implementation lives alongside a parser front end.
type DataReasoner interface {
	Clear()
	AddDataEntry(bp BP, dep DepSet) (clash bool)
	CheckClash() bool
	GetClashSet() DepSet
}

// noopDataReasoner is installed by default so DataType/DataValue/DataExpr
// concepts never panic on a nil interface; it accepts every entry and
// never clashes. A non-nil data argument to NewReasoner/NewEngine
// overrides it with a real solver.
type noopDataReasoner struct{}

func (noopDataReasoner) Clear()                      {}
func (noopDataReasoner) AddDataEntry(BP, DepSet) bool { return false }
func (noopDataReasoner) CheckClash() bool             { return false }
func (noopDataReasoner) GetClashSet() DepSet          { return DepSet{} }
