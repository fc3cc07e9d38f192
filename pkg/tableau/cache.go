package tableau

import "github.com/gitrdm/dltableau/internal/bitset"

// CacheState is the result of querying or merging a cache.
type CacheState uint8

const (
	CacheUnknown CacheState = iota
	CacheValid
	CacheInvalid
	CacheFailed
)

// Cache is the per-DAG-vertex satisfiability witness interface. Three
// concrete implementations share it (Const, Singleton, Ian). Kind()
// names the variant; CanMerge and HasNominalClash dispatch on the other
// cache's concrete type through type assertions, not on Kind().
type Cache interface {
	Kind() string
	State() CacheState
	CanMerge(other Cache) CacheState
	Merge(other Cache) Cache
	HasNominalClash(other Cache) bool
	// Shallow reports whether this cache was harvested from a shallow
	// node (fully expanded, no outgoing edges yet) as opposed to a
	// cascaded-build SAT test's root — both are valid sources. Nothing
	// in this package reads it; rules.go's expansion loop makes no
	// per-step cache check.
	Shallow() bool
}

// ConstCache is used for TOP and BOTTOM. TOP merges trivially with
// anything (it constrains nothing); BOTTOM merging with anything is
// invalid (the unsatisfiable witness can never be part of a model).
type ConstCache struct {
	Sat     bool
	shallow bool
}

func NewConstCache(sat bool) *ConstCache { return &ConstCache{Sat: sat} }

func (c *ConstCache) Kind() string { return "const" }
func (c *ConstCache) State() CacheState {
	if c.Sat {
		return CacheValid
	}
	return CacheInvalid
}
func (c *ConstCache) CanMerge(other Cache) CacheState {
	if !c.Sat {
		return CacheInvalid
	}
	return other.State()
}
func (c *ConstCache) Merge(other Cache) Cache {
	if !c.Sat {
		return c
	}
	return other
}
func (c *ConstCache) HasNominalClash(other Cache) bool { return false }
func (c *ConstCache) Shallow() bool                    { return c.shallow }

// SingletonCache holds a single BP: the model is exactly {that fact}.
// Merging clashes iff the other cache already contains the inverse BP.
type SingletonCache struct {
	BP      BP
	shallow bool
}

func NewSingletonCache(bp BP) *SingletonCache { return &SingletonCache{BP: bp} }

func (c *SingletonCache) Kind() string        { return "singleton" }
func (c *SingletonCache) State() CacheState   { return CacheValid }
func (c *SingletonCache) Shallow() bool       { return c.shallow }
func (c *SingletonCache) HasNominalClash(other Cache) bool {
	if ic, ok := other.(*IanCache); ok {
		idx := c.BP.Index()
		if c.BP.IsPositive() {
			return ic.detNeg.Contains(idx)
		}
		return ic.detPos.Contains(idx)
	}
	if sc, ok := other.(*SingletonCache); ok {
		return sc.BP == c.BP.Inverse()
	}
	return false
}
func (c *SingletonCache) CanMerge(other Cache) CacheState {
	if sc, ok := other.(*SingletonCache); ok {
		if sc.BP == c.BP.Inverse() {
			return CacheInvalid
		}
		return CacheValid
	}
	if c.HasNominalClash(other) {
		return CacheInvalid
	}
	return other.State()
}
func (c *SingletonCache) Merge(other Cache) Cache {
	if c.CanMerge(other) == CacheInvalid {
		return NewConstCache(false)
	}
	return other
}

// IanCache ("Ian cache", named for the model-merging algebra described in
// spec §4.8) records, extracted from a satisfiability witness: positive
// and negative named-concept bitsets split by determinism, two optional
// extra-rule application bitsets, and the exists/forall/functional role
// bitsets appearing at the model's root, closed under super-roles.
type IanCache struct {
	detPos, detNeg     *bitset.Set
	nondetPos, nondetNeg *bitset.Set
	extraRulePos, extraRuleNeg *bitset.Set // only used when simple rules are in play

	existsRoles, forallRoles, funcRoles *bitset.Set

	shallow bool
}

// NewIanCache builds an empty Ian cache ready for harvesting.
func NewIanCache() *IanCache {
	return &IanCache{
		detPos: bitset.New(), detNeg: bitset.New(),
		nondetPos: bitset.New(), nondetNeg: bitset.New(),
		extraRulePos: bitset.New(), extraRuleNeg: bitset.New(),
		existsRoles: bitset.New(), forallRoles: bitset.New(), funcRoles: bitset.New(),
	}
}

func (c *IanCache) Kind() string      { return "ian" }
func (c *IanCache) State() CacheState { return CacheValid }
func (c *IanCache) Shallow() bool     { return c.shallow }

// AddNamedConcept records that bp (a named concept occurrence) held in
// the harvested model, deterministic or not.
func (c *IanCache) AddNamedConcept(bp BP, deterministic bool) {
	idx := bp.Index()
	if bp.IsPositive() {
		if deterministic {
			c.detPos.Add(idx)
		} else {
			c.nondetPos.Add(idx)
		}
	} else {
		if deterministic {
			c.detNeg.Add(idx)
		} else {
			c.nondetNeg.Add(idx)
		}
	}
}

// AddExtraRule records that a simple-rule body/head index fired.
func (c *IanCache) AddExtraRule(idx int, positive bool) {
	if positive {
		c.extraRulePos.Add(idx)
	} else {
		c.extraRuleNeg.Add(idx)
	}
}

// AddRoleUsage records a role appearing in an ∃, ∀, or functional
// restriction at the harvested model's root.
func (c *IanCache) AddExistsRole(r *Role) { c.existsRoles.Add(roleKey(r.ID)) }
func (c *IanCache) AddForallRole(r *Role) { c.forallRoles.Add(roleKey(r.ID)) }
func (c *IanCache) AddFuncRole(r *Role)   { c.funcRoles.Add(roleKey(r.ID)) }

func (c *IanCache) HasNominalClash(other Cache) bool {
	oc, ok := other.(*IanCache)
	if !ok {
		return other.HasNominalClash(c)
	}
	return c.detPos.Intersects(oc.detNeg) || c.detNeg.Intersects(oc.detPos)
}

// CanMerge implements spec §4.8's fail-fast algebra:
//   - det×det named-concept contradiction ⇒ invalid
//   - any other det/nondet contradiction, exists∩forall, funcRoles
//     intersection ⇒ failed
//   - otherwise valid
func (c *IanCache) CanMerge(other Cache) CacheState {
	switch o := other.(type) {
	case *ConstCache:
		return o.CanMerge(c)
	case *SingletonCache:
		if o.HasNominalClash(c) {
			return CacheInvalid
		}
		return CacheValid
	case *IanCache:
		if c.detPos.Intersects(o.detNeg) || c.detNeg.Intersects(o.detPos) {
			return CacheInvalid
		}
		if c.detPos.Intersects(o.nondetNeg) || c.nondetPos.Intersects(o.detNeg) ||
			c.detNeg.Intersects(o.nondetPos) || c.nondetNeg.Intersects(o.detPos) ||
			c.nondetPos.Intersects(o.nondetNeg) || c.nondetNeg.Intersects(o.nondetPos) {
			return CacheFailed
		}
		if c.existsRoles.Intersects(o.forallRoles) || c.forallRoles.Intersects(o.existsRoles) {
			return CacheFailed
		}
		if c.funcRoles.Intersects(o.funcRoles) {
			return CacheFailed
		}
		return CacheValid
	default:
		return CacheUnknown
	}
}

// Merge unions every bitset pair and sets the resulting state according
// to CanMerge (testable property 7: merge on two valid caches yields
// valid iff their CanMerge is valid).
func (c *IanCache) Merge(other Cache) Cache {
	st := c.CanMerge(other)
	if st != CacheValid {
		return NewConstCache(false)
	}
	o, ok := other.(*IanCache)
	if !ok {
		return c
	}
	out := NewIanCache()
	out.detPos = c.detPos.Clone()
	out.detPos.Or(o.detPos)
	out.detNeg = c.detNeg.Clone()
	out.detNeg.Or(o.detNeg)
	out.nondetPos = c.nondetPos.Clone()
	out.nondetPos.Or(o.nondetPos)
	out.nondetNeg = c.nondetNeg.Clone()
	out.nondetNeg.Or(o.nondetNeg)
	out.extraRulePos = c.extraRulePos.Clone()
	out.extraRulePos.Or(o.extraRulePos)
	out.extraRuleNeg = c.extraRuleNeg.Clone()
	out.extraRuleNeg.Or(o.extraRuleNeg)
	out.existsRoles = c.existsRoles.Clone()
	out.existsRoles.Or(o.existsRoles)
	out.forallRoles = c.forallRoles.Clone()
	out.forallRoles.Or(o.forallRoles)
	out.funcRoles = c.funcRoles.Clone()
	out.funcRoles.Or(o.funcRoles)
	return out
}
