package fixture

import (
	"container/list"
	"fixture-factory/internal/diagnostic"
	"fixture-factory/node"
	"fixture-factory/options"
	"fixture-factory/provider"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// construct builds a *t from the first candidate that succeeds. Registered
// constructors take precedence over factory methods; zero allocation is the
// last resort. An invalid result means every candidate failed.
func (c *call) construct(t reflect.Type) (reflect.Value, error) {
	cands := c.f.constructorsFor(t)
	if len(cands) == 0 && c.f.features.Has(options.FeatureFactoryMethods) {
		cands = node.FactoryMethods(t)
	}

	c.f.provider.SortCandidates(cands)

	if c.f.features.Has(options.FeatureZeroAllocation) {
		cands = append(cands, node.ZeroAlloc(t))
	}

	out, err := c.try(t, cands)
	if err != nil || !out.IsValid() {
		return reflect.Value{}, err
	}

	if out.Type() == t {
		p := reflect.New(t)
		p.Elem().Set(out)
		return p, nil
	}

	return out, nil
}

// try invokes candidates in order. Soft failures move on to the next
// candidate; configuration errors from manufacturing arguments do not.
func (c *call) try(t reflect.Type, cands []node.Candidate) (reflect.Value, error) {
	for _, cand := range cands {
		args, err := c.arguments(t, cand)
		if err != nil {
			if isConfiguration(err) {
				return reflect.Value{}, err
			}
			c.soft(t, cand, err)
			continue
		}

		out, err := cand.Call(args)
		if err != nil {
			c.soft(t, cand, err)
			continue
		}

		if cand.Kind != node.CandidateZeroAlloc &&
			c.f.features.Has(options.FeatureRejectEmptyContainers) && isEmptyContainer(out) {
			c.soft(t, cand, errEmptyContainer)
			continue
		}

		c.f.log.Debug("constructed", zap.Stringer("type", t), zap.Stringer("candidate", cand))

		return out, nil
	}

	return reflect.Value{}, nil
}

var errEmptyContainer = fmt.Errorf("%w: empty container", node.ErrCandidateDeclined)

func (c *call) soft(t reflect.Type, cand node.Candidate, err error) {
	c.f.log.Debug("construction candidate failed",
		zap.Stringer("type", t), zap.Stringer("candidate", cand), zap.Error(err))
	c.diags.AddInfo(diagnostic.CodeCandidateFailed, err.Error(), node.TypeStr(t), c.pathStr())
}

func (c *call) arguments(t reflect.Type, cand node.Candidate) ([]reflect.Value, error) {
	args := make([]reflect.Value, len(cand.Params))

	for i, pt := range cand.Params {
		a := provider.Attribute{Owner: t, Member: fmt.Sprintf("%s#%d", cand.Name, i)}

		v, err := c.guarded(pt, nil, a)
		if err != nil {
			return nil, err
		}

		fv, ok := fit(v, pt)
		if !ok {
			fv = reflect.Zero(pt)
		}
		args[i] = fv
	}

	return args, nil
}

// isEmptyContainer reports whether v, through pointers and interfaces, is
// a container holding no element.
func isEmptyContainer(v reflect.Value) bool {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return false
		}
		if v.Kind() == reflect.Ptr {
			if l, ok := v.Interface().(*list.List); ok {
				return l.Len() == 0
			}
			if m, ok := v.Interface().(*sync.Map); ok {
				return syncMapLen(m) == 0
			}
			if node.Dispatch(v.Type().Elem()) == node.DispatcherMethodContainer {
				n, err := containerLen(v)
				return err == nil && n == 0
			}
		}
		v = v.Elem()
	}

	if !v.IsValid() {
		return false
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Chan:
		return v.Len() == 0
	default:
		return false
	}
}
