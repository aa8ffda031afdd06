package handler

import (
	"fmt"

	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/result"
)

// checker accumulates the findings for one element.
type checker struct {
	el    *floorplan.Element
	id    string
	errs  []result.Error
	warns []result.Warning
}

func newChecker(el *floorplan.Element) *checker {
	id, _ := floorplan.GetStr(el.Node, "id")
	return &checker{el: el, id: id}
}

func (c *checker) fail(msg, suggestion string) {
	c.errs = append(c.errs, result.Error{
		Type: "schema_error", Severity: "error", NodeID: c.id,
		Message: msg, Suggestion: suggestion,
	})
}

func (c *checker) warn(typ, msg, suggestion string) {
	c.warns = append(c.warns, result.Warning{
		Type: typ, Severity: "warning", NodeID: c.id,
		Message: msg, Suggestion: suggestion,
	})
}

func (c *checker) requireString(key string) {
	n := c.el.Node.Get(key)
	if n == nil {
		c.fail(key+" is required", "Set "+key+" to a string")
		return
	}
	if _, ok := n.Str(); !ok {
		c.fail(key+" must be a string", "Set "+key+" to a string")
	}
}

func (c *checker) requirePosition() {
	p := c.el.Node.Get("position")
	if p == nil {
		c.fail("position is required", `Set position to {"x": <int>, "y": <int>}`)
		return
	}
	if !p.IsMapping() {
		c.fail("position must be an object", `Set position to {"x": <int>, "y": <int>}`)
		return
	}
	for _, axis := range []string{"x", "y"} {
		v := p.Get(axis)
		if v == nil {
			c.fail("position."+axis+" is required", "Set position."+axis+" to an integer number of pixels")
		} else if _, ok := v.Int(); !ok {
			c.fail("position."+axis+" must be an integer", "Use whole pixels")
		}
	}
}

func (c *checker) requireSize(key string) {
	v := c.el.Node.Get(key)
	if v == nil {
		c.fail(key+" is required", "Set "+key+" to a positive integer number of pixels")
		return
	}
	n, ok := v.Int()
	if !ok {
		c.fail(key+" must be an integer", "Use whole pixels")
		return
	}
	if n <= 0 {
		c.fail(fmt.Sprintf("%s must be positive, got %d", key, n), "Set "+key+" to a positive integer")
	}
}

// flag checks an optional boolean; a missing flag is set to false.
func (c *checker) flag(key string) {
	v := c.el.Node.Get(key)
	if v == nil {
		c.el.Node.Set(key, floorplan.Bool(false))
		c.warn("defaulted", key+" was missing, set to false", "")
		return
	}
	if _, ok := v.Bool(); !ok {
		c.fail(key+" must be a boolean", "Set "+key+" to false")
	}
}

func (c *checker) result() ([]result.Error, []result.Warning) {
	return c.errs, c.warns
}
